package pushgw

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// ErrBaseURLRequired is returned when the provider base URL is missing.
var ErrBaseURLRequired = errors.New("push gateway base url is required")

// HTTPConfig configures the HTTP push gateway client.
type HTTPConfig struct {
	// BaseURL is the provider endpoint, e.g. https://push.example.com.
	BaseURL string
	// APIKey is sent as a bearer token.
	APIKey string
	// Timeout bounds a single request attempt.
	Timeout time.Duration
	// MaxRetries bounds retry attempts on transient failures.
	MaxRetries uint64
}

// HTTP is a Sender backed by a JSON-over-HTTP push provider.
type HTTP struct {
	cfg    HTTPConfig
	client *http.Client
}

// NewHTTP constructs an HTTP push gateway client.
func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	if cfg.BaseURL == "" {
		return nil, ErrBaseURLRequired
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}

	return &HTTP{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type sendRequest struct {
	Tokens []string          `json:"tokens"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}

type sendResponse struct {
	Results []tokenResult `json:"results"`
}

type tokenResult struct {
	Token     string `json:"token"`
	Status    string `json:"status"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Send submits the batch, retrying transient provider failures with
// exponential backoff. Per-token rejection is reported in the results,
// not as an error.
func (h *HTTP) Send(ctx context.Context, batch Batch) ([]Result, error) {
	if len(batch.Tokens) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(sendRequest{
		Tokens: batch.Tokens,
		Title:  batch.Title,
		Body:   batch.Body,
		Data:   batch.Data,
	})
	if err != nil {
		return nil, err
	}

	backoff := retry.WithMaxRetries(h.cfg.MaxRetries, retry.NewExponential(500*time.Millisecond))

	var results []Result
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		rs, err := h.send(ctx, payload)
		if err != nil {
			return err
		}
		results = rs
		return nil
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

func (h *HTTP) send(ctx context.Context, payload []byte) ([]Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.BaseURL+"/v1/batch", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.cfg.APIKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, retry.RetryableError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, retry.RetryableError(err)
	}

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return nil, retry.RetryableError(fmt.Errorf("push gateway status %d: %s", resp.StatusCode, body))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("push gateway status %d: %s", resp.StatusCode, body)
	}

	var out sendResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("push gateway response decode: %w", err)
	}

	results := make([]Result, 0, len(out.Results))
	for _, tr := range out.Results {
		results = append(results, Result{
			Token:        tr.Token,
			Accepted:     tr.Status == "ok",
			MessageID:    tr.MessageID,
			Reason:       tr.Error,
			Unregistered: tr.Status == "unregistered",
		})
	}

	return results, nil
}

// Close implements io.Closer for interface compatibility.
func (h *HTTP) Close() error {
	h.client.CloseIdleConnections()
	return nil
}
