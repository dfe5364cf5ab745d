package smsgw

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

var (
	// ErrBaseURLRequired is returned when the provider base URL is missing.
	ErrBaseURLRequired = errors.New("sms gateway base url is required")
	// ErrRejected is returned when the provider rejects the message.
	ErrRejected = errors.New("sms gateway rejected the message")
)

// HTTPConfig configures the HTTP SMS gateway client.
type HTTPConfig struct {
	// BaseURL is the provider endpoint, e.g. https://sms.example.com.
	BaseURL string
	// APIKey is sent as a bearer token.
	APIKey string
	// Sender is the default sender id.
	Sender string
	// Timeout bounds a single request attempt.
	Timeout time.Duration
	// MaxRetries bounds retry attempts on transient failures.
	MaxRetries uint64
}

// HTTP is a Sender backed by a JSON-over-HTTP SMS provider.
type HTTP struct {
	cfg    HTTPConfig
	client *http.Client
}

// NewHTTP constructs an HTTP SMS gateway client.
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
	To     string `json:"to"`
	Body   string `json:"body"`
	Sender string `json:"sender,omitempty"`
}

type sendResponse struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error,omitempty"`
}

// Send submits the message, retrying transient provider failures with
// exponential backoff.
func (h *HTTP) Send(ctx context.Context, msg Message) (string, error) {
	sender := msg.Sender
	if sender == "" {
		sender = h.cfg.Sender
	}

	payload, err := json.Marshal(sendRequest{To: msg.To, Body: msg.Body, Sender: sender})
	if err != nil {
		return "", err
	}

	backoff := retry.WithMaxRetries(h.cfg.MaxRetries, retry.NewExponential(500*time.Millisecond))

	var messageID string
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		id, err := h.send(ctx, payload)
		if err != nil {
			return err
		}
		messageID = id
		return nil
	})
	if err != nil {
		return "", err
	}

	return messageID, nil
}

func (h *HTTP) send(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.BaseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.cfg.APIKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", retry.RetryableError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", retry.RetryableError(err)
	}

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return "", retry.RetryableError(fmt.Errorf("sms gateway status %d: %s", resp.StatusCode, body))
	}

	var out sendResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("sms gateway response decode: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("%w: %s", ErrRejected, out.Error)
	}

	return out.MessageID, nil
}

// Close implements io.Closer for interface compatibility.
func (h *HTTP) Close() error {
	h.client.CloseIdleConnections()
	return nil
}
