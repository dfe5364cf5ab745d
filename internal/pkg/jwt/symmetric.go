package jwt

import (
	"errors"
	"strconv"

	libjwt "github.com/golang-jwt/jwt/v5"
)

// Symmetric signs and verifies tokens using an HMAC secret (HS512).
type Symmetric struct {
	cfg Config
}

// NewHS512 constructs a Symmetric JWT implementation using HS512.
func NewHS512(cfg Config) (*Symmetric, error) {
	if len(cfg.Secret) < 64 {
		return nil, ErrSigningKeyTooShort
	}
	return &Symmetric{cfg: cfg}, nil
}

// Generate creates a signed JWT for the user.
func (s *Symmetric) Generate(uid int64, email string, roles []string) (string, error) {
	now := s.cfg.Clock.Now()

	return libjwt.
		NewWithClaims(libjwt.SigningMethodHS512, Claims{
			RegisteredClaims: libjwt.RegisteredClaims{
				ID:        s.cfg.UUID.Generate(),
				Subject:   strconv.FormatInt(uid, 10),
				Issuer:    s.cfg.Issuer,
				Audience:  s.cfg.Audiences,
				IssuedAt:  libjwt.NewNumericDate(now),
				NotBefore: libjwt.NewNumericDate(now),
				ExpiresAt: libjwt.NewNumericDate(now.Add(s.cfg.TTL)),
			},
			UserID:    uid,
			UserEmail: email,
			Roles:     roles,
		}).
		SignedString(s.cfg.Secret)
}

// Verify parses and validates a JWT string.
func (s *Symmetric) Verify(tokenStr string) (Claims, error) {
	var claims Claims

	token, err := libjwt.ParseWithClaims(tokenStr, &claims,
		func(t *libjwt.Token) (any, error) {
			if t.Method != libjwt.SigningMethodHS512 {
				return nil, ErrInvalidSigningMethod
			}
			return s.cfg.Secret, nil
		},
		libjwt.WithIssuer(s.cfg.Issuer),
		libjwt.WithAudience(s.cfg.Audiences...),
		libjwt.WithValidMethods([]string{libjwt.SigningMethodHS512.Alg()}),
		libjwt.WithIssuedAt(),
		libjwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, libjwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, err
	}

	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
