// Package token issues and verifies HMAC-signed JWTs for toolkit
// applications.
package token

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrNoToken      = errors.New("token: no token present")
	ErrInvalidToken = errors.New("token: invalid token")
)

// Claims carries the registered JWT claims plus the subject's role.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues and parses HS256-signed tokens.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// Config configures a Manager.
type Config struct {
	// Secret is the HMAC signing key. Required.
	Secret []byte

	// Issuer is set as the "iss" claim on issued tokens and verified
	// on parse when non-empty.
	Issuer string

	// TTL is the issued token lifetime (default: 1 hour).
	TTL time.Duration
}

// NewManager creates a Manager from config.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token: secret must not be empty")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Manager{
		secret: cfg.Secret,
		issuer: cfg.Issuer,
		ttl:    ttl,
	}, nil
}

// Issue creates a signed token for the given subject. Each token gets
// a unique "jti" claim.
func (m *Manager) Issue(subject, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   subject,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}

	return signed, nil
}

// Parse verifies a signed token and returns its claims. Expired,
// malformed or wrongly-signed tokens return ErrInvalidToken.
func (m *Manager) Parse(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// FromRequest extracts the bearer token from the Authorization header
// and parses it.
func (m *Manager) FromRequest(r *http.Request) (*Claims, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return nil, ErrNoToken
	}

	scheme, raw, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
		return nil, ErrNoToken
	}

	return m.Parse(raw)
}
