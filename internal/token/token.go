// Package token issues and validates the signed JWTs used for API authentication.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned by Resolve for any token that cannot be
// trusted: bad signature, wrong signing method, elapsed expiry, wrong
// issuer/audience, or a missing username claim. Callers should not
// distinguish these cases in client-visible responses.
var ErrInvalidToken = errors.New("invalid token")

const (
	issuer   = "conduit-api"
	audience = "conduit-client"
)

// Service issues and resolves signed, time-limited tokens carrying a
// username subject claim. Validity is purely signature+expiry based; there
// is no revocation list and the secret is a single process-wide value.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService returns a Service signing with secret and issuing tokens valid for ttl.
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed token whose subject is username.
func (s *Service) Issue(username string) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("token secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": username,
		"iss": issuer,
		"aud": audience,
		"exp": now.Add(s.ttl).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": generateJTI(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Resolve validates tokenString and returns the username it was issued for.
func (s *Service) Resolve(tokenString string) (string, error) {
	tok, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: unexpected claims type", ErrInvalidToken)
	}

	username, ok := claims["sub"].(string)
	if !ok || username == "" {
		return "", fmt.Errorf("%w: missing subject claim", ErrInvalidToken)
	}

	return username, nil
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
