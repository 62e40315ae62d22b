// Package auth issues and verifies the bearer tokens guarding the API.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/akopato/storefront/pkg/config"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

const roleClaim = "role"

// TokenService signs and verifies HMAC tokens with a shared process-wide key.
type TokenService struct {
	key    jwk.Key
	issuer string
	ttl    time.Duration
}

// NewTokenService creates a TokenService from the auth configuration.
func NewTokenService(cfg config.AuthConfig) (*TokenService, error) {
	key, err := jwk.Import([]byte(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to import signing key: %w", err)
	}
	return &TokenService{
		key:    key,
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
	}, nil
}

// Issue creates a signed token carrying the subject and role claims.
func (s *TokenService) Issue(subject, role string) (string, error) {
	now := time.Now()
	token, err := jwt.NewBuilder().
		Subject(subject).
		Issuer(s.issuer).
		IssuedAt(now).
		Expiration(now.Add(s.ttl)).
		Claim(roleClaim, role).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), s.key))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}

// Verify parses and validates a token string, returning its subject and role.
func (s *TokenService) Verify(_ context.Context, tokenString string) (string, string, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), s.key),
		// Standard validation checks - expiration, not before, etc.
		jwt.WithValidate(true),
		jwt.WithIssuer(s.issuer),
	)
	if err != nil {
		return "", "", fmt.Errorf("failed to verify token: %w", err)
	}

	subject, ok := token.Subject()
	if !ok {
		return "", "", fmt.Errorf("token has no `sub` claim")
	}
	var role string
	if err := token.Get(roleClaim, &role); err != nil {
		return "", "", fmt.Errorf("token has no `%s` claim: %w", roleClaim, err)
	}
	return subject, role, nil
}
