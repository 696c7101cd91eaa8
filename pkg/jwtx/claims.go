package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeAccess marks an assertion as a short-lived access token. Anything
// else in the "type" claim is rejected by Verify.
const TokenTypeAccess = "access"

const (
	// DefaultAccessTokenTTL is the lifetime of an access assertion.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenDays is how long a refresh credential stays usable.
	DefaultRefreshTokenDays = 7
)

// Claims are the access-token claims. Only RegisteredClaims plus the identity
// fields a downstream handler needs; nothing here is looked up again.
type Claims struct {
	jwt.RegisteredClaims

	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	Type    string `json:"type"`
}

// NewAccessClaims builds the claims for a freshly authenticated principal.
func NewAccessClaims(subject, email string, isAdmin bool, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        newJTI(),
		},
		Email:   email,
		IsAdmin: isAdmin,
		Type:    TokenTypeAccess,
	}
}

func newJTI() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks iss; an empty expectation accepts anything.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected != "" && c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiry rejects tokens past exp or before nbf, allowing leeway on
// both ends for clock skew.
func (c *Claims) ValidateExpiry(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}
	if now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}

// ValidateAccess ensures the identity claims an access token must carry.
func (c *Claims) ValidateAccess() error {
	if c.Type != TokenTypeAccess || c.Subject == "" || c.Email == "" {
		return ErrInvalidClaim
	}
	return nil
}

// ExpiresAtTime returns exp or the zero time.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
