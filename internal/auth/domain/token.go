package domain

import "time"

// TokenPair is what login, register and change-password hand back to the
// transport: a signed access token and the raw refresh secret. The raw
// refresh value exists only here and is never persisted.
type TokenPair struct {
	AccessToken     string
	AccessExpiresAt time.Time
	RefreshToken    string
	RefreshExpires  time.Time
}

// RefreshToken models the stored refresh token record.
type RefreshToken struct {
	ID                string
	UserID            string
	TokenHash         string // base64url SHA-256 of the raw secret
	DeviceFingerprint string
	IPAddress         string
	UserAgent         string
	ExpiresAt         time.Time
	Revoked           bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Usable reports whether the token could still be exchanged at now.
func (t RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && t.ExpiresAt.After(now)
}
