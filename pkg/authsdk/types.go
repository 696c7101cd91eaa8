package authsdk

import (
	"time"

	"github.com/aussiebroadwan/nexus/pkg/jwtx"
)

// User is the public profile returned by register, login and user info.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	IsAdmin   bool       `json:"is_admin"`
	Status    string     `json:"status"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	HasBinanceToken bool `json:"has_binance_token"`
}

// RateLimit is one rate limit bucket the caller occupies.
type RateLimit struct {
	Endpoint       string     `json:"endpoint"`
	Identifier     string     `json:"identifier"`
	IdentifierType string     `json:"identifier_type"`
	Limit          int        `json:"limit"`
	Window         string     `json:"window"`
	Remaining      int        `json:"remaining"`
	LastSeen       time.Time  `json:"last_seen"`
	BlockedUntil   *time.Time `json:"blocked_until"`
}

type RateLimitsResponse struct {
	Limits []RateLimit `json:"limits"`
}

type UserResponse struct {
	User User `json:"user"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// Session is the projection served by GET /v1/auth/session.
type Session struct {
	Authenticated bool         `json:"authenticated"`
	User          *SessionUser `json:"user,omitempty"`
	ExpiresAt     *time.Time   `json:"expires_at,omitempty"`
}

type SessionUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

type LoginAttempt struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	IPAddress         string    `json:"ip_address"`
	UserAgent         string    `json:"user_agent"`
	DeviceFingerprint string    `json:"device_fingerprint"`
	Success           bool      `json:"success"`
	FailureReason     string    `json:"failure_reason,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type LoginAttemptsResponse struct {
	Attempts []LoginAttempt `json:"attempts"`
}

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// JWKSResponse contains the JSON Web Key Set used to verify access tokens.
type JWKSResponse jwtx.JWKS
