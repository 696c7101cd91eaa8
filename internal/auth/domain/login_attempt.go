package domain

import "time"

// Login failure reasons. They are recorded for the account owner and never
// returned from the login endpoint itself.
const (
	LoginFailureUserNotFound    = "user_not_found"
	LoginFailureAccountInactive = "account_inactive"
	LoginFailureInvalidPassword = "invalid_password"
)

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
