package service

import "errors"

var (
	// ErrConfigurationFatal marks startup failures that must abort the
	// process (missing keys, unusable storage).
	ErrConfigurationFatal = errors.New("configuration_fatal")

	// ErrInvalidCredentials covers unknown user, inactive account and wrong
	// password alike.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	ErrEmailAlreadyRegistered = errors.New("email_already_registered")

	// ErrInvalidRefresh covers unknown, revoked, expired, reused and
	// foreign-device refresh tokens alike.
	ErrInvalidRefresh = errors.New("invalid_refresh_token")

	ErrInvalidToken = errors.New("invalid_token")

	ErrWeakPassword = errors.New("weak_password")
)
