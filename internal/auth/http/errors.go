package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/aussiebroadwan/nexus/internal/auth/authctx"
	"github.com/aussiebroadwan/nexus/internal/auth/service"
	"github.com/aussiebroadwan/nexus/pkg/httpx"
	"github.com/aussiebroadwan/nexus/pkg/slogx"
)

// Error codes returned in the "error" field of every failure body.
const (
	ErrorCodeInvalidRequest         = "invalid_request"
	ErrorCodeInvalidCredentials     = "invalid_credentials"
	ErrorCodeEmailAlreadyRegistered = "email_already_registered"
	ErrorCodeWeakPassword           = "weak_password"
	ErrorCodeInvalidRefresh         = "invalid_refresh"
	ErrorCodeNoRefreshToken         = "no_refresh_token"
	ErrorCodeAuthenticationRequired = "authentication_required"
	ErrorCodeServerError            = "server_error"
)

// APIError is the JSON failure body of every endpoint.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes e with no-store caching headers.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

// WithDescription returns a copy of e carrying desc.
func (e *APIError) WithDescription(desc string) *APIError {
	cp := *e
	cp.Description = desc
	return &cp
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required fields",
	}

	// ErrInvalidCredentials covers unknown users, inactive accounts and wrong
	// passwords alike.
	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "invalid email or password",
	}

	ErrEmailAlreadyRegistered = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeEmailAlreadyRegistered,
		Description: "an account with this email already exists",
	}

	ErrWeakPassword = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeWeakPassword,
		Description: "password must be 8 to 128 characters with at least one letter and one digit",
	}

	ErrInvalidRefresh = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidRefresh,
		Description: "refresh token is invalid or expired",
	}

	ErrAuthenticationRequired = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeAuthenticationRequired,
		Description: "authentication is required",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// writeServiceError maps a service or validation error onto its HTTP form.
// Anything unrecognised is logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validation.Errors

	switch {
	case errors.As(err, &verrs):
		ErrInvalidRequest.WithDescription(verrs.Error()).WriteError(w)
	case errors.Is(err, authctx.ErrIncompleteContext):
		slogx.FromContext(r.Context()).Error("incomplete auth context", slog.Any("error", err))
		ErrServerError.WriteError(w)
	case errors.Is(err, authctx.ErrAuthenticationRequired):
		ErrAuthenticationRequired.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrEmailAlreadyRegistered):
		ErrEmailAlreadyRegistered.WriteError(w)
	case errors.Is(err, service.ErrWeakPassword):
		ErrWeakPassword.WriteError(w)
	case errors.Is(err, service.ErrInvalidRefresh), errors.Is(err, service.ErrInvalidToken):
		ErrInvalidRefresh.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		ErrServerError.WriteError(w)
	}
}
