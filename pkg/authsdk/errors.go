package authsdk

import "fmt"

// Error codes returned by the service.
const (
	ErrorCodeInvalidRequest         = "invalid_request"
	ErrorCodeInvalidCredentials     = "invalid_credentials"
	ErrorCodeEmailAlreadyRegistered = "email_already_registered"
	ErrorCodeWeakPassword           = "weak_password"
	ErrorCodeInvalidRefresh         = "invalid_refresh"
	ErrorCodeNoRefreshToken         = "no_refresh_token"
	ErrorCodeAuthenticationRequired = "authentication_required"
	ErrorCodeRateLimited            = "rate_limit_exceeded"
	ErrorCodeServerError            = "server_error"
)

// APIError is a failed call. StatusCode is 200 for the one soft failure the
// service reports in a success status, a refresh without a cookie.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("%d %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Description)
}
