package authsdk

import (
	"context"
	"net/http"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and stores the new session cookies.
func (c *SDKClient) Register(ctx context.Context, email, password string) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/register", credentials{email, password}, nil)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Login authenticates and stores the new session cookies.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/login", credentials{email, password}, nil)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Refresh rotates the refresh cookie. Without a refresh cookie the service
// answers 200 with an error body, which is returned as *APIError with code
// ErrorCodeNoRefreshToken.
func (c *SDKClient) Refresh(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/refresh", nil, nil)
	if err != nil {
		return err
	}

	var out struct {
		SuccessResponse
		Error string `json:"error"`
	}
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return err
	}
	if out.Error != "" {
		return &APIError{StatusCode: http.StatusOK, Code: out.Error}
	}
	return nil
}

// Logout revokes the current refresh token and clears the cookies.
func (c *SDKClient) Logout(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/logout", nil, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}

// ChangePassword replaces the password. Every other session of the user is
// ended and this client receives fresh cookies.
func (c *SDKClient) ChangePassword(ctx context.Context, current, next string) error {
	body := struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}{current, next}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/change-password", body, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}

// Session reports the session state the service sees for this client.
func (c *SDKClient) Session(ctx context.Context) (*Session, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/auth/session", nil, nil)
	if err != nil {
		return nil, err
	}

	var out Session
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
