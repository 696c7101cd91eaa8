package authsdk

import (
	"context"
	"net/http"
	"strconv"
)

// UserInfo returns the profile of the logged-in user.
func (c *SDKClient) UserInfo(ctx context.Context) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/user/info", nil, nil)
	if err != nil {
		return nil, err
	}

	var out User
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoginAttempts lists recent login attempts for the logged-in user. A limit
// of zero uses the server default.
func (c *SDKClient) LoginAttempts(ctx context.Context, limit int) ([]LoginAttempt, error) {
	path := "/v1/user/login-attempts"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var out LoginAttemptsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Attempts, nil
}

// RateLimits lists the rate limit buckets the logged-in user occupies.
func (c *SDKClient) RateLimits(ctx context.Context) ([]RateLimit, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/user/rate-limits", nil, nil)
	if err != nil {
		return nil, err
	}

	var out RateLimitsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Limits, nil
}

// SetBinanceToken stores the user's Binance API token. An empty token
// clears it.
func (c *SDKClient) SetBinanceToken(ctx context.Context, token string) error {
	body := struct {
		Token *string `json:"token"`
	}{}
	if token != "" {
		body.Token = &token
	}

	resp, err := c.doRequest(ctx, http.MethodPut, "/v1/user/binance-token", body, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}
