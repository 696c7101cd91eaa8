package authsdk

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Cookie names set by the service.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// SDKClient talks to one Nexus instance and carries its session cookies.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// UserAgent is sent with every request. The service binds refresh tokens
	// to the caller's IP and user agent, so it must stay stable across a
	// session.
	UserAgent string
}

// NewSDKClient creates a client with an empty cookie jar.
func NewSDKClient(baseURL string) (*SDKClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
		UserAgent: "nexus-authsdk",
	}, nil
}

// Cookie returns the current value of a session cookie for path, or "".
func (c *SDKClient) Cookie(name, path string) string {
	if c.HTTPClient.Jar == nil {
		return ""
	}
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return ""
	}
	for _, ck := range c.HTTPClient.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// AccessToken returns the access token currently held in the jar.
func (c *SDKClient) AccessToken() string { return c.Cookie(AccessTokenCookie, "/") }

// RefreshToken returns the refresh token currently held in the jar.
func (c *SDKClient) RefreshToken() string { return c.Cookie(RefreshTokenCookie, "/v1/auth/refresh") }
