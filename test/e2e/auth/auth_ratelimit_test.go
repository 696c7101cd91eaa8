package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/nexus/pkg/authsdk"
)

// TestRateLimitLoginEndpoint verifies the login endpoint is throttled by
// IP after the strict limit (10 requests per minute) is spent.
func TestRateLimitLoginEndpoint(t *testing.T) {
	baseURL := setupAuthContainerWithDefaultRateLimits(t)
	client := newClient(t, baseURL)
	ctx := t.Context()

	for i := range 10 {
		_, err := client.Login(ctx, "nobody@example.com", testPassword)
		requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)
		t.Logf("request %d rejected as invalid credentials", i+1)
	}

	_, err := client.Login(ctx, "nobody@example.com", testPassword)
	requireAPIError(t, err, http.StatusTooManyRequests, authsdk.ErrorCodeRateLimited)
}
