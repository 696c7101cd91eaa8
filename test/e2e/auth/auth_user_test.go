package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestUserEndpoints covers the audited user surface: profile, Binance token
// and the caller's rate limit buckets.
func TestUserEndpoints(t *testing.T) {
	baseURL := setupAuthContainer(t)
	client := newClient(t, baseURL)
	ctx := t.Context()

	_, err := client.Register(ctx, "ken@example.com", testPassword)
	require.NoError(t, err)

	info, err := client.UserInfo(ctx)
	require.NoError(t, err)
	require.False(t, info.HasBinanceToken)
	require.False(t, info.UpdatedAt.IsZero())

	require.NoError(t, client.SetBinanceToken(ctx, "binance-api-secret"))
	info, err = client.UserInfo(ctx)
	require.NoError(t, err)
	require.True(t, info.HasBinanceToken)

	require.NoError(t, client.SetBinanceToken(ctx, ""))
	info, err = client.UserInfo(ctx)
	require.NoError(t, err)
	require.False(t, info.HasBinanceToken)

	limits, err := client.RateLimits(ctx)
	require.NoError(t, err)

	endpoints := make([]string, 0, len(limits))
	for _, l := range limits {
		endpoints = append(endpoints, l.Endpoint)
	}
	require.Contains(t, endpoints, "auth.register")
	require.Contains(t, endpoints, "user.binance_token")
}
