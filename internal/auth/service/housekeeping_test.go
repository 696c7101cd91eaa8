package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/nexus/internal/auth/domain"
	"github.com/aussiebroadwan/nexus/pkg/idx"
	"github.com/aussiebroadwan/nexus/pkg/slogx"
)

func TestHousekeepingCleanup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := seedUser(t, env, "house@example.com")
	now := time.Now().UTC()

	stale := domain.RefreshToken{
		ID: idx.New().String(), UserID: u.ID, TokenHash: "stale", DeviceFingerprint: "fp",
		ExpiresAt: now.Add(-10 * 24 * time.Hour), CreatedAt: now.Add(-17 * 24 * time.Hour),
	}
	require.NoError(t, env.store.RefreshTokens().CreateRefreshToken(ctx, stale))
	live, _, err := env.tokens.CreateRefreshToken(ctx, u.ID, testIP, testUA)
	require.NoError(t, err)

	require.NoError(t, env.users.RecordLoginAttempt(ctx, domain.LoginAttempt{
		Email: u.Email, IPAddress: testIP, CreatedAt: now.Add(-31 * 24 * time.Hour),
	}))
	require.NoError(t, env.users.RecordLoginAttempt(ctx, domain.LoginAttempt{
		Email: u.Email, IPAddress: testIP, Success: true,
	}))

	hk := NewHousekeepingService(env.store, slogx.Discard(), 0, 7*24*time.Hour)
	require.Equal(t, time.Hour, hk.Interval)
	hk.Cleanup(ctx, now)

	_, err = env.store.RefreshTokens().GetRefreshTokenByHash(ctx, "stale")
	require.Error(t, err)
	_, err = env.tokens.ValidateAndRotate(ctx, live, testIP, testUA)
	require.NoError(t, err)

	attempts, err := env.users.ListLoginAttempts(ctx, u.Email, 10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	require.True(t, attempts[0].Success)
}

func TestHousekeepingStartStop(t *testing.T) {
	env := newTestEnv(t)
	hk := NewHousekeepingService(env.store, slogx.Discard(), time.Millisecond, time.Hour)
	hk.Start()
	time.Sleep(5 * time.Millisecond)
	hk.Stop()
}
