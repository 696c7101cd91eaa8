package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/nexus/internal/auth/store"
	"github.com/aussiebroadwan/nexus/pkg/cryptox"
)

func TestSetBinanceToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.users.Create(ctx, "ivy@example.com", "password123")
	require.NoError(t, err)
	require.False(t, u.Public().HasBinanceToken)

	token := "binance-api-secret"
	require.NoError(t, env.users.SetBinanceToken(ctx, u.ID, &token))

	got, err := env.users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.BinanceTokenHash)
	require.NotContains(t, *got.BinanceTokenHash, token)
	require.NoError(t, cryptox.VerifyPassword(token, *got.BinanceTokenHash))
	require.True(t, got.Public().HasBinanceToken)

	empty := ""
	require.NoError(t, env.users.SetBinanceToken(ctx, u.ID, &empty))
	got, err = env.users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, got.BinanceTokenHash)

	require.ErrorIs(t, env.users.SetBinanceToken(ctx, "missing", nil), store.ErrNotFound)
}
