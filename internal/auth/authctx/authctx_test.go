package authctx_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/nexus/internal/auth/authctx"
)

func TestFromDefaultsToAnonymous(t *testing.T) {
	ac := authctx.From(context.Background())
	require.False(t, ac.Authenticated)
	require.Empty(t, ac.UserID)
	require.False(t, authctx.IsAuthenticated(context.Background()))
}

func TestRequire(t *testing.T) {
	exp := time.Now().Add(time.Minute)

	tests := []struct {
		name    string
		ctx     context.Context
		wantErr error
	}{
		{"missing", context.Background(), authctx.ErrAuthenticationRequired},
		{"anonymous", authctx.With(context.Background(), authctx.Anonymous), authctx.ErrAuthenticationRequired},
		{"no user id", authctx.With(context.Background(), authctx.Context{Authenticated: true, Email: "a@b.c"}), authctx.ErrIncompleteContext},
		{"no email", authctx.With(context.Background(), authctx.Context{Authenticated: true, UserID: "u1"}), authctx.ErrIncompleteContext},
		{"complete", authctx.With(context.Background(), authctx.Context{Authenticated: true, UserID: "u1", Email: "a@b.c", ExpiresAt: exp}), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ac, err := authctx.Require(tt.ctx)
			if tt.wantErr == nil {
				require.NoError(t, err)
				require.Equal(t, "u1", ac.UserID)
				require.Equal(t, exp, ac.ExpiresAt)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			require.ErrorIs(t, err, authctx.ErrAuthenticationRequired)
		})
	}
}

func TestContextsAreIsolated(t *testing.T) {
	parent := authctx.With(context.Background(), authctx.Context{Authenticated: true, UserID: "u1", Email: "a@b.c"})
	child := authctx.With(parent, authctx.Context{Authenticated: true, UserID: "u2", Email: "d@e.f"})

	require.Equal(t, "u1", authctx.From(parent).UserID)
	require.Equal(t, "u2", authctx.From(child).UserID)
}
