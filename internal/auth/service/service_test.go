package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/nexus/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/nexus/pkg/cryptox"
	"github.com/aussiebroadwan/nexus/pkg/jwtx"
)

const (
	testIssuer = "nexus-test"
	testIP     = "203.0.113.10"
	testUA     = "Mozilla/5.0 (service test)"
)

func TestMain(m *testing.M) {
	cryptox.SetPepper("service-test-pepper")
	os.Exit(m.Run())
}

type testEnv struct {
	store  *sqlite.Store
	tokens *TokenService
	users  *UserService
	auth   *AuthService
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "auth.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Algorithm: jwtx.AlgorithmEdDSA,
		Issuer:    testIssuer,
		NumKeys:   2,
	})
	require.NoError(t, err)

	tokens := &TokenService{
		KeyManager: km,
		Store:      st,
		Issuer:     testIssuer,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenDays * 24 * time.Hour,
	}
	users := &UserService{Store: st}

	return testEnv{
		store:  st,
		tokens: tokens,
		users:  users,
		auth:   &AuthService{Users: users, Tokens: tokens},
	}
}
