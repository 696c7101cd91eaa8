// Package storetest is a behavioural contract every store driver must pass.
package storetest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/nexus/internal/auth/domain"
	"github.com/aussiebroadwan/nexus/internal/auth/store"
	"github.com/aussiebroadwan/nexus/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Factory returns a migrated, empty store. It is called once per subtest.
type Factory func(t *testing.T) store.Store

func Run(t *testing.T, newStore Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("RefreshTokens", func(t *testing.T) { testRefreshTokens(t, newStore(t)) })
	t.Run("ConsumeIsSingleWinner", func(t *testing.T) { testConsumeRace(t, newStore(t)) })
	t.Run("Housekeeping", func(t *testing.T) { testHousekeeping(t, newStore(t)) })
	t.Run("LoginAttempts", func(t *testing.T) { testLoginAttempts(t, newStore(t)) })
	t.Run("AccessLogs", func(t *testing.T) { testAccessLogs(t, newStore(t)) })
	t.Run("WithTxRollsBack", func(t *testing.T) { testWithTx(t, newStore(t)) })
}

// SeedUser inserts an active user with a throwaway hash.
func SeedUser(t *testing.T, s store.Store, email string) domain.User {
	t.Helper()
	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		Status:       domain.UserStatusActive,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func newToken(userID, hash, fp string, expires time.Time) domain.RefreshToken {
	return domain.RefreshToken{
		ID:                idx.New().String(),
		UserID:            userID,
		TokenHash:         hash,
		DeviceFingerprint: fp,
		IPAddress:         "203.0.113.7",
		UserAgent:         "storetest",
		ExpiresAt:         expires,
		CreatedAt:         time.Now().UTC(),
	}
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := SeedUser(t, s, "alice@example.com")

	got, err := s.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, domain.UserStatusActive, got.Status)
	require.False(t, got.IsAdmin)
	require.Nil(t, got.LastLogin)

	_, err = s.Users().GetUserByID(ctx, idx.New().String())
	require.ErrorIs(t, err, store.ErrNotFound)

	dup := u
	dup.ID = idx.New().String()
	require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	require.NoError(t, s.Users().UpdatePasswordHash(ctx, u.ID, "new-hash"))
	at := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, s.Users().UpdateLastLogin(ctx, u.ID, at))
	require.NoError(t, s.Users().UpdateStatus(ctx, u.ID, domain.UserStatusSuspended))

	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", got.PasswordHash)
	require.NotNil(t, got.LastLogin)
	require.True(t, at.Equal(*got.LastLogin))
	require.False(t, got.IsActive())

	require.ErrorIs(t, s.Users().UpdatePasswordHash(ctx, "missing", "x"), store.ErrNotFound)
	require.Nil(t, got.BinanceTokenHash)

	hash := "argon2-token-hash"
	require.NoError(t, s.Users().SetBinanceTokenHash(ctx, u.ID, &hash))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.BinanceTokenHash)
	require.Equal(t, hash, *got.BinanceTokenHash)
	require.True(t, got.Public().HasBinanceToken)

	require.NoError(t, s.Users().SetBinanceTokenHash(ctx, u.ID, nil))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, got.BinanceTokenHash)
	require.ErrorIs(t, s.Users().SetBinanceTokenHash(ctx, "missing", nil), store.ErrNotFound)
}

func testRefreshTokens(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := SeedUser(t, s, "bob@example.com")
	now := time.Now().UTC()
	repo := s.RefreshTokens()

	live := newToken(u.ID, "hash-live", "fp-1", now.Add(time.Hour))
	require.NoError(t, repo.CreateRefreshToken(ctx, live))
	require.ErrorIs(t, repo.CreateRefreshToken(ctx, live), store.ErrAlreadyExists)

	active, err := repo.HasActiveRefreshToken(ctx, u.ID, now)
	require.NoError(t, err)
	require.True(t, active)

	// wrong fingerprint leaves the row untouched
	_, err = repo.ConsumeRefreshToken(ctx, "hash-live", "fp-other", now)
	require.ErrorIs(t, err, store.ErrNotFound)

	consumed, err := repo.ConsumeRefreshToken(ctx, "hash-live", "fp-1", now)
	require.NoError(t, err)
	require.Equal(t, u.ID, consumed.UserID)

	_, err = repo.ConsumeRefreshToken(ctx, "hash-live", "fp-1", now)
	require.ErrorIs(t, err, store.ErrNotFound)

	stored, err := repo.GetRefreshTokenByHash(ctx, "hash-live")
	require.NoError(t, err)
	require.True(t, stored.Revoked)

	expired := newToken(u.ID, "hash-expired", "fp-1", now.Add(-time.Second))
	require.NoError(t, repo.CreateRefreshToken(ctx, expired))
	_, err = repo.ConsumeRefreshToken(ctx, "hash-expired", "fp-1", now)
	require.ErrorIs(t, err, store.ErrNotFound)

	active, err = repo.HasActiveRefreshToken(ctx, u.ID, now)
	require.NoError(t, err)
	require.False(t, active)

	require.NoError(t, repo.RevokeRefreshToken(ctx, "does-not-exist"))

	for _, h := range []string{"a", "b", "c"} {
		require.NoError(t, repo.CreateRefreshToken(ctx, newToken(u.ID, h, "fp", now.Add(time.Hour))))
	}
	n, err := repo.RevokeAllUserRefreshTokens(ctx, u.ID, now)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	// expired rows are not live, so bulk revoke leaves them for housekeeping
	stale, err := repo.GetRefreshTokenByHash(ctx, "hash-expired")
	require.NoError(t, err)
	require.False(t, stale.Revoked)

	active, err = repo.HasActiveRefreshToken(ctx, u.ID, now)
	require.NoError(t, err)
	require.False(t, active)
}

func testConsumeRace(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := SeedUser(t, s, "race@example.com")
	now := time.Now().UTC()
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, newToken(u.ID, "contended", "fp", now.Add(time.Hour))))

	const n = 16
	var (
		wins  atomic.Int32
		start = make(chan struct{})
		wg    sync.WaitGroup
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := s.WithTx(ctx, func(tx store.Tx) error {
				_, err := tx.RefreshTokens().ConsumeRefreshToken(ctx, "contended", "fp", now)
				return err
			})
			if err == nil {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.EqualValues(t, 1, wins.Load())
}

func testHousekeeping(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := SeedUser(t, s, "carol@example.com")
	now := time.Now().UTC()
	repo := s.RefreshTokens()

	require.NoError(t, repo.CreateRefreshToken(ctx, newToken(u.ID, "old", "fp", now.Add(-48*time.Hour))))
	require.NoError(t, repo.CreateRefreshToken(ctx, newToken(u.ID, "fresh", "fp", now.Add(time.Hour))))

	n, err := repo.DeleteStaleRefreshTokens(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = repo.GetRefreshTokenByHash(ctx, "old")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = repo.GetRefreshTokenByHash(ctx, "fresh")
	require.NoError(t, err)
}

func testLoginAttempts(t *testing.T, s store.Store) {
	ctx := context.Background()
	repo := s.LoginAttempts()
	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)

	for i := range 5 {
		a := domain.LoginAttempt{
			ID:        idx.New().String(),
			Email:     "dave@example.com",
			IPAddress: "198.51.100.1",
			Success:   i == 4,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if !a.Success {
			a.FailureReason = domain.LoginFailureInvalidPassword
		}
		require.NoError(t, repo.RecordLoginAttempt(ctx, a))
	}
	require.NoError(t, repo.RecordLoginAttempt(ctx, domain.LoginAttempt{
		ID: idx.New().String(), Email: "other@example.com", IPAddress: "x", CreatedAt: base,
	}))

	got, err := repo.ListLoginAttempts(ctx, "dave@example.com", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.True(t, got[0].Success)
	require.Empty(t, got[0].FailureReason)
	require.Equal(t, domain.LoginFailureInvalidPassword, got[1].FailureReason)
	require.True(t, got[0].CreatedAt.After(got[1].CreatedAt))

	n, err := repo.DeleteLoginAttemptsBefore(ctx, base.Add(2*time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
}

func testAccessLogs(t *testing.T, s store.Store) {
	ctx := context.Background()
	target := "01J00000000000000000000000"
	entry := domain.AccessLog{
		ID:          idx.New().String(),
		Endpoint:    "/v1/user/info",
		Method:      "GET",
		RequesterID: domain.AnonymousRequester,
		TargetID:    &target,
		IPAddress:   "192.0.2.1",
		UserAgent:   "curl/8",
		StatusCode:  401,
		LatencyMS:   3,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, s.AccessLogs().AppendAccessLog(ctx, entry))

	got, err := s.AccessLogs().ListAccessLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, entry.Endpoint, got[0].Endpoint)
	require.Equal(t, 401, got[0].StatusCode)
	require.NotNil(t, got[0].TargetID)
	require.Equal(t, target, *got[0].TargetID)
}

func testWithTx(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := SeedUser(t, s, "erin@example.com")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, u.ID, "in-tx"); err != nil {
			return err
		}
		return store.ErrNotFound
	})
	require.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.PasswordHash, got.PasswordHash)
}
