package auth_test

import (
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/nexus/pkg/authsdk"
)

// TestSessionFlow walks register, session, refresh, reuse detection and
// logout against a running container.
func TestSessionFlow(t *testing.T) {
	baseURL := setupAuthContainer(t)
	client := newClient(t, baseURL)
	ctx := t.Context()

	user, err := client.Register(ctx, "Alice@Example.com", testPassword)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)

	session, err := client.Session(ctx)
	require.NoError(t, err)
	require.True(t, session.Authenticated)
	require.Equal(t, user.ID, session.User.ID)

	info, err := client.UserInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, user.ID, info.ID)

	oldRefresh := client.RefreshToken()
	require.NotEmpty(t, oldRefresh)

	require.NoError(t, client.Refresh(ctx))
	require.NotEqual(t, oldRefresh, client.RefreshToken(), "refresh token should be rotated")

	// Replaying the consumed token from a second client fails.
	replay := newClient(t, baseURL)
	replay.HTTPClient.Jar = nil
	resp, err := replayRefresh(t, replay, oldRefresh)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp)

	require.NoError(t, client.Logout(ctx))
	session, err = client.Session(ctx)
	require.NoError(t, err)
	require.False(t, session.Authenticated)

	_, err = client.UserInfo(ctx)
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeAuthenticationRequired)
}

// TestLoginFailuresAreGeneric checks unknown users and wrong passwords are
// reported identically and recorded for the owner.
func TestLoginFailuresAreGeneric(t *testing.T) {
	baseURL := setupAuthContainer(t)
	ctx := t.Context()

	owner := newClient(t, baseURL)
	_, err := owner.Register(ctx, "bob@example.com", testPassword)
	require.NoError(t, err)

	attacker := newClient(t, baseURL)
	_, err = attacker.Login(ctx, "nobody@example.com", testPassword)
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)
	_, err = attacker.Login(ctx, "bob@example.com", "WrongPassword1")
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)

	_, err = owner.Login(ctx, "bob@example.com", testPassword)
	require.NoError(t, err)

	attempts, err := owner.LoginAttempts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	require.True(t, attempts[0].Success)
	require.False(t, attempts[1].Success)
	require.Equal(t, "invalid_password", attempts[1].FailureReason)
}

// TestConcurrentRefreshSingleWinner fires parallel refreshes with the same
// token; exactly one may succeed.
func TestConcurrentRefreshSingleWinner(t *testing.T) {
	baseURL := setupAuthContainer(t)
	client := newClient(t, baseURL)

	_, err := client.Register(t.Context(), "carol@example.com", testPassword)
	require.NoError(t, err)
	token := client.RefreshToken()

	const n = 8
	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := newClient(t, baseURL)
			c.HTTPClient.Jar = nil
			status, err := replayRefresh(t, c, token)
			if err == nil && status == http.StatusOK {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), wins.Load())
}

// TestChangePasswordEndsOtherSessions logs in twice, changes the password
// on one device and checks the other device can no longer refresh.
func TestChangePasswordEndsOtherSessions(t *testing.T) {
	baseURL := setupAuthContainer(t)
	ctx := t.Context()

	laptop := newClient(t, baseURL)
	_, err := laptop.Register(ctx, "dave@example.com", testPassword)
	require.NoError(t, err)

	phone := newClient(t, baseURL)
	_, err = phone.Login(ctx, "dave@example.com", testPassword)
	require.NoError(t, err)

	require.NoError(t, laptop.ChangePassword(ctx, testPassword, "NewPassword456"))

	err = phone.Refresh(ctx)
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidRefresh)

	session, err := laptop.Session(ctx)
	require.NoError(t, err)
	require.True(t, session.Authenticated)

	_, err = phone.Login(ctx, "dave@example.com", "NewPassword456")
	require.NoError(t, err)
}

// replayRefresh sends a refresh with an explicit cookie, bypassing any jar.
func replayRefresh(t *testing.T, c *authsdk.SDKClient, token string) (int, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, c.BaseURL+"/v1/auth/refresh", nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.AddCookie(&http.Cookie{Name: authsdk.RefreshTokenCookie, Value: token})

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
