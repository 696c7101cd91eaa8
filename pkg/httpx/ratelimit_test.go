package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/nexus/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"remote addr", "192.168.1.1:12345", nil, "192.168.1.1"},
		{"forwarded first entry", "192.168.1.1:12345", map[string]string{"X-Forwarded-For": "203.0.113.1, 192.168.1.1"}, "203.0.113.1"},
		{"real ip", "192.168.1.1:12345", map[string]string{"X-Real-IP": "203.0.113.2"}, "203.0.113.2"},
		{"remote without port", "10.0.0.1", nil, "10.0.0.1"},
		{"nothing", "", nil, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tt.want, httpx.ClientIP(req))
		})
	}
}

func TestUserAgent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Equal(t, "unknown", httpx.UserAgent(req))
	req.Header.Set("User-Agent", "curl/8.0")
	require.Equal(t, "curl/8.0", httpx.UserAgent(req))
}

func TestCompositeKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	empty := func(*http.Request) string { return "" }
	fixed := func(*http.Request) string { return "alice" }

	require.Equal(t, "192.168.1.1:alice", httpx.CompositeKeyExtractor(":", httpx.IPKeyExtractor, empty, fixed)(req))
}

func TestLimiterAllow(t *testing.T) {
	lim := httpx.NewLimiter(httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2})

	ok, _ := lim.Allow("a")
	require.True(t, ok)
	ok, _ = lim.Allow("a")
	require.True(t, ok)

	ok, delay := lim.Allow("a")
	require.False(t, ok)
	require.Greater(t, delay, time.Duration(0))

	ok, _ = lim.Allow("b")
	require.True(t, ok, "buckets are per key")
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}
	h := httpx.Chain(okHandler(), httpx.RateLimitByIP(cfg))

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for range 3 {
		require.Equal(t, http.StatusOK, do("203.0.113.9").Code)
	}

	rec := do("203.0.113.9")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Contains(t, rec.Body.String(), "rate_limit_exceeded")

	require.Equal(t, http.StatusOK, do("203.0.113.10").Code)
}

func TestRateLimitByUser(t *testing.T) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
	user := func(r *http.Request) string { return r.Header.Get("X-Test-User") }
	h := httpx.Chain(okHandler(), httpx.RateLimitByUser(cfg, user))

	do := func(u string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.1:1"
		if u != "" {
			req.Header.Set("X-Test-User", u)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, do("alice"))
	require.Equal(t, http.StatusTooManyRequests, do("alice"))
	require.Equal(t, http.StatusOK, do("bob"))
	require.Equal(t, http.StatusOK, do(""), "anonymous falls back to the ip bucket")
	require.Equal(t, http.StatusTooManyRequests, do(""))
}

func TestParseRateLimitFromEnv(t *testing.T) {
	def := httpx.RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	t.Setenv("RATELIMIT_TEST_REQUESTS", "100")
	t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "30")
	t.Setenv("RATELIMIT_TEST_BURST", "-3")

	got := httpx.ParseRateLimitFromEnv("TEST", def)
	require.Equal(t, 100, got.RequestsPerWindow)
	require.Equal(t, 30*time.Second, got.Window)
	require.Equal(t, 5, got.Burst, "non-positive values are ignored")

	require.Equal(t, def, httpx.ParseRateLimitFromEnv("UNSET", def))
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler(), mw("a"), mw("b"), mw("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestStatusRecorder(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := httpx.NewStatusRecorder(rec)
	_, _ = sr.Write([]byte("hi"))
	require.Equal(t, http.StatusOK, sr.Status)

	rec = httptest.NewRecorder()
	sr = httpx.NewStatusRecorder(rec)
	sr.WriteHeader(http.StatusTeapot)
	sr.WriteHeader(http.StatusOK)
	require.Equal(t, http.StatusTeapot, sr.Status)
}

func TestLimiterPeek(t *testing.T) {
	lim := httpx.NewLimiter(httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2})

	_, ok := lim.Peek("a")
	require.False(t, ok, "unseen keys have no bucket")

	allowed, _ := lim.Allow("a")
	require.True(t, allowed)

	st, ok := lim.Peek("a")
	require.True(t, ok)
	require.Equal(t, "a", st.Key)
	require.Equal(t, 1, st.Remaining)
	require.True(t, st.BlockedUntil.IsZero())

	allowed, _ = lim.Allow("a")
	require.True(t, allowed)

	st, ok = lim.Peek("a")
	require.True(t, ok)
	require.Equal(t, 0, st.Remaining)
	require.True(t, st.BlockedUntil.After(time.Now()))

	// peeking does not spend tokens
	again, _ := lim.Peek("a")
	require.Equal(t, st.Remaining, again.Remaining)
}

func TestUserKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	anon := httpx.UserKeyExtractor(func(*http.Request) string { return "" })
	require.Equal(t, "ip:192.168.1.1", anon(req))

	named := httpx.UserKeyExtractor(func(*http.Request) string { return "u1" })
	require.Equal(t, "user:u1", named(req))
}
