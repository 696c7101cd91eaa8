package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/nexus/pkg/httpx"
)

// RateLimitStatus is one rate limit bucket held by the caller.
type RateLimitStatus struct {
	Endpoint       string     `json:"endpoint"`
	Identifier     string     `json:"identifier"`
	IdentifierType string     `json:"identifier_type"`
	Limit          int        `json:"limit"`
	Window         string     `json:"window"`
	Remaining      int        `json:"remaining"`
	LastSeen       time.Time  `json:"last_seen"`
	BlockedUntil   *time.Time `json:"blocked_until"`
}

type RateLimitsResponse struct {
	Limits []RateLimitStatus `json:"limits"`
}

// RateLimitLister reports the buckets the caller of r currently occupies.
type RateLimitLister interface {
	Snapshot(r *http.Request) []RateLimitStatus
}

type routeLimit struct {
	op      string
	limiter *httpx.Limiter
	key     httpx.KeyExtractor
}

// rateLimits keeps every limiter the router mounts. Routes are added while
// the router is built and only read afterwards.
type rateLimits struct {
	routes []routeLimit
}

var _ RateLimitLister = (*rateLimits)(nil)

func (l *rateLimits) byIP(op string, cfg httpx.RateLimitConfig) httpx.Middleware {
	return l.add(op, cfg, httpx.IPKeyExtractor)
}

func (l *rateLimits) byUser(op string, cfg httpx.RateLimitConfig) httpx.Middleware {
	return l.add(op, cfg, httpx.UserKeyExtractor(userKey))
}

func (l *rateLimits) add(op string, cfg httpx.RateLimitConfig, key httpx.KeyExtractor) httpx.Middleware {
	lim := httpx.NewLimiter(cfg)
	l.routes = append(l.routes, routeLimit{op: op, limiter: lim, key: key})
	return lim.Middleware(key)
}

// Snapshot lists the caller's buckets in route registration order. Routes the
// caller has not hit since the last sweep are omitted.
func (l *rateLimits) Snapshot(r *http.Request) []RateLimitStatus {
	out := []RateLimitStatus{}
	for _, rl := range l.routes {
		key := rl.key(r)
		if key == "" {
			continue
		}
		st, ok := rl.limiter.Peek(key)
		if !ok {
			continue
		}

		kind, id := "ip", key
		if v, found := strings.CutPrefix(key, "user:"); found {
			kind, id = "user", v
		} else if v, found := strings.CutPrefix(key, "ip:"); found {
			id = v
		}

		cfg := rl.limiter.Config()
		status := RateLimitStatus{
			Endpoint:       rl.op,
			Identifier:     id,
			IdentifierType: kind,
			Limit:          cfg.RequestsPerWindow,
			Window:         cfg.Window.String(),
			Remaining:      st.Remaining,
			LastSeen:       st.LastSeen.UTC(),
		}
		if !st.BlockedUntil.IsZero() {
			until := st.BlockedUntil.UTC()
			status.BlockedUntil = &until
		}
		out = append(out, status)
	}
	return out
}
