package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/nexus/internal/auth/authctx"
	"github.com/aussiebroadwan/nexus/pkg/jwtx"
	"github.com/aussiebroadwan/nexus/pkg/slogx"
)

// SessionVerifier is the part of the token service the session middleware
// depends on.
type SessionVerifier interface {
	VerifyAccessToken(raw string) (jwtx.Claims, error)
	HasActiveSession(ctx context.Context, userID string) (bool, error)
}

// SessionMiddleware resolves the caller's identity and attaches it to the
// request context. It never rejects a request: a missing or bad credential,
// or a session that was revoked, leaves the request anonymous and the
// handler decides.
func SessionMiddleware(tokens SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := accessToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.VerifyAccessToken(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			active, err := tokens.HasActiveSession(ctx, claims.Subject)
			if err != nil {
				slogx.FromContext(ctx).Error("session lookup failed",
					slog.String("user_id", claims.Subject),
					slog.Any("error", err),
				)
				next.ServeHTTP(w, r)
				return
			}
			if !active {
				next.ServeHTTP(w, r)
				return
			}

			ctx = authctx.With(ctx, authctx.Context{
				Authenticated: true,
				UserID:        claims.Subject,
				Email:         claims.Email,
				IsAdmin:       claims.IsAdmin,
				ExpiresAt:     claims.ExpiresAtTime(),
			})
			ctx = slogx.WithContext(ctx, slogx.FromContext(ctx).With("user_id", claims.Subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// accessToken prefers the cookie and falls back to a bearer header.
func accessToken(r *http.Request) string {
	if v := cookieValue(r, AccessTokenCookie); v != "" {
		return v
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// userKey keys per-user rate limits by the authenticated subject.
func userKey(r *http.Request) string {
	return authctx.From(r.Context()).UserID
}
