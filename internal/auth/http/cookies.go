package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/nexus/internal/auth/domain"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"

	// RefreshCookiePath scopes the refresh credential to the auth routes so it
	// is never sent with ordinary API calls.
	RefreshCookiePath = "/v1/auth"
)

// CookieConfig controls the attributes of the credential cookies.
type CookieConfig struct {
	Secure bool
	Domain string
}

func (c CookieConfig) cookie(name, value, path string, expires time.Time, now time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   c.Domain,
		Expires:  expires,
		MaxAge:   max(int(expires.Sub(now).Seconds()), 1),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// SetTokens writes both credential cookies for pair.
func (c CookieConfig) SetTokens(w http.ResponseWriter, pair domain.TokenPair) {
	now := time.Now()
	http.SetCookie(w, c.cookie(AccessTokenCookie, pair.AccessToken, "/", pair.AccessExpiresAt, now))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, pair.RefreshToken, RefreshCookiePath, pair.RefreshExpires, now))
}

// Clear expires both credential cookies.
func (c CookieConfig) Clear(w http.ResponseWriter) {
	for _, ck := range []struct{ name, path string }{
		{AccessTokenCookie, "/"},
		{RefreshTokenCookie, RefreshCookiePath},
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     ck.name,
			Value:    "",
			Path:     ck.path,
			Domain:   c.Domain,
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   c.Secure,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
