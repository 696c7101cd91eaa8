package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/nexus/internal/auth/audit"
	"github.com/aussiebroadwan/nexus/internal/auth/metrics"
	"github.com/aussiebroadwan/nexus/internal/auth/service"
	"github.com/aussiebroadwan/nexus/internal/auth/store"
	"github.com/aussiebroadwan/nexus/pkg/httpx"
	"github.com/aussiebroadwan/nexus/pkg/jwtx"
	"github.com/aussiebroadwan/nexus/pkg/slogx"

	_ "github.com/aussiebroadwan/nexus/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Operation ids used as audit registry keys.
const (
	OpRegister       = "auth.register"
	OpLogin          = "auth.login"
	OpRefresh        = "auth.refresh"
	OpLogout         = "auth.logout"
	OpChangePassword = "auth.change_password"
	OpSession        = "auth.session"
	OpUserInfo       = "user.info"
	OpLoginAttempts  = "user.login_attempts"
	OpRateLimits     = "user.rate_limits"
	OpBinanceToken   = "user.binance_token"
	OpJWKS           = "system.jwks"
	OpLivez          = "system.livez"
	OpReadyz         = "system.readyz"
	OpMetrics        = "system.metrics"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeyManager
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService  *service.AuthService
	UserService  *service.UserService
	TokenService *service.TokenService

	// Registry and Audit must share the same registry: flags are registered
	// as routes are mounted and read when the handler is wrapped.
	Registry *audit.Registry
	Audit    *audit.Interceptor

	Metrics *metrics.Metrics
	Cookies CookieConfig

	limits *rateLimits
}

func NewRouter(
	keys *jwtx.KeyManager,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		limits:       &rateLimits{},
	}
}

func (r *Router) ApplyRoutes() {
	if r.Registry == nil {
		r.Registry = audit.NewRegistry()
	}

	// Request logging first, then identity, then metrics closest to the mux
	// so the matched pattern is visible after the handler returns.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		SessionMiddleware(r.TokenService),
		r.Metrics.Middleware,
	}

	r.registerAuth()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Nexus Authentication Service API
//	@version		0.1.0
//	@description	Session authentication for Nexus: registration, login, refresh token rotation and audited user endpoints.
//	@description
//	@description				Access tokens are JWTs published through the JWKS endpoint. Both credentials travel as HttpOnly cookies.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/nexus
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}". The access_token cookie is accepted as well.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// handle registers op with flags and mounts h, wrapped by the audit
// interceptor, under pattern. Route middlewares run inside the interceptor so
// rejected requests are still recorded.
func (r *Router) handle(pattern, op string, flags audit.Flags, h http.Handler, mws ...httpx.Middleware) {
	r.Registry.Register(op, flags)

	h = httpx.Chain(h, mws...)
	if r.Audit != nil {
		h = r.Audit.Wrap(op, h)
	}
	r.Mux.Handle(pattern, h)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService, Cookies: r.Cookies}

	// Credential endpoints - strict rate limit by IP (brute force targets)
	r.handle("POST /v1/auth/register", OpRegister, audit.FlagAudit|audit.FlagPublic,
		http.HandlerFunc(h.HandleRegister),
		r.limits.byIP(OpRegister, httpx.StrictLimit),
	)
	r.handle("POST /v1/auth/login", OpLogin, audit.FlagAudit|audit.FlagPublic,
		http.HandlerFunc(h.HandleLogin),
		r.limits.byIP(OpLogin, httpx.StrictLimit),
	)
	r.handle("POST /v1/auth/refresh", OpRefresh, audit.FlagAudit|audit.FlagPublic,
		http.HandlerFunc(h.HandleRefresh),
		r.limits.byIP(OpRefresh, httpx.StrictLimit),
	)

	r.handle("POST /v1/auth/logout", OpLogout, audit.FlagAudit|audit.FlagPublic,
		http.HandlerFunc(h.HandleLogout),
		r.limits.byIP(OpLogout, httpx.ModerateLimit),
	)

	// POST /change-password - moderate rate limit by user
	r.handle("POST /v1/auth/change-password", OpChangePassword, audit.FlagAudit,
		http.HandlerFunc(h.HandleChangePassword),
		r.limits.byUser(OpChangePassword, httpx.ModerateLimit),
	)

	// Polled by clients on page load, not audited.
	r.handle("GET /v1/auth/session", OpSession, audit.FlagPublic,
		http.HandlerFunc(h.HandleSession),
		r.limits.byIP(OpSession, httpx.LenientLimit),
	)
}

func (r *Router) registerUsers() {
	h := &UserHandler{UserService: r.UserService, RateLimits: r.limits}

	r.handle("GET /v1/user/info", OpUserInfo, audit.FlagAudit,
		http.HandlerFunc(h.HandleInfo),
		r.limits.byUser(OpUserInfo, httpx.LenientLimit),
	)
	r.handle("GET /v1/user/login-attempts", OpLoginAttempts, audit.FlagAudit,
		http.HandlerFunc(h.HandleLoginAttempts),
		r.limits.byUser(OpLoginAttempts, httpx.ModerateLimit),
	)
	r.handle("GET /v1/user/rate-limits", OpRateLimits, audit.FlagAudit,
		http.HandlerFunc(h.HandleRateLimits),
		r.limits.byUser(OpRateLimits, httpx.LenientLimit),
	)
	r.handle("PUT /v1/user/binance-token", OpBinanceToken, audit.FlagAudit,
		http.HandlerFunc(h.HandleSetBinanceToken),
		r.limits.byUser(OpBinanceToken, httpx.ModerateLimit),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.handle("GET /.well-known/jwks.json", OpJWKS, audit.FlagPublic,
		JWKSHandler(r.keys.KeySet),
		r.limits.byIP(OpJWKS, httpx.LenientLimit),
	)
	r.handle("GET /livez", OpLivez, audit.FlagPublic,
		LivezHandler(r.startTime, r.buildVersion),
		r.limits.byIP(OpLivez, httpx.LenientLimit),
	)
	r.handle("GET /readyz", OpReadyz, audit.FlagPublic,
		ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
		r.limits.byIP(OpReadyz, httpx.LenientLimit),
	)
	r.handle("GET /metrics", OpMetrics, audit.FlagPublic, r.Metrics.Handler())
}
