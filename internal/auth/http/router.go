package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/202201638/security-project/internal/auth/domain"
	"github.com/202201638/security-project/internal/auth/metrics"
	"github.com/202201638/security-project/internal/auth/service"
	"github.com/202201638/security-project/internal/auth/store"
	"github.com/202201638/security-project/pkg/httpx"
	"github.com/202201638/security-project/pkg/jwtx"
	"github.com/202201638/security-project/pkg/slogx"

	_ "github.com/202201638/security-project/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// DefaultMaxBodyBytes caps JSON request bodies.
const DefaultMaxBodyBytes = 1 << 20

// Options configures a Router.
type Options struct {
	Verifier     jwtx.Verifier
	Store        store.Store
	Logger       *slog.Logger
	Metrics      *metrics.Metrics // nil disables instrumentation and /metrics
	BuildVersion string

	// Dev exposes internal error text in the details field of 500 replies.
	Dev bool

	RateLimit    bool
	AuthLimit    httpx.RateLimitConfig // per IP on /api/auth/*
	APILimit     httpx.RateLimitConfig // per user on authenticated routes
	CORS         httpx.CORSConfig
	MaxBodyBytes int64
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	opts      Options
	startTime time.Time

	SessionService *service.SessionService
	UserService    *service.UserService
}

func NewRouter(opts Options) *Router {
	if opts.Logger == nil {
		opts.Logger = slogx.Discard()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.AuthLimit.RequestsPerWindow == 0 {
		opts.AuthLimit = httpx.StrictLimit
	}
	if opts.APILimit.RequestsPerWindow == 0 {
		opts.APILimit = httpx.ModerateLimit
	}

	r := &Router{
		Mux:       http.NewServeMux(),
		opts:      opts,
		startTime: time.Now(),
	}

	// Metrics sit innermost so the mux has set r.Pattern before they read it.
	r.middlewares = []httpx.Middleware{
		httpx.CORS(opts.CORS),
		httpx.MaxBytes(opts.MaxBodyBytes),
		slogx.HTTPMiddleware(opts.Logger),
	}
	if opts.Metrics != nil {
		r.middlewares = append(r.middlewares, opts.Metrics.HTTPMiddleware)
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerProfile()
	r.registerRoles()
	r.registerDemo()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						Credential and Session Authority API
//	@version					1.0.0
//	@description				Account registration, password login and JWT session management with role based access control.
//	@description
//	@description				Access and refresh tokens are HS256 signed JWTs. Refresh tokens are tracked server side and can be revoked.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:3000
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// limitByIP and limitByUser return nil when rate limiting is off; Chain
// skips nil middleware.
func (r *Router) limitByIP(cfg httpx.RateLimitConfig) httpx.Middleware {
	if !r.opts.RateLimit {
		return nil
	}
	return httpx.RateLimitByIP(cfg)
}

func (r *Router) limitByUser(cfg httpx.RateLimitConfig) httpx.Middleware {
	if !r.opts.RateLimit {
		return nil
	}
	return httpx.RateLimitByUser(cfg)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Sessions: r.SessionService, Dev: r.opts.Dev}

	// One bucket per IP shared by every auth endpoint.
	limit := r.limitByIP(r.opts.AuthLimit)

	r.Mux.Handle("POST /api/auth/register", httpx.Chain(http.HandlerFunc(h.HandleRegister), limit))
	r.Mux.Handle("POST /api/auth/login", httpx.Chain(http.HandlerFunc(h.HandleLogin), limit))
	r.Mux.Handle("POST /api/auth/refresh-token", httpx.Chain(http.HandlerFunc(h.HandleRefresh), limit))
	r.Mux.Handle("POST /api/auth/logout", httpx.Chain(http.HandlerFunc(h.HandleLogout), limit))
}

func (r *Router) registerProfile() {
	h := &ProfileHandler{Users: r.UserService, Dev: r.opts.Dev}
	limit := r.limitByUser(r.opts.APILimit)

	r.Mux.Handle("GET /api/profile", httpx.Chain(http.HandlerFunc(h.HandleGet),
		httpx.AuthnMiddleware(r.opts.Verifier),
		limit,
	))
	r.Mux.Handle("PUT /api/profile", httpx.Chain(http.HandlerFunc(h.HandleUpdate),
		httpx.AuthnMiddleware(r.opts.Verifier),
		limit,
	))
}

func (r *Router) registerRoles() {
	h := &RolesHandler{Users: r.UserService, Dev: r.opts.Dev}

	r.Mux.Handle("PUT /api/users/{id}/role", httpx.Chain(h,
		httpx.AuthnMiddleware(r.opts.Verifier),
		r.limitByUser(r.opts.APILimit),
		httpx.RequireAnyRole(msgAdminRequired, domain.RoleAdmin.String()),
	))
}

func (r *Router) registerDemo() {
	limit := r.limitByUser(r.opts.APILimit)

	r.Mux.Handle("GET /api/public", http.HandlerFunc(PublicHandler))

	r.Mux.Handle("GET /api/protected", httpx.Chain(IdentityHandler(msgProtected),
		httpx.AuthnMiddleware(r.opts.Verifier),
		limit,
	))
	r.Mux.Handle("GET /api/moderator", httpx.Chain(IdentityHandler(msgModerator),
		httpx.AuthnMiddleware(r.opts.Verifier),
		limit,
		httpx.RequireAnyRole(msgModeratorRequired, domain.RoleModerator.String(), domain.RoleAdmin.String()),
	))
	r.Mux.Handle("GET /api/admin", httpx.Chain(IdentityHandler(msgAdmin),
		httpx.AuthnMiddleware(r.opts.Verifier),
		limit,
		httpx.RequireAnyRole(msgAdminRequired, domain.RoleAdmin.String()),
	))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.opts.BuildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.opts.BuildVersion, r.opts.Store))

	if r.opts.Metrics != nil {
		r.Mux.Handle("GET /metrics", r.opts.Metrics.Handler())
	}
}
