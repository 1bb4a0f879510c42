package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/firegate/internal/gateway/domain"
	"github.com/aussiebroadwan/firegate/internal/gateway/routing"
	"github.com/aussiebroadwan/firegate/internal/gateway/service"
	"github.com/aussiebroadwan/firegate/internal/gateway/store"
	"github.com/aussiebroadwan/firegate/pkg/httpx"
	"github.com/aussiebroadwan/firegate/pkg/jwtx"
	"github.com/aussiebroadwan/firegate/pkg/slogx"

	_ "github.com/aussiebroadwan/firegate/api/gateway" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeyManager
	session      httpx.SessionAuth
	cookie       CookieConfig
	pages        *routing.PageTable
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store            store.Store
	checks           []ReadinessCheck
	AuthService      *service.AuthService
	PrincipalService *service.PrincipalService
	BootstrapService *service.BootstrapService
	UnitService      *service.UnitService
}

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Keys         *jwtx.KeyManager
	Sessions     store.Sessions
	Cookie       CookieConfig
	Pages        *routing.PageTable
	BuildVersion string
	Production   bool

	// Checks are extra readiness probes, such as the Redis registry.
	Checks []ReadinessCheck
}

func NewRouter(st store.Store, logger *slog.Logger, opts RouterOptions) *Router {
	sessions := opts.Sessions
	if sessions == nil {
		sessions = st.Sessions()
	}
	pages := opts.Pages
	if pages == nil {
		pages = routing.DefaultPages
	}
	cookie := opts.Cookie
	if cookie.Name == "" {
		cookie.Name = DefaultCookieName
	}

	r := &Router{
		Mux:  http.NewServeMux(),
		keys: opts.Keys,
		session: httpx.SessionAuth{
			Verifier:   opts.Keys.Verifier,
			Sessions:   sessions,
			CookieName: cookie.Name,
		},
		cookie:       cookie,
		pages:        pages,
		buildVersion: opts.BuildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		checks:       opts.Checks,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.SecureHeaders(opts.Production),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSession()
	r.registerPages()
	r.registerPrincipals()
	r.registerUnits()
	r.registerSystem()
	r.registerBootstrap()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Firegate Dashboard Gateway API
//	@version		0.1.0
//	@description	Role-based login, session and page routing for the fire-service administrative dashboard.
//	@description
//	@description				Session tokens are EdDSA signed JWTs, verifiable with the JWKS endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/firegate
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
//	@description				Session token. Format: "Bearer {token}". The firegate_session cookie is accepted too.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService, Cookie: r.cookie}

	// Login - strict rate limit by IP + kind + login name (brute force prevention)
	r.Mux.Handle("POST /v1/auth/{kind}/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPPathAndJSONField(httpx.StrictLimit, "kind", "username", "service_number"),
		),
	)

	// Change password - strict rate limit by IP + kind + principal id. The session
	// is optional: a pending change is authorised by its change token.
	r.Mux.Handle("POST /v1/auth/{kind}/change-password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
			httpx.RateLimitByIPPathAndJSONField(httpx.StrictLimit, "kind", "id"),
			httpx.LoadSession(r.session),
		),
	)

	r.Mux.Handle("POST /v1/auth/{kind}/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
			httpx.LoadSession(r.session),
		),
	)

	// JWKS - public endpoint with high limit
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys.KeySet),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerSession() {
	sh := &SessionHandler{AuthService: r.AuthService}
	r.Mux.Handle("GET /v1/session",
		httpx.Chain(sh,
			httpx.AuthnMiddleware(r.session),
			httpx.RateLimitByPrincipal(httpx.LenientLimit),
		),
	)

	gh := &GuardHandler{Pages: r.pages}
	r.Mux.Handle("GET /v1/guard",
		httpx.Chain(gh,
			httpx.LoadSession(r.session),
			httpx.RateLimitByPrincipal(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerPages() {
	// Every page is evaluated by the same guard against the page table.
	ph := &PageHandler{Pages: r.pages}
	guarded := httpx.Chain(ph,
		httpx.LoadSession(r.session),
		httpx.RateLimitByPrincipal(httpx.LenientLimit),
	)
	r.Mux.Handle("GET /dashboard/", guarded)
	r.Mux.Handle("GET "+routing.PathPortal, guarded)
	r.Mux.Handle("GET "+routing.PathPortal+"/", guarded)
}

func (r *Router) registerPrincipals() {
	h := &PrincipalsHandler{PrincipalService: r.PrincipalService}
	admins := []string{
		string(domain.RoleSuperAdmin),
		string(domain.RoleAdmin),
		string(domain.RoleStationAdmin),
	}

	securedCreate := httpx.Chain(http.HandlerFunc(h.HandleCreate),
		httpx.AuthnMiddleware(r.session),
		httpx.RequireAnyRole(admins...),
		httpx.RateLimitByPrincipal(httpx.ModerateLimit),
	)
	securedList := httpx.Chain(http.HandlerFunc(h.HandleList),
		httpx.AuthnMiddleware(r.session),
		httpx.RequireAnyRole(admins...),
		httpx.RateLimitByPrincipal(httpx.ModerateLimit),
	)

	r.Mux.Handle("POST /v1/principals", securedCreate)
	r.Mux.Handle("GET /v1/principals", securedList)
}

func (r *Router) registerUnits() {
	h := &UnitsHandler{UnitService: r.UnitService}

	// Listing is open to every signed-in principal with a station, the
	// service narrows the result.
	securedList := httpx.Chain(http.HandlerFunc(h.HandleList),
		httpx.AuthnMiddleware(r.session),
		httpx.RateLimitByPrincipal(httpx.LenientLimit),
	)

	admins := []string{
		string(domain.RoleSuperAdmin),
		string(domain.RoleAdmin),
		string(domain.RoleStationAdmin),
	}
	securedActivate := httpx.Chain(h.HandleSetActive(true),
		httpx.AuthnMiddleware(r.session),
		httpx.RequireAnyRole(admins...),
		httpx.RateLimitByPrincipal(httpx.ModerateLimit),
	)
	securedDeactivate := httpx.Chain(h.HandleSetActive(false),
		httpx.AuthnMiddleware(r.session),
		httpx.RequireAnyRole(admins...),
		httpx.RateLimitByPrincipal(httpx.ModerateLimit),
	)

	r.Mux.Handle("GET /v1/units", securedList)
	r.Mux.Handle("POST /v1/units/{id}/activate", securedActivate)
	r.Mux.Handle("POST /v1/units/{id}/deactivate", securedDeactivate)
}

func (r *Router) registerBootstrap() {
	// POST /bootstrap - very strict rate limit by IP (one-time setup endpoint)
	bootstrapHandler := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(bootstrapHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	checks := append([]ReadinessCheck{
		{Name: "database", Check: r.store.Ping},
		{Name: "signer", Check: keysReady(r.keys)},
	}, r.checks...)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, checks),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
