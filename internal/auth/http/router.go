package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/metrics"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"

	_ "github.com/aussiebroadwan/gatekeeper/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	signer       jwtx.Signer
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	metrics      *metrics.Metrics

	store            store.Store
	AuthService      *service.AuthService
	TwoFactorService *service.TwoFactorService

	// RequireSession puts activate and disable behind a bearer access token
	// whose subject must match the userId in the body.
	RequireSession bool
}

func NewRouter(
	signer jwtx.Signer,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		signer:       signer,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		metrics:      m,
		logger:       logger,
	}

	// Metrics sits next to the mux so it sees the matched pattern.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		r.metrics.Middleware,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTwoFactor()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Gatekeeper Authentication Service API
//	@version		0.1.0
//	@description	Password login with optional TOTP two-factor authentication.
//	@description
//	@description				Successful logins return an HS256 signed access token and refresh token.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/gatekeeper
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
//	@description				JWT access token. Format: "Bearer {token}". Only enforced when AUTH_2FA_REQUIRE_SESSION is set.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &LoginHandler{AuthService: r.AuthService}

	r.Mux.Handle("POST /v1/login", h)
	r.Mux.Handle("/v1/login", MethodNotAllowed(http.MethodPost))
}

func (r *Router) registerTwoFactor() {
	h := &TwoFactorHandler{
		TwoFactorService: r.TwoFactorService,
		RequireSession:   r.RequireSession,
	}

	var session httpx.Middleware
	if r.RequireSession {
		session = httpx.AuthnMiddleware(r.verifier)
	}

	r.Mux.Handle("POST /v1/2fa/activate", httpx.Chain(http.HandlerFunc(h.HandleActivate), session))
	r.Mux.Handle("POST /v1/2fa/verify", http.HandlerFunc(h.HandleVerify))
	r.Mux.Handle("POST /v1/2fa/disable", httpx.Chain(http.HandlerFunc(h.HandleDisable), session))

	for _, p := range []string{"/v1/2fa/activate", "/v1/2fa/verify", "/v1/2fa/disable"} {
		r.Mux.Handle(p, MethodNotAllowed(http.MethodPost))
	}
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.signer))
	r.Mux.Handle("GET /metrics", r.metrics.Handler())
}
