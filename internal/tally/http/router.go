package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/quietloops/tally/internal/tally/service"
	"github.com/quietloops/tally/internal/tally/store"
	"github.com/quietloops/tally/pkg/httpx"
	"github.com/quietloops/tally/pkg/i18nx"
	"github.com/quietloops/tally/pkg/jwtx"
	"github.com/quietloops/tally/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	issuer       *jwtx.Issuer
	translator   i18nx.Translator
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	pingCache      func() error
	UserService    *service.UserService
	TokenService   *service.TokenService
	ExpenseService *service.ExpenseService
}

func NewRouter(
	issuer *jwtx.Issuer,
	translator i18nx.Translator,
	buildVersion string,
	st store.Store,
	pingCache func() error,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		issuer:       issuer,
		translator:   translator,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		pingCache:    pingCache,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerExpenses()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		UserService:  r.UserService,
		TokenService: r.TokenService,
		Translator:   r.translator,
	}

	// Credential endpoints take a strict per-IP limit to slow brute force.
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerExpenses() {
	h := &ExpensesHandler{
		ExpenseService: r.ExpenseService,
		Translator:     r.translator,
	}

	secured := func(next http.HandlerFunc) http.Handler {
		return httpx.Chain(next,
			AuthnMiddleware(r.issuer, r.UserService, r.translator),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("POST /v1/expenses", secured(h.HandleCreate))
	r.Mux.Handle("GET /v1/expenses", secured(h.HandleList))
	r.Mux.Handle("GET /v1/expenses/{id}", secured(h.HandleGet))
	r.Mux.Handle("PUT /v1/expenses/{id}", secured(h.HandleUpdate))
	r.Mux.Handle("DELETE /v1/expenses/{id}", secured(h.HandleDelete))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.pingCache),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
