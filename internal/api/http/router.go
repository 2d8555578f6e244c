package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/todovault/todovault/internal/api/service"
	"github.com/todovault/todovault/internal/api/store"
	"github.com/todovault/todovault/pkg/httpx"
	"github.com/todovault/todovault/pkg/jwtx"
	"github.com/todovault/todovault/pkg/slogx"

	_ "github.com/todovault/todovault/api" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	logger       *slog.Logger
	store        store.Store
	buildVersion string
	startTime    time.Time

	UserService  *service.UserService
	TokenService *service.TokenService
	TodoService  *service.TodoService
}

func NewRouter(verifier jwtx.Verifier, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		store:        st,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		httpx.CORSMiddleware(),
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerUsers()
	r.registerTodos()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			TodoVault API
//	@version		0.1.0
//	@description	Todo-list backend with JWT authentication. Access tokens are short-lived;
//	@description	refresh tokens are rotated on every login and refresh, so only the most
//	@description	recently issued refresh token is ever accepted.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:5000
//	@BasePath					/api
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

func (r *Router) registerUsers() {
	h := &UserHandler{UserService: r.UserService, TokenService: r.TokenService}

	// Credential-bearing endpoints - strict rate limit by IP to slow brute force
	r.Mux.Handle("POST /api/user/registration",
		httpx.Chain(http.HandlerFunc(h.HandleRegistration),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/user/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/user/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// GET /user/auth - session liveness check, authenticated
	r.Mux.Handle("GET /api/user/auth",
		httpx.Chain(http.HandlerFunc(h.HandleAuth),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerTodos() {
	h := &TodoHandler{TodoService: r.TodoService}

	secured := func(handler http.HandlerFunc) http.Handler {
		return httpx.Chain(handler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	// Literal segments must be registered alongside the wildcard routes; the
	// mux prefers the more specific pattern, so toggleAll and clearCompleted
	// never collide with {id}.
	r.Mux.Handle("GET /api/todo/getOne/{id}", secured(h.HandleGetOne))
	r.Mux.Handle("GET /api/todo/{userId}", secured(h.HandleList))
	r.Mux.Handle("POST /api/todo/{$}", secured(h.HandleCreate))
	r.Mux.Handle("PUT /api/todo/toggleAll", secured(h.HandleToggleAll))
	r.Mux.Handle("PUT /api/todo/{id}", secured(h.HandleUpdate))
	r.Mux.Handle("DELETE /api/todo/{id}", secured(h.HandleDelete))
	r.Mux.Handle("POST /api/todo/clearCompleted", secured(h.HandleClearCompleted))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
