package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/messagely/messagely/internal/messagely/service"
	"github.com/messagely/messagely/internal/messagely/store"
	"github.com/messagely/messagely/pkg/httpx"
	"github.com/messagely/messagely/pkg/jwtx"
	"github.com/messagely/messagely/pkg/slogx"

	_ "github.com/messagely/messagely/api/messagely" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	UserService    *service.UserService
	TokenService   *service.TokenService
	MessageService *service.MessageService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerMessages()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			message.ly API
//	@version		0.1.0
//	@description	A small messaging service: register, log in, send messages, and mark them read.
//	@description
//	@description				Identity tokens are HS256-signed JWTs carrying the username; every
//	@description				protected route verifies the signature before trusting the claim.
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
//	@description				JWT identity token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		UserService:  r.UserService,
		TokenService: r.TokenService,
	}

	r.Mux.Handle("POST /v1/auth/register", http.HandlerFunc(h.HandleRegister))
	r.Mux.Handle("POST /v1/auth/login", http.HandlerFunc(h.HandleLogin))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{
		UserService:    r.UserService,
		MessageService: r.MessageService,
	}
	authn := httpx.AuthnMiddleware(r.verifier)

	r.Mux.Handle("GET /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleList), authn))
	r.Mux.Handle("GET /v1/users/{username}",
		httpx.Chain(http.HandlerFunc(h.HandleGet), authn))
	r.Mux.Handle("GET /v1/users/{username}/to",
		httpx.Chain(http.HandlerFunc(h.HandleListTo), authn))
	r.Mux.Handle("GET /v1/users/{username}/from",
		httpx.Chain(http.HandlerFunc(h.HandleListFrom), authn))
}

func (r *Router) registerMessages() {
	h := &MessagesHandler{MessageService: r.MessageService}
	authn := httpx.AuthnMiddleware(r.verifier)

	r.Mux.Handle("POST /v1/messages",
		httpx.Chain(http.HandlerFunc(h.HandleCreate), authn))
	r.Mux.Handle("GET /v1/messages/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet), authn))
	r.Mux.Handle("POST /v1/messages/{id}/read",
		httpx.Chain(http.HandlerFunc(h.HandleMarkRead), authn))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
