package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-user-accounts/internal/application/account"
	"github.com/go-user-accounts/internal/application/session"
	"github.com/go-user-accounts/internal/config"
	"github.com/go-user-accounts/internal/transport/http/handler"
	appmiddleware "github.com/go-user-accounts/internal/transport/http/middleware"
	"go.uber.org/zap"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", appmiddleware.HeaderAccessToken, appmiddleware.HeaderRefreshToken},
		ExposedHeaders:   []string{appmiddleware.HeaderAccessToken, appmiddleware.HeaderRefreshToken},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	issuer := session.NewIssuer(deps.JWTProvider)
	guard := session.NewGuard(session.GuardDeps{
		Tokens: deps.JWTProvider,
		Users:  deps.UserRepo,
		Issuer: issuer,
		Logger: log,
	})
	accountSvc := account.NewService(account.ServiceDeps{
		UserRepo: deps.UserRepo,
		Hasher:   deps.Hasher,
		Tokens:   deps.JWTProvider,
		Issuer:   issuer,
		Notifier: deps.Notifier,
		Logger:   log,
	})

	authMw := appmiddleware.Auth(guard, log)

	healthH := handler.NewHealthHandler()
	accountH := handler.NewAccountHandler(accountSvc, log)
	sessionH := handler.NewSessionHandler(accountSvc, log)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/users/register", accountH.Register)
		r.Post("/users/activate", accountH.Activate)
		r.Post("/sessions/login", sessionH.Login)
		r.Post("/sessions/logout", sessionH.Logout)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.With(authMw).Get("/sessions/me", sessionH.Me)

		// Listing is public unless USERS_LIST_REQUIRE_AUTH is set.
		var listMw []func(http.Handler) http.Handler
		if cfg.UsersListRequireAuth {
			listMw = append(listMw, authMw)
			if len(cfg.UsersListRoles) > 0 {
				listMw = append(listMw, appmiddleware.RequireRole(cfg.UsersListRoles...))
			}
		}
		r.With(listMw...).Get("/users", accountH.List)
	})

	return r
}
