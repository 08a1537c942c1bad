package gwapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/highway905/awi-gateway/internal/config"
	cookierepo "github.com/highway905/awi-gateway/internal/repo/cookie"
	authsvc "github.com/highway905/awi-gateway/internal/services/auth"
	"github.com/highway905/awi-gateway/internal/services/credentials"
	lookupsvc "github.com/highway905/awi-gateway/internal/services/lookup"
	"github.com/highway905/awi-gateway/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService   *authsvc.Service
	Credentials   *credentials.Store
	CookieMirror  *cookierepo.Mirror
	LookupService *lookupsvc.Service
	Proxy         *handlers.ProxyHandler
	Logger        *zap.Logger
	Config        config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	sessionCfg := deps.Config.Session
	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.Credentials, sessionCfg.LandingRoute, sessionCfg.LoginRoute, deps.Logger)
	sessionHandler := handlers.NewSessionHandler()
	lookupHandler := handlers.NewLookupHandler(deps.LookupService)
	healthHandler := handlers.NewHealthHandler()
	spaHandler := handlers.NewSPAHandler(deps.Config.HTTP.StaticDir)

	requireMW := RequireSession(deps.Credentials, deps.Logger)
	guestMW := GuestOnly(deps.Credentials, sessionCfg.LandingRoute)
	edgeMW := EdgeGuard(deps.CookieMirror, sessionCfg, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.With(guestMW).Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.With(requireMW).Get("/session", sessionHandler.Get)
	})

	r.With(requireMW).Get("/warehouses", lookupHandler.Warehouses)

	if deps.Proxy != nil {
		r.With(requireMW).Handle("/api/*", http.HandlerFunc(deps.Proxy.Handle))
	}

	// Page navigation goes through the edge guard; everything the SPA
	// owns falls through to its shell.
	r.Group(func(r chi.Router) {
		r.Use(edgeMW)
		r.Get("/*", spaHandler.Handle)
	})
}
