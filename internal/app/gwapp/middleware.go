package gwapp

import (
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/highway905/awi-gateway/internal/config"
	cookierepo "github.com/highway905/awi-gateway/internal/repo/cookie"
	"github.com/highway905/awi-gateway/internal/services/session"
)

func ApplyMiddlewares(r chiRouter, log *zap.Logger) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(requestLogger(log))
}

// EdgeGuard protects page navigation. It consults only the cookie
// mirror, never the durable store: a page decision must not depend on
// redis being reachable. Requests to public paths pass through, except
// that an authenticated visitor asking for the login page is sent to
// the landing route instead. Everything else needs a structurally
// valid, unexpired session or is redirected to login with the cookie
// deleted.
func EdgeGuard(mirror *cookierepo.Mirror, cfg config.SessionConfig, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec, err := mirror.Read(r)
			authenticated := err == nil && session.IsValid(rec, time.Now())

			if isPublicPath(r.URL.Path, cfg.PublicPaths) {
				if authenticated && r.URL.Path == cfg.LoginRoute {
					http.Redirect(w, r, cfg.LandingRoute, http.StatusFound)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if !authenticated {
				if err != nil && log != nil {
					log.Debug("edge guard cookie unusable", zap.Error(err))
				}
				mirror.Clear(w)
				http.Redirect(w, r, cfg.LoginRoute, http.StatusFound)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithRecord(r.Context(), *rec)))
		})
	}
}

// isPublicPath matches exact entries, and treats entries ending in "/"
// as prefixes.
func isPublicPath(path string, public []string) bool {
	for _, p := range public {
		if strings.HasSuffix(p, "/") {
			if strings.HasPrefix(path, p) {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			if log != nil {
				log.Info("http_request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Duration("duration", time.Since(start)),
				)
			}
		})
	}
}

type chiRouter interface {
	Use(middlewares ...func(http.Handler) http.Handler)
}
