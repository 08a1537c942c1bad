package gwapp

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/highway905/awi-gateway/internal/services/credentials"
	"github.com/highway905/awi-gateway/internal/services/session"
	"github.com/highway905/awi-gateway/internal/transport/http/dto"
	httperrors "github.com/highway905/awi-gateway/internal/transport/http/errors"
)

// RequireSession authenticates API requests against both stores. The
// durable record is the one placed on the context: the cookie alone is
// never trusted for API work. Corrupt or diverged state is cleared
// before rejecting so the client starts clean.
func RequireSession(creds *credentials.Store, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if creds == nil {
				httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{
					Code:    "SESSION_STORE_UNAVAILABLE",
					Message: "session store is unavailable",
				})
				return
			}

			rec, err := creds.Load(r.Context(), r)
			if err != nil {
				if errors.Is(err, credentials.ErrCorrupt) {
					creds.Clear(r.Context(), w, r)
					writeUnauthorizedJSON(w)
					return
				}
				if log != nil {
					log.Error("session load failed", zap.Error(err))
				}
				httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{
					Code:    "SESSION_STORE_ERROR",
					Message: "failed to load session",
				})
				return
			}

			if err := session.Validate(rec, time.Now()); err != nil {
				if rec != nil {
					creds.Clear(r.Context(), w, r)
				}
				writeUnauthorizedJSON(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithRecord(r.Context(), *rec)))
		})
	}
}

// GuestOnly short-circuits the login endpoint for already-authenticated
// clients. The response mirrors a successful login so the front end
// follows the same redirect path either way.
func GuestOnly(creds *credentials.Store, landingRoute string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if creds != nil {
				rec, err := creds.Load(r.Context(), r)
				if err == nil && session.IsValid(rec, time.Now()) {
					httperrors.Write(w, http.StatusOK, dto.LoginResponse{
						Redirect: landingRoute,
						Session:  dto.SessionFromRecord(*rec),
					})
					return
				}
				// Unusable leftovers are dropped so the fresh login
				// starts from a clean slate.
				if errors.Is(err, credentials.ErrCorrupt) || rec != nil {
					creds.Clear(r.Context(), w, r)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorizedJSON(w http.ResponseWriter) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
		Code:    "UNAUTHORIZED",
		Message: "authentication required",
	})
}
