package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	authsvc "github.com/highway905/awi-gateway/internal/services/auth"
	"github.com/highway905/awi-gateway/internal/services/credentials"
	"github.com/highway905/awi-gateway/internal/transport/http/dto"
	httperrors "github.com/highway905/awi-gateway/internal/transport/http/errors"
)

type AuthHandler struct {
	service      *authsvc.Service
	creds        *credentials.Store
	landingRoute string
	loginRoute   string
	log          *zap.Logger
}

func NewAuthHandler(service *authsvc.Service, creds *credentials.Store, landingRoute, loginRoute string, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{
		service:      service,
		creds:        creds,
		landingRoute: landingRoute,
		loginRoute:   loginRoute,
		log:          log,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.service == nil || h.creds == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	rec, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleLoginError(w, r, err)
		return
	}

	if err := h.creds.Save(r.Context(), w, *rec); err != nil {
		h.log.Error("persist session after login", zap.Error(err))
		writeInternal(w, "SESSION_STORE_ERROR", "failed to persist session")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LoginResponse{
		Redirect: h.landingRoute,
		Session:  dto.SessionFromRecord(*rec),
	})
}

// Logout is idempotent: the upstream call is best effort and local
// state is cleared regardless of what the request carried.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.creds != nil {
		if rec, err := h.creds.Load(r.Context(), r); err == nil && rec != nil && h.service != nil {
			h.service.Logout(r.Context(), rec.Token)
		}
		h.creds.Clear(r.Context(), w, r)
	}

	httperrors.Write(w, http.StatusOK, dto.LogoutResponse{Redirect: h.loginRoute})
}

func (h *AuthHandler) handleLoginError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErr *authsvc.FieldValidationError
	switch {
	case errors.Is(err, authsvc.ErrEmptyCredentials):
		writeBadRequest(w, "VALIDATION_ERROR", "email and password are required")
	case errors.As(err, &fieldErr):
		h.clearStale(w, r)
		fields := make(map[string]string, len(fieldErr.Fields))
		for _, fe := range fieldErr.Fields {
			fields[fe.Key] = fe.Value
		}
		httperrors.Write(w, http.StatusUnauthorized, httperrors.ValidationError{
			Code:    "INVALID_CREDENTIALS",
			Message: fieldErr.Error(),
			Fields:  fields,
		})
	case authsvc.IsServerRejection(err):
		h.clearStale(w, r)
		message := "invalid email or password"
		var serverErr *authsvc.ServerMessageError
		if errors.As(err, &serverErr) {
			message = serverErr.Message
		}
		writeUnauthorized(w, "INVALID_CREDENTIALS", message)
	case errors.Is(err, authsvc.ErrUpstreamUnreachable):
		httperrors.Write(w, http.StatusBadGateway, httperrors.APIError{
			Code:    "UPSTREAM_UNREACHABLE",
			Message: "authentication service is unreachable",
		})
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

// clearStale drops any previously stored credentials once the upstream
// has rejected a fresh login attempt.
func (h *AuthHandler) clearStale(w http.ResponseWriter, r *http.Request) {
	if h.creds != nil {
		h.creds.Clear(r.Context(), w, r)
	}
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}
