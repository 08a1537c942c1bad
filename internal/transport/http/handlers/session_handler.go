package handlers

import (
	"net/http"

	"github.com/highway905/awi-gateway/internal/services/session"
	"github.com/highway905/awi-gateway/internal/transport/http/dto"
	httperrors "github.com/highway905/awi-gateway/internal/transport/http/errors"
)

type SessionHandler struct{}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// Get reports who the current session belongs to, without tokens.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, ok := session.RecordFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SessionFromRecord(rec))
}
