package handlers

import (
	"net/http"

	lookupsvc "github.com/highway905/awi-gateway/internal/services/lookup"
	"github.com/highway905/awi-gateway/internal/services/session"
	"github.com/highway905/awi-gateway/internal/transport/http/dto"
	httperrors "github.com/highway905/awi-gateway/internal/transport/http/errors"
)

type LookupHandler struct {
	service *lookupsvc.Service
}

func NewLookupHandler(service *lookupsvc.Service) *LookupHandler {
	return &LookupHandler{service: service}
}

func (h *LookupHandler) Warehouses(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "LOOKUP_SERVICE_UNAVAILABLE", "lookup service is unavailable")
		return
	}

	rec, ok := session.RecordFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	refresh := r.URL.Query().Get("refresh") == "true"
	warehouses, err := h.service.Warehouses(r.Context(), rec.Token, refresh)
	if err != nil {
		httperrors.Write(w, http.StatusBadGateway, httperrors.APIError{
			Code:    "UPSTREAM_UNREACHABLE",
			Message: "warehouse lookup failed",
		})
		return
	}

	scoped := lookupsvc.FilterByScope(warehouses, rec.WarehouseIDs)
	httperrors.Write(w, http.StatusOK, dto.WarehousesFromModel(scoped))
}
