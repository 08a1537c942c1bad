package dto

import (
	"time"

	"github.com/highway905/awi-gateway/internal/domain/model"
)

// SessionResponse is the introspection view of a session. It never
// carries the access or refresh tokens.
type SessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	UserID        string     `json:"userId,omitempty"`
	Role          string     `json:"role,omitempty"`
	WarehouseIDs  []string   `json:"warehouseIds,omitempty"`
	ExpiryDate    *time.Time `json:"expiryDate,omitempty"`
}

func SessionFromRecord(rec model.SessionRecord) SessionResponse {
	return SessionResponse{
		Authenticated: true,
		UserID:        rec.UserID,
		Role:          rec.Role,
		WarehouseIDs:  rec.WarehouseIDs,
		ExpiryDate:    rec.ExpiryDate,
	}
}
