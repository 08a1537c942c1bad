package model

import "time"

// SessionRecord is the persisted proof of authentication issued by the
// upstream login endpoint. One logical copy exists per browser context,
// materialized into the durable store and the cookie mirror; the two are
// written and cleared in lockstep.
type SessionRecord struct {
	Token            string     `json:"token"`
	RefreshToken     string     `json:"refreshToken,omitempty"`
	ExpiryDate       *time.Time `json:"expiryDate,omitempty"`
	ExpiresInMinutes int        `json:"expiresInMinutes,omitempty"`
	UserID           string     `json:"userId,omitempty"`
	Role             string     `json:"role,omitempty"`
	WarehouseIDs     []string   `json:"warehouseIds,omitempty"`
	SecurityStamp    string     `json:"securityStamp,omitempty"`
}

type Warehouse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}
