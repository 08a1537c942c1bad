package model

import "time"

// Login audit outcomes. One row is written per login attempt regardless
// of which path the attempt failed on.
const (
	AuditOutcomeSuccess           = "success"
	AuditOutcomeInvalidCredential = "invalid_credentials"
	AuditOutcomeValidationFailed  = "validation_failed"
	AuditOutcomeServerError       = "server_error"
	AuditOutcomeUnreachable       = "unreachable"
	AuditOutcomeEncryptionFailed  = "encryption_failed"
	AuditOutcomeLogout            = "logout"
)

type LoginAudit struct {
	Email   string    `json:"email"`
	Outcome string    `json:"outcome"`
	TraceID string    `json:"trace_id"`
	At      time.Time `json:"at"`
}
