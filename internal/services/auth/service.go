package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/highway905/awi-gateway/internal/domain/model"
	"github.com/highway905/awi-gateway/internal/pkg/validate"
)

type Encryptor interface {
	Encrypt(plaintext string) (string, error)
}

type Upstream interface {
	Login(ctx context.Context, username, password, traceID string) (*LoginReply, error)
	Logout(ctx context.Context, bearer, traceID string) error
}

// AuditStore is optional; a nil store disables the trail without
// touching the login path.
type AuditStore interface {
	Record(ctx context.Context, entry model.LoginAudit) error
}

// Service runs the login and logout flows against the upstream
// warehouse API. One call is one logical attempt; there is no retry.
type Service struct {
	encryptor Encryptor
	upstream  Upstream
	audit     AuditStore
	log       *zap.Logger
	now       func() time.Time
}

func NewService(encryptor Encryptor, upstream Upstream, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		encryptor: encryptor,
		upstream:  upstream,
		log:       log,
		now:       time.Now,
	}
}

func (s *Service) AttachAudit(audit AuditStore) {
	s.audit = audit
}

// Login performs a single login attempt: local validation, credential
// encryption, the upstream exchange, and response classification. The
// returned record has not been persisted; the caller stores it before
// issuing any redirect.
func (s *Service) Login(ctx context.Context, email, password string) (*model.SessionRecord, error) {
	if !validate.Required(email) || !validate.Required(password) {
		return nil, ErrEmptyCredentials
	}

	normEmail := validate.NormalizeEmail(email)
	traceID := uuid.NewString()

	// The email is normalized before encryption; the password goes
	// through as-is.
	encUser, err := s.encryptor.Encrypt(normEmail)
	if err != nil {
		s.recordAudit(ctx, normEmail, model.AuditOutcomeEncryptionFailed, traceID)
		return nil, fmt.Errorf("encrypt username: %w", err)
	}
	encPass, err := s.encryptor.Encrypt(password)
	if err != nil {
		s.recordAudit(ctx, normEmail, model.AuditOutcomeEncryptionFailed, traceID)
		return nil, fmt.Errorf("encrypt password: %w", err)
	}

	reply, err := s.upstream.Login(ctx, encUser, encPass, traceID)
	if err != nil {
		s.recordAudit(ctx, normEmail, model.AuditOutcomeUnreachable, traceID)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}

	// The payload-level discriminator is authoritative: a 2xx
	// transport status carrying an error payload is a logical
	// failure, not a transport one.
	if reply.Success() {
		rec := s.buildRecord(reply)
		s.recordAudit(ctx, normEmail, model.AuditOutcomeSuccess, traceID)
		return rec, nil
	}

	if reply.Response.ValidationFailed && len(reply.Response.ValidationErrors) > 0 {
		s.recordAudit(ctx, normEmail, model.AuditOutcomeValidationFailed, traceID)
		return nil, &FieldValidationError{Fields: reply.Response.ValidationErrors}
	}

	if msg := reply.FailureMessage(); msg != "" {
		s.recordAudit(ctx, normEmail, model.AuditOutcomeServerError, traceID)
		return nil, &ServerMessageError{Message: msg}
	}

	s.recordAudit(ctx, normEmail, model.AuditOutcomeInvalidCredential, traceID)
	return nil, ErrInvalidCredentials
}

// Logout attempts the upstream invalidation and always succeeds
// locally: a dead network never keeps a caller logged in.
func (s *Service) Logout(ctx context.Context, bearer string) {
	traceID := uuid.NewString()
	if err := s.upstream.Logout(ctx, bearer, traceID); err != nil {
		s.log.Warn("upstream logout failed, clearing locally anyway",
			zap.Error(err), zap.String("trace_id", traceID))
	}
	s.recordAudit(ctx, "", model.AuditOutcomeLogout, traceID)
}

func (s *Service) buildRecord(reply *LoginReply) *model.SessionRecord {
	p := reply.Response
	rec := &model.SessionRecord{
		Token:            p.Token,
		RefreshToken:     p.RefreshToken,
		ExpiryDate:       p.ExpiryDate,
		ExpiresInMinutes: p.ExpiresInMinutes,
		UserID:           p.UserID,
		Role:             p.Role,
		SecurityStamp:    p.SecurityStamp,
	}
	for _, wh := range p.WarehouseIDs {
		if wh.ID != "" {
			rec.WarehouseIDs = append(rec.WarehouseIDs, wh.ID)
		}
	}

	if rec.ExpiryDate == nil {
		if exp := tokenExpiry(p.Token); exp != nil {
			rec.ExpiryDate = exp
		} else if p.ExpiresInMinutes > 0 {
			t := s.now().Add(time.Duration(p.ExpiresInMinutes) * time.Minute)
			rec.ExpiryDate = &t
		}
	}

	return rec
}

func (s *Service) recordAudit(ctx context.Context, email, outcome, traceID string) {
	if s.audit == nil {
		return
	}
	entry := model.LoginAudit{
		Email:   email,
		Outcome: outcome,
		TraceID: traceID,
		At:      s.now().UTC(),
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.log.Debug("login audit write failed", zap.Error(err))
	}
}
