package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/highway905/awi-gateway/internal/domain/model"
)

// AuditRepo is an append-only trail of login and logout activity. The
// gateway runs without it when postgres is down; callers must treat the
// repo as optional.
type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Record(ctx context.Context, entry model.LoginAudit) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(entry.Outcome) == "" {
		return fmt.Errorf("audit outcome is required")
	}

	at := entry.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO login_audit (email, outcome, trace_id, occurred_at)
VALUES ($1, $2, $3, $4)
`, strings.ToLower(strings.TrimSpace(entry.Email)), entry.Outcome, entry.TraceID, at); err != nil {
		return fmt.Errorf("record login audit: %w", err)
	}

	return nil
}

func (r *AuditRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM login_audit WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale login audit: %w", err)
	}

	return tag.RowsAffected(), nil
}
