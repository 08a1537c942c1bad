package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type auditCleaner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type scopeSweeper interface {
	SweepOrphanedScopes(ctx context.Context) (int64, error)
}

// Job prunes expired login audit rows and sweeps scope keys whose
// credential record already expired. Both halves are optional; an
// unattached half is skipped.
type Job struct {
	audit     auditCleaner
	sweeper   scopeSweeper
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func New(retention time.Duration, logger *zap.Logger) *Job {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{
		retention: retention,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) AttachAudit(cleaner auditCleaner) {
	j.audit = cleaner
}

func (j *Job) AttachScopeSweeper(sweeper scopeSweeper) {
	j.sweeper = sweeper
}

// Run executes a single cleanup pass.
func (j *Job) Run(ctx context.Context) error {
	if j.audit != nil {
		cutoff := j.now().Add(-j.retention)
		rows, err := j.audit.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("prune login audit: %w", err)
		}
		if rows > 0 {
			j.logger.Info("pruned login audit rows", zap.Int64("deleted", rows))
		}
	}

	if j.sweeper != nil {
		swept, err := j.sweeper.SweepOrphanedScopes(ctx)
		if err != nil {
			return fmt.Errorf("sweep orphaned scopes: %w", err)
		}
		if swept > 0 {
			j.logger.Info("swept orphaned scope keys", zap.Int64("swept", swept))
		}
	}

	return nil
}

// Start runs cleanup passes on a fixed interval until the context is
// canceled.
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Warn("cleanup pass failed", zap.Error(err))
			}
		}
	}
}
