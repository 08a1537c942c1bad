package session

import (
	"context"

	"github.com/highway905/awi-gateway/internal/domain/model"
)

type recordContextKey string

const recordKey recordContextKey = "session_record"

// WithRecord stores the validated session record for downstream
// handlers (session introspection, bearer injection on proxied calls).
func WithRecord(ctx context.Context, rec model.SessionRecord) context.Context {
	return context.WithValue(ctx, recordKey, rec)
}

func RecordFromContext(ctx context.Context) (model.SessionRecord, bool) {
	rec, ok := ctx.Value(recordKey).(model.SessionRecord)
	return rec, ok
}
