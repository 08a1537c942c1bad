package credentials

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/highway905/awi-gateway/internal/domain/model"
	"github.com/highway905/awi-gateway/internal/repo/cookie"
	redisrepo "github.com/highway905/awi-gateway/internal/repo/redis"
)

// ErrCorrupt reports stored credentials that are present but unusable:
// an undecodable cookie or durable record, or a cookie whose durable
// twin has disappeared. Callers clear both stores and fall back to the
// unauthenticated path; the condition is never surfaced as a user error.
var ErrCorrupt = errors.New("stored credentials unusable")

type DurableStore interface {
	Save(ctx context.Context, rec model.SessionRecord, ttl time.Duration) error
	Load(ctx context.Context, token string) (*model.SessionRecord, error)
	Scopes(ctx context.Context, token string) ([]string, error)
	Delete(ctx context.Context, token string) error
}

type Mirror interface {
	Write(w http.ResponseWriter, rec model.SessionRecord) error
	Read(r *http.Request) (*model.SessionRecord, error)
	Clear(w http.ResponseWriter)
}

// Store keeps the two physical session stores in lockstep: every save
// writes both the durable record and the cookie mirror, every clear
// clears both. Nothing else in the gateway touches either store
// directly.
type Store struct {
	durable DurableStore
	mirror  Mirror
	ttl     time.Duration
	log     *zap.Logger
}

func NewStore(durable DurableStore, mirror Mirror, ttl time.Duration, log *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{durable: durable, mirror: mirror, ttl: ttl, log: log}
}

// Save persists the record to the durable store and then mirrors it
// into the cookie. The durable write goes first so a failure leaves
// both stores untouched.
func (s *Store) Save(ctx context.Context, w http.ResponseWriter, rec model.SessionRecord) error {
	if err := s.durable.Save(ctx, rec, s.ttl); err != nil {
		return fmt.Errorf("save durable credentials: %w", err)
	}
	if err := s.mirror.Write(w, rec); err != nil {
		// Undo the durable half so the stores do not diverge.
		if delErr := s.durable.Delete(ctx, rec.Token); delErr != nil {
			s.log.Warn("rollback of durable credentials failed", zap.Error(delErr))
		}
		return fmt.Errorf("mirror credentials to cookie: %w", err)
	}
	return nil
}

// Load reads the cookie, then cross-checks the durable store and
// returns the durable copy. Plain absence is (nil, nil); anything
// present but broken is ErrCorrupt so the caller knows to clear.
func (s *Store) Load(ctx context.Context, r *http.Request) (*model.SessionRecord, error) {
	mirrored, err := s.mirror.Read(r)
	if errors.Is(err, cookie.ErrDecode) {
		return nil, ErrCorrupt
	}
	if err != nil {
		return nil, fmt.Errorf("read cookie mirror: %w", err)
	}
	if mirrored == nil {
		return nil, nil
	}

	stored, err := s.durable.Load(ctx, mirrored.Token)
	if errors.Is(err, redisrepo.ErrCorruptRecord) {
		return nil, ErrCorrupt
	}
	if err != nil {
		return nil, fmt.Errorf("load durable credentials: %w", err)
	}
	if stored == nil {
		// Cookie without a durable twin: the stores diverged, most
		// likely a server-side invalidation.
		return nil, ErrCorrupt
	}

	return stored, nil
}

// Scopes returns the warehouse identifiers for the current session
// without materializing the full record.
func (s *Store) Scopes(ctx context.Context, r *http.Request) ([]string, error) {
	mirrored, err := s.mirror.Read(r)
	if err != nil || mirrored == nil {
		return nil, nil
	}
	scopes, err := s.durable.Scopes(ctx, mirrored.Token)
	if errors.Is(err, redisrepo.ErrCorruptRecord) {
		return nil, nil
	}
	return scopes, err
}

// Clear removes both halves of the mirror. The cookie is always
// expired; the durable record is deleted when the cookie still yields a
// token. Clearing an already-empty store is a no-op.
func (s *Store) Clear(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if mirrored, err := s.mirror.Read(r); err == nil && mirrored != nil && mirrored.Token != "" {
		if err := s.durable.Delete(ctx, mirrored.Token); err != nil {
			s.log.Warn("clear durable credentials failed", zap.Error(err))
		}
	}
	s.mirror.Clear(w)
}
