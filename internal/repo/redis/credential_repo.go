package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/highway905/awi-gateway/internal/domain/model"
)

const (
	credentialPrefix = "userCred:"
	scopePrefix      = "warehouses:"
)

// ErrCorruptRecord marks a stored record that no longer decodes. The
// caller treats it as absent and clears both stores.
var ErrCorruptRecord = errors.New("corrupt credential record")

// CredentialRepo is the durable side of the session mirror. Records are
// keyed by a digest of the bearer token; a secondary scope key holds
// only the warehouse identifiers for consumers that never need the full
// record.
type CredentialRepo struct {
	client *goredis.Client
}

func NewCredentialRepo(client *goredis.Client) *CredentialRepo {
	return &CredentialRepo{client: client}
}

func (r *CredentialRepo) Save(ctx context.Context, rec model.SessionRecord, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if rec.Token == "" {
		return fmt.Errorf("session record has no token")
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}
	scopes, err := json.Marshal(rec.WarehouseIDs)
	if err != nil {
		return fmt.Errorf("marshal warehouse scopes: %w", err)
	}

	digest := tokenDigest(rec.Token)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, credentialKey(digest), payload, ttl)
	pipe.Set(ctx, scopeKey(digest), scopes, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save credential record: %w", err)
	}

	return nil
}

// Load returns the stored record for a token, or nil when no record
// exists. A record that fails to decode returns ErrCorruptRecord.
func (r *CredentialRepo) Load(ctx context.Context, token string) (*model.SessionRecord, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}

	payload, err := r.client.Get(ctx, credentialKey(tokenDigest(token))).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential record: %w", err)
	}

	var rec model.SessionRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, ErrCorruptRecord
	}

	return &rec, nil
}

// Scopes returns the warehouse identifiers stored under the secondary
// scope key, without touching the full record.
func (r *CredentialRepo) Scopes(ctx context.Context, token string) ([]string, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}

	payload, err := r.client.Get(ctx, scopeKey(tokenDigest(token))).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get warehouse scopes: %w", err)
	}

	var scopes []string
	if err := json.Unmarshal(payload, &scopes); err != nil {
		return nil, ErrCorruptRecord
	}

	return scopes, nil
}

// Delete removes both keys for a token. Deleting an absent record is
// not an error.
func (r *CredentialRepo) Delete(ctx context.Context, token string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	digest := tokenDigest(token)
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, credentialKey(digest))
	pipe.Del(ctx, scopeKey(digest))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete credential record: %w", err)
	}

	return nil
}

// SweepOrphanedScopes deletes scope keys whose credential key has
// already expired. Redis TTLs expire both keys together in the normal
// case; the sweep covers credential keys removed out of band.
func (r *CredentialRepo) SweepOrphanedScopes(ctx context.Context) (int64, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}

	var removed int64
	iter := r.client.Scan(ctx, 0, scopePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		digest := key[len(scopePrefix):]

		exists, err := r.client.Exists(ctx, credentialKey(digest)).Result()
		if err != nil {
			return removed, fmt.Errorf("check credential key: %w", err)
		}
		if exists > 0 {
			continue
		}

		if err := r.client.Del(ctx, key).Err(); err != nil {
			return removed, fmt.Errorf("delete orphaned scope key: %w", err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("scan scope keys: %w", err)
	}

	return removed, nil
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func credentialKey(digest string) string { return credentialPrefix + digest }
func scopeKey(digest string) string      { return scopePrefix + digest }
