package lookup

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/highway905/awi-gateway/internal/domain/model"
)

type Cache interface {
	Get(ctx context.Context) ([]model.Warehouse, bool, error)
	Set(ctx context.Context, payload []model.Warehouse) error
	Clear(ctx context.Context) error
}

type Fetcher interface {
	Warehouses(ctx context.Context, bearer string) ([]model.Warehouse, error)
}

// Service serves the warehouse dropdown data. The list changes rarely,
// so a fresh cache entry skips the upstream call entirely; a manual
// refresh invalidates the entry first.
type Service struct {
	cache   Cache
	fetcher Fetcher
	log     *zap.Logger
}

func NewService(cache Cache, fetcher Fetcher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{cache: cache, fetcher: fetcher, log: log}
}

func (s *Service) Warehouses(ctx context.Context, bearer string, refresh bool) ([]model.Warehouse, error) {
	if refresh {
		if err := s.cache.Clear(ctx); err != nil {
			s.log.Warn("warehouse cache clear failed", zap.Error(err))
		}
	} else {
		cached, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn("warehouse cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	fetched, err := s.fetcher.Warehouses(ctx, bearer)
	if err != nil {
		return nil, fmt.Errorf("fetch warehouses: %w", err)
	}

	if len(fetched) > 0 {
		if err := s.cache.Set(ctx, fetched); err != nil {
			s.log.Warn("warehouse cache write failed", zap.Error(err))
		}
	}

	return fetched, nil
}

// FilterByScope keeps only the warehouses the session is scoped to. An
// empty scope set passes everything through.
func FilterByScope(warehouses []model.Warehouse, scopes []string) []model.Warehouse {
	if len(scopes) == 0 {
		return warehouses
	}

	allowed := make(map[string]struct{}, len(scopes))
	for _, id := range scopes {
		allowed[id] = struct{}{}
	}

	filtered := make([]model.Warehouse, 0, len(warehouses))
	for _, wh := range warehouses {
		if _, ok := allowed[wh.ID]; ok {
			filtered = append(filtered, wh)
		}
	}
	return filtered
}
