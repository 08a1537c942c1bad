package lookup

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/highway905/awi-gateway/internal/domain/model"
	redisrepo "github.com/highway905/awi-gateway/internal/repo/redis"
)

type fakeFetcher struct {
	calls      int
	lastBearer string
	result     []model.Warehouse
	err        error
}

func (f *fakeFetcher) Warehouses(_ context.Context, bearer string) ([]model.Warehouse, error) {
	f.calls++
	f.lastBearer = bearer
	return f.result, f.err
}

func newTestCache(t *testing.T) *redisrepo.CacheRepo[[]model.Warehouse] {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisrepo.NewCacheRepo[[]model.Warehouse](client, "warehouses:list", 5*time.Minute)
}

var testWarehouses = []model.Warehouse{
	{ID: "wh-1", Name: "Newark DC", Code: "EWR1"},
	{ID: "wh-2", Name: "Fontana DC", Code: "ONT2"},
}

func TestWarehousesFetchesOnceWhileFresh(t *testing.T) {
	fetcher := &fakeFetcher{result: testWarehouses}
	svc := NewService(newTestCache(t), fetcher, zap.NewNop())
	ctx := context.Background()

	first, err := svc.Warehouses(ctx, "tok", false)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := svc.Warehouses(ctx, "tok", false)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if fetcher.calls != 1 {
		t.Fatalf("expected a single upstream fetch, got %d", fetcher.calls)
	}
	if fetcher.lastBearer != "tok" {
		t.Fatalf("bearer not forwarded: %q", fetcher.lastBearer)
	}
	if !reflect.DeepEqual(first, testWarehouses) || !reflect.DeepEqual(second, testWarehouses) {
		t.Fatalf("payload mismatch: %v / %v", first, second)
	}
}

func TestWarehousesRefreshBypassesCache(t *testing.T) {
	fetcher := &fakeFetcher{result: testWarehouses}
	svc := NewService(newTestCache(t), fetcher, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Warehouses(ctx, "tok", false); err != nil {
		t.Fatalf("warm call: %v", err)
	}
	if _, err := svc.Warehouses(ctx, "tok", true); err != nil {
		t.Fatalf("refresh call: %v", err)
	}

	if fetcher.calls != 2 {
		t.Fatalf("refresh must hit upstream, got %d calls", fetcher.calls)
	}
}

func TestWarehousesEmptyResultNotCached(t *testing.T) {
	fetcher := &fakeFetcher{result: nil}
	svc := NewService(newTestCache(t), fetcher, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Warehouses(ctx, "tok", false); err != nil {
		t.Fatalf("first call: %v", err)
	}
	fetcher.result = testWarehouses
	got, err := svc.Warehouses(ctx, "tok", false)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if fetcher.calls != 2 {
		t.Fatalf("empty payload must not be cached, got %d calls", fetcher.calls)
	}
	if !reflect.DeepEqual(got, testWarehouses) {
		t.Fatalf("payload mismatch: %v", got)
	}
}

func TestWarehousesFetchError(t *testing.T) {
	fetchErr := errors.New("upstream down")
	fetcher := &fakeFetcher{err: fetchErr}
	svc := NewService(newTestCache(t), fetcher, zap.NewNop())

	if _, err := svc.Warehouses(context.Background(), "tok", false); !errors.Is(err, fetchErr) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
}

func TestFilterByScope(t *testing.T) {
	got := FilterByScope(testWarehouses, []string{"wh-2"})
	if len(got) != 1 || got[0].ID != "wh-2" {
		t.Fatalf("scope filter mismatch: %v", got)
	}

	if got := FilterByScope(testWarehouses, nil); !reflect.DeepEqual(got, testWarehouses) {
		t.Fatalf("empty scope must pass through, got %v", got)
	}
}
