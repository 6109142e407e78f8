package pageconfig

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wildone/asset-share-commons/internal/domain"
	dompc "github.com/wildone/asset-share-commons/internal/domain/pageconfig"
)

type mockStore struct {
	getFn func(ctx context.Context, pageID string) (dompc.Properties, error)
	calls atomic.Int32
}

func (m *mockStore) Get(ctx context.Context, pageID string) (dompc.Properties, error) {
	m.calls.Add(1)
	return m.getFn(ctx, pageID)
}

func TestService_Get_Resolves(t *testing.T) {
	store := &mockStore{getFn: func(_ context.Context, _ string) (dompc.Properties, error) {
		return dompc.Properties{dompc.PropLimit: "20", dompc.PropPaths: "/content/dam/brand"}, nil
	}}
	svc := New(store, 10, time.Minute, zap.NewNop())

	cfg, err := svc.Get(context.Background(), "home")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Limit() != 20 || cfg.Paths()[0] != "/content/dam/brand" {
		t.Errorf("unexpected config: limit=%d paths=%v", cfg.Limit(), cfg.Paths())
	}
}

func TestService_Get_MissingPageUsesDefaults(t *testing.T) {
	store := &mockStore{getFn: func(_ context.Context, _ string) (dompc.Properties, error) {
		return nil, domain.ErrNotFound
	}}
	cfg, err := New(store, 10, time.Minute, zap.NewNop()).Get(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("missing page must not fail: %v", err)
	}
	if cfg.Limit() != dompc.DefaultLimit || cfg.OrderBy() != dompc.DefaultOrderBy {
		t.Errorf("expected defaults, got limit=%d orderBy=%q", cfg.Limit(), cfg.OrderBy())
	}
}

func TestService_Get_StoreError(t *testing.T) {
	storeErr := errors.New("connection refused")
	store := &mockStore{getFn: func(_ context.Context, _ string) (dompc.Properties, error) {
		return nil, storeErr
	}}
	svc := New(store, 10, time.Minute, zap.NewNop())

	if _, err := svc.Get(context.Background(), "home"); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "home"); err == nil {
		t.Error("failures must not be cached")
	}
	if store.calls.Load() != 2 {
		t.Errorf("store calls = %d, want 2", store.calls.Load())
	}
}

func TestService_Get_Caches(t *testing.T) {
	store := &mockStore{getFn: func(_ context.Context, _ string) (dompc.Properties, error) {
		return dompc.Properties{dompc.PropLimit: "10"}, nil
	}}
	svc := New(store, 10, time.Minute, zap.NewNop())

	for range 3 {
		if _, err := svc.Get(context.Background(), "home"); err != nil {
			t.Fatal(err)
		}
	}
	if store.calls.Load() != 1 {
		t.Errorf("store calls = %d, want 1", store.calls.Load())
	}

	svc.Invalidate("home")
	if _, err := svc.Get(context.Background(), "home"); err != nil {
		t.Fatal(err)
	}
	if store.calls.Load() != 2 {
		t.Errorf("store calls after invalidate = %d, want 2", store.calls.Load())
	}
}

func TestService_Get_CacheDisabled(t *testing.T) {
	store := &mockStore{getFn: func(_ context.Context, _ string) (dompc.Properties, error) {
		return nil, nil
	}}
	svc := New(store, 0, time.Minute, zap.NewNop())
	for range 2 {
		if _, err := svc.Get(context.Background(), "home"); err != nil {
			t.Fatal(err)
		}
	}
	if store.calls.Load() != 2 {
		t.Errorf("store calls = %d, want 2", store.calls.Load())
	}
	svc.Invalidate("home")
}

func TestService_Get_ConcurrentLoadsShared(t *testing.T) {
	release := make(chan struct{})
	store := &mockStore{getFn: func(_ context.Context, _ string) (dompc.Properties, error) {
		<-release
		return dompc.Properties{dompc.PropLimit: "15"}, nil
	}}
	svc := New(store, 10, time.Minute, zap.NewNop())

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cfg, err := svc.Get(context.Background(), "home")
			if err == nil && cfg.Limit() != 15 {
				err = errors.New("unexpected limit")
			}
			errs <- err
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Error(err)
		}
	}
	if calls := store.calls.Load(); calls < 1 || calls > n {
		t.Errorf("store calls = %d", calls)
	}
}
