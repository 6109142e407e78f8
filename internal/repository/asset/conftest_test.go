package asset

import (
	"context"
	"testing"

	"github.com/wildone/asset-share-commons/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn    func(ctx context.Context, key string, fields map[string]string) error
	delFn     func(ctx context.Context, key string) error
	sessionFn func(ctx context.Context) (db.Session, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Session(ctx context.Context) (db.Session, error) {
	if m.sessionFn != nil {
		return m.sessionFn(ctx)
	}
	return &mockSession{}, nil
}

// mockSession serves hashes from a map.
type mockSession struct {
	hashes map[string]map[string]string
	err    error
	closed int
}

func (s *mockSession) HGetAll(_ context.Context, key string) (map[string]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.hashes[key], nil
}

func (s *mockSession) Close() { s.closed++ }

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}
