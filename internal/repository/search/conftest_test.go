package search

import (
	"context"
	"testing"
	"time"

	"github.com/wildone/asset-share-commons/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn      func(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	textSearch    bool

	lastQuery *db.SearchQuery
	created   int
}

func (m *mockStore) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	m.lastQuery = q
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	m.created++
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return true, nil
}

func (m *mockStore) SupportsTextSearch(context.Context) bool {
	return m.textSearch
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{textSearch: true}
	repo := New(ms, "")
	tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		tick = tick.Add(5 * time.Millisecond)
		return tick
	}
	return repo, ms
}

func newTestTranslator(textSearch bool) *translator {
	return &translator{index: AssetIndex(""), textSearch: textSearch}
}
