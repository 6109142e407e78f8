package search

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/wildone/asset-share-commons/internal/db"
	"github.com/wildone/asset-share-commons/internal/domain"
	"github.com/wildone/asset-share-commons/internal/domain/search/predicate"
)

// --- Search ---

func TestSearch_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchFn = func(_ context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
		return &db.SearchResult{
			Total: 10,
			Entries: []db.SearchEntry{
				{Key: "asc:asset:/content/dam/b.png"},
				{Key: "asc:asset:/content/dam/a.png"},
			},
		}, nil
	}

	tree := predicate.Parse(map[string]string{
		"type":         "dam:Asset",
		"path":         "/content/dam",
		"p.limit":      "2",
		"orderby":      "@jcr:content/jcr:lastModified",
		"orderby.sort": "desc",
	})
	m, err := repo.Search(context.Background(), tree)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(m.Hits, []string{"/content/dam/b.png", "/content/dam/a.png"}) {
		t.Errorf("hits = %v", m.Hits)
	}
	if m.Total != 10 || m.Guessed {
		t.Errorf("total = %d guessed = %v", m.Total, m.Guessed)
	}
	if m.Offset != 0 || m.Limit != 2 {
		t.Errorf("paging = %d/%d", m.Offset, m.Limit)
	}
	if m.Elapsed != 5*time.Millisecond {
		t.Errorf("elapsed = %v", m.Elapsed)
	}
	if !strings.HasPrefix(m.Statement, "FT.SEARCH "+DefaultIndexName) || !strings.Contains(m.Statement, "SORTBY modified DESC") {
		t.Errorf("statement = %q", m.Statement)
	}

	q := ms.lastQuery
	if q.IndexName != DefaultIndexName {
		t.Errorf("unexpected query: %+v", q)
	}
	if q.SortBy != FieldModified || q.SortOrder != db.SortDesc || q.Limit != 2 {
		t.Errorf("unexpected query: %+v", q)
	}
}

func TestSearch_GuessTotalCaps(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(context.Context, *db.SearchQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 5000, Entries: []db.SearchEntry{{Key: "asc:asset:/content/dam/a.png"}}}, nil
	}

	m, err := repo.Search(context.Background(), predicate.Parse(map[string]string{
		"path": "/content/dam", "p.guessTotal": "100",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Total != 100 || !m.Guessed {
		t.Errorf("total = %d guessed = %v, want 100 true", m.Total, m.Guessed)
	}
}

func TestCapTotal(t *testing.T) {
	tests := []struct {
		name        string
		total       int64
		guessTotal  string
		seen        int
		want        int64
		wantGuessed bool
	}{
		{"below cap", 80, "100", 10, 80, false},
		{"at cap", 100, "100", 10, 100, false},
		{"above cap", 5000, "100", 30, 100, true},
		{"seen past cap", 5000, "100", 150, 150, true},
		{"continuous", 5000, "true", 10, 5000, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, guessed := capTotal(tc.total, tc.guessTotal, tc.seen)
			if got != tc.want || guessed != tc.wantGuessed {
				t.Errorf("capTotal = %d/%v, want %d/%v", got, guessed, tc.want, tc.wantGuessed)
			}
		})
	}
}

func TestSearch_InvalidQueryNeverReachesStore(t *testing.T) {
	repo, ms := newTestRepo(t)

	_, err := repo.Search(context.Background(), predicate.Parse(map[string]string{"nodename": "x"}))
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
	if ms.lastQuery != nil {
		t.Error("store must not be called")
	}
}

func TestSearch_FulltextNotSupported(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.textSearch = false

	_, err := repo.Search(context.Background(), predicate.Parse(map[string]string{"fulltext": "cat"}))
	if !errors.Is(err, domain.ErrFulltextNotSupported) {
		t.Fatalf("expected ErrFulltextNotSupported, got %v", err)
	}
}

func TestSearch_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	storeErr := &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}
	ms.searchFn = func(context.Context, *db.SearchQuery) (*db.SearchResult, error) {
		return nil, storeErr
	}

	_, err := repo.Search(context.Background(), predicate.Parse(map[string]string{"path": "/content/dam"}))
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Errorf("expected ErrBackendUnavailable, got %v", err)
	}
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("store error must stay in the chain, got %v", err)
	}
}

// --- EnsureIndex ---

func TestEnsureIndex(t *testing.T) {
	tests := []struct {
		name        string
		exists      bool
		existsErr   error
		createErr   error
		wantCreated int
		wantErr     bool
	}{
		{"exists", true, nil, nil, 0, false},
		{"missing", false, nil, nil, 1, false},
		{"created concurrently", false, nil, db.ErrIndexExists, 1, false},
		{"existence check fails", false, errors.New("conn refused"), nil, 0, true},
		{"create fails", false, nil, errors.New("boom"), 1, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo, ms := newTestRepo(t)
			ms.indexExistsFn = func(_ context.Context, name string) (bool, error) {
				if name != DefaultIndexName {
					t.Errorf("unexpected index %q", name)
				}
				return tc.exists, tc.existsErr
			}
			ms.createIndexFn = func(context.Context, *db.IndexDefinition) error { return tc.createErr }

			err := repo.EnsureIndex(context.Background())
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if ms.created != tc.wantCreated {
				t.Errorf("created %d times, want %d", ms.created, tc.wantCreated)
			}
		})
	}
}

func TestSchema(t *testing.T) {
	repo, _ := newTestRepo(t)
	s := repo.Schema()
	for _, want := range []string{"FT.CREATE " + DefaultIndexName, "PREFIX " + domain.AssetKeyPrefix, FieldModified + " NUMERIC SORTABLE"} {
		if !strings.Contains(s, want) {
			t.Errorf("Schema() = %q, missing %q", s, want)
		}
	}
}

func TestCheckIndex(t *testing.T) {
	repo, ms := newTestRepo(t)
	if err := repo.CheckIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ms.indexExistsFn = func(context.Context, string) (bool, error) { return false, nil }
	if err := repo.CheckIndex(context.Background()); !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}
