package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wildone/asset-share-commons/internal/db"
	"github.com/wildone/asset-share-commons/internal/domain"
	"github.com/wildone/asset-share-commons/internal/domain/pageconfig"
	"github.com/wildone/asset-share-commons/internal/domain/search/predicate"
	"github.com/wildone/asset-share-commons/internal/domain/search/result"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SupportsTextSearch(ctx context.Context) bool
}

// Repo implements usecase/search.Backend over the asset index.
type Repo struct {
	store store
	index *db.IndexDefinition
	now   func() time.Time
}

// New creates a search repository for the named asset index.
func New(s store, indexName string) *Repo {
	return &Repo{store: s, index: AssetIndex(indexName), now: time.Now}
}

// IndexName returns the name of the asset index.
func (r *Repo) IndexName() string { return r.index.Name }

// Schema renders the asset index definition as an FT.CREATE command.
func (r *Repo) Schema() string { return r.index.String() }

// EnsureIndex creates the asset index when it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.index.Name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.index.Name, err)
	}
	if exists {
		return nil
	}
	if err := r.store.CreateIndex(ctx, r.index); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", r.index.Name, err)
	}
	return nil
}

// Search runs the predicate tree against the asset index. Hits are returned as
// asset paths in backend order.
func (r *Repo) Search(ctx context.Context, tree predicate.Group) (*result.Matches, error) {
	t := &translator{index: r.index, textSearch: r.store.SupportsTextSearch(ctx)}
	p, err := t.translate(tree)
	if err != nil {
		return nil, err
	}

	q := &db.SearchQuery{
		IndexName: r.index.Name,
		Query:     p.query,
		SortBy:    p.sortBy,
		SortOrder: p.sortOrder,
		Offset:    p.offset,
		Limit:     p.limit,
	}

	start := r.now()
	sr, err := r.store.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w: %w", r.index.Name, domain.ErrBackendUnavailable, err)
	}
	elapsed := r.now().Sub(start)

	hits := make([]string, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		hits = append(hits, strings.TrimPrefix(e.Key, domain.AssetKeyPrefix))
	}

	total, guessed := capTotal(int64(sr.Total), p.guessTotal, p.offset+len(hits))

	return &result.Matches{
		Hits:      hits,
		Total:     total,
		Guessed:   guessed,
		Offset:    p.offset,
		Limit:     p.limit,
		Elapsed:   elapsed,
		Statement: statement(q),
	}, nil
}

// capTotal applies a numeric guess total: totals above it are reported as the
// cap, or as the number of matches seen so far when that is larger.
func capTotal(total int64, guessTotal string, seen int) (int64, bool) {
	if guessTotal == pageconfig.GuessTotalContinuous {
		return total, false
	}
	n, err := strconv.ParseInt(guessTotal, 10, 64)
	if err != nil || total <= n {
		return total, false
	}
	return max(n, int64(seen)), true
}

// statement renders the executed query for debug output.
func statement(q *db.SearchQuery) string {
	var sb strings.Builder
	sb.WriteString("FT.SEARCH ")
	sb.WriteString(q.IndexName)
	sb.WriteString(" '")
	sb.WriteString(q.Query)
	sb.WriteString("'")
	if q.SortBy != "" {
		sb.WriteString(" SORTBY ")
		sb.WriteString(q.SortBy)
		sb.WriteString(" ")
		sb.WriteString(string(q.SortOrder))
	}
	sb.WriteString(" LIMIT ")
	sb.WriteString(strconv.Itoa(q.Offset))
	sb.WriteString(" ")
	sb.WriteString(strconv.Itoa(q.Limit))
	return sb.String()
}

// CheckIndex reports an error when the asset index is missing or unreachable.
func (r *Repo) CheckIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.index.Name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.index.Name, err)
	}
	if !exists {
		return fmt.Errorf("index %s: %w", r.index.Name, db.ErrIndexNotFound)
	}
	return nil
}
