package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/wildone/asset-share-commons/internal/db"
)

// Search runs a paginated FT.SEARCH.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	args, err := buildSearchArgs(q)
	if err != nil {
		return nil, err
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") {
			return nil, &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseKeysResult(raw)
}

func buildSearchArgs(q *db.SearchQuery) ([]string, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return nil, fmt.Errorf("offset and limit must not be negative")
	}

	query := q.Query
	if query == "" {
		query = "*"
	}
	args := []string{q.IndexName, query, "NOCONTENT"}

	if q.SortBy != "" {
		order := q.SortOrder
		if order == "" {
			order = db.SortAsc
		}
		args = append(args, "SORTBY", q.SortBy, string(order))
	}

	args = append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)
	return args, nil
}

// --- Result parsing ---

// parseKeysResult reads a NOCONTENT reply: [total, key1, key2, ...].
func parseKeysResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	entries := make([]db.SearchEntry, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		entries = append(entries, db.SearchEntry{Key: key})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}
