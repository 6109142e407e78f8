package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	HashStore
	IndexManager
	Searcher
	SessionOpener
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SupportsTextSearch(ctx context.Context) bool
}

// Searcher runs FT.SEARCH queries.
type Searcher interface {
	Search(ctx context.Context, q *SearchQuery) (*SearchResult, error)
}

// Session is a connection pinned for the lifetime of one unit of work.
// Close releases it and is safe to call more than once.
type Session interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Close()
}

// SessionOpener hands out pinned sessions.
type SessionOpener interface {
	Session(ctx context.Context) (Session, error)
}
