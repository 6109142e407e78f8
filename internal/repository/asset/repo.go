package asset

import (
	"context"
	"fmt"
	"path"

	"github.com/wildone/asset-share-commons/internal/db"
	"github.com/wildone/asset-share-commons/internal/domain"
	"github.com/wildone/asset-share-commons/internal/domain/search/result"
	ussearch "github.com/wildone/asset-share-commons/internal/usecase/search"
)

// store is the consumer interface for asset hashes (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error
	Session(ctx context.Context) (db.Session, error)
}

// Repo stores asset hashes and resolves them through pinned sessions.
type Repo struct {
	store store
}

// New creates an asset repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Save writes the asset hash, including the derived index fields.
func (r *Repo) Save(ctx context.Context, a *result.Asset) error {
	key := domain.AssetKey(a.Path())
	if err := r.store.HSet(ctx, key, buildHashFields(a)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Delete removes the asset stored at p.
func (r *Repo) Delete(ctx context.Context, p string) error {
	key := domain.AssetKey(path.Clean(p))
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// OpenSession implements usecase/search.SessionOpener.
func (r *Repo) OpenSession(ctx context.Context) (ussearch.Session, error) {
	s, err := r.store.Session(ctx)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return &session{db: s}, nil
}

// session resolves hit paths over one pinned connection.
type session struct {
	db db.Session
}

func (s *session) Resolve(ctx context.Context, p string) (result.Asset, error) {
	key := domain.AssetKey(p)
	fields, err := s.db.HGetAll(ctx, key)
	if err != nil {
		return result.Asset{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(fields) == 0 {
		return result.Asset{}, fmt.Errorf("asset %s: %w", p, domain.ErrNotFound)
	}
	return parseHashFields(p, fields)
}

func (s *session) Close() { s.db.Close() }
