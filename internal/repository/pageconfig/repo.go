package pageconfig

import (
	"context"
	"fmt"

	"github.com/wildone/asset-share-commons/internal/domain"
	dompc "github.com/wildone/asset-share-commons/internal/domain/pageconfig"
)

// store is the consumer interface for page hashes (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
}

// Repo keeps page configurations as hashes under asc:page:{id}.
type Repo struct {
	store store
}

// New creates a page configuration repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Get implements usecase/pageconfig.Store.
func (r *Repo) Get(ctx context.Context, pageID string) (dompc.Properties, error) {
	key := domain.PageKey(pageID)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return nil, domain.ErrNotFound
	}
	return dompc.Properties(m), nil
}

// Save replaces the stored properties of a page.
func (r *Repo) Save(ctx context.Context, pageID string, props dompc.Properties) error {
	key := domain.PageKey(pageID)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if len(props) == 0 {
		return nil
	}
	if err := r.store.HSet(ctx, key, props); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}
