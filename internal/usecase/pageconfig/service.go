// Package pageconfig serves resolved page configurations from a store through an expiring cache.
package pageconfig

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/wildone/asset-share-commons/internal/domain"
	dompc "github.com/wildone/asset-share-commons/internal/domain/pageconfig"
	"github.com/wildone/asset-share-commons/internal/metrics"
)

// Service resolves page configurations. Concurrent loads of the same page share one store read.
type Service struct {
	store  Store
	cache  *expirable.LRU[string, dompc.Config]
	loads  singleflight.Group
	logger *zap.Logger
}

// New creates a config service caching up to size pages for ttl. size 0 disables caching.
func New(store Store, size int, ttl time.Duration, logger *zap.Logger) *Service {
	s := &Service{store: store, logger: logger}
	if size > 0 {
		s.cache = expirable.NewLRU[string, dompc.Config](size, nil, ttl)
	}
	return s
}

// Get returns the resolved configuration of pageID. A page without stored properties
// resolves to the defaults; store failures are returned.
func (s *Service) Get(ctx context.Context, pageID string) (dompc.Config, error) {
	if s.cache != nil {
		if cfg, ok := s.cache.Get(pageID); ok {
			metrics.PageConfigCacheTotal.WithLabelValues("hit").Inc()
			return cfg, nil
		}
		metrics.PageConfigCacheTotal.WithLabelValues("miss").Inc()
	}

	v, err, shared := s.loads.Do(pageID, func() (any, error) {
		return s.load(ctx, pageID)
	})
	if err != nil {
		return dompc.Config{}, err
	}
	if shared {
		s.logger.Debug("Shared page config load", zap.String("page", pageID))
	}
	return v.(dompc.Config), nil
}

// Invalidate drops the cached configuration of pageID.
func (s *Service) Invalidate(pageID string) {
	if s.cache != nil {
		s.cache.Remove(pageID)
	}
}

func (s *Service) load(ctx context.Context, pageID string) (dompc.Config, error) {
	props, err := s.store.Get(ctx, pageID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.logger.Debug("No stored page config, using defaults", zap.String("page", pageID))
		props = nil
	case err != nil:
		return dompc.Config{}, fmt.Errorf("load page config %q: %w", pageID, err)
	}

	cfg := dompc.Resolve(props)
	if s.cache != nil {
		s.cache.Add(pageID, cfg)
	}
	return cfg, nil
}
