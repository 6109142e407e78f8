package assetshare

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wildone/asset-share-commons/internal/db"
	dbRedis "github.com/wildone/asset-share-commons/internal/db/redis"
	assetrepo "github.com/wildone/asset-share-commons/internal/repository/asset"
	pcrepo "github.com/wildone/asset-share-commons/internal/repository/pageconfig"
	searchrepo "github.com/wildone/asset-share-commons/internal/repository/search"
	pageconfiguc "github.com/wildone/asset-share-commons/internal/usecase/pageconfig"
	batchuc "github.com/wildone/asset-share-commons/internal/usecase/batch"
	searchuc "github.com/wildone/asset-share-commons/internal/usecase/search"
	"github.com/wildone/asset-share-commons/internal/usecase/search/fragment"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the asset share search SDK entry point.
type Client struct {
	store      db.Store
	pages      *pcrepo.Repo
	configs    *pageconfiguc.Service
	searchRepo *searchrepo.Repo
	assets     *assetrepo.Repo
	batchSvc   *batchuc.Service
	searchSvc  *searchuc.Service
}

// New creates a Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("assetshare: database address required (use WithValkey or WithRedis)")
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("assetshare: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func createStore(cfg *clientConfig) (*dbRedis.Store, error) {
	var textSearch bool
	switch cfg.driver {
	case driverValkey:
	case driverRedis:
		textSearch = true
	default:
		return nil, fmt.Errorf("assetshare: unknown driver %q", cfg.driver)
	}

	s, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.addrs,
		Username:   cfg.username,
		Password:   cfg.password,
		DB:         cfg.db,
		TextSearch: textSearch,
	})
	if err != nil {
		return nil, fmt.Errorf("assetshare: create %s store: %w", cfg.driver, err)
	}
	return s, nil
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	pages := pcrepo.New(store)
	var pageStore pageconfiguc.Store = pages
	if len(cfg.pages) > 0 {
		pageStore = pcrepo.Chain{pages, pcrepo.NewStatic(cfg.pages)}
	}
	configs := pageconfiguc.New(pageStore, cfg.cacheSize, cfg.cacheTTL, cfg.logger)

	fragments := append([]fragment.Fragment{fragment.NewNotExpired(time.Now)}, cfg.fragments...)

	searchRepo := searchrepo.New(store, cfg.indexName)
	assets := assetrepo.New(store)

	var svcOpts []searchuc.Option
	if cfg.params != nil {
		svcOpts = append(svcOpts, searchuc.WithParamsProcessor(cfg.params))
	}
	if cfg.pre != nil {
		svcOpts = append(svcOpts, searchuc.WithPreProcessor(preProcessor(cfg.pre)))
	}
	if cfg.post != nil {
		svcOpts = append(svcOpts, searchuc.WithPostProcessor(postProcessor(cfg.post)))
	}

	searchSvc := searchuc.New(configs, fragment.NewRegistry(fragments...),
		searchRepo, assets, cfg.logger, svcOpts...)

	return &Client{
		store:      store,
		pages:      pages,
		configs:    configs,
		searchRepo: searchRepo,
		assets:     assets,
		batchSvc:   batchuc.New(assets, assets).WithMaxBatchSize(cfg.maxBatch),
		searchSvc:  searchSvc,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EnsureIndex creates the asset index if it does not exist (idempotent).
func (c *Client) EnsureIndex(ctx context.Context) error {
	if err := c.searchRepo.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}
	return nil
}

// Assets returns the asset indexing service.
func (c *Client) Assets() *AssetService {
	return &AssetService{repo: c.assets, batch: c.batchSvc}
}

// Pages returns the page configuration service.
func (c *Client) Pages() *PageService {
	return &PageService{repo: c.pages, configs: c.configs}
}

// Query returns a fluent search builder for a page.
func (c *Client) Query(pageID string) *QueryBuilder {
	return &QueryBuilder{client: c, page: pageID, params: make(map[string]string)}
}
