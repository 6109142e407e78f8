package assetshare

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wildone/asset-share-commons/internal/usecase/search/fragment"
)

const (
	driverValkey = "valkey"
	driverRedis  = "redis"
)

// Option configures a Client.
type Option func(*clientConfig)

// ParamsHook rewrites the assembled flat parameter map of every search before it is parsed.
type ParamsHook func(ctx context.Context, params map[string]string) (map[string]string, error)

// ProcessParams implements usecase/search.ParamsProcessor.
func (h ParamsHook) ProcessParams(ctx context.Context, params map[string]string) (map[string]string, error) {
	return h(ctx, params)
}

// PreHook produces the final querybuilder parameters of every search from the assembled
// ones. It runs after the ParamsHook and before the safety gate, so whatever it returns
// must still be selective.
type PreHook func(ctx context.Context, params map[string]string) (map[string]string, error)

// PostHook transforms every result page inside the search, before metrics are recorded.
// params is the flat form of the executed query. Only the Assets of the returned Results
// are kept; paging metadata always reflects the backend.
type PostHook func(ctx context.Context, params map[string]string, r *Results) (*Results, error)

type clientConfig struct {
	driver    string
	addrs     []string
	username  string
	password  string
	db        int
	indexName string
	cacheSize int
	cacheTTL  time.Duration
	maxBatch  int
	logger    *zap.Logger
	pages     map[string]map[string]string
	fragments []fragment.Fragment
	params    ParamsHook
	pre       PreHook
	post      PostHook
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		cacheSize: 1024,
		cacheTTL:  time.Minute,
		logger:    zap.NewNop(),
	}
}

// WithValkey connects to Valkey. Fulltext predicates are rejected on this driver.
func WithValkey(addr, password string) Option {
	return func(c *clientConfig) {
		c.driver = driverValkey
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithRedis connects to Redis with the search module.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithAuth sets the ACL user and logical database.
func WithAuth(username string, db int) Option {
	return func(c *clientConfig) {
		c.username = username
		c.db = db
	}
}

// WithIndexName overrides the asset index name.
func WithIndexName(name string) Option {
	return func(c *clientConfig) { c.indexName = name }
}

// WithConfigCache bounds the page configuration cache. size <= 0 disables caching.
func WithConfigCache(size int, ttl time.Duration) Option {
	return func(c *clientConfig) {
		c.cacheSize = size
		c.cacheTTL = ttl
	}
}

// WithMaxBatchSize bounds IndexAll and DeleteAll calls.
func WithMaxBatchSize(n int) Option {
	return func(c *clientConfig) { c.maxBatch = n }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPage declares a static page configuration. Stored properties take precedence.
func WithPage(pageID string, opts ...PageOption) Option {
	return func(c *clientConfig) {
		if c.pages == nil {
			c.pages = make(map[string]map[string]string)
		}
		c.pages[pageID] = pageProperties(opts)
	}
}

// WithFragment registers a named filter fragment built from flat querybuilder parameters.
func WithFragment(name string, params map[string]string) Option {
	return func(c *clientConfig) {
		c.fragments = append(c.fragments, fragment.NewStatic(name, params))
	}
}

// WithParamsHook installs the parameter rewrite hook.
func WithParamsHook(h ParamsHook) Option {
	return func(c *clientConfig) { c.params = h }
}

// WithPreHook installs the hook that decides the final search parameters.
func WithPreHook(h PreHook) Option {
	return func(c *clientConfig) { c.pre = h }
}

// WithPostHook installs the result page hook.
func WithPostHook(h PostHook) Option {
	return func(c *clientConfig) { c.post = h }
}
