package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wildone/asset-share-commons/internal/domain"
	"github.com/wildone/asset-share-commons/internal/domain/search/predicate"
	"github.com/wildone/asset-share-commons/internal/domain/search/result"
	"github.com/wildone/asset-share-commons/internal/logger"
	"github.com/wildone/asset-share-commons/internal/metrics"
	"github.com/wildone/asset-share-commons/internal/usecase/search/fragment"
)

var errNoEnvelope = errors.New("post-process returned no envelope")

// Service runs the search pipeline: assemble, gate, execute, map, post-process.
type Service struct {
	configs ConfigResolver
	builder *Builder
	backend Backend
	mapper  *Mapper
	logger  *zap.Logger
	newID   func() string

	params ParamsProcessor
	pre    PreProcessor
	post   PostProcessor
}

// Option configures optional pipeline hooks.
type Option func(*Service)

// WithParamsProcessor installs the parameter post-processing hook.
func WithParamsProcessor(p ParamsProcessor) Option {
	return func(s *Service) { s.params = p }
}

// WithPreProcessor installs the hook that builds the predicate tree from parameters.
func WithPreProcessor(p PreProcessor) Option {
	return func(s *Service) { s.pre = p }
}

// WithPostProcessor installs the envelope post-processing hook.
func WithPostProcessor(p PostProcessor) Option {
	return func(s *Service) { s.post = p }
}

// WithIDGenerator overrides search id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// New creates a search service.
func New(
	configs ConfigResolver, fragments *fragment.Registry,
	backend Backend, sessions SessionOpener,
	logger *zap.Logger, opts ...Option,
) *Service {
	s := &Service{
		configs: configs,
		builder: NewBuilder(fragments),
		backend: backend,
		mapper:  NewMapper(sessions),
		logger:  logger,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search runs one search for a page. It returns domain.ErrUnsafeSearch without contacting
// the backend when the merged predicate tree is not selective, and wraps backend failures
// in domain.ErrBackendUnavailable. No partial results are returned on error.
func (s *Service) Search(
	ctx context.Context, pageID string, params map[string]string,
) (env *result.Envelope, err error) {
	start := time.Now()
	id := s.newID()
	log := logger.FromContextOr(ctx, s.logger).With(zap.String("search_id", id), zap.String("page", pageID))
	ctx = logger.ContextWithLogger(ctx, log)

	defer func() {
		metrics.SearchesTotal.WithLabelValues(outcome(err)).Inc()
		metrics.SearchDuration.Observe(time.Since(start).Seconds())
	}()

	tree, err := s.QueryTree(ctx, pageID, params)
	if err != nil {
		return nil, err
	}

	if err = CheckSafe(tree); err != nil {
		log.Info("Rejected unsafe search", zap.String("query", tree.String()))
		return nil, err
	}

	log.Debug("Executing search", zap.String("query", tree.String()))

	matches, err := s.backend.Search(ctx, tree)
	if err != nil {
		return nil, backendError("search", err)
	}

	log.Debug("Search executed",
		zap.Int("hits", len(matches.Hits)),
		zap.Int64("total", matches.Total),
		zap.Bool("guessed", matches.Guessed),
		zap.Int("offset", matches.Offset),
		zap.Int("limit", matches.Limit),
		zap.Duration("elapsed", matches.Elapsed),
		zap.String("statement", matches.Statement),
	)

	env, err = s.mapper.Map(ctx, matches)
	if err != nil {
		return nil, backendError("map results", err)
	}
	env = env.WithSearchID(id)

	if s.post != nil {
		env, err = s.post.PostProcess(ctx, tree, env)
		if err != nil {
			return nil, fmt.Errorf("post-process: %w", err)
		}
		if env == nil {
			return nil, errNoEnvelope
		}
	}
	return env, nil
}

// QueryTree assembles the predicate tree for a page without gating or executing it.
func (s *Service) QueryTree(
	ctx context.Context, pageID string, params map[string]string,
) (predicate.Group, error) {
	cfg, err := s.configs.Get(ctx, pageID)
	if err != nil {
		return predicate.Group{}, backendError("page config", err)
	}

	tree := s.builder.Build(params, cfg, 0)
	if s.params == nil && s.pre == nil {
		return tree, nil
	}

	names := tree.GroupNames()
	flat := tree.Params()
	if s.params != nil {
		if flat, err = s.params.ProcessParams(ctx, flat); err != nil {
			return predicate.Group{}, fmt.Errorf("process params: %w", err)
		}
	}
	if s.pre == nil {
		return predicate.Parse(flat).Renamed(names), nil
	}
	tree, err = s.pre.PreProcess(ctx, flat)
	if err != nil {
		return predicate.Group{}, fmt.Errorf("pre-process: %w", err)
	}
	return tree.Renamed(names), nil
}

// backendError keeps query errors recognizable and marks everything else as unavailability.
func backendError(op string, err error) error {
	if errors.Is(err, domain.ErrInvalidQuery) || errors.Is(err, domain.ErrFulltextNotSupported) ||
		errors.Is(err, domain.ErrBackendUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrBackendUnavailable, op, err)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, domain.ErrUnsafeSearch):
		return metrics.OutcomeUnsafe
	case errors.Is(err, domain.ErrInvalidQuery), errors.Is(err, domain.ErrFulltextNotSupported):
		return metrics.OutcomeInvalid
	case errors.Is(err, domain.ErrBackendUnavailable):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeError
	}
}
