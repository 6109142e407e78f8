package search

import (
	"context"

	"github.com/wildone/asset-share-commons/internal/domain/pageconfig"
	"github.com/wildone/asset-share-commons/internal/domain/search/predicate"
	"github.com/wildone/asset-share-commons/internal/domain/search/result"
)

// Backend executes a predicate tree against the asset index.
// All hits of one call are produced by the same backend session.
type Backend interface {
	Search(ctx context.Context, tree predicate.Group) (*result.Matches, error)
}

// Session resolves hit paths to assets. It must be closed exactly once.
type Session interface {
	Resolve(ctx context.Context, path string) (result.Asset, error)
	Close()
}

// SessionOpener opens the resource session used while mapping one result page.
type SessionOpener interface {
	OpenSession(ctx context.Context) (Session, error)
}

// ConfigResolver returns the resolved configuration of a page.
type ConfigResolver interface {
	Get(ctx context.Context, pageID string) (pageconfig.Config, error)
}

// ParamsProcessor rewrites the assembled parameter map before it is parsed.
type ParamsProcessor interface {
	ProcessParams(ctx context.Context, params map[string]string) (map[string]string, error)
}

// PreProcessor turns the assembled parameter map into the predicate tree,
// replacing the default parse. It runs before the safety gate.
type PreProcessor interface {
	PreProcess(ctx context.Context, params map[string]string) (predicate.Group, error)
}

// PostProcessor transforms the envelope before it is returned.
type PostProcessor interface {
	PostProcess(ctx context.Context, tree predicate.Group, env *result.Envelope) (*result.Envelope, error)
}
