package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wildone/asset-share-commons/internal/domain/search/result"
	"github.com/wildone/asset-share-commons/internal/logger"
	"github.com/wildone/asset-share-commons/internal/metrics"
)

// Mapper resolves backend hits into assets.
type Mapper struct {
	sessions SessionOpener
}

// NewMapper creates a mapper that opens one session per result page.
func NewMapper(sessions SessionOpener) *Mapper {
	return &Mapper{sessions: sessions}
}

// Map resolves every hit of m in order. Hits that fail to resolve are logged and skipped.
// The session is released on every return path.
func (m *Mapper) Map(ctx context.Context, matches *result.Matches) (*result.Envelope, error) {
	if len(matches.Hits) == 0 {
		return result.NewEnvelope(nil, matches), nil
	}

	sess, err := m.sessions.OpenSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer sess.Close()

	log := logger.FromContext(ctx)
	assets := make([]result.Asset, 0, len(matches.Hits))
	for _, path := range matches.Hits {
		asset, err := sess.Resolve(ctx, path)
		if err != nil {
			log.Warn("Skipping unmappable hit", zap.String("path", path), zap.Error(err))
			metrics.SearchUnmappedHitsTotal.Inc()
			continue
		}
		assets = append(assets, asset)
	}

	log.Debug("Mapped search hits",
		zap.Int("hits", len(matches.Hits)),
		zap.Int("mapped", len(assets)),
	)
	return result.NewEnvelope(assets, matches), nil
}
