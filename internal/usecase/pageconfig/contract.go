package pageconfig

import (
	"context"

	dompc "github.com/wildone/asset-share-commons/internal/domain/pageconfig"
)

// Store reads durable page properties. A page without stored properties returns
// domain.ErrNotFound.
type Store interface {
	Get(ctx context.Context, pageID string) (dompc.Properties, error)
}
