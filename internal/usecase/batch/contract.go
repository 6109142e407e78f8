package batch

import (
	"context"

	"github.com/wildone/asset-share-commons/internal/domain/search/result"
)

// AssetWriter stores a single asset hash.
type AssetWriter interface {
	Save(ctx context.Context, a *result.Asset) error
}

// AssetDeleter removes a single asset hash.
type AssetDeleter interface {
	Delete(ctx context.Context, path string) error
}
