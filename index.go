package assetshare

import (
	"context"
	"fmt"

	dombatch "github.com/wildone/asset-share-commons/internal/domain/batch"
	"github.com/wildone/asset-share-commons/internal/domain/search/result"
	assetrepo "github.com/wildone/asset-share-commons/internal/repository/asset"
	batchuc "github.com/wildone/asset-share-commons/internal/usecase/batch"
)

// BatchResult is the outcome of one item of a bulk operation.
type BatchResult struct {
	Path string
	OK   bool
	Err  error
}

// AssetService writes assets into the search index.
type AssetService struct {
	repo  *assetrepo.Repo
	batch *batchuc.Service
}

// Index creates or replaces the asset stored at a.Path.
func (s *AssetService) Index(ctx context.Context, a Asset) error {
	ra, err := toAsset(a)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	if err := s.repo.Save(ctx, &ra); err != nil {
		return fmt.Errorf("index %s: %w", a.Path, err)
	}
	return nil
}

// IndexAll indexes assets and reports one result per item, in input order.
// Assets must live below /content/dam.
func (s *AssetService) IndexAll(ctx context.Context, assets []Asset) []BatchResult {
	items := make([]result.Asset, 0, len(assets))
	var invalid []BatchResult
	for i := range assets {
		ra, err := toAsset(assets[i])
		if err != nil {
			invalid = append(invalid, BatchResult{Path: assets[i].Path, Err: err})
			continue
		}
		items = append(items, ra)
	}
	return append(fromBatch(s.batch.Index(ctx, items)), invalid...)
}

// Delete removes the asset stored at path.
func (s *AssetService) Delete(ctx context.Context, path string) error {
	if err := s.repo.Delete(ctx, path); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// DeleteAll removes assets by path and reports one result per item.
func (s *AssetService) DeleteAll(ctx context.Context, paths []string) []BatchResult {
	return fromBatch(s.batch.Delete(ctx, paths))
}

func fromBatch(results []dombatch.Result) []BatchResult {
	out := make([]BatchResult, len(results))
	for i, r := range results {
		out[i] = BatchResult{Path: r.Path(), OK: r.Status() == dombatch.StatusOK, Err: r.Err()}
	}
	return out
}
