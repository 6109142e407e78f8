// Package batch indexes and removes assets in bulk with per-item error reporting.
package batch

import (
	"context"
	"fmt"
	"path"

	"github.com/wildone/asset-share-commons/internal/domain"
	dombatch "github.com/wildone/asset-share-commons/internal/domain/batch"
	"github.com/wildone/asset-share-commons/internal/domain/pageconfig"
	"github.com/wildone/asset-share-commons/internal/domain/search/result"
)

// MaxBatchSize is the default maximum number of items per batch call.
const MaxBatchSize = 100

// Service handles bulk asset writes. One failing item never aborts the others.
type Service struct {
	writer       AssetWriter
	deleter      AssetDeleter
	maxBatchSize int
}

// New creates a batch service.
func New(writer AssetWriter, deleter AssetDeleter) *Service {
	return &Service{writer: writer, deleter: deleter, maxBatchSize: MaxBatchSize}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Index stores every asset and reports one result per item, in input order.
func (s *Service) Index(ctx context.Context, assets []result.Asset) []dombatch.Result {
	results := make([]dombatch.Result, len(assets))

	if len(assets) > s.maxBatchSize {
		for i := range assets {
			results[i] = dombatch.NewError(assets[i].Path(), s.sizeError())
		}
		return results
	}

	for i := range assets {
		a := &assets[i]
		if err := validatePath(a.Path()); err != nil {
			results[i] = dombatch.NewError(a.Path(), err)
			continue
		}
		if err := s.writer.Save(ctx, a); err != nil {
			results[i] = dombatch.NewError(a.Path(), fmt.Errorf("save: %w", err))
			continue
		}
		results[i] = dombatch.NewOK(a.Path())
	}
	return results
}

// Delete removes assets by path.
func (s *Service) Delete(ctx context.Context, paths []string) []dombatch.Result {
	results := make([]dombatch.Result, len(paths))

	if len(paths) > s.maxBatchSize {
		for i, p := range paths {
			results[i] = dombatch.NewError(p, s.sizeError())
		}
		return results
	}

	for i, p := range paths {
		if err := s.deleter.Delete(ctx, p); err != nil {
			results[i] = dombatch.NewError(p, fmt.Errorf("delete: %w", err))
			continue
		}
		results[i] = dombatch.NewOK(p)
	}
	return results
}

func (s *Service) sizeError() error {
	return fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidAsset)
}

// validatePath accepts clean absolute paths below the asset root.
func validatePath(p string) error {
	if p != path.Clean(p) || !path.IsAbs(p) {
		return fmt.Errorf("path %q is not clean and absolute: %w", p, domain.ErrInvalidAsset)
	}
	if p == domain.AssetRoot || !pageconfig.IsUnder(p, domain.AssetRoot) {
		return fmt.Errorf("path %q is outside %s: %w", p, domain.AssetRoot, domain.ErrInvalidAsset)
	}
	return nil
}
