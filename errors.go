package assetshare

import (
	"github.com/wildone/asset-share-commons/internal/domain"
	"github.com/wildone/asset-share-commons/internal/domain/search/result"
)

// Errors returned by the client. Match them with errors.Is.
var (
	ErrUnsafeSearch         = domain.ErrUnsafeSearch
	ErrInvalidQuery         = domain.ErrInvalidQuery
	ErrFulltextNotSupported = domain.ErrFulltextNotSupported
	ErrBackendUnavailable   = domain.ErrBackendUnavailable
	ErrNotFound             = domain.ErrNotFound
	ErrInvalidAsset         = domain.ErrInvalidAsset
	ErrEmptyPath            = result.ErrEmptyPath
)
