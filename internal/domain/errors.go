package domain

import (
	"errors"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrUnsafeSearch signals a query that would traverse the whole index.
	ErrUnsafeSearch = errors.New("unsafe search: query would initiate a traversing query")
	// ErrInvalidQuery signals a predicate tree the backend cannot express.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrFulltextNotSupported signals that the backend lacks TEXT fields.
	ErrFulltextNotSupported = errors.New("fulltext search not supported by backend")
	// ErrBackendUnavailable signals a failing search backend or configuration store.
	ErrBackendUnavailable = errors.New("search backend unavailable")
	// ErrInvalidAsset signals an asset that cannot be indexed.
	ErrInvalidAsset = errors.New("invalid asset")
)
