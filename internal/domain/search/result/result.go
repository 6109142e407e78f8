// Package result holds mapped search hits and the envelope returned to callers.
package result

import (
	"errors"
	"time"
)

// ErrEmptyPath is returned when an asset is constructed without its location.
var ErrEmptyPath = errors.New("asset path is required")

// Asset is a single mapped search hit.
type Asset struct {
	path        string
	title       string
	description string
	mimeType    string
	size        int64
	modified    time.Time
	tags        []string
	properties  map[string]string
}

// NewAsset creates a mapped asset. The path is required.
func NewAsset(
	path, title, description, mimeType string,
	size int64, modified time.Time,
	tags []string, properties map[string]string,
) (Asset, error) {
	if path == "" {
		return Asset{}, ErrEmptyPath
	}
	return Asset{
		path: path, title: title, description: description, mimeType: mimeType,
		size: size, modified: modified, tags: tags, properties: properties,
	}, nil
}

// Path returns the repository location of the asset.
func (a *Asset) Path() string { return a.path }

// Title returns the asset title.
func (a *Asset) Title() string { return a.title }

// Description returns the asset description.
func (a *Asset) Description() string { return a.description }

// MimeType returns the asset mime type.
func (a *Asset) MimeType() string { return a.mimeType }

// Size returns the original rendition size in bytes.
func (a *Asset) Size() int64 { return a.size }

// Modified returns the last modification time. Zero when unknown.
func (a *Asset) Modified() time.Time { return a.modified }

// Tags returns the asset tags.
func (a *Asset) Tags() []string { return a.tags }

// Properties returns the remaining stored properties.
func (a *Asset) Properties() map[string]string { return a.properties }
