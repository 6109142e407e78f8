package domain

// KeyPrefix namespaces every key this service reads from the store.
const KeyPrefix = "asc:"

// Key prefixes of the stored records.
const (
	AssetKeyPrefix = KeyPrefix + "asset:"
	PageKeyPrefix  = KeyPrefix + "page:"
)

// Repository constants shared by the resolver, the builder and the backend.
const (
	// AssetRoot is the mount point every search is confined to.
	AssetRoot = "/content/dam"
	// AssetType is the content type of searchable assets.
	AssetType = "dam:Asset"
)

// AssetKey returns the hash key of the asset stored at path.
func AssetKey(path string) string { return AssetKeyPrefix + path }

// PageKey returns the hash key of a page configuration.
func PageKey(pageID string) string { return PageKeyPrefix + pageID }
