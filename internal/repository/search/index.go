package search

import (
	"github.com/wildone/asset-share-commons/internal/db"
	"github.com/wildone/asset-share-commons/internal/domain"
)

// Hash fields of a stored asset.
const (
	FieldPath        = "path"
	FieldParent      = "parent"
	FieldAncestors   = "ancestors"
	FieldType        = "type"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldMimeType    = "mimetype"
	FieldTags        = "tags"
	FieldStatus      = "status"
	FieldSize        = "size"
	FieldCreated     = "created"
	FieldModified    = "modified"
	FieldExpires     = "expires"
	FieldFulltext    = "fulltext"
	// FieldPresent lists the names of the optional fields an asset carries.
	FieldPresent = "present"
)

// DefaultIndexName is the FT index over asset hashes.
const DefaultIndexName = "asc:assets:idx"

// AssetIndex returns the schema of the asset index.
func AssetIndex(name string) *db.IndexDefinition {
	if name == "" {
		name = DefaultIndexName
	}
	return db.NewIndex(name).
		Prefix(domain.AssetKeyPrefix).
		TagWithOpts(FieldPath, "|", true).
		TagWithOpts(FieldParent, "|", true).
		TagWithOpts(FieldAncestors, "|", true).
		Tag(FieldType).
		Tag(FieldTitle).Sortable().
		Tag(FieldDescription).
		Tag(FieldMimeType).
		Tag(FieldTags).
		Tag(FieldStatus).
		Tag(FieldPresent).
		Numeric(FieldSize).Sortable().
		Numeric(FieldCreated).Sortable().
		Numeric(FieldModified).Sortable().
		Numeric(FieldExpires).
		Text(FieldFulltext).
		MustBuild()
}

// propertyFields maps repository property names to index fields.
var propertyFields = map[string]string{
	"jcr:path":             FieldPath,
	"jcr:primaryType":      FieldType,
	"dc:title":             FieldTitle,
	"jcr:title":            FieldTitle,
	"dc:description":       FieldDescription,
	"jcr:description":      FieldDescription,
	"dc:format":            FieldMimeType,
	"cq:tags":              FieldTags,
	"dam:status":           FieldStatus,
	"dam:size":             FieldSize,
	"jcr:created":          FieldCreated,
	"jcr:lastModified":     FieldModified,
	"cq:lastModified":      FieldModified,
	"prism:expirationDate": FieldExpires,
}
