package asset

import (
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wildone/asset-share-commons/internal/domain"
	"github.com/wildone/asset-share-commons/internal/domain/search/result"
	searchrepo "github.com/wildone/asset-share-commons/internal/repository/search"
)

// derivedFields are written for the index only and never read back.
var derivedFields = map[string]bool{
	searchrepo.FieldParent:    true,
	searchrepo.FieldAncestors: true,
	searchrepo.FieldType:      true,
	searchrepo.FieldPresent:   true,
	searchrepo.FieldFulltext:  true,
}

// buildHashFields converts an asset into a flat map for HSET. Extra properties are
// written first so the asset's own fields win.
func buildHashFields(a *result.Asset) map[string]string {
	m := make(map[string]string, 12+len(a.Properties()))
	for k, v := range a.Properties() {
		if !derivedFields[k] && v != "" {
			m[k] = v
		}
	}

	p := path.Clean(a.Path())
	m[searchrepo.FieldPath] = p
	m[searchrepo.FieldParent] = path.Dir(p)
	m[searchrepo.FieldAncestors] = strings.Join(ancestors(p), "|")
	m[searchrepo.FieldType] = domain.AssetType

	setIf(m, searchrepo.FieldTitle, a.Title())
	setIf(m, searchrepo.FieldDescription, a.Description())
	setIf(m, searchrepo.FieldMimeType, a.MimeType())
	setIf(m, searchrepo.FieldTags, strings.Join(a.Tags(), ","))
	if a.Size() > 0 {
		m[searchrepo.FieldSize] = strconv.FormatInt(a.Size(), 10)
	}
	if !a.Modified().IsZero() {
		m[searchrepo.FieldModified] = strconv.FormatInt(a.Modified().UnixMilli(), 10)
	}

	m[searchrepo.FieldFulltext] = strings.Join(nonEmpty(a.Title(), a.Description(), strings.Join(a.Tags(), " ")), " ")
	m[searchrepo.FieldPresent] = strings.Join(present(m), ",")
	return m
}

// parseHashFields converts a flat hash back into an asset.
func parseHashFields(p string, m map[string]string) (result.Asset, error) {
	var (
		title, description, mimeType string
		size                         int64
		modified                     time.Time
		tags                         []string
	)
	props := make(map[string]string)

	for k, v := range m {
		switch k {
		case searchrepo.FieldPath:
		case searchrepo.FieldTitle:
			title = v
		case searchrepo.FieldDescription:
			description = v
		case searchrepo.FieldMimeType:
			mimeType = v
		case searchrepo.FieldSize:
			size, _ = strconv.ParseInt(v, 10, 64)
		case searchrepo.FieldModified:
			if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
				modified = time.UnixMilli(ms).UTC()
			}
		case searchrepo.FieldTags:
			tags = splitTags(v)
		default:
			if !derivedFields[k] {
				props[k] = v
			}
		}
	}

	return result.NewAsset(p, title, description, mimeType, size, modified, tags, props)
}

// ancestors returns every folder above p, nearest last.
func ancestors(p string) []string {
	var out []string
	for dir := path.Dir(p); dir != "/" && dir != "."; dir = path.Dir(dir) {
		out = append(out, dir)
	}
	sort.Strings(out)
	return out
}

// present lists the optional stored fields, for existence checks.
func present(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		if k == searchrepo.FieldPath || derivedFields[k] {
			continue
		}
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func splitTags(v string) []string {
	var out []string
	for _, t := range strings.Split(v, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func setIf(m map[string]string, k, v string) {
	if v != "" {
		m[k] = v
	}
}

func nonEmpty(vals ...string) []string {
	out := vals[:0]
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
