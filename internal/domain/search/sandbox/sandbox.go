// Package sandbox keeps request-supplied path constraints inside the allowed search roots.
package sandbox

import (
	"path"
	"strings"

	"github.com/wildone/asset-share-commons/internal/domain/search/predicate"
)

const pathType = "path"

// Allowed reports whether p, once canonicalized, equals one of roots or is nested below it.
// "/content/dam-other" is not nested below "/content/dam". Paths carrying a backslash
// are never allowed.
func Allowed(roots []string, p string) bool {
	if strings.TrimSpace(p) == "" || !strings.HasPrefix(p, "/") || strings.ContainsRune(p, '\\') {
		return false
	}
	p = path.Clean(p)
	for _, root := range roots {
		root = strings.TrimSuffix(path.Clean(root), "/")
		if p == root || strings.HasPrefix(p, root+"/") {
			return true
		}
	}
	return false
}

// Filter returns the paths accepted by Allowed, in input order.
func Filter(roots, paths []string) []string {
	var out []string
	for _, p := range paths {
		if Allowed(roots, p) {
			out = append(out, p)
		}
	}
	return out
}

// IsPathKey reports whether a flat querybuilder key carries a path constraint value,
// e.g. "path", "1_path" or "2_group.3_path". Option keys such as "path.exact" are not.
func IsPathKey(key string) bool {
	segments := strings.Split(key, ".")
	last := segments[len(segments)-1]
	if predicate.TypeOf(last) != pathType {
		return false
	}
	for _, s := range segments[:len(segments)-1] {
		if predicate.TypeOf(s) != "group" {
			return false
		}
	}
	return true
}

// Apply returns a copy of params with every request path outside roots removed, and
// reports whether at least one request path survived. When none survived the caller
// falls back to the configured roots; partial validity keeps only the valid paths.
// Options of a removed path, e.g. "path.exact", are removed with it.
func Apply(roots []string, params map[string]string) (map[string]string, bool) {
	out := make(map[string]string, len(params))
	dropped := make(map[string]bool)
	provided := false
	for k, v := range params {
		if IsPathKey(k) {
			if !Allowed(roots, v) {
				dropped[k] = true
				continue
			}
			provided = true
		}
		out[k] = v
	}
	for k := range out {
		if i := strings.LastIndexByte(k, '.'); i > 0 && dropped[k[:i]] {
			delete(out, k)
		}
	}
	return out, provided
}
