// Package fragment resolves named, reusable filter groups referenced by page configuration.
package fragment

import (
	"sort"

	"github.com/wildone/asset-share-commons/internal/domain/search/predicate"
)

// Fragment contributes a predicate group to every search of a page that references it.
type Fragment interface {
	Name() string
	// Group returns the constraints for one request. params is the cleaned request map.
	Group(params map[string]string) predicate.Group
}

// Registry resolves fragments by name. It is built at startup and read-only afterwards.
type Registry struct {
	fragments map[string]Fragment
}

// NewRegistry creates a registry. A later fragment replaces an earlier one of the same name.
func NewRegistry(fragments ...Fragment) *Registry {
	r := &Registry{fragments: make(map[string]Fragment, len(fragments))}
	for _, f := range fragments {
		r.fragments[f.Name()] = f
	}
	return r
}

// Resolve returns the fragment registered under name.
func (r *Registry) Resolve(name string) (Fragment, bool) {
	if r == nil {
		return nil, false
	}
	f, ok := r.fragments[name]
	return f, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.fragments))
	for name := range r.fragments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
