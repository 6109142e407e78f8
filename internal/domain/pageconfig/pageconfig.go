// Package pageconfig resolves server-authored search defaults for a page.
package pageconfig

import (
	"encoding/json"
	"path"
	"strconv"
	"strings"

	"github.com/wildone/asset-share-commons/internal/domain"
	"github.com/wildone/asset-share-commons/internal/domain/search/predicate"
	"github.com/wildone/asset-share-commons/internal/domain/search/sandbox"
)

// Limits and defaults applied while resolving a page configuration.
const (
	DefaultLimit      = 50
	MaxLimit          = 1000
	DefaultGuessTotal = "250"
	MaxGuessTotal     = 2000
	// GuessTotalContinuous asks the backend for a continuously estimated total.
	GuessTotalContinuous = "true"
	DefaultOrderBy       = "@jcr:score"
	DefaultOrderBySort   = "desc"
)

// Property names of the durable page configuration.
const (
	PropLimit            = "limit"
	PropGuessTotal       = "guessTotal"
	PropOrderBy          = "orderBy"
	PropOrderBySort      = "orderBySort"
	PropPaths            = "paths"
	PropSearchPredicates = "searchPredicates"
	PropHiddenPredicates = "hiddenPredicates"
)

// Properties is the raw key/value configuration of a page as stored.
// List values are comma separated; hiddenPredicates is a JSON array of flat predicate maps.
type Properties map[string]string

// Config is the resolved, read-only configuration for one request.
type Config struct {
	paths       []string
	limit       int
	guessTotal  string
	orderBy     string
	orderBySort string
	fragments   []string
	hidden      []predicate.Group
}

// Default returns the configuration used when a page has no stored properties.
func Default() Config {
	return Resolve(nil)
}

// Resolve builds a Config from stored properties. Every field falls back independently.
func Resolve(props Properties) Config {
	return Config{
		paths:       resolvePaths(splitList(props[PropPaths])),
		limit:       resolveConfiguredLimit(props[PropLimit]),
		guessTotal:  ResolveGuessTotal(props[PropGuessTotal]),
		orderBy:     orDefault(props[PropOrderBy], DefaultOrderBy),
		orderBySort: orDefault(props[PropOrderBySort], DefaultOrderBySort),
		fragments:   splitList(props[PropSearchPredicates]),
		hidden:      parseHidden(props[PropHiddenPredicates]),
	}
}

// Paths returns the allowed search roots. Never empty.
func (c Config) Paths() []string { return append([]string(nil), c.paths...) }

// Limit returns the configured result window size.
func (c Config) Limit() int { return c.limit }

// GuessTotal returns either GuessTotalContinuous or a number in [1, MaxGuessTotal].
func (c Config) GuessTotal() string { return c.guessTotal }

// OrderBy returns the default ordering key.
func (c Config) OrderBy() string { return c.orderBy }

// OrderBySort returns the default ordering direction.
func (c Config) OrderBySort() string { return c.orderBySort }

// Fragments returns the names of referenced filter fragments.
func (c Config) Fragments() []string { return append([]string(nil), c.fragments...) }

// Hidden returns the always-applied hidden filter groups.
func (c Config) Hidden() []predicate.Group { return append([]predicate.Group(nil), c.hidden...) }

// ResolveLimit applies the request-side limit rules: a missing or non-numeric value falls
// back to the configured limit, values below 1 reset to DefaultLimit, values above
// MaxLimit clamp to MaxLimit.
func (c Config) ResolveLimit(requested string, present bool) int {
	limit := c.limit
	if present {
		if n, err := strconv.Atoi(strings.TrimSpace(requested)); err == nil {
			limit = n
		}
	}
	return clampLimit(limit)
}

// ResolveGuessTotal validates a guess-total value. The continuous flag passes through;
// anything that is not a number in [1, MaxGuessTotal] becomes DefaultGuessTotal.
func ResolveGuessTotal(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, GuessTotalContinuous) {
		return GuessTotalContinuous
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > MaxGuessTotal {
		return DefaultGuessTotal
	}
	return strconv.Itoa(n)
}

// IsUnder reports whether p equals root or is nested below it, segment-wise.
func IsUnder(p, root string) bool {
	root = strings.TrimSuffix(root, "/")
	return p == root || strings.HasPrefix(p, root+"/")
}

func resolveConfiguredLimit(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return DefaultLimit
	}
	return clampLimit(n)
}

func clampLimit(n int) int {
	switch {
	case n > MaxLimit:
		return MaxLimit
	case n < 1:
		return DefaultLimit
	default:
		return n
	}
}

func resolvePaths(candidates []string) []string {
	cleaned := make([]string, 0, len(candidates))
	for _, p := range candidates {
		cleaned = append(cleaned, path.Clean(p))
	}
	paths := sandbox.Filter([]string{domain.AssetRoot}, cleaned)
	if len(paths) == 0 {
		return []string{domain.AssetRoot}
	}
	return paths
}

func parseHidden(v string) []predicate.Group {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	var raw []map[string]string
	if err := json.Unmarshal([]byte(v), &raw); err != nil {
		return nil
	}
	groups := make([]predicate.Group, 0, len(raw))
	for i, params := range raw {
		if len(params) == 0 {
			continue
		}
		groups = append(groups, predicate.Parse(params).WithName("hidden-"+strconv.Itoa(i)))
	}
	return groups
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
