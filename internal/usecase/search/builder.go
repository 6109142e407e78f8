package search

import (
	"strconv"

	"github.com/wildone/asset-share-commons/internal/domain"
	"github.com/wildone/asset-share-commons/internal/domain/pageconfig"
	"github.com/wildone/asset-share-commons/internal/domain/search/predicate"
	"github.com/wildone/asset-share-commons/internal/domain/search/sandbox"
	"github.com/wildone/asset-share-commons/internal/usecase/search/fragment"
)

// Query parameter keys managed by the builder.
const (
	KeyLimit       = "p.limit"
	KeyOffset      = "p.offset"
	KeyGuessTotal  = "p.guessTotal"
	KeyOrderBy     = "orderby"
	KeyOrderBySort = "orderby.sort"
	KeyType        = "type"
	KeyPath        = "path"
)

// Names of the groups contributed by the builder.
const (
	TypeGroupName    = "type"
	PathGroupName    = "path"
	RequestGroupName = "request"
)

// strippedParams are transport and UI markers that never act as constraints.
var strippedParams = []string{"mode", "layout", "wcmmode", "forceeditcontext"}

// Exclude names categories of server-side predicates the builder must not add.
type Exclude uint8

// Exclusion categories.
const (
	ExcludeType Exclude = 1 << iota
	ExcludePath
	ExcludeHidden
	ExcludeFragments
	ExcludeLimit
	ExcludeGuessTotal
	ExcludeOrdering
)

// Has reports whether every category in c is excluded.
func (e Exclude) Has(c Exclude) bool { return e&c == c }

// Builder merges request parameters with page configuration into one predicate tree.
// It is stateless apart from the read-only fragment registry and safe for concurrent use.
type Builder struct {
	fragments *fragment.Registry
}

// NewBuilder creates a builder. A nil registry resolves no fragments.
func NewBuilder(fragments *fragment.Registry) *Builder {
	return &Builder{fragments: fragments}
}

// Build returns the root group for one request. params is not modified.
//
// Request predicates come first. Type, path, hidden and fragment groups are appended
// unconditionally; the path group is skipped when the request supplied at least one
// path inside the allowed roots. Limit and guess-total take the request value when
// present, clamped by the page configuration. Ordering is added only when the request
// did not set it. A request asking for "p.or" gets its constraints nested in an OR group,
// so the server-side groups stay required.
func (b *Builder) Build(params map[string]string, cfg pageconfig.Config, exclude Exclude) predicate.Group {
	cleaned := strip(params)

	cleaned, provided := sandbox.Apply(cfg.Paths(), cleaned)
	if provided {
		exclude |= ExcludePath
	}

	requested := predicate.Parse(cleaned)
	reqLimit, hasLimit := direct(requested, KeyLimit)
	reqGuess, hasGuess := direct(requested, KeyGuessTotal)
	_, hasOrderBy := direct(requested, KeyOrderBy)
	_, hasOrderBySort := direct(requested, KeyOrderBySort)

	root := requested
	if !requested.AllRequired() {
		root = nestAlternatives(requested)
	}
	if !exclude.Has(ExcludeLimit) || !exclude.Has(ExcludeGuessTotal) {
		root = root.Without(func(p predicate.Predicate) bool {
			return (p.Key() == KeyLimit && !exclude.Has(ExcludeLimit)) ||
				(p.Key() == KeyGuessTotal && !exclude.Has(ExcludeGuessTotal))
		})
	}

	if !exclude.Has(ExcludeType) {
		root = root.Add(predicate.NewGroup(TypeGroupName, predicate.New(KeyType, domain.AssetType)))
	}
	if !exclude.Has(ExcludePath) {
		root = root.Add(pathGroup(cfg.Paths()))
	}
	if !exclude.Has(ExcludeHidden) {
		for _, g := range cfg.Hidden() {
			root = root.Add(g)
		}
	}
	if !exclude.Has(ExcludeFragments) {
		root = root.Add(b.fragmentGroups(cfg.Fragments(), cleaned)...)
	}

	if !exclude.Has(ExcludeLimit) {
		limit := cfg.ResolveLimit(reqLimit, hasLimit)
		root = root.Add(predicate.New(KeyLimit, strconv.Itoa(limit)))
	}
	if !exclude.Has(ExcludeGuessTotal) {
		guess := cfg.GuessTotal()
		if hasGuess {
			guess = pageconfig.ResolveGuessTotal(reqGuess)
		}
		root = root.Add(predicate.New(KeyGuessTotal, guess))
	}

	if !exclude.Has(ExcludeOrdering) {
		if !hasOrderBy {
			root = root.Add(predicate.New(KeyOrderBy, cfg.OrderBy()))
		}
		if !hasOrderBySort {
			root = root.Add(predicate.New(KeyOrderBySort, cfg.OrderBySort()))
		}
	}
	return root
}

func (b *Builder) fragmentGroups(names []string, params map[string]string) []predicate.Node {
	var out []predicate.Node
	for _, name := range names {
		f, ok := b.fragments.Resolve(name)
		if !ok {
			continue
		}
		if g := f.Group(params); !g.IsEmpty() {
			out = append(out, g)
		}
	}
	return out
}

// nestAlternatives moves the constraints of an OR root into a RequestGroupName group below
// an AND root. Query parameters and ordering stay at the top level.
func nestAlternatives(g predicate.Group) predicate.Group {
	var top, alternatives []predicate.Node
	for _, c := range g.Children() {
		if p, ok := c.(predicate.Predicate); ok && (p.IsParam() || p.Type() == KeyOrderBy) {
			top = append(top, p)
			continue
		}
		alternatives = append(alternatives, c)
	}
	root := predicate.NewGroup(g.Name())
	if len(alternatives) > 0 {
		root = root.Add(predicate.NewOrGroup(RequestGroupName, alternatives...))
	}
	return root.Add(top...)
}

// pathGroup ORs the configured roots: 0_path, 1_path...
func pathGroup(paths []string) predicate.Group {
	nodes := make([]predicate.Node, 0, len(paths))
	for i, p := range paths {
		nodes = append(nodes, predicate.New(strconv.Itoa(i)+"_"+KeyPath, p))
	}
	return predicate.NewOrGroup(PathGroupName, nodes...)
}

func strip(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = v
	}
	for _, k := range strippedParams {
		delete(out, k)
	}
	return out
}

// direct returns the value of a predicate set at the top level of g.
func direct(g predicate.Group, key string) (string, bool) {
	for _, p := range g.Predicates() {
		if p.Key() == key {
			return p.Value(), true
		}
	}
	return "", false
}
