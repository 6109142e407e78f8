package search

import (
	"github.com/wildone/asset-share-commons/internal/domain"
	"github.com/wildone/asset-share-commons/internal/domain/search/predicate"
)

// nonSelective lists predicate types that never narrow the searched set on their own.
var nonSelective = map[string]bool{
	"type":    true,
	"orderby": true,
	"p":       true,
}

// CheckSafe rejects a predicate tree that would make the backend traverse the whole index.
// It must run on the fully merged predicate tree, since configured defaults such as the
// path root can supply the selectivity.
func CheckSafe(tree predicate.Group) error {
	if !selective(tree) {
		return domain.ErrUnsafeSearch
	}
	return nil
}

// selective reports whether g narrows the searched set. An AND group narrows when any
// constraint does; an OR group only when every branch does, since one open branch
// matches everything. An empty group never narrows.
func selective(g predicate.Group) bool {
	var branches []bool
	for _, c := range constraints(g) {
		branches = append(branches, c.selective())
	}
	for _, sub := range g.Groups() {
		branches = append(branches, selective(sub))
	}
	if len(branches) == 0 {
		return false
	}
	if g.AllRequired() {
		for _, ok := range branches {
			if ok {
				return true
			}
		}
		return false
	}
	for _, ok := range branches {
		if !ok {
			return false
		}
	}
	return true
}

// constraint is one named predicate together with its options, e.g. "property",
// "property.value" and "property.operation".
type constraint struct {
	name  string
	preds []predicate.Predicate
}

// selective decides on the primary value when there is one ("path", "fulltext"),
// otherwise on any option value ("daterange.lowerBound").
func (c constraint) selective() bool {
	typ := predicate.TypeOf(c.name)
	if nonSelective[typ] {
		return false
	}
	for _, p := range c.preds {
		if p.Param() == "" {
			v := p.Value()
			return v != "" && !(typ == KeyPath && v == "/")
		}
	}
	for _, p := range c.preds {
		if p.Value() != "" {
			return true
		}
	}
	return false
}

// constraints groups the direct predicates of g by name, in first-seen order.
func constraints(g predicate.Group) []constraint {
	var out []constraint
	index := make(map[string]int)
	for _, p := range g.Predicates() {
		name := p.Name()
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, constraint{name: name})
		}
		out[i].preds = append(out[i].preds, p)
	}
	return out
}
