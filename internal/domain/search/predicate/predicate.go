// Package predicate models search constraints as an ordered AND/OR tree.
//
// The flat form is the querybuilder parameter map: keys such as "path",
// "1_property.value", "p.limit" or "2_group.p.or". Parse turns a flat map
// into a Group and Group.Params turns it back.
package predicate

import (
	"sort"
	"strconv"
	"strings"
)

// RootName names the top-level group.
const RootName = "root"

// Keys with special meaning in the flat form.
const (
	// ParamPrefix marks query parameters (limit, offset, guessTotal, or).
	ParamPrefix = "p."
	// OrParam switches a group to OR semantics when set to "true".
	OrParam = "p.or"

	groupType = "group"
)

// Node is an element of a Group: either a Predicate or a nested Group.
type Node interface {
	isNode()
}

// Predicate is a single key/value constraint.
type Predicate struct {
	key   string
	value string
}

// New creates a predicate.
func New(key, value string) Predicate {
	return Predicate{key: key, value: value}
}

// Key returns the dot-qualified key, e.g. "1_property.value".
func (p Predicate) Key() string { return p.key }

// Value returns the constraint value.
func (p Predicate) Value() string { return p.value }

// Name returns the key segment before the first dot, e.g. "1_property".
func (p Predicate) Name() string {
	name, _, _ := strings.Cut(p.key, ".")
	return name
}

// Param returns the key segment after the first dot, e.g. "value". Empty for the primary value.
func (p Predicate) Param() string {
	_, param, _ := strings.Cut(p.key, ".")
	return param
}

// Type returns the name without its positional prefix, e.g. "property".
func (p Predicate) Type() string { return TypeOf(p.Name()) }

// IsParam reports whether the predicate is a query parameter (p.*) rather than a constraint.
func (p Predicate) IsParam() bool { return strings.HasPrefix(p.key, ParamPrefix) }

func (Predicate) isNode() {}

// TypeOf strips a positional "N_" prefix from a predicate name.
func TypeOf(name string) string {
	i := strings.IndexByte(name, '_')
	if i <= 0 {
		return name
	}
	if _, err := strconv.Atoi(name[:i]); err != nil {
		return name
	}
	return name[i+1:]
}

// position returns the numeric prefix of a name, 0 when absent.
func position(name string) int {
	i := strings.IndexByte(name, '_')
	if i <= 0 {
		return 0
	}
	n, err := strconv.Atoi(name[:i])
	if err != nil {
		return 0
	}
	return n
}

// Group is an ordered, named collection of predicates and nested groups.
// Values are immutable: every modifier returns a new Group.
type Group struct {
	name        string
	allRequired bool
	children    []Node
}

// NewGroup creates an AND group.
func NewGroup(name string, children ...Node) Group {
	return Group{name: name, allRequired: true, children: cloneNodes(children)}
}

// NewOrGroup creates an OR group.
func NewOrGroup(name string, children ...Node) Group {
	return Group{name: name, allRequired: false, children: cloneNodes(children)}
}

// FromMap creates an AND group of predicates from a flat map, ordered by key position.
func FromMap(name string, params map[string]string) Group {
	g := NewGroup(name)
	for _, k := range sortedKeys(params) {
		g.children = append(g.children, New(k, params[k]))
	}
	return g
}

func (Group) isNode() {}

// Name returns the group name.
func (g Group) Name() string { return g.name }

// AllRequired reports AND (true) or OR (false) semantics for direct children.
func (g Group) AllRequired() bool { return g.allRequired }

// Len returns the number of direct children.
func (g Group) Len() int { return len(g.children) }

// IsEmpty reports whether the group has no children.
func (g Group) IsEmpty() bool { return len(g.children) == 0 }

// Children returns a copy of the direct children.
func (g Group) Children() []Node { return cloneNodes(g.children) }

// Add returns a new group with nodes appended.
func (g Group) Add(nodes ...Node) Group {
	out := g
	out.children = make([]Node, 0, len(g.children)+len(nodes))
	out.children = append(out.children, g.children...)
	out.children = append(out.children, nodes...)
	return out
}

// WithAllRequired returns a copy with the given AND/OR flag.
func (g Group) WithAllRequired(allRequired bool) Group {
	out := g
	out.children = cloneNodes(g.children)
	out.allRequired = allRequired
	return out
}

// WithName returns a copy carrying name.
func (g Group) WithName(name string) Group {
	out := g
	out.children = cloneNodes(g.children)
	out.name = name
	return out
}

// Without returns a copy without the direct predicates matching drop.
func (g Group) Without(drop func(Predicate) bool) Group {
	out := g
	out.children = make([]Node, 0, len(g.children))
	for _, c := range g.children {
		if p, ok := c.(Predicate); ok && drop(p) {
			continue
		}
		out.children = append(out.children, c)
	}
	return out
}

// Predicates returns the direct predicates of the group.
func (g Group) Predicates() []Predicate {
	var out []Predicate
	for _, c := range g.children {
		if p, ok := c.(Predicate); ok {
			out = append(out, p)
		}
	}
	return out
}

// Groups returns the direct nested groups.
func (g Group) Groups() []Group {
	var out []Group
	for _, c := range g.children {
		if sub, ok := c.(Group); ok {
			out = append(out, sub)
		}
	}
	return out
}

// ByName returns the first predicate with the exact key, searching depth-first.
func (g Group) ByName(key string) (Predicate, bool) {
	var found Predicate
	var ok bool
	g.Walk(func(p Predicate) bool {
		if p.key == key {
			found, ok = p, true
			return false
		}
		return true
	})
	return found, ok
}

// Walk visits predicates depth-first in order until fn returns false.
func (g Group) Walk(fn func(Predicate) bool) {
	g.walk(fn)
}

func (g Group) walk(fn func(Predicate) bool) bool {
	for _, c := range g.children {
		switch n := c.(type) {
		case Predicate:
			if !fn(n) {
				return false
			}
		case Group:
			if !n.walk(fn) {
				return false
			}
		}
	}
	return true
}

// Params flattens the tree into querybuilder form. Nested groups are numbered
// 1_group, 2_group... in order; OR groups carry "p.or=true".
func (g Group) Params() map[string]string {
	out := make(map[string]string)
	g.flatten("", out)
	return out
}

func (g Group) flatten(prefix string, out map[string]string) {
	if !g.allRequired {
		out[prefix+OrParam] = "true"
	}
	n := 0
	for _, c := range g.children {
		switch node := c.(type) {
		case Predicate:
			out[prefix+node.key] = node.value
		case Group:
			n++
			node.flatten(prefix+strconv.Itoa(n)+"_"+groupType+".", out)
		}
	}
}

// GroupNames maps the flattened key of each direct subgroup ("1_group", "2_group"...)
// to its name. Params loses names; Renamed restores them after a Parse.
func (g Group) GroupNames() map[string]string {
	out := make(map[string]string)
	n := 0
	for _, c := range g.children {
		if sub, ok := c.(Group); ok {
			n++
			out[strconv.Itoa(n)+"_"+groupType] = sub.name
		}
	}
	return out
}

// Renamed returns a copy of g whose direct subgroups named by a key of names carry the
// mapped name instead. Other subgroups keep theirs.
func (g Group) Renamed(names map[string]string) Group {
	out := g
	out.children = cloneNodes(g.children)
	for i, c := range out.children {
		sub, ok := c.(Group)
		if !ok {
			continue
		}
		if name, ok := names[sub.name]; ok {
			out.children[i] = sub.WithName(name)
		}
	}
	return out
}

// String renders the flat form as sorted "key = value" lines.
func (g Group) String() string {
	params := g.Params()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString("\n")
		sb.WriteString(k)
		sb.WriteString(" = ")
		sb.WriteString(params[k])
	}
	return sb.String()
}

func cloneNodes(nodes []Node) []Node {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]Node, len(nodes))
	copy(out, nodes)
	return out
}
