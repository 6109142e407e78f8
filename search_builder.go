package assetshare

import (
	"context"
	"strconv"
	"time"
)

// QueryBuilder is a fluent builder for querybuilder parameter maps.
// Repeated predicates of one type are numbered in call order.
type QueryBuilder struct {
	client *Client
	page   string
	prefix string
	params map[string]string
	counts map[string]int
}

// name returns the next numbered name for a predicate type.
func (b *QueryBuilder) name(typ string) string {
	if b.counts == nil {
		b.counts = make(map[string]int)
	}
	b.counts[typ]++
	return b.prefix + strconv.Itoa(b.counts[typ]) + "_" + typ
}

func (b *QueryBuilder) set(key, value string) {
	b.params[key] = value
}

// Path restricts results to assets under root.
func (b *QueryBuilder) Path(root string) *QueryBuilder {
	b.set(b.name("path"), root)
	return b
}

// Folder restricts results to the direct children of dir.
func (b *QueryBuilder) Folder(dir string) *QueryBuilder {
	n := b.name("path")
	b.set(n, dir)
	b.set(n+".flat", "true")
	return b
}

// Type restricts results to a node type.
func (b *QueryBuilder) Type(t string) *QueryBuilder {
	b.set(b.prefix+"type", t)
	return b
}

// Fulltext adds a fulltext term. Only the redis driver supports it.
func (b *QueryBuilder) Fulltext(text string) *QueryBuilder {
	b.set(b.prefix+"fulltext", text)
	return b
}

// Property matches assets whose property equals any of values.
func (b *QueryBuilder) Property(name string, values ...string) *QueryBuilder {
	n := b.name("property")
	b.set(n, name)
	b.values(n, values)
	return b
}

// PropertyAll matches assets whose property carries every one of values.
func (b *QueryBuilder) PropertyAll(name string, values ...string) *QueryBuilder {
	n := b.name("property")
	b.set(n, name)
	b.set(n+".and", "true")
	b.values(n, values)
	return b
}

// PropertyNot excludes assets whose property equals any of values.
func (b *QueryBuilder) PropertyNot(name string, values ...string) *QueryBuilder {
	n := b.name("property")
	b.set(n, name)
	b.set(n+".operation", "unequals")
	b.values(n, values)
	return b
}

// Exists matches assets that carry the property.
func (b *QueryBuilder) Exists(name string) *QueryBuilder {
	n := b.name("property")
	b.set(n, name)
	b.set(n+".operation", "exists")
	return b
}

func (b *QueryBuilder) values(n string, values []string) {
	if len(values) == 1 {
		b.set(n+".value", values[0])
		return
	}
	for i, v := range values {
		b.set(n+"."+strconv.Itoa(i+1)+"_value", v)
	}
}

// Between matches assets whose date property lies in [from, to]. A zero bound is open.
func (b *QueryBuilder) Between(property string, from, to time.Time) *QueryBuilder {
	n := b.name("daterange")
	b.set(n+".property", property)
	if !from.IsZero() {
		b.set(n+".lowerBound", strconv.FormatInt(from.UnixMilli(), 10))
	}
	if !to.IsZero() {
		b.set(n+".upperBound", strconv.FormatInt(to.UnixMilli(), 10))
	}
	return b
}

// Or adds a nested group whose constraints are alternatives.
func (b *QueryBuilder) Or(fn func(*QueryBuilder)) *QueryBuilder {
	return b.group(true, fn)
}

// And adds a nested group whose constraints are all required.
func (b *QueryBuilder) And(fn func(*QueryBuilder)) *QueryBuilder {
	return b.group(false, fn)
}

func (b *QueryBuilder) group(or bool, fn func(*QueryBuilder)) *QueryBuilder {
	n := b.name("group")
	sub := &QueryBuilder{prefix: n + ".", params: b.params}
	if or {
		sub.set(n+".p.or", "true")
	}
	fn(sub)
	return b
}

// OrderBy sorts results by a property.
func (b *QueryBuilder) OrderBy(property string, desc bool) *QueryBuilder {
	b.set("orderby", property)
	if desc {
		b.set("orderby.sort", "desc")
	} else {
		b.set("orderby.sort", "asc")
	}
	return b
}

// Offset skips the first n matches.
func (b *QueryBuilder) Offset(n int) *QueryBuilder {
	b.set("p.offset", strconv.Itoa(n))
	return b
}

// Limit sets the page size.
func (b *QueryBuilder) Limit(n int) *QueryBuilder {
	b.set("p.limit", strconv.Itoa(n))
	return b
}

// Set adds a raw querybuilder parameter.
func (b *QueryBuilder) Set(key, value string) *QueryBuilder {
	b.set(b.prefix+key, value)
	return b
}

// Params returns a copy of the assembled parameter map.
func (b *QueryBuilder) Params() map[string]string {
	out := make(map[string]string, len(b.params))
	for k, v := range b.params {
		out[k] = v
	}
	return out
}

// Do runs the search.
func (b *QueryBuilder) Do(ctx context.Context) (*Results, error) {
	return b.client.Search(ctx, b.page, b.Params())
}
