package search

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wildone/asset-share-commons/internal/db"
	"github.com/wildone/asset-share-commons/internal/domain"
	"github.com/wildone/asset-share-commons/internal/domain/pageconfig"
	"github.com/wildone/asset-share-commons/internal/domain/search/predicate"
)

// Predicate types understood by the translator.
const (
	typeType      = "type"
	typePath      = "path"
	typeFulltext  = "fulltext"
	typeProperty  = "property"
	typeDaterange = "daterange"
	typeOrderBy   = "orderby"
)

// Relevance ordering keys keep the backend order.
const scoreOrder = "@jcr:score"

// plan is a translated predicate tree ready for FT.SEARCH.
type plan struct {
	query      string
	sortBy     string
	sortOrder  db.SortOrder
	offset     int
	limit      int
	guessTotal string
}

type translator struct {
	index      *db.IndexDefinition
	textSearch bool
}

// translate turns a predicate tree into a query plan.
func (t *translator) translate(tree predicate.Group) (*plan, error) {
	q, err := t.group(tree)
	if err != nil {
		return nil, err
	}
	if q == "" {
		q = "*"
	}

	p := &plan{
		query:      q,
		offset:     intParam(tree, "p.offset", 0),
		limit:      intParam(tree, "p.limit", pageconfig.DefaultLimit),
		guessTotal: pageconfig.DefaultGuessTotal,
	}
	if p.offset < 0 {
		p.offset = 0
	}
	if p.limit < 1 || p.limit > pageconfig.MaxLimit {
		p.limit = pageconfig.DefaultLimit
	}
	if gt, ok := direct(tree, "p.guessTotal"); ok {
		p.guessTotal = pageconfig.ResolveGuessTotal(gt)
	}

	if err := t.ordering(tree, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (t *translator) ordering(tree predicate.Group, p *plan) error {
	orderBy, _ := direct(tree, typeOrderBy)
	orderBy = strings.TrimSpace(orderBy)
	if orderBy == "" || orderBy == scoreOrder {
		return nil
	}

	f, err := t.field(orderBy)
	if err != nil {
		return err
	}
	if !f.Sortable {
		return fmt.Errorf("%w: %q is not sortable", domain.ErrInvalidQuery, orderBy)
	}
	p.sortBy = f.Name
	p.sortOrder = db.SortAsc
	if sortDir, _ := direct(tree, typeOrderBy+".sort"); strings.EqualFold(sortDir, "desc") {
		p.sortOrder = db.SortDesc
	}
	return nil
}

// group renders one level of the tree. An empty result matches everything.
// Nested groups are parenthesized by their parent.
func (t *translator) group(g predicate.Group) (string, error) {
	var clauses []string
	matchAll := false

	for _, c := range constraints(g) {
		clause, err := t.constraint(c)
		if err != nil {
			return "", err
		}
		if clause == "" {
			matchAll = true
			continue
		}
		clauses = append(clauses, clause)
	}
	for _, sub := range g.Groups() {
		clause, err := t.group(sub)
		if err != nil {
			return "", err
		}
		if clause == "" {
			matchAll = true
			continue
		}
		clauses = append(clauses, "("+clause+")")
	}

	if !g.AllRequired() {
		if matchAll || len(clauses) == 0 {
			return "", nil
		}
		return strings.Join(clauses, " | "), nil
	}
	return strings.Join(clauses, " "), nil
}

// constraint is a predicate name with its primary value and options.
type constraint struct {
	name    string
	typ     string
	value   string
	options map[string]string
}

// constraints groups the direct predicates of g by name, in order of appearance.
// Query parameters and ordering are not constraints.
func constraints(g predicate.Group) []*constraint {
	var out []*constraint
	byName := make(map[string]*constraint)
	for _, p := range g.Predicates() {
		if p.IsParam() || p.Type() == typeOrderBy {
			continue
		}
		c, ok := byName[p.Name()]
		if !ok {
			c = &constraint{name: p.Name(), typ: p.Type(), options: make(map[string]string)}
			byName[p.Name()] = c
			out = append(out, c)
		}
		if p.Param() == "" {
			c.value = p.Value()
		} else {
			c.options[p.Param()] = p.Value()
		}
	}
	return out
}

func (t *translator) constraint(c *constraint) (string, error) {
	switch c.typ {
	case typeType:
		if c.value == "" {
			return "", nil
		}
		return tagClause(FieldType, []string{c.value}), nil
	case typePath:
		return t.path(c), nil
	case typeFulltext:
		if strings.TrimSpace(c.value) == "" {
			return "", nil
		}
		if !t.textSearch {
			return "", domain.ErrFulltextNotSupported
		}
		return fmt.Sprintf("@%s:(%s)", FieldFulltext, escapeQuery(c.value)), nil
	case typeProperty:
		return t.property(c)
	case typeDaterange:
		return t.daterange(c)
	default:
		return "", fmt.Errorf("%w: unknown predicate %q", domain.ErrInvalidQuery, c.name)
	}
}

func (t *translator) path(c *constraint) string {
	p := strings.TrimSpace(c.value)
	if p == "" {
		return ""
	}
	p = path.Clean(p)
	switch {
	case isTrue(c.options["exact"]):
		return tagClause(FieldPath, []string{p})
	case isTrue(c.options["flat"]):
		return tagClause(FieldParent, []string{p})
	default:
		if isTrue(c.options["self"]) {
			return "(" + tagClause(FieldPath, []string{p}) + " | " + tagClause(FieldAncestors, []string{p}) + ")"
		}
		return tagClause(FieldAncestors, []string{p})
	}
}

// property renders property/value/operation constraints.
func (t *translator) property(c *constraint) (string, error) {
	if strings.TrimSpace(c.value) == "" {
		return "", nil
	}
	f, err := t.field(c.value)
	if err != nil {
		return "", err
	}
	key := f.Name
	values := propertyValues(c.options)
	op := strings.ToLower(c.options["operation"])
	if op == "" {
		op = "equals"
	}

	switch op {
	case "exists", "not":
		present := !isFalse(c.options["value"])
		if op == "not" {
			present = !present
		}
		clause := tagClause(FieldPresent, []string{key})
		if !present {
			clause = "-" + clause
		}
		return clause, nil
	case "equals", "unequals":
	default:
		return "", fmt.Errorf("%w: unsupported operation %q", domain.ErrInvalidQuery, op)
	}

	if len(values) == 0 {
		return "", fmt.Errorf("%w: property %q has no value", domain.ErrInvalidQuery, c.value)
	}

	var clause string
	switch f.Type {
	case db.IndexFieldTag:
		if isTrue(c.options["and"]) && op == "equals" {
			parts := make([]string, 0, len(values))
			for _, v := range values {
				parts = append(parts, tagClause(key, []string{v}))
			}
			clause = strings.Join(parts, " ")
		} else {
			clause = tagClause(key, values)
		}
	case db.IndexFieldNumeric:
		parts := make([]string, 0, len(values))
		for _, v := range values {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return "", fmt.Errorf("%w: %q is not numeric", domain.ErrInvalidQuery, v)
			}
			parts = append(parts, numericClause(key, bound(n, false), bound(n, false)))
		}
		clause = strings.Join(parts, " | ")
		if len(parts) > 1 {
			clause = "(" + clause + ")"
		}
	default:
		return "", fmt.Errorf("%w: property %q is not filterable", domain.ErrInvalidQuery, c.value)
	}

	if op == "unequals" {
		return "-" + clause, nil
	}
	return clause, nil
}

// daterange renders a numeric range over epoch millis. With includeMissing the
// complement of the excluded ranges is used so assets without the field match.
func (t *translator) daterange(c *constraint) (string, error) {
	prop := strings.TrimSpace(c.options["property"])
	if prop == "" {
		return "", nil
	}
	f, err := t.field(prop)
	if err != nil {
		return "", err
	}
	if f.Type != db.IndexFieldNumeric {
		return "", fmt.Errorf("%w: %q is not a date field", domain.ErrInvalidQuery, prop)
	}
	key := f.Name

	lower, hasLower, err := parseDate(c.options["lowerBound"])
	if err != nil {
		return "", err
	}
	upper, hasUpper, err := parseDate(c.options["upperBound"])
	if err != nil {
		return "", err
	}
	if !hasLower && !hasUpper {
		return "", nil
	}
	lowerExclusive := c.options["lowerOperation"] == ">"
	upperExclusive := c.options["upperOperation"] == "<"

	if !isTrue(c.options["includeMissing"]) {
		lo, hi := "-inf", "+inf"
		if hasLower {
			lo = bound(lower, lowerExclusive)
		}
		if hasUpper {
			hi = bound(upper, upperExclusive)
		}
		return numericClause(key, lo, hi), nil
	}

	var parts []string
	if hasLower {
		parts = append(parts, "-"+numericClause(key, "-inf", bound(lower, !lowerExclusive)))
	}
	if hasUpper {
		parts = append(parts, "-"+numericClause(key, bound(upper, !upperExclusive), "+inf"))
	}
	return strings.Join(parts, " "), nil
}

// field resolves a property name or "@"-prefixed ordering key to an index field.
// Only the last path segment is significant.
func (t *translator) field(name string) (db.IndexField, error) {
	n := path.Base(strings.TrimPrefix(strings.TrimSpace(name), "@"))
	if mapped, ok := propertyFields[n]; ok {
		n = mapped
	}
	f, ok := t.index.FieldByName(n)
	if !ok || n == FieldFulltext || n == FieldPresent {
		return db.IndexField{}, fmt.Errorf("%w: unknown property %q", domain.ErrInvalidQuery, name)
	}
	return f, nil
}

// propertyValues collects "value" and "N_value" options in positional order.
func propertyValues(options map[string]string) []string {
	type positioned struct {
		pos   int
		value string
	}
	var vals []positioned
	for k, v := range options {
		if predicate.TypeOf(k) != "value" || v == "" {
			continue
		}
		pos := 0
		if k != "value" {
			pos, _ = strconv.Atoi(strings.TrimSuffix(k, "_value"))
		}
		vals = append(vals, positioned{pos: pos, value: v})
	}
	sort.Slice(vals, func(i, j int) bool {
		if vals[i].pos != vals[j].pos {
			return vals[i].pos < vals[j].pos
		}
		return vals[i].value < vals[j].value
	})
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		out = append(out, v.value)
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseDate reads epoch millis or an ISO-8601 date into epoch millis.
func parseDate(v string) (float64, bool, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false, nil
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return float64(n), true, nil
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return float64(ts.UnixMilli()), true, nil
		}
	}
	return 0, false, fmt.Errorf("%w: invalid date %q", domain.ErrInvalidQuery, v)
}

// direct returns the value of a top-level predicate with the exact key.
func direct(g predicate.Group, key string) (string, bool) {
	for _, p := range g.Predicates() {
		if p.Key() == key {
			return p.Value(), true
		}
	}
	return "", false
}

func intParam(g predicate.Group, key string, def int) int {
	v, ok := direct(g, key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func isTrue(v string) bool  { return strings.EqualFold(strings.TrimSpace(v), "true") }
func isFalse(v string) bool { return strings.EqualFold(strings.TrimSpace(v), "false") }

// --- Query helpers ---

func tagClause(key string, values []string) string {
	escaped := make([]string, 0, len(values))
	for _, v := range values {
		escaped = append(escaped, tagEscaper.Replace(v))
	}
	return fmt.Sprintf("@%s:{%s}", key, strings.Join(escaped, " | "))
}

func numericClause(key, lo, hi string) string {
	return fmt.Sprintf("@%s:[%s %s]", key, lo, hi)
}

func bound(v float64, exclusive bool) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if exclusive {
		return "(" + s
	}
	return s
}

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"/", "\\/",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
)
