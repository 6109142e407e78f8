package predicate

import (
	"sort"
	"strings"
)

// Parse builds a Group tree named RootName from a flat querybuilder map.
// The result is deterministic: children are ordered by positional prefix, then by key.
func Parse(params map[string]string) Group {
	return parseLevel(RootName, params)
}

type entry struct {
	pos  int
	name string
	key  string
	node Node
}

func parseLevel(name string, params map[string]string) Group {
	g := NewGroup(name)

	nested := make(map[string]map[string]string)
	var entries []entry

	for k, v := range params {
		if k == OrParam {
			g.allRequired = !strings.EqualFold(v, "true")
			continue
		}

		head, rest, hasRest := strings.Cut(k, ".")
		if hasRest && TypeOf(head) == groupType {
			if nested[head] == nil {
				nested[head] = make(map[string]string)
			}
			nested[head][rest] = v
			continue
		}

		entries = append(entries, entry{pos: position(head), name: head, key: k, node: New(k, v)})
	}

	for head, sub := range nested {
		entries = append(entries, entry{pos: position(head), name: head, key: head + ".", node: parseLevel(head, sub)})
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.pos != b.pos {
			return a.pos < b.pos
		}
		if a.name != b.name {
			return a.name < b.name
		}
		return a.key < b.key
	})

	for _, e := range entries {
		g.children = append(g.children, e.node)
	}
	return g
}

func sortedKeys(params map[string]string) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, pj := position(keys[i]), position(keys[j])
		if pi != pj {
			return pi < pj
		}
		return keys[i] < keys[j]
	})
	return keys
}
