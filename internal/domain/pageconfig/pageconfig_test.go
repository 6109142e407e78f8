package pageconfig

import (
	"reflect"
	"strconv"
	"testing"
)

func TestResolve_Defaults(t *testing.T) {
	c := Default()

	if c.Limit() != DefaultLimit {
		t.Errorf("limit = %d, want %d", c.Limit(), DefaultLimit)
	}
	if c.GuessTotal() != DefaultGuessTotal {
		t.Errorf("guessTotal = %q, want %q", c.GuessTotal(), DefaultGuessTotal)
	}
	if c.OrderBy() != DefaultOrderBy || c.OrderBySort() != DefaultOrderBySort {
		t.Errorf("ordering = %q/%q", c.OrderBy(), c.OrderBySort())
	}
	if !reflect.DeepEqual(c.Paths(), []string{"/content/dam"}) {
		t.Errorf("paths = %v", c.Paths())
	}
	if len(c.Fragments()) != 0 || len(c.Hidden()) != 0 {
		t.Error("expected no fragments or hidden filters")
	}
}

func TestResolve_ConfiguredLimit(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", DefaultLimit},
		{"abc", DefaultLimit},
		{"0", DefaultLimit},
		{"-5", DefaultLimit},
		{"1", 1},
		{"20", 20},
		{"1000", MaxLimit},
		{"5000", MaxLimit},
	}
	for _, tc := range tests {
		t.Run("limit="+tc.raw, func(t *testing.T) {
			c := Resolve(Properties{PropLimit: tc.raw})
			if c.Limit() != tc.want {
				t.Errorf("Limit() = %d, want %d", c.Limit(), tc.want)
			}
		})
	}
}

func TestResolveLimit_RequestRules(t *testing.T) {
	c := Resolve(Properties{PropLimit: "50"})

	tests := []struct {
		name      string
		requested string
		present   bool
		want      int
	}{
		{"absent", "", false, 50},
		{"over max", "5000", true, MaxLimit},
		{"zero", "0", true, DefaultLimit},
		{"negative", "-1", true, DefaultLimit},
		{"non numeric", "abc", true, 50},
		{"in range", "25", true, 25},
		{"max", "1000", true, 1000},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.ResolveLimit(tc.requested, tc.present); got != tc.want {
				t.Errorf("ResolveLimit(%q) = %d, want %d", tc.requested, got, tc.want)
			}
		})
	}
}

func TestResolveLimit_AlwaysInRange(t *testing.T) {
	c := Default()
	for _, n := range []int{-1 << 20, -1, 0, 1, 2, 999, 1000, 1001, 1 << 20} {
		got := c.ResolveLimit(strconv.Itoa(n), true)
		if got < 1 || got > MaxLimit {
			t.Errorf("ResolveLimit(%d) = %d out of range", n, got)
		}
	}
}

func TestResolveGuessTotal(t *testing.T) {
	tests := []struct {
		raw, want string
	}{
		{"true", GuessTotalContinuous},
		{"TRUE", GuessTotalContinuous},
		{"", DefaultGuessTotal},
		{"abc", DefaultGuessTotal},
		{"false", DefaultGuessTotal},
		{"0", DefaultGuessTotal},
		{"2001", DefaultGuessTotal},
		{"1", "1"},
		{"2000", "2000"},
		{"100", "100"},
	}
	for _, tc := range tests {
		if got := ResolveGuessTotal(tc.raw); got != tc.want {
			t.Errorf("ResolveGuessTotal(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestResolve_Paths(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", []string{"/content/dam"}},
		{"narrowed", "/content/dam/marketing, /content/dam/sales", []string{"/content/dam/marketing", "/content/dam/sales"}},
		{"escape attempt", "/content/other", []string{"/content/dam"}},
		{"partial segment", "/content/dam-other", []string{"/content/dam"}},
		{"mixed", "/content/other,/content/dam/a", []string{"/content/dam/a"}},
		{"dot segments", "/content/dam/../secret", []string{"/content/dam"}},
		{"trailing slash", "/content/dam/a/", []string{"/content/dam/a"}},
		{"backslash", `/content/dam/a\}`, []string{"/content/dam"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Resolve(Properties{PropPaths: tc.raw})
			if !reflect.DeepEqual(c.Paths(), tc.want) {
				t.Errorf("Paths() = %v, want %v", c.Paths(), tc.want)
			}
		})
	}
}

func TestResolve_IndependentFallbacks(t *testing.T) {
	c := Resolve(Properties{
		PropLimit:       "not-a-number",
		PropGuessTotal:  "99999",
		PropOrderBy:     "@jcr:content/jcr:lastModified",
		PropOrderBySort: "asc",
	})
	if c.Limit() != DefaultLimit {
		t.Errorf("limit = %d", c.Limit())
	}
	if c.GuessTotal() != DefaultGuessTotal {
		t.Errorf("guessTotal = %q", c.GuessTotal())
	}
	if c.OrderBy() != "@jcr:content/jcr:lastModified" || c.OrderBySort() != "asc" {
		t.Errorf("malformed numbers must not reset ordering, got %q/%q", c.OrderBy(), c.OrderBySort())
	}
}

func TestResolve_FragmentsAndHidden(t *testing.T) {
	c := Resolve(Properties{
		PropSearchPredicates: "not-expired, approved",
		PropHiddenPredicates: `[{"property":"status","property.value":"approved"},{},{"p.or":"true","1_tags":"a","2_tags":"b"}]`,
	})

	if !reflect.DeepEqual(c.Fragments(), []string{"not-expired", "approved"}) {
		t.Errorf("fragments = %v", c.Fragments())
	}
	hidden := c.Hidden()
	if len(hidden) != 2 {
		t.Fatalf("expected 2 hidden groups, got %d", len(hidden))
	}
	if !hidden[0].AllRequired() || hidden[0].Len() != 2 {
		t.Errorf("unexpected first hidden group: %+v", hidden[0])
	}
	if hidden[1].AllRequired() {
		t.Error("second hidden group should be OR")
	}
}

func TestResolve_MalformedHiddenIgnored(t *testing.T) {
	c := Resolve(Properties{PropHiddenPredicates: "{not json", PropLimit: "10"})
	if len(c.Hidden()) != 0 {
		t.Error("malformed hidden predicates must be ignored")
	}
	if c.Limit() != 10 {
		t.Errorf("limit = %d, want 10", c.Limit())
	}
}

func TestConfig_AccessorsReturnCopies(t *testing.T) {
	c := Resolve(Properties{PropPaths: "/content/dam/a"})
	p := c.Paths()
	p[0] = "/etc"
	if c.Paths()[0] != "/content/dam/a" {
		t.Error("Paths() must return a copy")
	}
}

func TestIsUnder(t *testing.T) {
	tests := []struct {
		p, root string
		want    bool
	}{
		{"/content/dam", "/content/dam", true},
		{"/content/dam/a", "/content/dam", true},
		{"/content/dam/a", "/content/dam/", true},
		{"/content/dam-other", "/content/dam", false},
		{"/content", "/content/dam", false},
	}
	for _, tc := range tests {
		if got := IsUnder(tc.p, tc.root); got != tc.want {
			t.Errorf("IsUnder(%q, %q) = %v, want %v", tc.p, tc.root, got, tc.want)
		}
	}
}
