package result

import "time"

// Envelope is the ordered result page plus paging metadata.
// It is immutable; modifiers return copies.
type Envelope struct {
	results      []Asset
	hitCount     int
	totalMatches int64
	totalGuessed bool
	startIndex   int
	limit        int
	elapsed      time.Duration
	query        string
	searchID     string
}

// NewEnvelope wraps mapped assets together with the backend metadata of m.
func NewEnvelope(results []Asset, m *Matches) *Envelope {
	return &Envelope{
		results:      append([]Asset(nil), results...),
		hitCount:     len(m.Hits),
		totalMatches: m.Total,
		totalGuessed: m.Guessed,
		startIndex:   m.Offset,
		limit:        m.Limit,
		elapsed:      m.Elapsed,
		query:        m.Statement,
	}
}

// Results returns the mapped assets in backend order.
func (e *Envelope) Results() []Asset { return append([]Asset(nil), e.results...) }

// ResultCount returns the number of mapped assets.
func (e *Envelope) ResultCount() int { return len(e.results) }

// HitCount returns the number of hits the backend returned for this page.
func (e *Envelope) HitCount() int { return e.hitCount }

// TotalMatches returns the backend's total match count, possibly an estimate.
func (e *Envelope) TotalMatches() int64 { return e.totalMatches }

// TotalGuessed reports whether TotalMatches is a capped estimate.
func (e *Envelope) TotalGuessed() bool { return e.totalGuessed }

// StartIndex returns the offset of the first hit.
func (e *Envelope) StartIndex() int { return e.startIndex }

// Limit returns the requested page size.
func (e *Envelope) Limit() int { return e.limit }

// Elapsed returns the backend execution time.
func (e *Envelope) Elapsed() time.Duration { return e.elapsed }

// Query returns the executed statement.
func (e *Envelope) Query() string { return e.query }

// SearchID returns the identifier assigned to this search.
func (e *Envelope) SearchID() string { return e.searchID }

// HasMore reports whether matches exist past this page.
func (e *Envelope) HasMore() bool {
	return int64(e.startIndex+e.hitCount) < e.totalMatches
}

// PageCount returns the number of pages of Limit size needed for TotalMatches.
func (e *Envelope) PageCount() int {
	if e.limit <= 0 || e.totalMatches <= 0 {
		return 0
	}
	return int((e.totalMatches + int64(e.limit) - 1) / int64(e.limit))
}

// WithResults returns a copy carrying the given assets.
func (e *Envelope) WithResults(results []Asset) *Envelope {
	out := *e
	out.results = append([]Asset(nil), results...)
	return &out
}

// WithSearchID returns a copy tagged with id.
func (e *Envelope) WithSearchID(id string) *Envelope {
	out := *e
	out.searchID = id
	return &out
}
