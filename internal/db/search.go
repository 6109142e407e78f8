package db

// SortOrder is the direction of an FT.SEARCH SORTBY clause.
type SortOrder string

const (
	// SortAsc sorts ascending.
	SortAsc SortOrder = "ASC"
	// SortDesc sorts descending.
	SortDesc SortOrder = "DESC"
)

// SearchQuery is the input for an FT.SEARCH call.
type SearchQuery struct {
	IndexName string
	// Query is the FT.SEARCH query string; "*" matches everything.
	Query string
	// SortBy names a SORTABLE field. Empty keeps relevance order.
	SortBy    string
	SortOrder SortOrder
	Offset    int
	Limit     int
}

// SearchResult is the output of a search operation. Entries carry keys only.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key string
}
