package result

import "time"

// Matches is the raw backend output for one query. All hits were produced by the same
// backend session; Hits holds their asset paths in backend order.
type Matches struct {
	Hits      []string
	Total     int64
	Guessed   bool
	Offset    int
	Limit     int
	Elapsed   time.Duration
	Statement string
}
