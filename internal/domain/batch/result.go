// Package batch holds per-item outcomes of bulk asset operations.
package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of processing one asset in a batch operation.
type Result struct {
	path   string
	status ItemStatus
	err    error
}

// NewOK creates a successful batch result.
func NewOK(path string) Result { return Result{path: path, status: StatusOK} }

// NewError creates a failed batch result.
func NewError(path string, err error) Result { return Result{path: path, status: StatusError, err: err} }

// Path returns the asset path the result belongs to.
func (r Result) Path() string { return r.path }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Failed counts the failed results.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.status == StatusError {
			n++
		}
	}
	return n
}
