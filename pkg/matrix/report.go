package matrix

import (
	"sync"

	"github.com/Arturo-Amberg/TrabajoTesis/pkg/osrm"
)

// Failure records one request the builder gave up on. Cells covered by the
// request hold the failure value (or, for a region, nothing is stored).
type Failure struct {
	Scope     string
	RowOffset int
	ColOffset int
	Rows      int
	Cols      int
	Kind      string
	Err       error
}

type Report struct {
	mu       sync.Mutex
	Requests int
	Failures []Failure
	Skipped  []string
}

func (r *Report) addRequest() {
	r.mu.Lock()
	r.Requests++
	r.mu.Unlock()
}

func (r *Report) addFailure(f Failure) {
	if f.Kind == "" {
		f.Kind = osrm.KindName(f.Err)
	}
	r.mu.Lock()
	r.Failures = append(r.Failures, f)
	r.mu.Unlock()
}

func (r *Report) addSkipped(scope string) {
	r.mu.Lock()
	r.Skipped = append(r.Skipped, scope)
	r.mu.Unlock()
}

// FailedCells is the number of cells covered by failed requests. Chunked
// builds and port times hold the failure value in those cells; a failed
// region is left out of the output entirely.
func (r *Report) FailedCells() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, f := range r.Failures {
		n += f.Rows * f.Cols
	}
	return n
}
