// Package visibility decides, for each parsed position, whether the camera
// array observes it, on which camera, and in how many sectors.
package visibility

import (
	"log/slog"
	"sync"

	"github.com/mrtommyb/tesstvgapp/internal/pointing"
)

// Oracle is the pointing model the evaluator queries.
type Oracle interface {
	Classify(ra, dec float64) pointing.Classification
	Camera(ra, dec float64, fallback bool) int
	Coverage(ra, dec float64) pointing.CoverageStats
	Sectors(ra, dec float64) []int
	// Reentrant reports whether the oracle may be called from several
	// goroutines at once.
	Reentrant() bool
}

// Result is the visibility verdict for one position.
// Camera and Sectors are zero whenever Observable is false.
type Result struct {
	Observable bool
	Camera     int // 1..N, 0 when not observable
	Sectors    int // maximum sector count over the pointing ensemble
}

// Evaluator maps positions to Results through an Oracle.
type Evaluator struct {
	oracle Oracle
	pool   *WorkerPool
	mu     sync.Mutex // serializes oracle calls when the oracle is not reentrant
	serial bool
	logger *slog.Logger
}

// NewEvaluator creates an evaluator that fans batches out to the given
// number of workers.
func NewEvaluator(oracle Oracle, workers int, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		oracle: oracle,
		pool:   NewWorkerPool(workers),
		serial: !oracle.Reentrant(),
		logger: logger,
	}
}

// Evaluate queries the oracle for one position. Only the Observable
// classification counts; camera and coverage are looked up only for
// observable positions.
func (e *Evaluator) Evaluate(ra, dec float64) Result {
	if e.serial {
		e.mu.Lock()
		defer e.mu.Unlock()
	}

	if e.oracle.Classify(ra, dec) != pointing.Observable {
		return Result{}
	}
	return Result{
		Observable: true,
		Camera:     e.oracle.Camera(ra, dec, true),
		Sectors:    e.oracle.Coverage(ra, dec).Max,
	}
}

// SectorList returns the covering sector numbers for an observable
// position and nil otherwise.
func (e *Evaluator) SectorList(ra, dec float64, r Result) []int {
	if !r.Observable {
		return nil
	}
	if e.serial {
		e.mu.Lock()
		defer e.mu.Unlock()
	}
	return e.oracle.Sectors(ra, dec)
}
