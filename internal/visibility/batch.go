package visibility

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mrtommyb/tesstvgapp/internal/metrics"
	"github.com/mrtommyb/tesstvgapp/internal/position"
)

var tracer = otel.Tracer("github.com/mrtommyb/tesstvgapp/internal/visibility")

// WorkerPool runs index-addressed work on a fixed number of goroutines.
type WorkerPool struct {
	workers int
}

// NewWorkerPool creates a worker pool with the given number of workers.
// Values below one are raised to one.
func NewWorkerPool(workers int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{workers: workers}
}

// Workers returns the pool size.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// Run calls fn once for every index in [0, n). Each index is handled by
// exactly one worker, so fn may write to slot i of a preallocated slice
// without further locking. Returns ctx.Err() only if the context ended
// before every index was handed out.
func (wp *WorkerPool) Run(ctx context.Context, n int, fn func(i int)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	workers := min(wp.workers, n)
	jobs := make(chan int, workers*2)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}

	var err error
feed:
	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return err
}

// EvaluateAll evaluates every position. The result has the same length and
// order as positions; an empty batch yields an empty slice. If ctx ends
// early the unevaluated slots are left as not observable and ctx.Err() is
// returned.
func (e *Evaluator) EvaluateAll(ctx context.Context, positions []position.Position) ([]Result, error) {
	ctx, span := tracer.Start(ctx, "visibility.EvaluateAll",
		trace.WithAttributes(attribute.Int("positions", len(positions))))
	defer span.End()

	start := time.Now()
	results := make([]Result, len(positions))

	err := e.pool.Run(ctx, len(positions), func(i int) {
		results[i] = e.Evaluate(positions[i].RA, positions[i].Dec)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Warn("batch evaluation interrupted",
			"component", "visibility",
			"positions", len(positions),
			"error", err,
		)
		return results, err
	}

	observable := 0
	for _, r := range results {
		metrics.RecordVerdict(r.Observable)
		if r.Observable {
			observable++
		}
	}
	duration := time.Since(start)
	metrics.ObserveEvaluation(duration.Seconds())
	span.SetAttributes(attribute.Int("observable", observable))

	e.logger.Debug("batch evaluated",
		"component", "visibility",
		"positions", len(positions),
		"observable", observable,
		"workers", e.pool.Workers(),
		"duration_ms", duration.Milliseconds(),
	)

	return results, nil
}
