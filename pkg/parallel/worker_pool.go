// Package parallel provides a small generic worker pool used exclusively
// by internal/diagnostics to fan out heap-snapshot export work. Nothing
// in internal/engine uses this package: the GC and runtime are
// single-threaded by design, and snapshot export only ever touches
// immutable post-collection summary data, never the live heap.
package parallel

import (
	"context"
	"sync"
)

// Task is one unit of work submitted to a WorkerPool: it takes an input
// of type T and produces a result of type R or an error.
type Task[T, R any] struct {
	Input T
	Fn    func(ctx context.Context, input T) (R, error)
}

// Result pairs a Task's output with any error and the task's original
// input, so callers can correlate results back to inputs after
// reordering by concurrent completion.
type Result[T, R any] struct {
	Input T
	Value R
	Err   error
}

// WorkerPool runs a fixed number of goroutines pulling Tasks off a
// channel and writing each Result into its input's slot of a results
// slice.
type WorkerPool[T, R any] struct {
	workers int
}

// NewWorkerPool creates a pool with the given goroutine count. workers
// is clamped to at least 1.
func NewWorkerPool[T, R any](workers int) *WorkerPool[T, R] {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool[T, R]{workers: workers}
}

// Run submits all tasks, waits for completion and returns results in
// the same order the tasks were submitted (not necessarily completion
// order).
func (p *WorkerPool[T, R]) Run(ctx context.Context, tasks []Task[T, R]) []Result[T, R] {
	results := make([]Result[T, R], len(tasks))
	jobs := make(chan int, len(tasks))
	for i := range tasks {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				t := tasks[i]
				select {
				case <-ctx.Done():
					results[i] = Result[T, R]{Input: t.Input, Err: ctx.Err()}
					continue
				default:
				}
				v, err := t.Fn(ctx, t.Input)
				results[i] = Result[T, R]{Input: t.Input, Value: v, Err: err}
			}
		}()
	}
	wg.Wait()
	return results
}
