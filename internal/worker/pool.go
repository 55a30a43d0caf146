// Package worker runs independent jobs on a bounded number of goroutines.
package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Task represents one job and its outcome.
type Task[T any, R any] struct {
	Input  T
	Result R
	Err    error
}

// ProcessFunc is the function signature for processing a single task.
type ProcessFunc[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool is a generic worker pool with configurable concurrency.
type Pool[T any, R any] struct {
	workers int
	process ProcessFunc[T, R]
	onDone  func(Task[T, R])
}

// NewPool creates a new worker pool.
func NewPool[T any, R any](workers int, fn ProcessFunc[T, R]) *Pool[T, R] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T, R]{
		workers: workers,
		process: fn,
	}
}

// OnDone registers a callback run after each task, from the worker goroutine.
func (p *Pool[T, R]) OnDone(fn func(Task[T, R])) *Pool[T, R] {
	p.onDone = fn
	return p
}

// Execute runs all inputs through the pool and returns one task per input,
// in input order. Inputs not started before ctx is cancelled carry ctx.Err().
func (p *Pool[T, R]) Execute(ctx context.Context, inputs []T) []Task[T, R] {
	results := make([]Task[T, R], len(inputs))
	started := make([]bool, len(inputs))
	inputCh := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := range inputCh {
				result, err := p.process(ctx, inputs[idx])
				task := Task[T, R]{Input: inputs[idx], Result: result, Err: err}
				results[idx] = task
				if err != nil {
					log.Error().Err(err).Int("worker", workerID).Int("index", idx).Msg("Task failed")
				}
				if p.onDone != nil {
					p.onDone(task)
				}
			}
		}(w)
	}

send:
	for i := range inputs {
		select {
		case <-ctx.Done():
			break send
		case inputCh <- i:
			started[i] = true
		}
	}
	close(inputCh)
	wg.Wait()

	for i := range inputs {
		if !started[i] {
			results[i] = Task[T, R]{Input: inputs[i], Err: ctx.Err()}
		}
	}
	return results
}
