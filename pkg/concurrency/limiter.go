// Package concurrency implements the bounded task pool used to cap
// simultaneous upstream calls and pair computations (C2).
//
// Unlike a generic worker pool, the Limiter's only observable contract is:
// at most N submitted tasks run at once, and queued tasks are admitted in
// FIFO order. Completion order is unspecified.
package concurrency

import "context"

// Limiter is a counted semaphore with FIFO admission, implemented as a
// buffered channel: a send blocks until a slot is free, and channel sends
// are served in the order they arrive.
type Limiter struct {
	slots chan struct{}
}

// New creates a Limiter that allows at most n tasks to run concurrently.
func New(n int) *Limiter {
	if n < 1 {
		n = 1
	}
	return &Limiter{slots: make(chan struct{}, n)}
}

// Go submits fn to run under the limiter's concurrency bound and blocks the
// caller until fn has run and returned its error. Callers that want fan-out
// should invoke Go from their own goroutines and collect results themselves;
// Limiter only governs admission, not scheduling of the caller's goroutines.
func (l *Limiter) Go(ctx context.Context, fn func(context.Context) error) error {
	select {
	case l.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.slots }()

	return fn(ctx)
}

// Task is a unit of work submitted to RunAll, paired with its result slot by
// index.
type Task[T any] func(context.Context) (T, error)

// Result holds a Task's output. RunAll stores it at the task's index in the
// original submission order, since completion order under the limiter is
// unspecified.
type Result[T any] struct {
	Value T
	Err   error
}

// RunAll submits every task to the limiter and blocks until all have
// completed, returning results in the same order as tasks (regardless of
// completion order).
func RunAll[T any](ctx context.Context, l *Limiter, tasks []Task[T]) []Result[T] {
	results := make([]Result[T], len(tasks))
	done := make(chan int, len(tasks))

	for i, task := range tasks {
		i, task := i, task
		go func() {
			err := l.Go(ctx, func(ctx context.Context) error {
				v, err := task(ctx)
				results[i] = Result[T]{Value: v, Err: err}
				return err
			})
			if err != nil && results[i].Err == nil {
				results[i] = Result[T]{Err: err}
			}
			done <- i
		}()
	}

	for range tasks {
		<-done
	}
	return results
}

// Current returns the number of tasks presently occupying a slot.
func (l *Limiter) Current() int { return len(l.slots) }

// Limit returns the configured concurrency bound.
func (l *Limiter) Limit() int { return cap(l.slots) }
