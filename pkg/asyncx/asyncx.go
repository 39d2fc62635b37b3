// Package asyncx holds the small concurrency helpers used when talking to
// infrastructure: settling independent probes in parallel and retrying
// connection attempts with backoff.
package asyncx

import (
	"context"
	"sync"
	"time"
)

// ─── Settle ──────────────────────────────────────────────────────────────────

// Result holds the outcome of a single settled operation.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the result carries no error.
func (r Result[T]) OK() bool { return r.Err == nil }

// AllSettled runs all fns concurrently and waits for every one to finish.
// It never short-circuits: there is one Result per fn, in order.
func AllSettled[T any](ctx context.Context, fns ...func(context.Context) (T, error)) []Result[T] {
	results := make([]Result[T], len(fns))
	var wg sync.WaitGroup
	wg.Add(len(fns))

	for i, fn := range fns {
		go func() {
			defer wg.Done()
			v, err := fn(ctx)
			results[i] = Result[T]{Value: v, Err: err}
		}()
	}
	wg.Wait()
	return results
}

// ─── Retry ────────────────────────────────────────────────────────────────────

// Backoff configures RetryWithBackoff.
type Backoff struct {
	Attempts     int
	InitialDelay time.Duration
	// MaxDelay caps the doubling; zero means uncapped
	MaxDelay time.Duration
	// OnRetry is called after each failed attempt that will be retried.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// RetryWithBackoff calls fn until it succeeds or the attempts run out,
// doubling the delay after each failure. The last error is returned.
func RetryWithBackoff[T any](ctx context.Context, b Backoff, fn func(context.Context) (T, error)) (T, error) {
	var (
		zero  T
		err   error
		val   T
		delay = b.InitialDelay
	)
	attempts := max(b.Attempts, 1)

	for i := range attempts {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}

		val, err = fn(ctx)
		if err == nil {
			return val, nil
		}
		if i == attempts-1 {
			break
		}

		if b.OnRetry != nil {
			b.OnRetry(i+1, err, delay)
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if b.MaxDelay > 0 && delay > b.MaxDelay {
			delay = b.MaxDelay
		}
	}
	return zero, err
}
