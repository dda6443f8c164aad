package retry

import (
	"context"
	"time"

	"github.com/vvka-141/pairload/pkg/pairload"
)

// Executor runs an operation until it succeeds, fails fatally, or the
// strategy's retry budget is spent. Safe for concurrent use.
type Executor struct {
	classifier pairload.ErrorClassifier
	strategy   pairload.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates a new retry executor.
// Panics if classifier or strategy is nil.
func NewExecutor(classifier pairload.ErrorClassifier, strategy pairload.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{
		classifier: classifier,
		strategy:   strategy,
	}
}

// WithOnRetry returns a copy of the executor that calls callback before each wait.
// The receiver is not modified.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs operation, retrying transient failures.
// Returns nil, the first fatal error, the last transient error, or ctx.Err().
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	err := operation(ctx)
	if err == nil || !e.classifier.IsTransient(err) {
		return err
	}

	maxAttempts := e.strategy.MaxAttempts()
	for attempt := 0; maxAttempts < 0 || attempt < maxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		delay := e.strategy.NextDelay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		err = operation(ctx)
		if err == nil || !e.classifier.IsTransient(err) {
			return err
		}
	}

	return err
}
