package pairload

import (
	"context"
	"time"
)

// DatasetSource materializes a remote dataset split as an in-memory table.
type DatasetSource interface {
	// FetchTable downloads every row of the split. The returned table keeps
	// the source column order and row order.
	FetchTable(ctx context.Context, dataset, split string) (*Table, error)
}

// Sink writes records to a remote table. One call corresponds to one
// request against the service; implementations must not split or retry it.
type Sink interface {
	Insert(ctx context.Context, table string, records []Record) error
}

// SinkCloser is a Sink holding resources that must be released.
type SinkCloser interface {
	Sink
	Close()
}

// ErrorClassifier reports whether an error is worth retrying.
type ErrorClassifier interface {
	IsTransient(err error) bool
}

// BackoffStrategy calculates the delay before the next retry attempt.
type BackoffStrategy interface {
	// NextDelay returns the wait before retry number attempt (zero-indexed).
	NextDelay(attempt int) time.Duration

	// MaxAttempts is the retry budget: 0 disables retries, -1 is unlimited.
	MaxAttempts() int
}
