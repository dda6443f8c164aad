// Package retry wraps flaky remote calls in exponential backoff.
//
// It is used where the remote side is expected to recover on its own: paging
// through a dataset host that rate-limits, and opening a database pool while
// the server is still starting. Insert batches are never retried; a failed
// batch ends the load run.
//
//	executor := retry.NewExecutor(retry.NewHTTPErrorClassifier(), retry.NewExponentialBackoff(5))
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return fetchPage(ctx, offset)
//	})
package retry
