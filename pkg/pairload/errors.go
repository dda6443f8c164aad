package pairload

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := svc.Load(ctx, opts)
//	if errors.Is(err, pairload.ErrBatchFailed) {
//	    // earlier batches are already persisted
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMissingCredentials indicates the remote table service URL or key is not set.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrInputNotFound indicates the CSV handed to the loader does not exist.
	ErrInputNotFound = errors.New("input file not found")

	// ErrFetchFailed indicates the remote dataset could not be fetched or saved.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrDatasetAccess indicates the dataset host refused access (gated or private dataset).
	ErrDatasetAccess = errors.New("dataset access denied")

	// ErrBatchFailed indicates an insert call for one batch failed.
	ErrBatchFailed = errors.New("batch insert failed")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")
)

// usagePatterns are the prefixes cobra and pflag use for command line misuse.
var usagePatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"required flag",
	"invalid argument",
	"flag needs an argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrMissingCredentials), errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrInputNotFound):
		return ExitInputMissing
	case errors.Is(err, ErrDatasetAccess), errors.Is(err, ErrFetchFailed):
		return ExitFetchFailed
	case errors.Is(err, ErrBatchFailed):
		return ExitInsertFailed
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	}

	errStr := err.Error()
	for _, p := range usagePatterns {
		if strings.HasPrefix(errStr, p) {
			return ExitUsageError
		}
	}

	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
