// Package logging provides concrete implementations of the pairload.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: progress on stdout, errors on stderr, optional verbose lines
//   - NullLogger: Discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
