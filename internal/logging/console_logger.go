package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// ConsoleLogger writes progress and verbose lines to one writer and
// errors to another. Safe for concurrent use by multiple goroutines.
type ConsoleLogger struct {
	verbose bool
	out     io.Writer
	errOut  io.Writer
	mu      sync.Mutex
}

// NewConsoleLogger creates a ConsoleLogger writing to stdout and stderr.
// If verbose is false, Verbose() calls are no-ops.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return NewWriterLogger(verbose, os.Stdout, os.Stderr)
}

// NewWriterLogger creates a ConsoleLogger over arbitrary writers.
func NewWriterLogger(verbose bool, out, errOut io.Writer) *ConsoleLogger {
	return &ConsoleLogger{
		verbose: verbose,
		out:     out,
		errOut:  errOut,
	}
}

// Verbose logs detailed diagnostic information if verbose mode is enabled.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.write(l.out, "[VERBOSE] ", format, args)
}

// Info logs progress messages.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.write(l.out, "", format, args)
}

// Error logs error messages.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.write(l.errOut, "[ERROR] ", format, args)
}

func (l *ConsoleLogger) write(w io.Writer, prefix, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(args) > 0 {
		fmt.Fprintf(w, prefix+format+"\n", args...)
	} else {
		fmt.Fprint(w, prefix+format+"\n")
	}
}
