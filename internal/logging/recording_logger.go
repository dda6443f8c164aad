package logging

import (
	"fmt"
	"sync"
)

// Entry is one message captured by a RecordingLogger.
type Entry struct {
	Level   string
	Message string
}

// RecordingLogger keeps every message in memory. Tests use it to assert on
// progress output without capturing process streams.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecordingLogger creates an empty RecordingLogger.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) Verbose(format string, args ...interface{}) {
	l.add("verbose", format, args)
}

func (l *RecordingLogger) Info(format string, args ...interface{}) {
	l.add("info", format, args)
}

func (l *RecordingLogger) Error(format string, args ...interface{}) {
	l.add("error", format, args)
}

// Entries returns a copy of the captured messages.
func (l *RecordingLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Messages returns the captured messages of one level.
func (l *RecordingLogger) Messages(level string) []string {
	var out []string
	for _, e := range l.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

func (l *RecordingLogger) add(level, format string, args []interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Message: msg})
}
