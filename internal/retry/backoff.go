package retry

import (
	"math"
	"math/rand"
	"time"
)

// ExponentialBackoff implements exponential backoff with jitter.
type ExponentialBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64

	// maxAttempts is the retry budget (-1 = unlimited, 0 = no retries)
	maxAttempts int

	// jitter of 0.1 means +/- 10% randomness
	jitter     float64
	jitterFunc func() float64
}

// BackoffOption is a functional option for configuring ExponentialBackoff.
type BackoffOption func(*ExponentialBackoff)

// WithInitialDelay sets the delay before the first retry.
func WithInitialDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) {
		b.initialDelay = d
	}
}

// WithMaxDelay caps the delay between retries.
func WithMaxDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) {
		b.maxDelay = d
	}
}

// WithMultiplier sets the growth factor between retries.
func WithMultiplier(m float64) BackoffOption {
	return func(b *ExponentialBackoff) {
		b.multiplier = m
	}
}

// WithJitter sets the jitter factor (0.0-1.0).
func WithJitter(j float64) BackoffOption {
	return func(b *ExponentialBackoff) {
		b.jitter = j
	}
}

// WithJitterFunc replaces the random source, which must return values in [0, 1).
func WithJitterFunc(f func() float64) BackoffOption {
	return func(b *ExponentialBackoff) {
		b.jitterFunc = f
	}
}

// NewExponentialBackoff creates a strategy with 100ms initial delay, 30s cap,
// doubling, and 10% jitter unless overridden.
func NewExponentialBackoff(maxAttempts int, opts ...BackoffOption) *ExponentialBackoff {
	b := &ExponentialBackoff{
		initialDelay: 100 * time.Millisecond,
		maxDelay:     30 * time.Second,
		multiplier:   2.0,
		maxAttempts:  maxAttempts,
		jitter:       0.1,
		jitterFunc:   rand.Float64,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NextDelay returns initialDelay * multiplier^attempt, capped and jittered.
func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	delay := float64(b.initialDelay) * math.Pow(b.multiplier, float64(attempt))
	if limit := float64(b.maxDelay); delay > limit {
		delay = limit
	}

	if b.jitter > 0 && b.jitterFunc != nil {
		// Map [0,1) to [-1,1)
		offset := (b.jitterFunc() - 0.5) * 2.0
		delay *= 1.0 + b.jitter*offset
	}

	return time.Duration(delay)
}

// MaxAttempts returns the retry budget.
func (b *ExponentialBackoff) MaxAttempts() int {
	return b.maxAttempts
}
