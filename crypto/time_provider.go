package crypto

import "time"

// TimeProvider abstracts the clock used by freshness checks so windows can be
// tested deterministically. Implementations must be safe for concurrent use.
// A *clock.Mock from github.com/benbjohnson/clock satisfies it.
type TimeProvider interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// DefaultTimeProvider uses the standard library time functions.
type DefaultTimeProvider struct{}

// Now returns the current time.
func (DefaultTimeProvider) Now() time.Time { return time.Now() }

// Since returns the duration since the given time.
func (DefaultTimeProvider) Since(t time.Time) time.Duration { return time.Since(t) }
