// Package clock abstracts the current wall-clock time so datetime resolution
// and time-of-day behavior can be pinned in tests. All times are server-local.
package clock

import "time"

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// System is the real clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always reports the same instant.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }
