package subscription

import "time"

// Timer is a scheduled callback that can be cancelled.
// Implemented by *time.Timer.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented the
	// callback from firing.
	Stop() bool
}

// Clock abstracts wall-clock time and timer scheduling so tests can drive
// retry timing deterministically.
type Clock interface {
	// Now returns the current wall-clock time.
	Now() time.Time

	// AfterFunc schedules f to run after d and returns the timer.
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock is the real-time Clock used by default.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
