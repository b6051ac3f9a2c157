package ports

import "time"

// Clock abstracts time for the sampling loop.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// NextWait returns how long to sleep so that cycles start one interval
// apart, measured from the start of the previous cycle. Overlong cycles are
// followed immediately by the next one.
func NextWait(interval, elapsed time.Duration) time.Duration {
	if elapsed >= interval {
		return 0
	}
	return interval - elapsed
}
