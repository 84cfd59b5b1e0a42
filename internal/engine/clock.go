package engine

import "time"

// Clock supplies wall-clock time. The engine only uses its civil date.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local wall clock.
//
// Thread-safety: SystemClock is stateless and safe for concurrent use.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }
