package testutil

// FixedRand always draws the same value, clamped to [0, n).
type FixedRand struct {
	Value int
}

// IntN returns Value, clamped into [0, n).
func (r FixedRand) IntN(n int) int {
	switch {
	case r.Value < 0:
		return 0
	case r.Value >= n:
		return n - 1
	default:
		return r.Value
	}
}
