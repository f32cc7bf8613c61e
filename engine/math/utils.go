package math

import "golang.org/x/exp/constraints"

// Clamp returns f limited to [low, high].
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// ClampCount limits a declared element count to what is available, never
// going below zero. Declared counts come from untrusted headers.
func ClampCount[T constraints.Integer](declared T, available int) int {
	return int(Clamp(int64(declared), 0, int64(max(available, 0))))
}
