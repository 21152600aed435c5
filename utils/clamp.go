// SPDX-License-Identifier: EPL-2.0

package utils

import "cmp"

// Clamp limits v to [lo, hi].
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MinMax returns a and b ordered.
func MinMax[T cmp.Ordered](a, b T) (T, T) {
	if b < a {
		return b, a
	}
	return a, b
}
