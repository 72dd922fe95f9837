// Package numeric holds small generic arithmetic helpers shared across the
// octahedral-normal transforms, built on golang.org/x/exp/constraints
// so the same Abs/Sign work for both the int32 coordinates and any other
// signed integer type a future transform needs.
package numeric

import "golang.org/x/exp/constraints"

// Abs returns the absolute value of a signed integer.
func Abs[T constraints.Signed](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

// Sign returns -1, 0, or 1 according to the sign of v.
func Sign[T constraints.Signed](v T) T {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
