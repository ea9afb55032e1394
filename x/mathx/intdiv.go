package mathx

import "golang.org/x/exp/constraints"

// RoundDiv returns floor((a + b/2)/b), classic rounding for positives; b == 0 yields 0.
func RoundDiv[T constraints.Unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b/2) / b
}

// Percent returns pct% of full, rounded, with pct clamped to [0, 100].
func Percent[T constraints.Unsigned](full T, pct uint8) T {
	p := Clamp(pct, 0, 100)
	return T(RoundDiv(uint64(full)*uint64(p), 100))
}
