package univariate

import "gonum.org/v1/gonum/floats/scalar"

// validInterval reports whether upper > lower. NaN bounds are invalid.
func validInterval(lower, upper float64) bool {
	return upper > lower
}

// contains reports whether x lies in [lower, upper]. NaN is never contained.
func contains(x, lower, upper float64) bool {
	return x >= lower && x <= upper
}

// isMonotonic samples f at lower, lower+step, lower+2*step, ... and at upper,
// and reports whether every forward difference between neighbouring samples
// has the same sign. A zero difference has its own sign, so a flat stretch
// next to a rising one fails the test.
//
// This is a sampling heuristic: a change of direction between two samples
// goes unnoticed.
func isMonotonic(f func(float64) float64, lower, upper, step float64) bool {
	// Samples closer to upper than this are replaced by upper itself so the
	// final difference is not taken over a sliver of rounding error.
	slack := step * 1e-6

	prev := f(lower)
	var prevSign float64
	first := true
	for i := 1; ; i++ {
		x := lower + float64(i)*step
		last := x >= upper || scalar.EqualWithinAbs(x, upper, slack)
		if last {
			x = upper
		}
		v := f(x)
		s := sign(v - prev)
		if !first && s != prevSign {
			return false
		}
		prev, prevSign, first = v, s, false
		if last {
			return true
		}
	}
}

// hasRoot is the sign-change test. A zero at either end counts as a root; a
// NaN at either end does not.
func hasRoot(f func(float64) float64, lower, upper float64) bool {
	return f(lower)*f(upper) <= 0
}

// sign returns -1, 0 or 1, and NaN for NaN so that it never matches.
func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	case v == 0:
		return 0
	}
	return v
}
