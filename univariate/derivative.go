package univariate

import "gonum.org/v1/gonum/diff/fd"

// forwardDifference approximates f'(x) by (f(x+h) - f(x)) / h. fx is the
// already known f(x), so f is evaluated once.
func forwardDifference(f func(float64) float64, x, fx, h float64) float64 {
	return fd.Derivative(f, x, &fd.Settings{
		Formula:     fd.Forward,
		Step:        h,
		OriginKnown: true,
		OriginValue: fx,
	})
}
