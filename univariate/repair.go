package univariate

import (
	"math"

	"github.com/btracey/newton/common"
)

// repair pulls a Newton iterate that left [lower, upper] back inside by
// repeatedly replacing it with its midpoint with prev, the last iterate
// known to be inside. It returns the repaired iterate and the number of
// halvings.
//
// An infinite step (zero derivative) is first replaced by the bound it was
// heading for, since halving towards infinity never ends. A NaN step cannot
// be repaired and returns common.ErrNaNStep. maxRepairs < 0 means no limit;
// otherwise exceeding it returns common.ErrMaximumRepairs.
func repair(x, prev, lower, upper float64, maxRepairs int) (float64, int, error) {
	var n int
	switch {
	case math.IsNaN(x):
		return x, 0, common.ErrNaNStep
	case math.IsInf(x, 1):
		x = upper
	case math.IsInf(x, -1):
		x = lower
	}
	for !contains(x, lower, upper) {
		if maxRepairs > -1 && n >= maxRepairs {
			return math.NaN(), n, common.ErrMaximumRepairs
		}
		x = (x + prev) / 2
		n++
	}
	return x, n, nil
}

// step is the raw Newton update from x. A point with a zero residual does
// not move.
func step(x, fx, deriv float64) float64 {
	if fx == 0 {
		return x
	}
	return x - fx/deriv
}
