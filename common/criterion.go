package common

import (
	"fmt"
	"math"
	"strings"
)

// Criterion selects the convergence test used to end a Newton iteration.
type Criterion int

const (
	// FunctionModule stops once the residual |f(x)| is below the accuracy.
	FunctionModule Criterion = iota
	// DifferenceBetweenApproximates stops once |x - x_prev| is below the
	// accuracy, where x_prev has already been advanced to the new iterate.
	// The test therefore passes on the first iteration.
	DifferenceBetweenApproximates
	// StepLength stops once the Newton step just taken, after interval
	// repair, is shorter than the accuracy.
	StepLength
)

var criterionNames = map[Criterion]string{
	FunctionModule:                "FunctionModule",
	DifferenceBetweenApproximates: "DifferenceBetweenApproximates",
	StepLength:                    "StepLength",
}

// Aliases accepted by ParseCriterion, in addition to the String forms.
var criterionAliases = map[string]Criterion{
	"function-module": FunctionModule,
	"residual":        FunctionModule,
	"difference":      DifferenceBetweenApproximates,
	"step-length":     StepLength,
	"step":            StepLength,
}

func (c Criterion) String() string {
	str, ok := criterionNames[c]
	if !ok {
		return "UnknownCriterion"
	}
	return str
}

// Converged reports whether the iteration that moved from xPrev to x has
// converged with respect to the accuracy. It is a pure predicate; the
// residual test evaluates f once at x.
//
// An unknown criterion never converges.
func (c Criterion) Converged(f func(float64) float64, x, xPrev, accuracy float64) bool {
	switch c {
	case FunctionModule:
		return math.Abs(f(x)) < accuracy
	case DifferenceBetweenApproximates, StepLength:
		return math.Abs(x-xPrev) < accuracy
	}
	return false
}

// Previous returns the x_prev that Converged is given after an iteration
// moved from start to next. StepLength compares against start; the other
// criteria see x_prev already set to next.
func (c Criterion) Previous(start, next float64) float64 {
	if c == StepLength {
		return start
	}
	return next
}

// ParseCriterion returns the criterion named by s. Both the String form and
// the short CLI aliases are accepted, case-insensitively.
func ParseCriterion(s string) (Criterion, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for c, str := range criterionNames {
		if strings.ToLower(str) == name {
			return c, nil
		}
	}
	if c, ok := criterionAliases[name]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCriterion, s)
}
