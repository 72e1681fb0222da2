package common

import "errors"

// Run-limit errors. A search that hits one of these returns a NaN root with
// the Continue status; check with errors.Is.
var (
	ErrMaximumIterations          = errors.New("newton: maximum iterations reached")
	ErrMaximumFunctionEvaluations = errors.New("newton: maximum function evaluations reached")
	ErrMaximumRuntime             = errors.New("newton: maximum runtime elapsed")
	ErrMaximumRepairs             = errors.New("newton: interval repair did not return inside the interval")
)

// ErrNaNStep is returned when a Newton step produces NaN, which happens when
// the objective returns NaN near the iterate.
var ErrNaNStep = errors.New("newton: Newton step is NaN")

// ErrUnknownCriterion is returned by ParseCriterion for an unrecognised name.
var ErrUnknownCriterion = errors.New("newton: unknown stopping criterion")
