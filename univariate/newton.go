package univariate

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/btracey/newton/common"
)

// Defaults substituted for non-positive configuration values.
const (
	DefaultEps            = 1e-10
	DefaultDerivativeStep = 1e-10
	DefaultScanStep       = 1e-5
)

// Newton finds a root of a function of one variable with Newton's method,
// keeping every iterate inside a bounding interval.
//
// Before iterating, FindRoot checks in order that the interval is well
// formed, that it contains the initial point, that the function looks
// monotonic on it and that the function changes sign across it. The first
// failing check decides the status.
//
// Configuration setters never fail: a non-positive value is replaced by the
// corresponding default. A Newton value is safe for concurrent use, but
// LastStatus only reports the call that finished last.
type Newton struct {
	mu sync.Mutex

	accuracy       float64
	derivativeStep float64
	scanStep       float64
	criterion      common.Criterion
	settings       *common.CommonSettings
	logger         *slog.Logger

	lastStatus common.Status
}

// NewNewton returns a solver with the given accuracy and derivative step,
// the FunctionModule stopping criterion and no run limits.
func NewNewton(accuracy, derivativeStep float64) *Newton {
	n := &Newton{
		criterion: common.FunctionModule,
		scanStep:  DefaultScanStep,
	}
	n.SetAccuracy(accuracy)
	n.SetDerivativeStep(derivativeStep)
	return n
}

// NewDefaultNewton returns a solver using DefaultEps and DefaultDerivativeStep.
func NewDefaultNewton() *Newton {
	return NewNewton(DefaultEps, DefaultDerivativeStep)
}

// positiveOr returns v if it is positive, def otherwise.
func positiveOr(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

func (n *Newton) SetAccuracy(eps float64) {
	n.mu.Lock()
	n.accuracy = positiveOr(eps, DefaultEps)
	n.mu.Unlock()
}

func (n *Newton) Accuracy() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.accuracy
}

func (n *Newton) SetDerivativeStep(h float64) {
	n.mu.Lock()
	n.derivativeStep = positiveOr(h, DefaultDerivativeStep)
	n.mu.Unlock()
}

func (n *Newton) DerivativeStep() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.derivativeStep
}

// SetScanStep sets the sampling step of the monotonicity scan.
func (n *Newton) SetScanStep(s float64) {
	n.mu.Lock()
	n.scanStep = positiveOr(s, DefaultScanStep)
	n.mu.Unlock()
}

func (n *Newton) ScanStep() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.scanStep
}

func (n *Newton) SetStoppingCriterion(c common.Criterion) {
	n.mu.Lock()
	n.criterion = c
	n.mu.Unlock()
}

func (n *Newton) StoppingCriterion() common.Criterion {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.criterion
}

// SetSettings sets the run limits and trace writers. nil restores
// common.DefaultCommonSettings.
func (n *Newton) SetSettings(s *common.CommonSettings) {
	n.mu.Lock()
	n.settings = s
	n.mu.Unlock()
}

// SetLogger sets the logger search outcomes are reported to at debug
// level. nil means slog.Default().
func (n *Newton) SetLogger(l *slog.Logger) {
	n.mu.Lock()
	n.logger = l
	n.mu.Unlock()
}

// LastStatus returns the status of the most recently finished FindRoot
// call, or common.Continue if there has been none.
func (n *Newton) LastStatus() common.Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastStatus
}

// search is a snapshot of the configuration taken at the start of FindRoot.
type search struct {
	accuracy       float64
	derivativeStep float64
	scanStep       float64
	criterion      common.Criterion
	settings       *common.CommonSettings
}

// FindRoot searches for a root of f in [lower, upper] starting at initLoc.
//
// The returned Result is never nil. Its Status is one of the terminal
// statuses unless the search was stopped by a run limit or by a NaN Newton
// step, in which case Status is common.Continue and the error says why. A
// failed search always has a NaN Root. Any other error comes from the trace
// writers and leaves the Result intact.
func (n *Newton) FindRoot(f Objective, initLoc, lower, upper float64) (*Result, error) {
	if f == nil {
		panic("newton: no objective provided")
	}

	n.mu.Lock()
	s := search{
		accuracy:       n.accuracy,
		derivativeStep: n.derivativeStep,
		scanStep:       n.scanStep,
		criterion:      n.criterion,
		settings:       n.settings,
	}
	logger := n.logger
	n.mu.Unlock()
	if s.settings == nil {
		s.settings = common.DefaultCommonSettings()
	}
	if logger == nil {
		logger = slog.Default()
	}

	result, err := s.run(f, initLoc, lower, upper)

	n.mu.Lock()
	n.lastStatus = result.Status
	n.mu.Unlock()

	logger.Debug("newton: search finished",
		"status", result.Status,
		"root", result.Root,
		"iterations", result.Iterations,
		"evaluations", result.FunctionEvaluations+result.CheckEvaluations,
		"err", err,
	)
	return result, err
}

func (s *search) run(f Objective, initLoc, lower, upper float64) (*Result, error) {
	c := &counter{f: f}

	if !validInterval(lower, upper) {
		return failed(common.IncorrectIntervalBoundaries, c.n), nil
	}
	if !contains(initLoc, lower, upper) {
		return failed(common.InitialPointOutsideInterval, c.n), nil
	}
	if !isMonotonic(c.eval, lower, upper, s.scanStep) {
		return failed(common.NonmonotonicFunctionOnInterval, c.n), nil
	}
	if !hasRoot(c.eval, lower, upper) {
		return failed(common.NoRootInInterval, c.n), nil
	}
	checkEvals := c.n
	c.n = 0

	h := NewHelper()
	if err := h.Init(s.settings, f, initLoc); err != nil {
		return failed(common.Continue, checkEvals), fmt.Errorf("newton: trace: %w", err)
	}

	stop := func(err error) (*Result, error) {
		r, _ := h.Result(common.Continue, math.NaN(), math.NaN(), checkEvals)
		return r, err
	}

	x := initLoc
	residual := math.NaN()
	for {
		if err := h.Limit(); err != nil {
			return stop(err)
		}
		before := c.n

		fx := c.eval(x)
		deriv := forwardDifference(c.eval, x, fx, s.derivativeStep)
		next, repairs, err := repair(step(x, fx, deriv), x, lower, upper, h.MaximumRepairs())
		if err != nil {
			return stop(err)
		}
		xPrev := s.criterion.Previous(x, next)
		x = next
		converged := s.criterion.Converged(c.eval, x, xPrev, s.accuracy)
		if converged {
			residual = c.eval(x)
		}

		if err := h.Iterate(x, fx, deriv, repairs, c.n-before); err != nil {
			return stop(fmt.Errorf("newton: trace: %w", err))
		}
		if converged {
			break
		}
	}

	result, err := h.Result(common.RootSuccessfullyFound, x, residual, checkEvals)
	if err != nil {
		err = fmt.Errorf("newton: trace: %w", err)
	}
	return result, err
}
