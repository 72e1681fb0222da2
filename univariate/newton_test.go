package univariate

import (
	"bytes"
	"encoding/csv"
	"math"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/btracey/newton/common"
	"github.com/btracey/newton/write"
)

const (
	intervalStart  = 0.0
	intervalEnd    = 2.0
	initialPoint   = 1.5
	eps            = 1e-8
	derivativeStep = 1e-3
)

// countingObjective counts how often it is evaluated.
type countingObjective struct {
	f     func(float64) float64
	calls int
}

func (c *countingObjective) Obj(x float64) float64 {
	c.calls++
	return c.f(x)
}

func TestFindRoot(t *testing.T) {
	for _, test := range []struct {
		name      string
		f         Func
		criterion common.Criterion
	}{
		{"LinearFunctionModule", func(x float64) float64 { return x - 1 }, common.FunctionModule},
		{"LinearDifference", func(x float64) float64 { return x - 1 }, common.DifferenceBetweenApproximates},
		{"LeftBorder", func(x float64) float64 { return x }, common.FunctionModule},
		{"RightBorder", func(x float64) float64 { return 2 - x }, common.FunctionModule},
		{"Cubic", func(x float64) float64 { return x*x*x - 0.5 }, common.FunctionModule},
		{"Exponential", func(x float64) float64 { return math.Exp(x) - 3 }, common.FunctionModule},
	} {
		t.Run(test.name, func(t *testing.T) {
			n := NewNewton(eps, derivativeStep)
			n.SetStoppingCriterion(test.criterion)
			obj := &countingObjective{f: test.f}

			result, err := n.FindRoot(obj, initialPoint, intervalStart, intervalEnd)
			require.NoError(t, err)
			assert.Equal(t, common.RootSuccessfullyFound, result.Status)
			assert.Equal(t, obj.calls, result.FunctionEvaluations+result.CheckEvaluations)
			assert.Less(t, math.Abs(test.f(result.Root)), eps)
			assert.Equal(t, test.f(result.Root), result.Residual)
			assert.True(t, contains(result.Root, intervalStart, intervalEnd), "root %v outside interval", result.Root)
			assert.Equal(t, common.RootSuccessfullyFound, n.LastStatus())
		})
	}
}

func TestFindRootFailures(t *testing.T) {
	for _, test := range []struct {
		name         string
		f            func(float64) float64
		init         float64
		lower, upper float64
		status       common.Status
	}{
		{"NoRoot", func(x float64) float64 { return x + 1 }, initialPoint, intervalStart, intervalEnd, common.NoRootInInterval},
		{"SwappedBounds", func(x float64) float64 { return x + 1 }, initialPoint, intervalEnd, intervalStart, common.IncorrectIntervalBoundaries},
		{"EmptyInterval", func(x float64) float64 { return x + 1 }, 1, 1, 1, common.IncorrectIntervalBoundaries},
		{"NaNBound", func(x float64) float64 { return x - 1 }, 1, math.NaN(), intervalEnd, common.IncorrectIntervalBoundaries},
		{"InitialOutside", func(x float64) float64 { return x + 1 }, -10, intervalStart, intervalEnd, common.InitialPointOutsideInterval},
		{"InitialNaN", func(x float64) float64 { return x - 1 }, math.NaN(), intervalStart, intervalEnd, common.InitialPointOutsideInterval},
		{"Nonmonotonic", func(x float64) float64 { return (x - 1) * (x - 1) }, initialPoint, intervalStart, intervalEnd, common.NonmonotonicFunctionOnInterval},
		{"NaNValues", func(x float64) float64 { return math.Sqrt(x - 1) }, initialPoint, intervalStart, intervalEnd, common.NonmonotonicFunctionOnInterval},
	} {
		t.Run(test.name, func(t *testing.T) {
			n := NewNewton(eps, derivativeStep)
			obj := &countingObjective{f: test.f}

			result, err := n.FindRoot(obj, test.init, test.lower, test.upper)
			require.NoError(t, err)
			assert.Equal(t, test.status, result.Status)
			assert.True(t, result.Status.Failed())
			assert.True(t, math.IsNaN(result.Root))
			assert.Equal(t, obj.calls, result.CheckEvaluations)
			assert.Equal(t, test.status, n.LastStatus())
		})
	}
}

func TestBadIntervalDoesNotEvaluate(t *testing.T) {
	n := NewNewton(eps, derivativeStep)
	obj := &countingObjective{f: func(x float64) float64 { return x - 1 }}

	result, err := n.FindRoot(obj, initialPoint, intervalEnd, intervalStart)
	require.NoError(t, err)
	assert.Equal(t, common.IncorrectIntervalBoundaries, result.Status)
	assert.Zero(t, obj.calls)

	result, err = n.FindRoot(obj, -10, intervalStart, intervalEnd)
	require.NoError(t, err)
	assert.Equal(t, common.InitialPointOutsideInterval, result.Status)
	assert.Zero(t, obj.calls)
}

func TestDifferenceCriterionStopsAfterFirstStep(t *testing.T) {
	// x_prev is advanced to the new iterate before the test, so
	// DifferenceBetweenApproximates accepts the first Newton step.
	f := func(x float64) float64 { return math.Exp(x) - 3 }
	fx := f(initialPoint)
	want := initialPoint - fx/((f(initialPoint+derivativeStep)-fx)/derivativeStep)

	n := NewNewton(eps, derivativeStep)
	n.SetStoppingCriterion(common.DifferenceBetweenApproximates)
	result, err := n.FindRoot(Func(f), initialPoint, intervalStart, intervalEnd)
	require.NoError(t, err)
	assert.Equal(t, common.RootSuccessfullyFound, result.Status)
	assert.Equal(t, 1, result.Iterations)
	assert.InDelta(t, want, result.Root, 1e-12)
	assert.InDelta(t, 1.1695557576542213, result.Root, 1e-12)
	assert.Equal(t, f(result.Root), result.Residual)
}

func TestStepLengthNeedsTwoAgreeingIterates(t *testing.T) {
	f := Func(func(x float64) float64 { return x - 1 })

	n := NewNewton(eps, derivativeStep)
	result, err := n.FindRoot(f, initialPoint, intervalStart, intervalEnd)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Iterations)

	n.SetStoppingCriterion(common.StepLength)
	result, err = n.FindRoot(f, initialPoint, intervalStart, intervalEnd)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Iterations)
	assert.True(t, scalar.EqualWithinAbsOrRel(result.Root, 1, eps, eps), "root %v", result.Root)

	exp := Func(func(x float64) float64 { return math.Exp(x) - 3 })
	result, err = n.FindRoot(exp, initialPoint, intervalStart, intervalEnd)
	require.NoError(t, err)
	assert.Equal(t, common.RootSuccessfullyFound, result.Status)
	assert.Greater(t, result.Iterations, 1)
	assert.True(t, scalar.EqualWithinAbs(result.Root, math.Log(3), 1e-8), "root %v", result.Root)
}

func TestStartAtRoot(t *testing.T) {
	n := NewNewton(eps, derivativeStep)
	result, err := n.FindRoot(Func(func(x float64) float64 { return x - 1 }), 1, intervalStart, intervalEnd)
	require.NoError(t, err)
	assert.Equal(t, common.RootSuccessfullyFound, result.Status)
	assert.Equal(t, 1.0, result.Root)
}

func TestIteratesStayInInterval(t *testing.T) {
	// The first step from near the flat part of the cubic lands far outside
	// the interval and has to be pulled back.
	f := Func(func(x float64) float64 { return x*x*x - 0.001 })
	const lower, upper = -1.0, 1.0

	var buf bytes.Buffer
	settings := common.DefaultCommonSettings()
	settings.WriteSettings = &write.WriteSettings{
		DisplayWriters: []write.Writer{{Writer: &buf, T: write.Logger}},
	}

	n := NewNewton(1e-12, 1e-7)
	n.SetSettings(settings)
	result, err := n.FindRoot(f, 0.001, lower, upper)
	require.NoError(t, err)
	require.Equal(t, common.RootSuccessfullyFound, result.Status)
	assert.Positive(t, result.Repairs)
	assert.True(t, scalar.EqualWithinAbsOrRel(result.Root, 0.1, 1e-8, 1e-8), "root %v", result.Root)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, result.Iterations+1)
	assert.Equal(t, []string{"Iter", "FnEval", "X", "F", "Deriv", "Repairs"}, records[0])
	for _, rec := range records[1:] {
		x, err := strconv.ParseFloat(rec[2], 64)
		require.NoError(t, err)
		assert.True(t, contains(x, lower, upper), "iterate %v outside interval", x)
	}
}

func TestRunLimits(t *testing.T) {
	f := Func(func(x float64) float64 { return x*x*x - 0.001 })

	for _, test := range []struct {
		name   string
		modify func(*common.CommonSettings)
		err    error
	}{
		{"Iterations", func(s *common.CommonSettings) { s.MaximumIterations = 0 }, common.ErrMaximumIterations},
		{"IterationsAfterOne", func(s *common.CommonSettings) { s.MaximumIterations = 1 }, common.ErrMaximumIterations},
		{"FunctionEvaluations", func(s *common.CommonSettings) { s.MaximumFunctionEvaluations = 2 }, common.ErrMaximumFunctionEvaluations},
		{"Repairs", func(s *common.CommonSettings) { s.MaximumRepairs = 1 }, common.ErrMaximumRepairs},
	} {
		t.Run(test.name, func(t *testing.T) {
			settings := common.DefaultCommonSettings()
			test.modify(settings)

			n := NewNewton(1e-12, 1e-7)
			n.SetSettings(settings)
			result, err := n.FindRoot(f, 0.001, -1, 1)
			require.ErrorIs(t, err, test.err)
			require.NotNil(t, result)
			assert.Equal(t, common.Continue, result.Status)
			assert.True(t, math.IsNaN(result.Root))
			assert.Equal(t, common.Continue, n.LastStatus())
		})
	}
}

func TestNaNStep(t *testing.T) {
	// NaN only between two scan samples, where the derivative sample lands.
	f := Func(func(x float64) float64 {
		if x > 1.5+1e-9 && x < 1.5+1e-6 {
			return math.NaN()
		}
		return x - 1
	})
	n := NewNewton(eps, 1e-7)
	result, err := n.FindRoot(f, initialPoint, intervalStart, intervalEnd)
	require.ErrorIs(t, err, common.ErrNaNStep)
	assert.Equal(t, common.Continue, result.Status)
	assert.True(t, math.IsNaN(result.Root))
}

func TestScanStep(t *testing.T) {
	// A dip narrower than the scan step is invisible to a coarse scan.
	f := Func(func(x float64) float64 {
		if x > 0.30 && x < 0.31 {
			return x - 1.5
		}
		return x - 1
	})

	n := NewNewton(eps, derivativeStep)
	result, err := n.FindRoot(f, initialPoint, intervalStart, intervalEnd)
	require.NoError(t, err)
	assert.Equal(t, common.NonmonotonicFunctionOnInterval, result.Status)

	n.SetScanStep(0.25)
	result, err = n.FindRoot(f, initialPoint, intervalStart, intervalEnd)
	require.NoError(t, err)
	assert.Equal(t, common.RootSuccessfullyFound, result.Status)
}

func TestSetAccuracy(t *testing.T) {
	n := NewDefaultNewton()
	assert.Equal(t, DefaultEps, n.Accuracy())

	n.SetAccuracy(1e-4)
	assert.Equal(t, 1e-4, n.Accuracy())

	n.SetAccuracy(0)
	assert.Equal(t, DefaultEps, n.Accuracy())

	n.SetAccuracy(1e-4)
	n.SetAccuracy(-1)
	assert.Equal(t, DefaultEps, n.Accuracy())

	n.SetAccuracy(math.NaN())
	assert.Equal(t, DefaultEps, n.Accuracy())
}

func TestSetDerivativeStep(t *testing.T) {
	n := NewDefaultNewton()
	assert.Equal(t, DefaultDerivativeStep, n.DerivativeStep())

	n.SetDerivativeStep(1e-2)
	assert.Equal(t, 1e-2, n.DerivativeStep())

	n.SetDerivativeStep(0)
	assert.Equal(t, DefaultDerivativeStep, n.DerivativeStep())

	n.SetDerivativeStep(-1e-2)
	assert.Equal(t, DefaultDerivativeStep, n.DerivativeStep())
}

func TestNewNewtonNormalizes(t *testing.T) {
	n := NewNewton(-1, 0)
	assert.Equal(t, DefaultEps, n.Accuracy())
	assert.Equal(t, DefaultDerivativeStep, n.DerivativeStep())
	assert.Equal(t, DefaultScanStep, n.ScanStep())

	n.SetScanStep(-3)
	assert.Equal(t, DefaultScanStep, n.ScanStep())
	n.SetScanStep(1e-3)
	assert.Equal(t, 1e-3, n.ScanStep())
}

func TestStoppingCriterion(t *testing.T) {
	n := NewDefaultNewton()
	assert.Equal(t, common.FunctionModule, n.StoppingCriterion())

	for _, c := range []common.Criterion{common.DifferenceBetweenApproximates, common.StepLength, common.FunctionModule} {
		n.SetStoppingCriterion(c)
		assert.Equal(t, c, n.StoppingCriterion())
	}
}

func TestLastStatus(t *testing.T) {
	n := NewNewton(eps, derivativeStep)
	assert.Equal(t, common.Continue, n.LastStatus())

	f := Func(func(x float64) float64 { return x - 1 })
	_, err := n.FindRoot(f, -10, intervalStart, intervalEnd)
	require.NoError(t, err)
	assert.Equal(t, common.InitialPointOutsideInterval, n.LastStatus())

	_, err = n.FindRoot(f, initialPoint, intervalStart, intervalEnd)
	require.NoError(t, err)
	assert.Equal(t, common.RootSuccessfullyFound, n.LastStatus())
}

func TestFindRootConcurrent(t *testing.T) {
	n := NewNewton(eps, derivativeStep)
	n.SetScanStep(1e-3)

	var wg sync.WaitGroup
	results := make([]*Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			root := 0.2 * float64(i+1)
			f := Func(func(x float64) float64 { return x - root })
			r, err := n.FindRoot(f, initialPoint, intervalStart, intervalEnd)
			if err == nil {
				results[i] = r
			}
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, common.RootSuccessfullyFound, r.Status)
		assert.InDelta(t, 0.2*float64(i+1), r.Root, eps)
	}
}

func TestNilObjectivePanics(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = NewDefaultNewton().FindRoot(nil, initialPoint, intervalStart, intervalEnd)
	})
}
