package univariate

import (
	"math"

	"github.com/btracey/newton/common"
	"github.com/btracey/newton/write"
)

// Objective is a real-valued function of one variable. Each call is
// independent and may be repeated.
type Objective interface {
	Obj(x float64) float64
}

// Func adapts an ordinary function to the Objective interface.
type Func func(x float64) float64

func (f Func) Obj(x float64) float64 { return f(x) }

// counter counts the evaluations of an objective.
type counter struct {
	f Objective
	n int
}

func (c *counter) eval(x float64) float64 {
	c.n++
	return c.f.Obj(x)
}

// Helper is a helper struct for solvers. Not intended for use by
// callers of root-finding functions, but exported to aid others who are
// building solvers on the same limits and trace output.
//
// Implementers should call Init() at the beginning of a search and Limit()
// before every step. At the end of every iteration should call Iterate()
type Helper struct {
	*common.Common

	locCurr   float64
	objCurr   float64
	derivCurr float64
	repairs   int
	totRepair int
}

// NewHelper creates a new univariate type and adds itself to the data adders
func NewHelper() *Helper {
	u := &Helper{
		Common: common.NewCommon(),
	}
	u.AddDataAdder(u)
	return u
}

func (u *Helper) AppendWriteData(v []*write.Value) []*write.Value {
	v = append(v, &write.Value{Heading: "X", Value: u.locCurr})
	v = append(v, &write.Value{Heading: "F", Value: u.objCurr})
	v = append(v, &write.Value{Heading: "Deriv", Value: u.derivCurr})
	v = append(v, &write.Value{Heading: "Repairs", Value: u.repairs})
	return v
}

func (u *Helper) Init(s *common.CommonSettings, objectiveFunction interface{}, initLoc float64) error {
	u.locCurr = initLoc
	u.objCurr = math.NaN()
	u.derivCurr = math.NaN()
	u.repairs = 0
	u.totRepair = 0
	return u.Common.Init(s, objectiveFunction)
}

// Iterate records a Newton step: obj and deriv are the values at the point
// the step was taken from, loc is the (repaired) new iterate.
func (u *Helper) Iterate(loc, obj, deriv float64, repairs, nFunEvals int) error {
	u.locCurr = loc
	u.objCurr = obj
	u.derivCurr = deriv
	u.repairs = repairs
	u.totRepair += repairs
	return u.Common.Iterate(nFunEvals)
}

// Result finishes the trace and returns the result of the search. The error
// is from the trace writers only.
func (u *Helper) Result(status common.Status, root, residual float64, checkEvals int) (*Result, error) {
	err := u.Display.Done()
	return &Result{
		CommonResult:     u.Common.Result(status),
		Root:             root,
		Residual:         residual,
		Repairs:          u.totRepair,
		CheckEvaluations: checkEvals,
	}, err
}

// Result is the outcome of a root search. Root and Status always belong to
// the same call.
type Result struct {
	*common.CommonResult
	Root             float64 // Root approximation inside the interval, NaN unless Status is RootSuccessfullyFound
	Residual         float64 // Objective value at Root, NaN on failure
	Repairs          int     // Total interval-repair halvings over all steps
	CheckEvaluations int     // Function evaluations spent on the interval checks
}

// failed builds the result of a search that ended before the Newton loop.
func failed(status common.Status, checkEvals int) *Result {
	return &Result{
		CommonResult: &common.CommonResult{
			Status: status,
		},
		Root:             math.NaN(),
		Residual:         math.NaN(),
		CheckEvaluations: checkEvals,
	}
}
