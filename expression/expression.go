// Package expression compiles textual functions of x into objectives for the
// univariate solvers.
//
// Expressions use the expr language (github.com/expr-lang/expr) with the
// variable x, the usual arithmetic and power operators (** or ^), the
// builtins of expr such as abs, min and max, and these additions:
//
//	sin cos tan atan sinh cosh tanh exp log log10 sqrt cbrt pow
//	pi e
package expression

import (
	"errors"
	"fmt"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/btracey/newton/univariate"
)

// ErrCompile is wrapped by every error returned from Compile.
var ErrCompile = errors.New("expression: compile")

// Variable is the name of the free variable in an expression.
const Variable = "x"

func newEnv() map[string]any {
	return map[string]any{
		Variable: 0.0,

		"sin":   math.Sin,
		"cos":   math.Cos,
		"tan":   math.Tan,
		"atan":  math.Atan,
		"sinh":  math.Sinh,
		"cosh":  math.Cosh,
		"tanh":  math.Tanh,
		"exp":   math.Exp,
		"log":   math.Log,
		"log10": math.Log10,
		"sqrt":  math.Sqrt,
		"cbrt":  math.Cbrt,
		"pow":   math.Pow,

		"pi": math.Pi,
		"e":  math.E,
	}
}

// Expression is a compiled function of x. It implements
// univariate.Objective. An Expression is not safe for concurrent use; compile
// one per goroutine.
type Expression struct {
	src     string
	program *vm.Program
	env     map[string]any
	vm      vm.VM
}

// Compile compiles src. The expression must evaluate to a number.
func Compile(src string) (*Expression, error) {
	env := newEnv()
	program, err := expr.Compile(src, expr.Env(env), expr.AsFloat64())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCompile, src, err)
	}
	return &Expression{
		src:     src,
		program: program,
		env:     env,
	}, nil
}

// Obj evaluates the expression at x. A runtime error evaluates to NaN, which
// the solver reports through its interval checks.
func (e *Expression) Obj(x float64) float64 {
	e.env[Variable] = x
	out, err := e.vm.Run(e.program, e.env)
	if err != nil {
		return math.NaN()
	}
	v, ok := out.(float64)
	if !ok {
		return math.NaN()
	}
	return v
}

// Func returns the expression as a univariate.Func.
func (e *Expression) Func() univariate.Func {
	return e.Obj
}

func (e *Expression) String() string {
	return e.src
}
