package common

import (
	"time"

	"github.com/btracey/newton/write"
)

type Initer interface {
	Init()
}

type Resulter interface {
	Result()
}

// Helper routines for wrapping the objective function
//
// If the function is an Initer it will be called once per search.
// If the function is a Resulter it is called when the search ends.
// If the function is a write.DataAdder its values are added to the trace.
type ObjectiveWrapper struct {
	fun interface{}
}

func (o *ObjectiveWrapper) Init(objectiveFunction interface{}) {
	o.fun = objectiveFunction

	initer, ok := objectiveFunction.(Initer)
	if ok {
		initer.Init()
	}
}

func (o *ObjectiveWrapper) Result() {
	resulter, ok := o.fun.(Resulter)
	if ok {
		resulter.Result()
	}
}

func (o *ObjectiveWrapper) AppendWriteData(v []*write.Value) []*write.Value {
	dataWriter, ok := o.fun.(write.DataAdder)
	if ok {
		return dataWriter.AppendWriteData(v)
	}
	return v
}

// CommonSettings is a set of run limits available to all solvers. A negative
// value disables the corresponding limit.
type CommonSettings struct {
	MaximumIterations          int           // Sets the maximum number of Newton steps that can occur
	MaximumFunctionEvaluations int           // Sets the maximum number of function evaluations in the Newton loop
	MaximumRuntime             time.Duration // Sets the maximum runtime that can elapse
	MaximumRepairs             int           // Sets the maximum number of interval-repair halvings per step
	*write.WriteSettings
}

// DefaultCommonSettings returns settings with every limit disabled and no
// trace writers.
func DefaultCommonSettings() *CommonSettings {
	return &CommonSettings{
		MaximumIterations:          -1, // Defaults to no maximum iterations
		MaximumFunctionEvaluations: -1, // Defaults to no maximum function evaluations
		MaximumRuntime:             -1, // Defaults to no maximum runtime
		MaximumRepairs:             -1, // Defaults to halving until the iterate is back inside
		WriteSettings:              write.DefaultWriteSettings(),
	}
}

// CommonResult is a list of results from the common structure
type CommonResult struct {
	Iterations          int           // Total number of Newton steps taken
	FunctionEvaluations int           // Function evaluations made by the Newton loop
	Runtime             time.Duration // Total runtime elapsed during the search
	Status              Status        // How did the search end
}

// Common provides routines for controlling the settings provided by common.
type Common struct {
	iter      int
	funEvals  int
	startTime time.Time

	settings *CommonSettings

	*write.Display
	*ObjectiveWrapper
}

// NewCommon creates a new Common structure, and adds itself to the datawriter
func NewCommon() *Common {
	c := &Common{
		Display:          write.NewDisplay(),
		ObjectiveWrapper: &ObjectiveWrapper{},
	}
	c.AddDataAdder(c, c.ObjectiveWrapper)
	return c
}

// Init initializes all of the values in common at the start of the search
func (c *Common) Init(settings *CommonSettings, objectiveFunction interface{}) error {
	c.iter = 0
	c.funEvals = 0
	c.startTime = time.Now()

	s := *settings
	if s.WriteSettings == nil {
		s.WriteSettings = write.DefaultWriteSettings()
	}
	c.settings = &s

	c.ObjectiveWrapper.Init(objectiveFunction)
	return c.Display.Init(c.settings.WriteSettings)
}

// AppendWriteData adds the components of common to the display structure
func (c *Common) AppendWriteData(d []*write.Value) []*write.Value {
	d = append(d, &write.Value{Heading: "Iter", Value: c.iter})
	d = append(d, &write.Value{Heading: "FnEval", Value: c.funEvals})
	return d
}

// Limit checks if any of the run limits controlled by common has been
// exceeded (iterations, funevals, runtime) and returns the matching error.
func (c *Common) Limit() error {
	if c.settings.MaximumIterations > -1 && c.iter >= c.settings.MaximumIterations {
		return ErrMaximumIterations
	}
	if c.settings.MaximumFunctionEvaluations > -1 && c.funEvals >= c.settings.MaximumFunctionEvaluations {
		return ErrMaximumFunctionEvaluations
	}
	if c.settings.MaximumRuntime > -1 && time.Since(c.startTime) > c.settings.MaximumRuntime {
		return ErrMaximumRuntime
	}
	return nil
}

// MaximumRepairs returns the per-step repair limit, negative if unlimited.
func (c *Common) MaximumRepairs() int {
	return c.settings.MaximumRepairs
}

// Result returns the results from the common structure
func (c *Common) Result(status Status) *CommonResult {
	c.ObjectiveWrapper.Result()
	return &CommonResult{
		Iterations:          c.iter,
		FunctionEvaluations: c.funEvals,
		Runtime:             time.Since(c.startTime),
		Status:              status,
	}
}

// Iterate performs an iteration of the common structure, incrementing
// the iteration, appending the number of function evaluations, and
// writing to the writers
func (c *Common) Iterate(nFunEvals int) error {
	c.iter++
	c.funEvals += nFunEvals
	return c.Display.Iterate()
}
