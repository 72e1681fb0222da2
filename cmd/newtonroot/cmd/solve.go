package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/btracey/newton/common"
	"github.com/btracey/newton/expression"
	"github.com/btracey/newton/univariate"
	"github.com/btracey/newton/write"
)

type solveOptions struct {
	expr           string
	initial        float64
	start, end     float64
	accuracy       float64
	derivativeStep float64
	scanStep       float64
	criterion      string
	maxIter        int
	maxEvals       int
	maxRepairs     int
	timeout        time.Duration
	trace          string
}

func newSolveCmd() *cobra.Command {
	o := &solveOptions{}
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Find a root of one expression",
		Example: `  newtonroot solve --expr "x - 1" --x0 1.5 --start 0 --end 2
  newtonroot solve --expr "exp(x) - 3" --x0 1 --end 2 --criterion step --trace display`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd.OutOrStdout(), o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.expr, "expr", "e", "", "Function of x, e.g. \"x*x - 2\"")
	f.Float64Var(&o.initial, "x0", 0, "Initial point")
	f.Float64Var(&o.start, "start", 0, "Interval start")
	f.Float64Var(&o.end, "end", 1, "Interval end")
	f.Float64Var(&o.accuracy, "accuracy", univariate.DefaultEps, "Convergence threshold")
	f.Float64Var(&o.derivativeStep, "step", univariate.DefaultDerivativeStep, "Forward-difference step")
	f.Float64Var(&o.scanStep, "scan-step", univariate.DefaultScanStep, "Sampling step of the monotonicity scan")
	f.StringVar(&o.criterion, "criterion", "function-module", "Stopping criterion: function-module, difference or step")
	f.IntVar(&o.maxIter, "max-iter", -1, "Maximum Newton steps, negative for no limit")
	f.IntVar(&o.maxEvals, "max-evals", -1, "Maximum function evaluations in the Newton loop, negative for no limit")
	f.IntVar(&o.maxRepairs, "max-repairs", -1, "Maximum interval-repair halvings per step, negative for no limit")
	f.DurationVar(&o.timeout, "timeout", -1, "Maximum runtime, negative for no limit")
	f.StringVar(&o.trace, "trace", "", "Iteration trace: display, csv or log")
	_ = cmd.MarkFlagRequired("expr")
	return cmd
}

func runSolve(out io.Writer, o *solveOptions) error {
	obj, err := expression.Compile(o.expr)
	if err != nil {
		return err
	}
	criterion, err := common.ParseCriterion(o.criterion)
	if err != nil {
		return err
	}
	writers, err := traceWriters(o.trace, out)
	if err != nil {
		return err
	}

	settings := common.DefaultCommonSettings()
	settings.MaximumIterations = o.maxIter
	settings.MaximumFunctionEvaluations = o.maxEvals
	settings.MaximumRepairs = o.maxRepairs
	settings.MaximumRuntime = o.timeout
	settings.WriteSettings = &write.WriteSettings{DisplayWriters: writers}

	n := univariate.NewNewton(o.accuracy, o.derivativeStep)
	n.SetScanStep(o.scanStep)
	n.SetStoppingCriterion(criterion)
	n.SetSettings(settings)

	slog.Debug("solving", "expr", obj.String(), "x0", o.initial, "start", o.start, "end", o.end,
		"accuracy", n.Accuracy(), "step", n.DerivativeStep(), "criterion", criterion)

	result, err := n.FindRoot(obj, o.initial, o.start, o.end)
	if err != nil {
		return err
	}
	printResult(out, result)
	if !result.Status.Success() {
		return fmt.Errorf("%w: %v", errSearchFailed, result.Status)
	}
	return nil
}

func traceWriters(mode string, out io.Writer) ([]write.Writer, error) {
	switch mode {
	case "":
		return nil, nil
	case "display":
		return []write.Writer{{Writer: out, T: write.Displayer}}, nil
	case "csv":
		return []write.Writer{{Writer: out, T: write.Logger}}, nil
	case "log":
		return []write.Writer{{T: write.Slogger, Slog: slog.Default()}}, nil
	}
	return nil, fmt.Errorf("unknown trace mode %q", mode)
}

func printResult(out io.Writer, r *univariate.Result) {
	fmt.Fprintf(out, "root        = %.15g\n", r.Root)
	fmt.Fprintf(out, "residual    = %.3e\n", r.Residual)
	fmt.Fprintf(out, "status      = %v\n", r.Status)
	fmt.Fprintf(out, "iterations  = %d\n", r.Iterations)
	fmt.Fprintf(out, "evaluations = %d (+%d in checks)\n", r.FunctionEvaluations, r.CheckEvaluations)
}
