package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/btracey/newton/config"
	"github.com/btracey/newton/univariate"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	nameStyle = lipgloss.NewStyle().Width(20)
)

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "batch FILE",
		Short:   "Solve every problem in a TOML or YAML file",
		Example: "  newtonroot batch problems.toml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.Load(args[0])
			if err != nil {
				return err
			}
			return runBatch(cmd.OutOrStdout(), f)
		},
	}
}

// batchOutcome is the summary line of one problem.
type batchOutcome struct {
	name   string
	result *univariate.Result
	err    error
}

func runBatch(out io.Writer, f *config.File) error {
	logger := slog.Default().With("batch", uuid.NewString())
	logger.Info("batch started", "problems", len(f.Problems))

	var failed int
	for _, p := range f.Problems {
		o := solveProblem(p, f.Limits, logger)
		if o.err != nil || !o.result.Status.Success() {
			failed++
		}
		printOutcome(out, o)
	}
	logger.Info("batch finished", "problems", len(f.Problems), "failed", failed)

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d problems", errSearchFailed, failed, len(f.Problems))
	}
	return nil
}

func solveProblem(p config.Problem, limits config.Limits, logger *slog.Logger) batchOutcome {
	o := batchOutcome{name: p.Name}
	obj, err := p.Objective()
	if err != nil {
		o.err = err
		return o
	}
	n, err := p.Solver(limits)
	if err != nil {
		o.err = err
		return o
	}
	n.SetLogger(logger.With("problem", p.Name))
	o.result, o.err = n.FindRoot(obj, p.Initial, p.Start, p.End)
	return o
}

func printOutcome(out io.Writer, o batchOutcome) {
	name := nameStyle.Render(o.name)
	switch {
	case o.err != nil:
		fmt.Fprintf(out, "%s %s\n", name, failStyle.Render(o.err.Error()))
	case o.result.Status.Success():
		fmt.Fprintf(out, "%s %s root=%.15g iterations=%d\n", name,
			okStyle.Render(o.result.Status.String()), o.result.Root, o.result.Iterations)
	default:
		fmt.Fprintf(out, "%s %s\n", name, failStyle.Render(o.result.Status.String()))
	}
}
