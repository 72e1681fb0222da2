package cmd

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

// errSearchFailed is returned when a search ends without a root, so that the
// process exits non-zero.
var errSearchFailed = errors.New("no root found")

// NewRootCmd builds the newtonroot command tree.
func NewRootCmd() *cobra.Command {
	var (
		verbose bool
		noColor bool
	)
	rootCmd := &cobra.Command{
		Use:   "newtonroot",
		Short: "Bounded Newton root finder",
		Long: `newtonroot finds a root of a function of one variable inside an interval
with Newton's method, keeping every iterate inside the interval.

Commands:
  solve    - solve one expression given on the command line
  batch    - solve every problem in a TOML or YAML file
  version  - print version information`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), verbose, noColor)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log solver details")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored log output")

	rootCmd.AddCommand(newSolveCmd(), newBatchCmd(), newVersionCmd())
	return rootCmd
}

func Execute() error {
	return NewRootCmd().Execute()
}

func setupLogging(w io.Writer, verbose, noColor bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if f, ok := w.(*os.File); !ok || f != os.Stderr {
		noColor = true
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			NoColor:    noColor,
		}),
	))
}
