// Package config loads batches of root-finding problems from TOML or YAML
// files.
//
// A TOML file lists problems as an array of tables:
//
//	[limits]
//	max_iterations = 100
//
//	[[problem]]
//	name = "unit"
//	expression = "x - 1"
//	initial = 1.5
//	start = 0.0
//	end = 2.0
//	criterion = "difference"
//
// The YAML form uses the same keys with a "problems" list.
//
// Numeric solver settings are taken as given: a missing or non-positive
// accuracy, derivative_step or scan_step selects the solver default.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/btracey/newton/common"
	"github.com/btracey/newton/expression"
	"github.com/btracey/newton/univariate"
)

var (
	// ErrUnknownFormat is returned for a file whose extension is neither
	// TOML nor YAML.
	ErrUnknownFormat = errors.New("config: unknown file format")

	// ErrInvalidProblem is wrapped by decoding and validation errors.
	ErrInvalidProblem = errors.New("config: invalid problem")
)

// Format represents the configuration file format
type Format int

const (
	// FormatTOML represents TOML format (default)
	FormatTOML Format = iota

	// FormatYAML represents YAML format
	FormatYAML
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// FormatFromPath detects the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Limits mirrors common.CommonSettings. A negative value, the default,
// disables a limit.
type Limits struct {
	MaximumIterations          int           `toml:"max_iterations" yaml:"max_iterations"`
	MaximumFunctionEvaluations int           `toml:"max_function_evaluations" yaml:"max_function_evaluations"`
	MaximumRuntime             time.Duration `toml:"max_runtime" yaml:"max_runtime"`
	MaximumRepairs             int           `toml:"max_repairs" yaml:"max_repairs"`
}

// DefaultLimits returns limits with everything disabled.
func DefaultLimits() Limits {
	return Limits{
		MaximumIterations:          -1,
		MaximumFunctionEvaluations: -1,
		MaximumRuntime:             -1,
		MaximumRepairs:             -1,
	}
}

// Settings converts the limits into solver settings without trace writers.
func (l Limits) Settings() *common.CommonSettings {
	s := common.DefaultCommonSettings()
	s.MaximumIterations = l.MaximumIterations
	s.MaximumFunctionEvaluations = l.MaximumFunctionEvaluations
	s.MaximumRuntime = l.MaximumRuntime
	s.MaximumRepairs = l.MaximumRepairs
	return s
}

// Problem is one root search.
type Problem struct {
	Name           string  `toml:"name" yaml:"name"`
	Expression     string  `toml:"expression" yaml:"expression"`
	Initial        float64 `toml:"initial" yaml:"initial"`
	Start          float64 `toml:"start" yaml:"start"`
	End            float64 `toml:"end" yaml:"end"`
	Accuracy       float64 `toml:"accuracy" yaml:"accuracy"`
	DerivativeStep float64 `toml:"derivative_step" yaml:"derivative_step"`
	ScanStep       float64 `toml:"scan_step" yaml:"scan_step"`
	Criterion      string  `toml:"criterion" yaml:"criterion"`
}

// File is a decoded problem file.
type File struct {
	Limits   Limits    `toml:"limits" yaml:"limits"`
	Problems []Problem `toml:"problem" yaml:"problems"`
}

// Load reads and validates the problem file at path.
func Load(path string) (*File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	f, err := Decode(fh, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Decode reads a problem file in the given format and validates it. Unknown
// keys are rejected.
func Decode(r io.Reader, format Format) (*File, error) {
	f := &File{Limits: DefaultLimits()}
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidProblem, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown key %q", ErrInvalidProblem, undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidProblem, err)
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks that every problem has an expression and a known
// criterion, and names unnamed problems by their position.
func (f *File) Validate() error {
	for i := range f.Problems {
		p := &f.Problems[i]
		if p.Name == "" {
			p.Name = fmt.Sprintf("problem-%d", i+1)
		}
		if strings.TrimSpace(p.Expression) == "" {
			return fmt.Errorf("%w: %s: empty expression", ErrInvalidProblem, p.Name)
		}
		if _, err := p.StoppingCriterion(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidProblem, p.Name, err)
		}
	}
	return nil
}

// StoppingCriterion parses the criterion name; empty means FunctionModule.
func (p Problem) StoppingCriterion() (common.Criterion, error) {
	if strings.TrimSpace(p.Criterion) == "" {
		return common.FunctionModule, nil
	}
	return common.ParseCriterion(p.Criterion)
}

// Objective compiles the problem's expression.
func (p Problem) Objective() (*expression.Expression, error) {
	return expression.Compile(p.Expression)
}

// Solver returns a solver configured for the problem.
func (p Problem) Solver(limits Limits) (*univariate.Newton, error) {
	c, err := p.StoppingCriterion()
	if err != nil {
		return nil, err
	}
	n := univariate.NewNewton(p.Accuracy, p.DerivativeStep)
	n.SetScanStep(p.ScanStep)
	n.SetStoppingCriterion(c)
	n.SetSettings(limits.Settings())
	return n, nil
}
