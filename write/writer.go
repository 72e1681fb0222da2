package write

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

type WriteSettings struct {
	DisplayWriters []Writer // Where should the trace be written. This can be set to nil to avoid all display
}

// DefaultWriteSettings returns settings with no writers; a library search is
// silent unless the caller asks for a trace.
func DefaultWriteSettings() *WriteSettings {
	return &WriteSettings{}
}

type Type int

const (
	// Logger is a writer intended to save details of the search for
	// future postprocessing. The data is saved as a csv and a row is
	// written every Newton step.
	Logger Type = iota

	// Displayer is a writer intended for human monitoring of the search.
	// Writes only happen periodically, and an effort is made to align columns
	Displayer

	// Slogger emits one structured record per Newton step to Writer.Slog
	// at Writer.Level. The io.Writer is unused.
	Slogger
)

type Writer struct {
	io.Writer
	T     Type
	Slog  *slog.Logger
	Level slog.Level // Level of Slogger records, info if unset
}

type Value struct {
	Value   interface{}
	Heading string
}

type DataAdder interface {
	AppendWriteData([]*Value) []*Value
}

func writeSearchHeader(w io.Writer) error {
	_, err := io.WriteString(w, "Beginning root search\n\n")
	return err
}

const headingInterval = 30
const valueInterval time.Duration = 500 * time.Millisecond

// Display displays stuff. Displayers only print at specific times, Loggers
// and Sloggers record every iteration.
// Assumption is that headings don't change
type Display struct {
	displayValues []*Value

	headings   []string
	values     []string
	maxLengths []int

	lastHeadingDisplay int
	lastValueDisplay   time.Time
	valuesPending      bool

	existsDisplayer bool
	existsLogger    bool
	existsSlogger   bool

	writers []Writer
	csv     map[int]*csv.Writer

	dataAdders []DataAdder
}

// accumulateValues gets all of the values from the data adder and stores
// them in display
func (d *Display) accumulateValues() {
	d.displayValues = d.displayValues[:0]
	for _, add := range d.dataAdders {
		d.displayValues = add.AppendWriteData(d.displayValues)
	}
}

func NewDisplay() *Display {
	// return settings so that headings and values are displayed on first iteration
	return &Display{
		lastHeadingDisplay: headingInterval + 1,
		lastValueDisplay:   time.Now().Add(-valueInterval),
	}
}

// AddDataAdder adds a DataAdder to the list of values to be printed/logged.
// This should only be called during initialization
func (d *Display) AddDataAdder(dataAdders ...DataAdder) {
	d.dataAdders = append(d.dataAdders, dataAdders...)
}

// Init initializes the displays for the writers according to their Type
func (d *Display) Init(w *WriteSettings) error {
	d.writers = w.DisplayWriters
	d.existsDisplayer, d.existsLogger, d.existsSlogger = false, false, false
	d.lastHeadingDisplay = headingInterval + 1
	d.lastValueDisplay = time.Now().Add(-valueInterval)
	d.valuesPending = false
	d.csv = nil

	if len(d.writers) == 0 {
		return nil
	}
	d.accumulateValues()

	d.headings = d.headings[:0]
	for _, dat := range d.displayValues {
		d.headings = append(d.headings, dat.Heading)
	}

	for i, w := range d.writers {
		switch w.T {
		default:
			return fmt.Errorf("display: unknown writer type %d", w.T)
		case Logger:
			d.existsLogger = true
			if d.csv == nil {
				d.csv = make(map[int]*csv.Writer)
			}
			cw := csv.NewWriter(w)
			d.csv[i] = cw
			if err := cw.Write(d.headings); err != nil {
				return err
			}
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}
		case Displayer:
			d.existsDisplayer = true
			if err := writeSearchHeader(w); err != nil {
				return err
			}
		case Slogger:
			if w.Slog == nil {
				return fmt.Errorf("display: slog writer without a logger")
			}
			d.existsSlogger = true
		}
	}
	return nil
}

// Iterate is the write action performed by display at every iteration
// of the algorithm, as set by the values in the Writers and dataAdders which
// were set during initialization
func (d *Display) Iterate() error {
	return d.write(false)
}

// Done writes the final state to every Displayer whose last iteration was
// throttled away. Loggers and Sloggers already have every row.
func (d *Display) Done() error {
	if !d.existsDisplayer || !d.valuesPending {
		return nil
	}
	return d.write(true)
}

func (d *Display) write(force bool) error {
	if len(d.writers) == 0 {
		return nil
	}

	var displayValues bool
	var displayHeadings bool

	if d.existsDisplayer {
		displayValues = force || d.shouldDisplayValues()
		if displayValues {
			d.lastValueDisplay = time.Now()
			d.lastHeadingDisplay++
		}
		d.valuesPending = !displayValues

		displayHeadings = d.shouldDisplayHeadings()
		if displayHeadings {
			d.lastHeadingDisplay = 0
		}
	}

	// only accumulate values if needed
	if (d.existsLogger && !force) || d.existsSlogger && !force || displayValues || displayHeadings {
		d.accumulateValues()
		d.values = d.values[:0]
		for _, v := range d.displayValues {
			d.values = append(d.values, valueToString(v.Value))
		}
	}

	// Find the max length of heading and value
	if displayValues || displayHeadings {
		d.maxLengths = d.maxLengths[:0]
		for i, v := range d.values {
			d.maxLengths = append(d.maxLengths, len(v))
			if len(d.headings[i]) > len(v) {
				d.maxLengths[i] = len(d.headings[i])
			}
		}
	}
	for i, w := range d.writers {
		switch w.T {
		case Logger:
			if force {
				continue
			}
			cw := d.csv[i]
			if err := cw.Write(d.values); err != nil {
				return err
			}
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}
		case Displayer:
			if displayHeadings {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
				if err := writeAlignedStrings(w, d.headings, d.maxLengths); err != nil {
					return err
				}
			}
			if displayValues {
				if err := writeAlignedStrings(w, d.values, d.maxLengths); err != nil {
					return err
				}
			}
		case Slogger:
			if force {
				continue
			}
			attrs := make([]slog.Attr, 0, len(d.displayValues))
			for _, v := range d.displayValues {
				attrs = append(attrs, slog.Any(v.Heading, v.Value))
			}
			w.Slog.LogAttrs(context.Background(), w.Level, "newton step", attrs...)
		}
	}
	return nil
}

func (d *Display) shouldDisplayValues() bool {
	// Display values when enough time has elapsed since the last
	// display. This is to limit printing with really quick objective
	// functions
	return time.Since(d.lastValueDisplay) > valueInterval
}

func (d *Display) shouldDisplayHeadings() bool {
	// Display headings again after a certain number of value printings
	return d.lastHeadingDisplay > headingInterval
}

func writeAlignedStrings(w io.Writer, strs []string, maxLengths []int) error {
	var b strings.Builder
	for i, str := range strs {
		b.WriteString(str)
		b.WriteString(strings.Repeat(" ", maxLengths[i]-len(str)))
		b.WriteString("\t")
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func valueToString(v interface{}) string {
	switch v := v.(type) {
	case int:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%e", v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
