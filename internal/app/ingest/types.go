// Package ingest streams nuclei result files into the finding store.
package ingest

import (
	"time"
)

// =============================================================================
// Constants & Limits
// =============================================================================

const (
	// MaxErrorsToReturn limits the number of line errors kept in the Output.
	MaxErrorsToReturn = 100
)

// Error codes for fatal run errors.
const (
	CodeInputNotFound = "INPUT_NOT_FOUND"
	CodeInputRead     = "INPUT_READ_ERROR"
)

// =============================================================================
// Input/Output Types
// =============================================================================

// Options selects the optional setup steps of a run.
type Options struct {
	// CreateSchema creates the findings table before ingesting.
	CreateSchema bool

	// ClearExisting deletes all stored findings before ingesting.
	ClearExisting bool

	// Progress, if set, is called before each line is processed.
	Progress func(line int)
}

// Output summarizes a run.
type Output struct {
	Source           string        `json:"source" yaml:"source"`
	LinesRead        int           `json:"lines_read" yaml:"lines_read"`
	FindingsInserted int           `json:"findings_inserted" yaml:"findings_inserted"`
	ParseErrors      int           `json:"parse_errors" yaml:"parse_errors"`
	WriteErrors      int           `json:"write_errors" yaml:"write_errors"`
	LinesSkipped     int           `json:"lines_skipped" yaml:"lines_skipped"`
	Duration         time.Duration `json:"duration" yaml:"duration"`
	Completed        bool          `json:"completed" yaml:"completed"`
	Errors           []string      `json:"errors,omitempty" yaml:"errors,omitempty"`

	// FailedLines holds the first MaxErrorsToReturn line failures.
	FailedLines []FailedLine `json:"-" yaml:"-"`
}

// FailedLine describes one line that could not be stored.
type FailedLine struct {
	Line  int    `json:"line"`
	Kind  string `json:"kind"` // "parse" or "write"
	Error string `json:"error"`
}

// HasLineErrors reports whether any line failed.
func (o *Output) HasLineErrors() bool {
	return o.ParseErrors+o.WriteErrors > 0
}

// addFailure records a line failure, respecting the limit.
func (o *Output) addFailure(line int, kind string, err error) {
	if len(o.FailedLines) >= MaxErrorsToReturn {
		return
	}
	o.FailedLines = append(o.FailedLines, FailedLine{Line: line, Kind: kind, Error: err.Error()})
	o.Errors = append(o.Errors, err.Error())
}
