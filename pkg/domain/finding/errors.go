package finding

import (
	"errors"
	"fmt"
)

// Fatal errors abort an ingestion run; line errors are counted and skipped.
var (
	// ErrInputNotFound means the input file does not exist.
	ErrInputNotFound = errors.New("input file not found")
	// ErrSchema means the table could not be created or the insert statement prepared.
	ErrSchema = errors.New("schema error")
	// ErrClear means existing records could not be deleted.
	ErrClear = errors.New("clear error")

	// ErrParse means a line is not a single JSON object.
	ErrParse = errors.New("parse error")
	// ErrWrite means the store rejected a record.
	ErrWrite = errors.New("write error")
)

// LineError is a recoverable failure tied to one input line.
type LineError struct {
	Line int
	Err  error
}

// NewLineError wraps err, which should wrap ErrParse or ErrWrite, with its line number.
func NewLineError(line int, err error) *LineError {
	return &LineError{Line: line, Err: err}
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// IsRecoverable reports whether err only affects a single line.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrParse) || errors.Is(err, ErrWrite)
}
