package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrOversizedCode is returned when a FIPS code does not fit its fixed width.
	ErrOversizedCode = errors.New("geo code exceeds fixed width")

	// ErrUnknownDate is returned when a profile references a date the table lacks.
	ErrUnknownDate = errors.New("date not present in table")
)

// LoadError reports a failure to read the input table. Line is 0 when the
// failure is not tied to a row.
type LoadError struct {
	Source string
	Line   int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
