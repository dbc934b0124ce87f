package tasks

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat marks files without the marker line or with rows of the
	// wrong shape.
	ErrFormat = errors.New("unrecognized task file")
	// ErrParse marks rows whose deadline or priority cannot be parsed.
	ErrParse = errors.New("corrupt task file")
)

// LoadError describes why a task file was rejected. Line is 1-based and
// zero when the failure is not tied to a line.
type LoadError struct {
	Kind error
	Line int
	Msg  string
}

func (e *LoadError) Error() string {
	if e == nil {
		return ""
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

func (e *LoadError) Unwrap() error { return e.Kind }

func formatErrorf(line int, format string, args ...any) error {
	return &LoadError{Kind: ErrFormat, Line: line, Msg: fmt.Sprintf(format, args...)}
}

func parseErrorf(line int, format string, args ...any) error {
	return &LoadError{Kind: ErrParse, Line: line, Msg: fmt.Sprintf(format, args...)}
}
