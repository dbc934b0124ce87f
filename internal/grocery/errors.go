package grocery

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat marks files that do not start with the expected marker line.
	ErrFormat = errors.New("unrecognized grocery file")
	// ErrParse marks bodies that are not a valid JSON list of the expected shape.
	ErrParse = errors.New("corrupt grocery file")
)

// LoadError describes why a grocery file was rejected. Path points at the
// offending JSON value when the body failed validation.
type LoadError struct {
	Kind error
	Path string
	Msg  string
}

func (e *LoadError) Error() string {
	if e == nil {
		return ""
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Msg)
	}
	return e.Msg
}

func (e *LoadError) Unwrap() error { return e.Kind }
