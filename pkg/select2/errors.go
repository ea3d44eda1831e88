package select2

import (
	"errors"
	"fmt"
)

var (
	// ErrRender marks failures to build the widget's initial data. Check with
	// errors.Is.
	ErrRender = errors.New("select2: error converting model object to json")
	// ErrMode is returned when a field is configured without a usable mode.
	ErrMode = errors.New("select2: invalid mode")
)

// RenderError carries the field and the underlying cause of a render failure.
type RenderError struct {
	Field string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%v (field %q): %v", ErrRender, e.Field, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func (e *RenderError) Is(target error) bool { return target == ErrRender }
