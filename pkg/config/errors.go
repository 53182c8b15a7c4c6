package config

import (
	"errors"
	"fmt"

	"github.com/gnana997/twconfig/pkg/document"
)

var (
	// ErrMalformedDocument is returned when the document cannot be parsed
	// into the expected shape. It aliases the document package sentinel so
	// either can be used with errors.Is.
	ErrMalformedDocument = document.ErrMalformedDocument

	// ErrInvalidValue is returned when a recognized key holds a value
	// outside its grammar: a non-glob content entry, a non-length font size,
	// or a value of the wrong type.
	ErrInvalidValue = errors.New("invalid value")

	// ErrUnknownField is returned for keys outside the schema unless
	// unknown keys are allowed.
	ErrUnknownField = errors.New("unknown config field")
)

// FieldError locates a problem with one value of the record.
type FieldError struct {
	Path string
	Pos  document.Position
	Msg  string
	// Kind is ErrInvalidValue or ErrUnknownField.
	Kind error
}

func (e *FieldError) Error() string {
	if e.Pos.IsZero() {
		return fmt.Sprintf("%s: %s", e.Path, e.Msg)
	}
	return fmt.Sprintf("%s (%s): %s", e.Path, e.Pos, e.Msg)
}

func (e *FieldError) Unwrap() error { return e.Kind }
