package config

import (
	"errors"

	"github.com/gnana997/twconfig/pkg/document"
)

// Problem is a flat, serializable view of one load failure.
type Problem struct {
	Path    string `json:"path,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Problems flattens an error returned by loading into one Problem per
// underlying failure, in the order they were found.
func Problems(err error) []Problem {
	if err == nil {
		return nil
	}
	leaves := flatten(err)
	out := make([]Problem, 0, len(leaves))
	for _, leaf := range leaves {
		out = append(out, toProblem(leaf))
	}
	return out
}

func flatten(err error) []error {
	switch e := err.(type) {
	case *FieldError, *document.SyntaxError, *document.DuplicateKeyError:
		return []error{err}
	case interface{ Unwrap() []error }:
		var out []error
		for _, child := range e.Unwrap() {
			out = append(out, flatten(child)...)
		}
		return out
	case interface{ Unwrap() error }:
		inner := flatten(e.Unwrap())
		if len(inner) > 1 || (len(inner) == 1 && isLeaf(inner[0])) {
			return inner
		}
	}
	return []error{err}
}

func isLeaf(err error) bool {
	switch err.(type) {
	case *FieldError, *document.SyntaxError, *document.DuplicateKeyError:
		return true
	}
	return false
}

func toProblem(err error) Problem {
	var (
		fieldErr  *FieldError
		syntaxErr *document.SyntaxError
		dupErr    *document.DuplicateKeyError
	)
	switch {
	case errors.As(err, &fieldErr):
		return Problem{
			Path:    fieldErr.Path,
			Line:    fieldErr.Pos.Line,
			Column:  fieldErr.Pos.Column,
			Kind:    problemKind(err),
			Message: fieldErr.Msg,
		}
	case errors.As(err, &dupErr):
		return Problem{
			Path:    dupErr.Path,
			Line:    dupErr.Second.Line,
			Column:  dupErr.Second.Column,
			Kind:    "duplicate_key",
			Message: dupErr.Error(),
		}
	case errors.As(err, &syntaxErr):
		return Problem{
			Line:    syntaxErr.Pos.Line,
			Column:  syntaxErr.Pos.Column,
			Kind:    "malformed",
			Message: syntaxErr.Msg,
		}
	}
	return Problem{Kind: problemKind(err), Message: err.Error()}
}

func problemKind(err error) string {
	switch {
	case errors.Is(err, document.ErrDuplicateKey):
		return "duplicate_key"
	case errors.Is(err, document.ErrUnsupportedExpression):
		return "unsupported_expression"
	case errors.Is(err, document.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, ErrMalformedDocument):
		return "malformed"
	case errors.Is(err, ErrUnknownField):
		return "unknown_field"
	case errors.Is(err, ErrInvalidValue):
		return "invalid_value"
	}
	return "error"
}
