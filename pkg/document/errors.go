package document

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDocument classifies every failure to turn source text into
	// a document tree: syntax errors, duplicate keys and missing exports.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrDuplicateKey marks a mapping that declares the same key twice.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrUnsupportedExpression marks syntax that is valid JavaScript but
	// cannot be evaluated statically, such as spreads or computed keys.
	ErrUnsupportedExpression = errors.New("unsupported expression")

	// ErrUnsupportedFormat is returned for file types with no decoder.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// SyntaxError reports the first syntax problem found in a document.
type SyntaxError struct {
	Pos Position
	Msg string
}

func (e *SyntaxError) Error() string {
	if e.Pos.IsZero() {
		return fmt.Sprintf("syntax error: %s", e.Msg)
	}
	return fmt.Sprintf("syntax error at %s: %s", e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrMalformedDocument }

// DuplicateKeyError reports a key declared twice in one mapping.
type DuplicateKeyError struct {
	// Path is the dotted location of the repeated key, e.g. theme.extend.fontSize.body.
	Path   string
	First  Position
	Second Position
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %q at %s (first defined at %s)", e.Path, e.Second, e.First)
}

func (e *DuplicateKeyError) Unwrap() []error {
	return []error{ErrDuplicateKey, ErrMalformedDocument}
}

func unsupported(pos Position, path, what string) error {
	if path == "" {
		return fmt.Errorf("%w: %s at %s", ErrUnsupportedExpression, what, pos)
	}
	return fmt.Errorf("%w: %s in %s at %s", ErrUnsupportedExpression, what, path, pos)
}
