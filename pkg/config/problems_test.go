package config

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gnana997/twconfig/pkg/document"
)

func TestProblemsFlattensJoinedErrors(t *testing.T) {
	err := fmt.Errorf("load tailwind.config.js: %w", errors.Join(
		&FieldError{Path: "content[0]", Pos: document.Position{Line: 2, Column: 5}, Msg: "invalid glob", Kind: ErrInvalidValue},
		&FieldError{Path: "prefix", Pos: document.Position{Line: 9, Column: 3}, Msg: "not a recognized option", Kind: ErrUnknownField},
	))

	assert.Equal(t, []Problem{
		{Path: "content[0]", Line: 2, Column: 5, Kind: "invalid_value", Message: "invalid glob"},
		{Path: "prefix", Line: 9, Column: 3, Kind: "unknown_field", Message: "not a recognized option"},
	}, Problems(err))
}

func TestProblemsDocumentErrors(t *testing.T) {
	dup := &document.DuplicateKeyError{
		Path:   "theme.extend.fontSize.body",
		First:  document.Position{Line: 3, Column: 5},
		Second: document.Position{Line: 4, Column: 5},
	}
	problems := Problems(fmt.Errorf("load x: %w", dup))
	assert.Len(t, problems, 1)
	assert.Equal(t, "duplicate_key", problems[0].Kind)
	assert.Equal(t, "theme.extend.fontSize.body", problems[0].Path)
	assert.Equal(t, 4, problems[0].Line)

	syntax := &document.SyntaxError{Pos: document.Position{Line: 7, Column: 1}, Msg: "missing }"}
	assert.Equal(t, []Problem{{Line: 7, Column: 1, Kind: "malformed", Message: "missing }"}}, Problems(syntax))
}

func TestProblemsOpaqueErrors(t *testing.T) {
	err := fmt.Errorf("load x: %w", fmt.Errorf("%w: spread element at 3:4", document.ErrUnsupportedExpression))
	problems := Problems(err)
	assert.Len(t, problems, 1)
	assert.Equal(t, "unsupported_expression", problems[0].Kind)
	assert.Equal(t, err.Error(), problems[0].Message)

	assert.Equal(t, "error", Problems(errors.New("disk on fire"))[0].Kind)
	assert.Nil(t, Problems(nil))
}
