// Package cssvalue validates the CSS length expressions used as font-size
// token values.
package cssvalue

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// ErrInvalidValue is wrapped by every validation failure.
var ErrInvalidValue = errors.New("invalid CSS value")

var lengthUnits = map[string]bool{
	"px": true, "cm": true, "mm": true, "q": true, "in": true, "pt": true, "pc": true,
	"em": true, "rem": true, "ex": true, "rex": true, "ch": true, "rch": true,
	"cap": true, "rcap": true, "ic": true, "ric": true, "lh": true, "rlh": true,
	"vw": true, "vh": true, "vi": true, "vb": true, "vmin": true, "vmax": true,
	"svw": true, "svh": true, "svi": true, "svb": true, "svmin": true, "svmax": true,
	"lvw": true, "lvh": true, "lvi": true, "lvb": true, "lvmin": true, "lvmax": true,
	"dvw": true, "dvh": true, "dvi": true, "dvb": true, "dvmin": true, "dvmax": true,
	"cqw": true, "cqh": true, "cqi": true, "cqb": true, "cqmin": true, "cqmax": true,
}

// fontSizeKeywords are the identifiers font-size accepts in place of a length.
var fontSizeKeywords = map[string]bool{
	"xx-small": true, "x-small": true, "small": true, "medium": true,
	"large": true, "x-large": true, "xx-large": true, "xxx-large": true,
	"smaller": true, "larger": true, "math": true,
	"inherit": true, "initial": true, "unset": true, "revert": true, "revert-layer": true,
}

// ValidateLength reports whether expr is a usable font-size length: a
// dimension with a length unit, a percentage, unitless zero, a font-size
// keyword, var(), or a calc(), min(), max() or clamp() expression that
// resolves to a length.
func ValidateLength(expr string) error {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return fmt.Errorf("%w: empty value", ErrInvalidValue)
	}

	toks, err := tokenize(trimmed)
	if err != nil {
		return invalid(expr, err.Error())
	}

	p := &lengthParser{toks: toks}
	if len(toks) == 1 && toks[0].tt == css.IdentToken {
		if fontSizeKeywords[strings.ToLower(toks[0].text)] {
			return nil
		}
		return invalid(expr, fmt.Sprintf("unknown keyword %q", toks[0].text))
	}

	kind, err := p.value()
	if err != nil {
		return invalid(expr, err.Error())
	}
	if !p.done() {
		return invalid(expr, fmt.Sprintf("unexpected %q", p.peek().text))
	}

	switch kind {
	case kindLength, kindAny:
		return nil
	case kindNumber:
		if p.zeroOnly {
			return nil
		}
		return invalid(expr, "unitless number is not a length")
	}
	return invalid(expr, "not a length")
}

func invalid(expr, msg string) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidValue, expr, msg)
}

type token struct {
	tt          css.TokenType
	text        string
	spaceBefore bool
	spaceAfter  bool
}

// tokenize runs the CSS lexer and folds whitespace into flags on the
// neighboring tokens. calc() needs them: `1rem - 2px` subtracts while
// `1rem -2px` is two values.
func tokenize(expr string) ([]token, error) {
	lexer := css.NewLexer(parse.NewInputString(expr))
	var toks []token
	space := false
	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			if err := lexer.Err(); err != nil && err != io.EOF {
				return nil, err
			}
			return toks, nil
		case css.WhitespaceToken, css.CommentToken:
			space = true
			if len(toks) > 0 {
				toks[len(toks)-1].spaceAfter = true
			}
			continue
		case css.BadStringToken, css.BadURLToken:
			return nil, fmt.Errorf("malformed token %q", string(data))
		}
		toks = append(toks, token{tt: tt, text: string(data), spaceBefore: space})
		space = false
	}
}

type valueKind int

const (
	kindNumber valueKind = iota
	kindLength
	// kindAny is the type of var(): unknown until the page resolves it.
	kindAny
)

type lengthParser struct {
	toks []token
	pos  int

	// zeroOnly stays true while every number seen is zero, which is the
	// only case a unitless top-level value is a valid length.
	zeroOnly bool
	numbers  int
}

func (p *lengthParser) done() bool { return p.pos >= len(p.toks) }

func (p *lengthParser) peek() token {
	if p.done() {
		return token{tt: css.ErrorToken}
	}
	return p.toks[p.pos]
}

func (p *lengthParser) next() token {
	t := p.peek()
	p.pos++
	return t
}

func (p *lengthParser) expect(tt css.TokenType, what string) error {
	if p.done() {
		return fmt.Errorf("expected %s, got end of value", what)
	}
	if t := p.next(); t.tt != tt {
		return fmt.Errorf("expected %s, got %q", what, t.text)
	}
	return nil
}

func isDelim(t token, ops ...string) bool {
	if t.tt != css.DelimToken {
		return false
	}
	for _, op := range ops {
		if t.text == op {
			return true
		}
	}
	return false
}

// sum := product (("+" | "-") product)*
func (p *lengthParser) sum() (valueKind, error) {
	kind, err := p.product()
	if err != nil {
		return 0, err
	}
	for isDelim(p.peek(), "+", "-") {
		op := p.next()
		if !op.spaceBefore || !op.spaceAfter {
			return 0, fmt.Errorf("%q must be surrounded by whitespace", op.text)
		}
		rhs, err := p.product()
		if err != nil {
			return 0, err
		}
		if kind, err = combineAdd(kind, rhs); err != nil {
			return 0, err
		}
	}
	return kind, nil
}

func combineAdd(a, b valueKind) (valueKind, error) {
	switch {
	case a == kindAny:
		return b, nil
	case b == kindAny:
		return a, nil
	case a != b:
		return 0, fmt.Errorf("cannot add a number and a length")
	}
	return a, nil
}

// value := operand, with arithmetic only inside math functions and no
// negative sizes.
func (p *lengthParser) value() (valueKind, error) {
	t := p.peek()
	switch t.tt {
	case css.LeftParenthesisToken:
		return 0, fmt.Errorf("parentheses are only allowed inside calc(), min(), max() or clamp()")
	case css.NumberToken, css.PercentageToken, css.DimensionToken:
		number, _ := splitDimension(strings.TrimSuffix(t.text, "%"))
		if v, err := strconv.ParseFloat(number, 64); err == nil && v < 0 {
			return 0, fmt.Errorf("font-size cannot be negative")
		}
	}
	return p.operand()
}

// product := operand (("*" | "/") operand)*
func (p *lengthParser) product() (valueKind, error) {
	kind, err := p.operand()
	if err != nil {
		return 0, err
	}
	for isDelim(p.peek(), "*", "/") {
		op := p.next()
		rhs, err := p.operand()
		if err != nil {
			return 0, err
		}
		switch {
		case rhs == kindAny || kind == kindAny:
			kind = kindAny
		case op.text == "/" && rhs == kindLength:
			return 0, fmt.Errorf("cannot divide by a length")
		case op.text == "*" && kind == kindLength && rhs == kindLength:
			return 0, fmt.Errorf("cannot multiply two lengths")
		case rhs == kindLength:
			kind = kindLength
		}
	}
	return kind, nil
}

func (p *lengthParser) operand() (valueKind, error) {
	if p.done() {
		return 0, fmt.Errorf("unexpected end of value")
	}
	t := p.peek()
	switch t.tt {
	case css.NumberToken:
		p.next()
		p.numbers++
		if v, err := strconv.ParseFloat(t.text, 64); err != nil || v != 0 {
			p.zeroOnly = false
		} else if p.numbers == 1 {
			p.zeroOnly = true
		}
		return kindNumber, nil

	case css.PercentageToken:
		p.next()
		return kindLength, nil

	case css.DimensionToken:
		p.next()
		_, unit := splitDimension(t.text)
		if !lengthUnits[strings.ToLower(unit)] {
			return 0, fmt.Errorf("%q is not a length unit", unit)
		}
		return kindLength, nil

	case css.LeftParenthesisToken:
		p.next()
		kind, err := p.sum()
		if err != nil {
			return 0, err
		}
		return kind, p.expect(css.RightParenthesisToken, `")"`)

	case css.FunctionToken:
		return p.function()
	}
	return 0, fmt.Errorf("unexpected %q", t.text)
}

func (p *lengthParser) function() (valueKind, error) {
	fn := p.next()
	name := strings.ToLower(strings.TrimSuffix(fn.text, "("))

	switch name {
	case "var":
		return p.varFunction()

	case "calc":
		kind, err := p.sum()
		if err != nil {
			return 0, err
		}
		return kind, p.expect(css.RightParenthesisToken, `")" to close calc()`)

	case "min", "max", "clamp":
		kind, err := p.sum()
		if err != nil {
			return 0, err
		}
		args := 1
		for p.peek().tt == css.CommaToken {
			p.next()
			rhs, err := p.sum()
			if err != nil {
				return 0, err
			}
			if kind, err = combineAdd(kind, rhs); err != nil {
				return 0, fmt.Errorf("%s() arguments mix numbers and lengths", name)
			}
			args++
		}
		if name == "clamp" && args != 3 {
			return 0, fmt.Errorf("clamp() takes exactly 3 arguments, got %d", args)
		}
		return kind, p.expect(css.RightParenthesisToken, fmt.Sprintf(`")" to close %s()`, name))
	}

	return 0, fmt.Errorf("unsupported function %s()", name)
}

// varFunction parses var(--name[, fallback]). The fallback may be any
// balanced token sequence.
func (p *lengthParser) varFunction() (valueKind, error) {
	name := p.next()
	if (name.tt != css.IdentToken && name.tt != css.CustomPropertyNameToken) || !strings.HasPrefix(name.text, "--") {
		return 0, fmt.Errorf("var() needs a custom property name, got %q", name.text)
	}
	if p.peek().tt == css.CommaToken {
		p.next()
		depth := 0
		for !p.done() {
			t := p.peek()
			if t.tt == css.RightParenthesisToken && depth == 0 {
				break
			}
			switch t.tt {
			case css.FunctionToken, css.LeftParenthesisToken:
				depth++
			case css.RightParenthesisToken:
				depth--
			}
			p.next()
		}
	}
	return kindAny, p.expect(css.RightParenthesisToken, `")" to close var()`)
}

// splitDimension splits a dimension token such as "5vmin" or "-1.5e2px"
// into its numeric and unit parts.
func splitDimension(text string) (number, unit string) {
	i := 0
	if i < len(text) && (text[i] == '+' || text[i] == '-') {
		i++
	}
	for i < len(text) && (isDigit(text[i]) || text[i] == '.') {
		i++
	}
	if i+1 < len(text) && (text[i] == 'e' || text[i] == 'E') {
		j := i + 1
		if text[j] == '+' || text[j] == '-' {
			j++
		}
		if j < len(text) && isDigit(text[j]) {
			for j < len(text) && isDigit(text[j]) {
				j++
			}
			i = j
		}
	}
	return text[:i], text[i:]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
