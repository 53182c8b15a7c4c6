package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// decodeJSON streams tokens rather than unmarshalling into a map so that
// key order is kept and repeated keys can be rejected.
func decodeJSON(source []byte) (*Node, error) {
	jd := &jsonDecoder{
		dec:    json.NewDecoder(bytes.NewReader(source)),
		source: source,
		lines:  newLineIndex(source),
	}
	jd.dec.UseNumber()

	root, err := jd.value("")
	if err != nil {
		return nil, jd.wrap(err)
	}
	if _, err := jd.dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &SyntaxError{Pos: jd.pos(), Msg: "unexpected data after top-level value"}
	}
	return root, nil
}

type jsonDecoder struct {
	dec    *json.Decoder
	source []byte
	lines  lineIndex
}

// pos returns the position of the next token.
func (jd *jsonDecoder) pos() Position {
	offset := int(jd.dec.InputOffset())
	for offset < len(jd.source) {
		switch jd.source[offset] {
		case ' ', '\t', '\r', '\n', ',', ':':
			offset++
			continue
		}
		break
	}
	return jd.lines.position(offset)
}

func (jd *jsonDecoder) value(path string) (*Node, error) {
	pos := jd.pos()
	tok, err := jd.dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return jd.object(pos, path)
		case '[':
			return jd.array(pos, path)
		}
		return nil, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unexpected %q", v.String())}
	case string:
		return &Node{Kind: KindString, Value: v, Pos: pos}, nil
	case json.Number:
		return &Node{Kind: KindNumber, Value: v.String(), Pos: pos}, nil
	case bool:
		value := "false"
		if v {
			value = "true"
		}
		return &Node{Kind: KindBool, Value: value, Pos: pos}, nil
	case nil:
		return &Node{Kind: KindNull, Pos: pos}, nil
	}
	return nil, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unexpected token %v", tok)}
}

func (jd *jsonDecoder) object(pos Position, path string) (*Node, error) {
	mapping := newMapping(pos, path)
	for jd.dec.More() {
		keyPos := jd.pos()
		tok, err := jd.dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, &SyntaxError{Pos: keyPos, Msg: "object key must be a string"}
		}
		value, err := jd.value(childPath(path, key))
		if err != nil {
			return nil, err
		}
		if err := mapping.add(key, keyPos, value); err != nil {
			return nil, err
		}
	}
	if _, err := jd.dec.Token(); err != nil {
		return nil, err
	}
	return mapping.node, nil
}

func (jd *jsonDecoder) array(pos Position, path string) (*Node, error) {
	seq := &Node{Kind: KindSequence, Pos: pos}
	for jd.dec.More() {
		item, err := jd.value(indexPath(path, len(seq.Items)))
		if err != nil {
			return nil, err
		}
		seq.Items = append(seq.Items, item)
	}
	if _, err := jd.dec.Token(); err != nil {
		return nil, err
	}
	return seq, nil
}

// wrap converts encoding/json failures into SyntaxErrors. Errors that are
// already document errors pass through untouched.
func (jd *jsonDecoder) wrap(err error) error {
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &syntaxErr):
		return &SyntaxError{Pos: jd.lines.position(int(syntaxErr.Offset)), Msg: syntaxErr.Error()}
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return &SyntaxError{Pos: jd.lines.position(len(jd.source)), Msg: "unexpected end of input"}
	case errors.Is(err, ErrMalformedDocument):
		return err
	}
	return &SyntaxError{Pos: jd.pos(), Msg: err.Error()}
}

// lineIndex maps byte offsets to line/column positions.
type lineIndex []int

func newLineIndex(source []byte) lineIndex {
	starts := lineIndex{0}
	for i, c := range source {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (li lineIndex) position(offset int) Position {
	line := 0
	for line+1 < len(li) && li[line+1] <= offset {
		line++
	}
	return Position{Line: line + 1, Column: offset - li[line] + 1}
}
