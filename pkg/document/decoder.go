package document

import (
	"fmt"

	"github.com/gnana997/twconfig/pkg/parser"
)

// Decoder turns source bytes into a document tree.
//
// A Decoder is safe for concurrent use as long as its parser.Manager is.
type Decoder struct {
	parsers *parser.Manager
}

// NewDecoder creates a Decoder. parsers may be nil when only JSON and YAML
// documents will be decoded.
func NewDecoder(parsers *parser.Manager) *Decoder {
	return &Decoder{parsers: parsers}
}

// Decode parses source in the given format. The returned root is always a
// mapping; on error no tree is returned.
func (d *Decoder) Decode(source []byte, format Format) (*Node, error) {
	var (
		root *Node
		err  error
	)
	switch format {
	case FormatJavaScript:
		root, err = d.decodeScript(source, parser.LanguageJavaScript)
	case FormatTypeScript:
		root, err = d.decodeScript(source, parser.LanguageTypeScript)
	case FormatJSON:
		root, err = decodeJSON(source)
	case FormatYAML:
		root, err = decodeYAML(source)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if root.Kind != KindMapping {
		return nil, fmt.Errorf("%w: top-level value at %s is a %s, want a mapping",
			ErrMalformedDocument, root.Pos, root.Kind)
	}
	return root, nil
}
