// Package document decodes configuration documents into an ordered,
// format-independent tree.
//
// JavaScript and TypeScript sources are read statically with tree-sitter:
// only literal values are evaluated, so a document never runs code. JSON
// and YAML sources map onto the same tree, which lets one schema layer
// serve every format.
package document

import "fmt"

// Kind classifies a Node.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
	// KindExpression holds source text that was not evaluated, such as
	// require("...") calls in a plugins array.
	KindExpression
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	case KindExpression:
		return "expression"
	default:
		return "unknown"
	}
}

// Position is a 1-based line and column in the source document.
type Position struct {
	Line   int
	Column int
}

// String formats the position as line:column.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsZero reports whether the position is unknown.
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Column == 0
}

// Node is one value in a decoded document.
type Node struct {
	Kind Kind

	// Value is the decoded scalar for strings, the literal text for
	// numbers and booleans, and the raw source for expressions.
	Value string

	// Items holds sequence elements in declared order.
	Items []*Node

	// Fields holds mapping entries in declared order. Keys are unique.
	Fields []*Field

	Pos Position
}

// Field is one key/value entry of a mapping.
type Field struct {
	Key    string
	KeyPos Position
	Value  *Node
}

// Get returns the value stored under key, or nil when n is not a mapping
// or has no such key.
func (n *Node) Get(key string) *Node {
	if n == nil || n.Kind != KindMapping {
		return nil
	}
	for _, f := range n.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// Keys returns the mapping keys in declared order.
func (n *Node) Keys() []string {
	if n == nil || n.Kind != KindMapping {
		return nil
	}
	keys := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		keys[i] = f.Key
	}
	return keys
}

// mappingBuilder assembles a mapping node and enforces key uniqueness.
type mappingBuilder struct {
	node *Node
	path string
	seen map[string]Position
}

func newMapping(pos Position, path string) *mappingBuilder {
	return &mappingBuilder{
		node: &Node{Kind: KindMapping, Pos: pos},
		path: path,
		seen: make(map[string]Position),
	}
}

// add appends a field. A repeated key is rejected rather than overwritten.
func (b *mappingBuilder) add(key string, keyPos Position, value *Node) error {
	if first, ok := b.seen[key]; ok {
		return &DuplicateKeyError{
			Path:   childPath(b.path, key),
			First:  first,
			Second: keyPos,
		}
	}
	b.seen[key] = keyPos
	b.node.Fields = append(b.node.Fields, &Field{Key: key, KeyPos: keyPos, Value: value})
	return nil
}

func childPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func indexPath(parent string, i int) string {
	return fmt.Sprintf("%s[%d]", parent, i)
}
