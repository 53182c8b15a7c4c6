package document

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/twconfig/pkg/parser"
)

// maxIdentifierDepth bounds const-to-const indirection (a = b; b = a).
const maxIdentifierDepth = 16

func (d *Decoder) decodeScript(source []byte, lang parser.Language) (*Node, error) {
	if d.parsers == nil {
		return nil, fmt.Errorf("%w: %s documents need a parser manager", ErrUnsupportedFormat, lang)
	}

	tree, err := d.parsers.Parse(source, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s document: %w", lang, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxErrorFromTree(root, source)
	}

	ev := &scriptEvaluator{source: source, consts: make(map[string]*ts.Node)}
	exported := ev.findExport(root)
	if exported == nil {
		return nil, fmt.Errorf("%w: no exported configuration (expected module.exports = {...} or export default {...})",
			ErrMalformedDocument)
	}
	return ev.eval(exported, "", 0)
}

// syntaxErrorFromTree locates the first ERROR or MISSING node.
func syntaxErrorFromTree(root *ts.Node, source []byte) error {
	bad := firstErrorNode(root)
	if bad == nil {
		return &SyntaxError{Pos: Position{Line: 1, Column: 1}, Msg: "document could not be parsed"}
	}
	pos := nodePosition(bad)
	if bad.IsMissing() {
		return &SyntaxError{Pos: pos, Msg: fmt.Sprintf("missing %q", bad.Kind())}
	}
	text := bad.Utf8Text(source)
	if len(text) > 40 {
		text = text[:40] + "..."
	}
	if text == "" {
		return &SyntaxError{Pos: pos, Msg: "unexpected end of input"}
	}
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unexpected %q", text)}
}

func firstErrorNode(node *ts.Node) *ts.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := firstErrorNode(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

func nodePosition(node *ts.Node) Position {
	p := node.StartPosition()
	return Position{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

// scriptEvaluator evaluates the literal subset of JavaScript a config
// object is written in.
type scriptEvaluator struct {
	source []byte
	consts map[string]*ts.Node
}

// findExport scans top-level statements for the exported value. Top-level
// const/let/var declarations are remembered so `export default config`
// and `module.exports = config` resolve. The last export wins.
func (ev *scriptEvaluator) findExport(program *ts.Node) *ts.Node {
	var exported *ts.Node

	for i := uint(0); i < program.NamedChildCount(); i++ {
		stmt := program.NamedChild(i)
		switch stmt.Kind() {
		case "lexical_declaration", "variable_declaration":
			ev.collectDeclarations(stmt)

		case "expression_statement":
			expr := stmt.NamedChild(0)
			if expr == nil || expr.Kind() != "assignment_expression" {
				continue
			}
			left := expr.ChildByFieldName("left")
			if left != nil && ev.isModuleExports(left) {
				exported = expr.ChildByFieldName("right")
			}

		case "export_statement":
			if value := stmt.ChildByFieldName("value"); value != nil {
				exported = value
				continue
			}
			// TypeScript `export = config`.
			for j := uint(0); j < stmt.ChildCount(); j++ {
				if stmt.Child(j).Kind() == "=" && j+1 < stmt.ChildCount() {
					exported = stmt.Child(j + 1)
				}
			}
		}
	}

	if exported == nil {
		return nil
	}
	return ev.unwrapExport(exported, 0)
}

func (ev *scriptEvaluator) collectDeclarations(decl *ts.Node) {
	for i := uint(0); i < decl.NamedChildCount(); i++ {
		declarator := decl.NamedChild(i)
		if declarator.Kind() != "variable_declarator" {
			continue
		}
		name := declarator.ChildByFieldName("name")
		value := declarator.ChildByFieldName("value")
		if name == nil || value == nil || name.Kind() != "identifier" {
			continue
		}
		ev.consts[name.Utf8Text(ev.source)] = value
	}
}

func (ev *scriptEvaluator) isModuleExports(node *ts.Node) bool {
	if node.Kind() != "member_expression" {
		return false
	}
	object := node.ChildByFieldName("object")
	property := node.ChildByFieldName("property")
	return object != nil && property != nil &&
		object.Utf8Text(ev.source) == "module" &&
		property.Utf8Text(ev.source) == "exports"
}

// unwrapExport peels wrappers that commonly surround the exported object:
// parentheses, `satisfies Config`, `as Config`, a const identifier and
// single-argument helpers such as defineConfig({...}).
func (ev *scriptEvaluator) unwrapExport(node *ts.Node, depth int) *ts.Node {
	if depth > maxIdentifierDepth {
		return node
	}
	switch node.Kind() {
	case "parenthesized_expression", "satisfies_expression", "as_expression", "non_null_expression":
		if inner := node.NamedChild(0); inner != nil {
			return ev.unwrapExport(inner, depth+1)
		}
	case "identifier":
		if value, ok := ev.consts[node.Utf8Text(ev.source)]; ok {
			return ev.unwrapExport(value, depth+1)
		}
	case "call_expression":
		args := node.ChildByFieldName("arguments")
		if args != nil && args.NamedChildCount() == 1 {
			arg := args.NamedChild(0)
			if inner := ev.unwrapExport(arg, depth+1); inner.Kind() == "object" {
				return inner
			}
		}
	}
	return node
}

func (ev *scriptEvaluator) eval(node *ts.Node, path string, depth int) (*Node, error) {
	pos := nodePosition(node)

	switch node.Kind() {
	case "object":
		return ev.evalObject(node, path, depth)

	case "array":
		seq := &Node{Kind: KindSequence, Pos: pos}
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if child.Kind() == "comment" {
				continue
			}
			if child.Kind() == "spread_element" {
				return nil, unsupported(nodePosition(child), path, "spread element")
			}
			item, err := ev.eval(child, indexPath(path, len(seq.Items)), depth)
			if err != nil {
				return nil, err
			}
			seq.Items = append(seq.Items, item)
		}
		return seq, nil

	case "string":
		return &Node{Kind: KindString, Value: ev.stringValue(node), Pos: pos}, nil

	case "template_string":
		if hasSubstitution(node) {
			return &Node{Kind: KindExpression, Value: node.Utf8Text(ev.source), Pos: pos}, nil
		}
		return &Node{Kind: KindString, Value: ev.stringValue(node), Pos: pos}, nil

	case "number":
		return &Node{Kind: KindNumber, Value: node.Utf8Text(ev.source), Pos: pos}, nil

	case "unary_expression":
		operator := node.ChildByFieldName("operator")
		argument := node.ChildByFieldName("argument")
		if operator != nil && argument != nil && argument.Kind() == "number" {
			op := operator.Utf8Text(ev.source)
			if op == "-" || op == "+" {
				value := argument.Utf8Text(ev.source)
				if op == "-" {
					value = "-" + value
				}
				return &Node{Kind: KindNumber, Value: value, Pos: pos}, nil
			}
		}

	case "true", "false":
		return &Node{Kind: KindBool, Value: node.Kind(), Pos: pos}, nil

	case "null", "undefined":
		return &Node{Kind: KindNull, Pos: pos}, nil

	case "parenthesized_expression", "satisfies_expression", "as_expression", "non_null_expression":
		if inner := node.NamedChild(0); inner != nil {
			return ev.eval(inner, path, depth)
		}

	case "identifier", "shorthand_property_identifier":
		if depth < maxIdentifierDepth {
			if value, ok := ev.consts[node.Utf8Text(ev.source)]; ok {
				return ev.eval(value, path, depth+1)
			}
		}
	}

	return &Node{Kind: KindExpression, Value: node.Utf8Text(ev.source), Pos: pos}, nil
}

func (ev *scriptEvaluator) evalObject(node *ts.Node, path string, depth int) (*Node, error) {
	mapping := newMapping(nodePosition(node), path)

	for i := uint(0); i < node.NamedChildCount(); i++ {
		member := node.NamedChild(i)
		memberPos := nodePosition(member)

		switch member.Kind() {
		case "comment":
			continue

		case "pair":
			keyNode := member.ChildByFieldName("key")
			valueNode := member.ChildByFieldName("value")
			if keyNode == nil || valueNode == nil {
				continue
			}
			key, err := ev.propertyKey(keyNode, path)
			if err != nil {
				return nil, err
			}
			value, err := ev.eval(valueNode, childPath(path, key), depth)
			if err != nil {
				return nil, err
			}
			if err := mapping.add(key, nodePosition(keyNode), value); err != nil {
				return nil, err
			}

		case "shorthand_property_identifier":
			key := member.Utf8Text(ev.source)
			value, err := ev.eval(member, childPath(path, key), depth)
			if err != nil {
				return nil, err
			}
			if value.Kind == KindExpression {
				return nil, unsupported(memberPos, path, fmt.Sprintf("shorthand property %q without a top-level declaration", key))
			}
			if err := mapping.add(key, memberPos, value); err != nil {
				return nil, err
			}

		case "method_definition":
			nameNode := member.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			key, err := ev.propertyKey(nameNode, path)
			if err != nil {
				return nil, err
			}
			value := &Node{Kind: KindExpression, Value: member.Utf8Text(ev.source), Pos: memberPos}
			if err := mapping.add(key, memberPos, value); err != nil {
				return nil, err
			}

		case "spread_element":
			return nil, unsupported(memberPos, path, "spread element")

		default:
			return nil, unsupported(memberPos, path, member.Kind())
		}
	}

	return mapping.node, nil
}

func (ev *scriptEvaluator) propertyKey(key *ts.Node, path string) (string, error) {
	switch key.Kind() {
	case "property_identifier", "private_property_identifier", "number":
		return key.Utf8Text(ev.source), nil
	case "string":
		return ev.stringValue(key), nil
	case "computed_property_name":
		inner := key.NamedChild(0)
		if inner != nil && (inner.Kind() == "string" || inner.Kind() == "number") {
			return ev.propertyKey(inner, path)
		}
		if inner != nil && inner.Kind() == "template_string" && !hasSubstitution(inner) {
			return ev.stringValue(inner), nil
		}
	}
	return "", unsupported(nodePosition(key), path, "computed property key")
}

func hasSubstitution(template *ts.Node) bool {
	for i := uint(0); i < template.NamedChildCount(); i++ {
		if template.NamedChild(i).Kind() == "template_substitution" {
			return true
		}
	}
	return false
}

// stringValue decodes a string or template_string node, applying escapes.
// A \u escape pair forming a UTF-16 surrogate pair decodes to one rune; a
// lone surrogate becomes U+FFFD.
func (ev *scriptEvaluator) stringValue(node *ts.Node) string {
	var b strings.Builder
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "string_fragment":
			b.WriteString(child.Utf8Text(ev.source))
		case "escape_sequence":
			text := child.Utf8Text(ev.source)
			high, ok := unicodeEscape(text)
			if !ok || !utf16.IsSurrogate(high) {
				b.WriteString(decodeEscape(text))
				continue
			}
			if i+1 < count {
				if next := node.Child(i + 1); next.Kind() == "escape_sequence" {
					if low, ok := unicodeEscape(next.Utf8Text(ev.source)); ok {
						if r := utf16.DecodeRune(high, low); r != utf8.RuneError {
							b.WriteRune(r)
							i++
							continue
						}
					}
				}
			}
			b.WriteRune(utf8.RuneError)
		}
	}
	return b.String()
}

// unicodeEscape parses \uXXXX and \u{X...}.
func unicodeEscape(esc string) (rune, bool) {
	if len(esc) < 3 || esc[0] != '\\' || esc[1] != 'u' {
		return 0, false
	}
	hex := strings.TrimSuffix(strings.TrimPrefix(esc[2:], "{"), "}")
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || v > unicode.MaxRune {
		return 0, false
	}
	return rune(v), true
}

// decodeEscape decodes one JavaScript escape sequence, backslash included.
func decodeEscape(esc string) string {
	if len(esc) < 2 || esc[0] != '\\' {
		return esc
	}
	switch esc[1] {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case 'b':
		return "\b"
	case 'f':
		return "\f"
	case 'v':
		return "\v"
	case '0':
		if len(esc) == 2 {
			return "\x00"
		}
	case '\n', '\r':
		return ""
	case 'x':
		if v, err := strconv.ParseUint(esc[2:], 16, 8); err == nil {
			return string(rune(v))
		}
	case 'u':
		if r, ok := unicodeEscape(esc); ok {
			if !utf8.ValidRune(r) {
				r = utf8.RuneError
			}
			return string(r)
		}
	}
	return esc[1:]
}
