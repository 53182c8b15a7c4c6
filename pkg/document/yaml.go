package document

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

func decodeYAML(source []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(source, &doc); err != nil {
		return nil, &SyntaxError{Msg: strings.TrimPrefix(err.Error(), "yaml: ")}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedDocument)
	}
	return convertYAML(doc.Content[0], "", 0)
}

func convertYAML(n *yaml.Node, path string, depth int) (*Node, error) {
	pos := Position{Line: n.Line, Column: n.Column}
	if depth > maxIdentifierDepth*4 {
		return nil, unsupported(pos, path, "nesting too deep")
	}

	switch n.Kind {
	case yaml.AliasNode:
		return convertYAML(n.Alias, path, depth+1)

	case yaml.MappingNode:
		mapping := newMapping(pos, path)
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valueNode := n.Content[i], n.Content[i+1]
			keyPos := Position{Line: keyNode.Line, Column: keyNode.Column}
			if keyNode.Kind != yaml.ScalarNode {
				return nil, unsupported(keyPos, path, "non-scalar mapping key")
			}
			if keyNode.ShortTag() == "!!merge" {
				return nil, unsupported(keyPos, path, "merge key")
			}
			value, err := convertYAML(valueNode, childPath(path, keyNode.Value), depth+1)
			if err != nil {
				return nil, err
			}
			if err := mapping.add(keyNode.Value, keyPos, value); err != nil {
				return nil, err
			}
		}
		return mapping.node, nil

	case yaml.SequenceNode:
		seq := &Node{Kind: KindSequence, Pos: pos}
		for i, item := range n.Content {
			child, err := convertYAML(item, indexPath(path, i), depth+1)
			if err != nil {
				return nil, err
			}
			seq.Items = append(seq.Items, child)
		}
		return seq, nil

	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return &Node{Kind: KindNull, Pos: pos}, nil
		case "!!bool":
			return &Node{Kind: KindBool, Value: strings.ToLower(n.Value), Pos: pos}, nil
		case "!!int", "!!float":
			return &Node{Kind: KindNumber, Value: n.Value, Pos: pos}, nil
		default:
			return &Node{Kind: KindString, Value: n.Value, Pos: pos}, nil
		}
	}

	return nil, unsupported(pos, path, "yaml node")
}
