package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gnana997/twconfig/pkg/document"
)

// DecodeOptions controls how a document maps onto a record.
type DecodeOptions struct {
	// AllowUnknownKeys skips keys outside the schema with a warning instead
	// of failing with ErrUnknownField.
	AllowUnknownKeys bool

	// Logger receives warnings. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// FromDocument maps a decoded document onto a Config.
//
// Recognized keys are content, theme.extend.fontSize, variants and plugins.
// Every type mismatch and unknown key is collected; if there are any, no
// record is returned and the error joins one FieldError per problem.
// FromDocument checks shapes only. Call Validate for value grammar.
func FromDocument(root *document.Node, opts DecodeOptions) (*Config, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if root == nil || root.Kind != document.KindMapping {
		return nil, fmt.Errorf("%w: configuration must be a mapping", ErrMalformedDocument)
	}

	d := &recordDecoder{cfg: New(), opts: opts}
	for _, field := range root.Fields {
		d.cfg.positions[field.Key] = field.KeyPos
		switch field.Key {
		case "content":
			d.content(field.Value)
		case "theme":
			d.theme(field.Value)
		case "variants":
			d.variants(field.Value)
		case "plugins":
			d.plugins(field.Value)
		default:
			d.unknown(field.Key, field)
		}
	}

	if len(d.errs) > 0 {
		return nil, errors.Join(d.errs...)
	}
	if len(d.cfg.Content) == 0 {
		opts.Logger.Warn("content is empty; the scanner will match no files")
	}
	return d.cfg, nil
}

type recordDecoder struct {
	cfg  *Config
	opts DecodeOptions
	errs []error
}

func (d *recordDecoder) invalid(path string, n *document.Node, format string, args ...any) {
	d.errs = append(d.errs, &FieldError{
		Path: path,
		Pos:  n.Pos,
		Msg:  fmt.Sprintf(format, args...),
		Kind: ErrInvalidValue,
	})
}

func (d *recordDecoder) unknown(path string, field *document.Field) {
	if d.opts.AllowUnknownKeys {
		d.opts.Logger.Warn("ignoring unknown config key", "key", path, "pos", field.KeyPos.String())
		return
	}
	d.errs = append(d.errs, &FieldError{
		Path: path,
		Pos:  field.KeyPos,
		Msg:  "not a recognized option",
		Kind: ErrUnknownField,
	})
}

func (d *recordDecoder) expect(path string, n *document.Node, kind document.Kind) bool {
	if n.Kind != kind {
		d.invalid(path, n, "must be a %s, got %s", kind, n.Kind)
		return false
	}
	return true
}

// content accepts either a list of globs or {files: [...], relative: bool}.
func (d *recordDecoder) content(n *document.Node) {
	switch n.Kind {
	case document.KindSequence:
		d.contentFiles("content", n)
	case document.KindMapping:
		for _, field := range n.Fields {
			path := "content." + field.Key
			switch field.Key {
			case "files":
				if d.expect(path, field.Value, document.KindSequence) {
					d.contentFiles(path, field.Value)
				}
			case "relative":
				if d.expect(path, field.Value, document.KindBool) {
					d.cfg.ContentRelative = field.Value.Value == "true"
				}
			default:
				d.unknown(path, field)
			}
		}
	default:
		d.invalid("content", n, "must be a sequence of glob patterns, got %s", n.Kind)
	}
}

func (d *recordDecoder) contentFiles(path string, n *document.Node) {
	for i, item := range n.Items {
		itemPath := fmt.Sprintf("content[%d]", len(d.cfg.Content))
		if !d.expect(fmt.Sprintf("%s[%d]", path, i), item, document.KindString) {
			continue
		}
		d.cfg.positions[itemPath] = item.Pos
		d.cfg.Content = append(d.cfg.Content, item.Value)
	}
}

func (d *recordDecoder) theme(n *document.Node) {
	if !d.expect("theme", n, document.KindMapping) {
		return
	}
	for _, field := range n.Fields {
		if field.Key != "extend" {
			d.unknown("theme."+field.Key, field)
			continue
		}
		if !d.expect("theme.extend", field.Value, document.KindMapping) {
			continue
		}
		for _, ext := range field.Value.Fields {
			if ext.Key != "fontSize" {
				d.unknown("theme.extend."+ext.Key, ext)
				continue
			}
			d.fontSizes(ext.Value)
		}
	}
}

func (d *recordDecoder) fontSizes(n *document.Node) {
	const base = "theme.extend.fontSize"
	if !d.expect(base, n, document.KindMapping) {
		return
	}
	for _, field := range n.Fields {
		path := base + "." + field.Key
		value, ok := d.fontSize(path, field.Value)
		if !ok {
			continue
		}
		d.cfg.positions[path] = field.KeyPos
		d.cfg.Theme.Extend.FontSize.Set(field.Key, value)
	}
}

// fontSize decodes "1rem", ["1rem", "1.5rem"] or ["1rem", {lineHeight, letterSpacing, fontWeight}].
func (d *recordDecoder) fontSize(path string, n *document.Node) (FontSize, bool) {
	switch n.Kind {
	case document.KindString:
		return FontSize{Size: n.Value}, true

	case document.KindSequence:
		if len(n.Items) == 0 || len(n.Items) > 2 {
			d.invalid(path, n, "tuple form takes 1 or 2 elements, got %d", len(n.Items))
			return FontSize{}, false
		}
		if !d.expect(path+"[0]", n.Items[0], document.KindString) {
			return FontSize{}, false
		}
		fs := FontSize{Size: n.Items[0].Value}
		if len(n.Items) == 1 {
			return fs, true
		}

		extra := n.Items[1]
		switch extra.Kind {
		case document.KindString:
			fs.LineHeight = extra.Value
		case document.KindMapping:
			for _, field := range extra.Fields {
				fieldPath := path + "[1]." + field.Key
				v := field.Value
				if v.Kind != document.KindString && v.Kind != document.KindNumber {
					d.invalid(fieldPath, v, "must be a string or number, got %s", v.Kind)
					return FontSize{}, false
				}
				switch field.Key {
				case "lineHeight":
					fs.LineHeight = v.Value
				case "letterSpacing":
					fs.LetterSpacing = v.Value
				case "fontWeight":
					fs.FontWeight = v.Value
				default:
					d.unknown(fieldPath, field)
				}
			}
		default:
			d.invalid(path+"[1]", extra, "must be a line height or a mapping, got %s", extra.Kind)
			return FontSize{}, false
		}
		return fs, true
	}

	d.invalid(path, n, "must be a CSS length string, got %s", n.Kind)
	return FontSize{}, false
}

func (d *recordDecoder) variants(n *document.Node) {
	if !d.expect("variants", n, document.KindMapping) {
		return
	}
	for _, field := range n.Fields {
		path := "variants." + field.Key
		v := field.Value
		switch v.Kind {
		case document.KindString:
			d.cfg.Variants.Set(field.Key, []string{v.Value})
		case document.KindSequence:
			values := make([]string, 0, len(v.Items))
			for i, item := range v.Items {
				if d.expect(fmt.Sprintf("%s[%d]", path, i), item, document.KindString) {
					values = append(values, item.Value)
				}
			}
			d.cfg.Variants.Set(field.Key, values)
		default:
			d.invalid(path, v, "must be a string or a sequence of strings, got %s", v.Kind)
			continue
		}
		d.cfg.positions[path] = field.KeyPos
	}
}

func (d *recordDecoder) plugins(n *document.Node) {
	if !d.expect("plugins", n, document.KindSequence) {
		return
	}
	for i, item := range n.Items {
		path := fmt.Sprintf("plugins[%d]", i)
		switch item.Kind {
		case document.KindString:
			d.cfg.Plugins = append(d.cfg.Plugins, Plugin{Name: item.Value})
		case document.KindExpression:
			d.cfg.Plugins = append(d.cfg.Plugins, Plugin{Name: item.Value, Expression: true})
		default:
			d.invalid(path, item, "must be a plugin name or expression, got %s", item.Kind)
			continue
		}
		d.cfg.positions[path] = item.Pos
	}
}
