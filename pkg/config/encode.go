package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/gnana997/twconfig/pkg/document"
)

// ErrNotRepresentable is returned when a record holds something the target
// format cannot express, such as a require() plugin in JSON.
var ErrNotRepresentable = errors.New("value not representable in format")

// Encode writes cfg in the given format. The output loads back into an
// equal record.
func Encode(w io.Writer, cfg *Config, format document.Format) error {
	switch format {
	case document.FormatJavaScript:
		return EncodeJS(w, cfg)
	case document.FormatTypeScript:
		return EncodeTS(w, cfg)
	case document.FormatJSON:
		return EncodeJSON(w, cfg)
	case document.FormatYAML:
		return EncodeYAML(w, cfg)
	}
	return fmt.Errorf("%w: %s", document.ErrUnsupportedFormat, format)
}

// EncodeJS writes cfg as a CommonJS module.
func EncodeJS(w io.Writer, cfg *Config) error {
	var b bytes.Buffer
	b.WriteString("/** @type {import('tailwindcss').Config} */\n")
	b.WriteString("module.exports = ")
	writeJSObject(&b, cfg)
	b.WriteString(";\n")
	_, err := w.Write(b.Bytes())
	return err
}

// EncodeTS writes cfg as a TypeScript module with a default export.
func EncodeTS(w io.Writer, cfg *Config) error {
	var b bytes.Buffer
	b.WriteString("import type { Config } from \"tailwindcss\";\n\n")
	b.WriteString("export default ")
	writeJSObject(&b, cfg)
	b.WriteString(" satisfies Config;\n")
	_, err := w.Write(b.Bytes())
	return err
}

func writeJSObject(b *bytes.Buffer, cfg *Config) {
	b.WriteString("{\n")

	if cfg.ContentRelative {
		b.WriteString("  content: {\n    relative: true,\n    files: ")
		writeJSStrings(b, cfg.Content, "    ")
		b.WriteString(",\n  },\n")
	} else {
		b.WriteString("  content: ")
		writeJSStrings(b, cfg.Content, "  ")
		b.WriteString(",\n")
	}

	b.WriteString("  theme: {\n    extend: {\n      fontSize: ")
	if orderedLen(cfg.Theme.Extend.FontSize) == 0 {
		b.WriteString("{}")
	} else {
		b.WriteString("{\n")
		for pair := cfg.Theme.Extend.FontSize.Oldest(); pair != nil; pair = pair.Next() {
			fmt.Fprintf(b, "        %s: %s,\n", jsKey(pair.Key), jsFontSize(pair.Value))
		}
		b.WriteString("      }")
	}
	b.WriteString(",\n    },\n  },\n")

	b.WriteString("  variants: ")
	if orderedLen(cfg.Variants) == 0 {
		b.WriteString("{}")
	} else {
		b.WriteString("{\n")
		for pair := cfg.Variants.Oldest(); pair != nil; pair = pair.Next() {
			fmt.Fprintf(b, "    %s: ", jsKey(pair.Key))
			writeJSStrings(b, pair.Value, "    ")
			b.WriteString(",\n")
		}
		b.WriteString("  }")
	}
	b.WriteString(",\n")

	b.WriteString("  plugins: ")
	if len(cfg.Plugins) == 0 {
		b.WriteString("[]")
	} else {
		b.WriteString("[\n")
		for _, p := range cfg.Plugins {
			if p.Expression {
				fmt.Fprintf(b, "    %s,\n", p.Name)
			} else {
				fmt.Fprintf(b, "    %s,\n", jsString(p.Name))
			}
		}
		b.WriteString("  ]")
	}
	b.WriteString(",\n}")
}

func writeJSStrings(b *bytes.Buffer, values []string, indent string) {
	if len(values) == 0 {
		b.WriteString("[]")
		return
	}
	b.WriteString("[\n")
	for _, v := range values {
		fmt.Fprintf(b, "%s  %s,\n", indent, jsString(v))
	}
	b.WriteString(indent + "]")
}

func jsFontSize(fs FontSize) string {
	if fs.IsSimple() {
		return jsString(fs.Size)
	}
	if fs.LetterSpacing == "" && fs.FontWeight == "" {
		return fmt.Sprintf("[%s, %s]", jsString(fs.Size), jsString(fs.LineHeight))
	}
	var props []string
	if fs.LineHeight != "" {
		props = append(props, "lineHeight: "+jsString(fs.LineHeight))
	}
	if fs.LetterSpacing != "" {
		props = append(props, "letterSpacing: "+jsString(fs.LetterSpacing))
	}
	if fs.FontWeight != "" {
		if _, err := strconv.ParseFloat(fs.FontWeight, 64); err == nil {
			props = append(props, "fontWeight: "+fs.FontWeight)
		} else {
			props = append(props, "fontWeight: "+jsString(fs.FontWeight))
		}
	}
	return fmt.Sprintf("[%s, { %s }]", jsString(fs.Size), strings.Join(props, ", "))
}

// jsString quotes s as a JSON string, which is also a valid JS literal.
func jsString(s string) string {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(b.String(), "\n")
}

// jsKey leaves identifier-safe keys bare and quotes the rest.
func jsKey(key string) string {
	if key == "" {
		return `""`
	}
	for i, r := range key {
		ok := r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(i > 0 && r >= '0' && r <= '9')
		if !ok {
			return jsString(key)
		}
	}
	return key
}

// EncodeJSON writes cfg as indented JSON with declared order preserved.
func EncodeJSON(w io.Writer, cfg *Config) error {
	root := orderedmap.New[string, any]()

	if cfg.ContentRelative {
		content := orderedmap.New[string, any]()
		content.Set("relative", true)
		content.Set("files", nonNil(cfg.Content))
		root.Set("content", content)
	} else {
		root.Set("content", nonNil(cfg.Content))
	}

	fontSize := orderedmap.New[string, any]()
	if cfg.Theme.Extend.FontSize != nil {
		for pair := cfg.Theme.Extend.FontSize.Oldest(); pair != nil; pair = pair.Next() {
			fontSize.Set(pair.Key, jsonFontSize(pair.Value))
		}
	}
	extend := orderedmap.New[string, any]()
	extend.Set("fontSize", fontSize)
	theme := orderedmap.New[string, any]()
	theme.Set("extend", extend)
	root.Set("theme", theme)

	variants := orderedmap.New[string, []string]()
	if cfg.Variants != nil {
		for pair := cfg.Variants.Oldest(); pair != nil; pair = pair.Next() {
			variants.Set(pair.Key, nonNil(pair.Value))
		}
	}
	root.Set("variants", variants)

	plugins, err := literalPlugins(cfg, "json")
	if err != nil {
		return err
	}
	root.Set("plugins", plugins)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(root)
}

func jsonFontSize(fs FontSize) any {
	if fs.IsSimple() {
		return fs.Size
	}
	if fs.LetterSpacing == "" && fs.FontWeight == "" {
		return []string{fs.Size, fs.LineHeight}
	}
	props := orderedmap.New[string, any]()
	if fs.LineHeight != "" {
		props.Set("lineHeight", fs.LineHeight)
	}
	if fs.LetterSpacing != "" {
		props.Set("letterSpacing", fs.LetterSpacing)
	}
	if fs.FontWeight != "" {
		if _, err := strconv.ParseFloat(fs.FontWeight, 64); err == nil {
			props.Set("fontWeight", json.Number(fs.FontWeight))
		} else {
			props.Set("fontWeight", fs.FontWeight)
		}
	}
	return []any{fs.Size, props}
}

func literalPlugins(cfg *Config, format string) ([]string, error) {
	names := make([]string, 0, len(cfg.Plugins))
	for i, p := range cfg.Plugins {
		if p.Expression {
			return nil, fmt.Errorf("%w: plugins[%d] is the expression %s, which %s cannot hold",
				ErrNotRepresentable, i, p.Name, format)
		}
		names = append(names, p.Name)
	}
	return names, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// EncodeYAML writes cfg as a YAML document with declared order preserved.
func EncodeYAML(w io.Writer, cfg *Config) error {
	plugins, err := literalPlugins(cfg, "yaml")
	if err != nil {
		return err
	}

	content := yamlStrings(cfg.Content)
	if cfg.ContentRelative {
		content = yamlMap(
			yamlStr("relative"), &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"},
			yamlStr("files"), content,
		)
	}

	var fontSize []*yaml.Node
	if cfg.Theme.Extend.FontSize != nil {
		for pair := cfg.Theme.Extend.FontSize.Oldest(); pair != nil; pair = pair.Next() {
			fontSize = append(fontSize, yamlStr(pair.Key), yamlFontSize(pair.Value))
		}
	}

	var variants []*yaml.Node
	if cfg.Variants != nil {
		for pair := cfg.Variants.Oldest(); pair != nil; pair = pair.Next() {
			variants = append(variants, yamlStr(pair.Key), yamlStrings(pair.Value))
		}
	}

	root := yamlMap(
		yamlStr("content"), content,
		yamlStr("theme"), yamlMap(yamlStr("extend"), yamlMap(yamlStr("fontSize"), yamlMap(fontSize...))),
		yamlStr("variants"), yamlMap(variants...),
		yamlStr("plugins"), yamlStrings(plugins),
	)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return err
	}
	return enc.Close()
}

func yamlStr(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func yamlStrings(values []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	if len(values) == 0 {
		n.Style = yaml.FlowStyle
	}
	for _, v := range values {
		n.Content = append(n.Content, yamlStr(v))
	}
	return n
}

// yamlMap builds a mapping; empty mappings render in flow style as {}.
func yamlMap(kv ...*yaml.Node) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: kv}
	if len(kv) == 0 {
		n.Style = yaml.FlowStyle
	}
	return n
}

func yamlFontSize(fs FontSize) *yaml.Node {
	if fs.IsSimple() {
		return yamlStr(fs.Size)
	}
	if fs.LetterSpacing == "" && fs.FontWeight == "" {
		return yamlStrings([]string{fs.Size, fs.LineHeight})
	}
	var kv []*yaml.Node
	if fs.LineHeight != "" {
		kv = append(kv, yamlStr("lineHeight"), yamlStr(fs.LineHeight))
	}
	if fs.LetterSpacing != "" {
		kv = append(kv, yamlStr("letterSpacing"), yamlStr(fs.LetterSpacing))
	}
	if fs.FontWeight != "" {
		weight := yamlStr(fs.FontWeight)
		if _, err := strconv.Atoi(fs.FontWeight); err == nil {
			weight.Tag = "!!int"
		}
		kv = append(kv, yamlStr("fontWeight"), weight)
	}
	props := yamlMap(kv...)
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: []*yaml.Node{yamlStr(fs.Size), props}}
}
