// Package config defines the Configuration Record: the in-memory form of a
// utility-class CSS generator configuration document.
//
// A record lists the content globs an external scanner inspects, the
// font-size tokens added on top of the built-in theme, and the reserved
// variants and plugins extension points. Records are built by FromDocument,
// checked by Validate, and are not mutated after load.
package config

import (
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/gnana997/twconfig/pkg/document"
)

// Config is the Configuration Record.
type Config struct {
	// Content holds glob patterns in declared order. A leading "!" negates.
	Content []string

	// ContentRelative is set by the object form `content: {relative: true, files: [...]}`:
	// patterns resolve against the config file instead of the working directory.
	ContentRelative bool

	Theme Theme

	// Variants is reserved. Values are kept in declared order.
	Variants *orderedmap.OrderedMap[string, []string]

	// Plugins is reserved and never executed.
	Plugins []Plugin

	// positions records where each value was declared, keyed by dotted path
	// such as "content[1]" or "theme.extend.fontSize.body".
	positions map[string]document.Position
}

// Theme holds theme customizations.
type Theme struct {
	Extend Extend
}

// Extend holds tokens added on top of the built-in theme rather than
// replacing it.
type Extend struct {
	// FontSize maps token name to its value, in declared order.
	FontSize *orderedmap.OrderedMap[string, FontSize]
}

// FontSize is a font-size token value. Size is always set; the rest come
// from the tuple forms ["1rem", "1.5rem"] and ["1rem", {lineHeight: ...}].
type FontSize struct {
	Size          string `json:"size"`
	LineHeight    string `json:"lineHeight,omitempty"`
	LetterSpacing string `json:"letterSpacing,omitempty"`
	FontWeight    string `json:"fontWeight,omitempty"`
}

// IsSimple reports whether the token is a bare size with no extra properties.
func (f FontSize) IsSimple() bool {
	return f.LineHeight == "" && f.LetterSpacing == "" && f.FontWeight == ""
}

// Plugin is one entry of the plugins list. Name is either a string literal
// (a package name) or, when Expression is set, the unevaluated source such
// as `require("@tailwindcss/forms")`.
type Plugin struct {
	Name       string `json:"name"`
	Expression bool   `json:"expression,omitempty"`
}

// New returns an empty record with its maps allocated.
func New() *Config {
	return &Config{
		Content:   []string{},
		Theme:     Theme{Extend: Extend{FontSize: orderedmap.New[string, FontSize]()}},
		Variants:  orderedmap.New[string, []string](),
		Plugins:   []Plugin{},
		positions: make(map[string]document.Position),
	}
}

// FontSize returns the extend token called name.
func (c *Config) FontSize(name string) (FontSize, bool) {
	if c.Theme.Extend.FontSize == nil {
		return FontSize{}, false
	}
	return c.Theme.Extend.FontSize.Get(name)
}

// FontSizeNames returns the extend token names in declared order.
func (c *Config) FontSizeNames() []string {
	var names []string
	if c.Theme.Extend.FontSize == nil {
		return names
	}
	for pair := c.Theme.Extend.FontSize.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Position returns where the value at path was declared, if known.
func (c *Config) Position(path string) (document.Position, bool) {
	pos, ok := c.positions[path]
	return pos, ok
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := New()
	out.Content = append(out.Content, c.Content...)
	out.ContentRelative = c.ContentRelative
	out.Plugins = append(out.Plugins, c.Plugins...)

	if c.Theme.Extend.FontSize != nil {
		for pair := c.Theme.Extend.FontSize.Oldest(); pair != nil; pair = pair.Next() {
			out.Theme.Extend.FontSize.Set(pair.Key, pair.Value)
		}
	}
	if c.Variants != nil {
		for pair := c.Variants.Oldest(); pair != nil; pair = pair.Next() {
			out.Variants.Set(pair.Key, slices.Clone(pair.Value))
		}
	}
	for path, pos := range c.positions {
		out.positions[path] = pos
	}
	return out
}

// Equal reports structural equality. Declaration order of content, tokens,
// variants and plugins is significant; source positions are not.
func (c *Config) Equal(other *Config) bool {
	if c == nil || other == nil {
		return c == other
	}
	if !slices.Equal(c.Content, other.Content) ||
		c.ContentRelative != other.ContentRelative ||
		!slices.Equal(c.Plugins, other.Plugins) {
		return false
	}
	if !orderedEqual(c.Theme.Extend.FontSize, other.Theme.Extend.FontSize, func(a, b FontSize) bool { return a == b }) {
		return false
	}
	return orderedEqual(c.Variants, other.Variants, func(a, b []string) bool { return slices.Equal(a, b) })
}

func orderedEqual[V any](a, b *orderedmap.OrderedMap[string, V], eq func(V, V) bool) bool {
	if orderedLen(a) != orderedLen(b) {
		return false
	}
	if orderedLen(a) == 0 {
		return true
	}
	pb := b.Oldest()
	for pa := a.Oldest(); pa != nil; pa = pa.Next() {
		if pa.Key != pb.Key || !eq(pa.Value, pb.Value) {
			return false
		}
		pb = pb.Next()
	}
	return true
}

func orderedLen[V any](m *orderedmap.OrderedMap[string, V]) int {
	if m == nil {
		return 0
	}
	return m.Len()
}
