package document

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/twconfig/pkg/parser"
)

const originalConfig = `module.exports = {
  content: [
    "./src/**/*.rs",
    "./index.html",
    "./src/**/*.html",
    "./src/**/*.css",
  ],
  theme: {
    extend: {
      fontSize: {
        body: "clamp(3rem, 5vmin, 4rem)",
        keysmall: "clamp(1.5rem, 4vmin, 3rem)",
        keybig: "clamp(1rem, 3vmin, 2rem)",
      }
    }
  },
  variants: {},
  plugins: [],
};
`

func newTestDecoder(t *testing.T) *Decoder {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	pm := parser.NewManager(logger, 2)
	t.Cleanup(func() { pm.Close() })
	return NewDecoder(pm)
}

func stringItems(t *testing.T, n *Node) []string {
	t.Helper()
	require.NotNil(t, n)
	require.Equal(t, KindSequence, n.Kind)
	out := make([]string, 0, len(n.Items))
	for _, item := range n.Items {
		out = append(out, item.Value)
	}
	return out
}

func TestDecodeCommonJS(t *testing.T) {
	root, err := newTestDecoder(t).Decode([]byte(originalConfig), FormatJavaScript)
	require.NoError(t, err)

	assert.Equal(t, []string{"content", "theme", "variants", "plugins"}, root.Keys())
	assert.Equal(t, []string{"./src/**/*.rs", "./index.html", "./src/**/*.html", "./src/**/*.css"},
		stringItems(t, root.Get("content")))

	fontSize := root.Get("theme").Get("extend").Get("fontSize")
	require.NotNil(t, fontSize)
	assert.Equal(t, []string{"body", "keysmall", "keybig"}, fontSize.Keys())
	assert.Equal(t, "clamp(3rem, 5vmin, 4rem)", fontSize.Get("body").Value)
	assert.Equal(t, Position{Line: 11, Column: 9}, fontSize.Fields[0].KeyPos)

	assert.Equal(t, KindMapping, root.Get("variants").Kind)
	assert.Empty(t, root.Get("variants").Fields)
	assert.Equal(t, KindSequence, root.Get("plugins").Kind)
	assert.Empty(t, root.Get("plugins").Items)
}

func TestDecodeESMVariants(t *testing.T) {
	cases := map[string]struct {
		source string
		format Format
	}{
		"export default object": {
			source: `export default { content: ["./index.html"] }`,
			format: FormatJavaScript,
		},
		"const then export": {
			source: `const config = { content: ["./index.html"] };
export default config;`,
			format: FormatJavaScript,
		},
		"defineConfig wrapper": {
			source: `import { defineConfig } from "tailwindcss/helpers";
export default defineConfig({ content: ["./index.html"] });`,
			format: FormatJavaScript,
		},
		"module.exports identifier": {
			source: `/** @type {import('tailwindcss').Config} */
const config = { content: ["./index.html"] }
module.exports = config`,
			format: FormatJavaScript,
		},
		"typescript satisfies": {
			source: `import type { Config } from "tailwindcss";
export default {
  content: ["./index.html"],
} satisfies Config;`,
			format: FormatTypeScript,
		},
		"typescript as": {
			source: `import type { Config } from "tailwindcss";
const config = { content: ["./index.html"] } as Config;
export default config;`,
			format: FormatTypeScript,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			root, err := newTestDecoder(t).Decode([]byte(tc.source), tc.format)
			require.NoError(t, err)
			assert.Equal(t, []string{"./index.html"}, stringItems(t, root.Get("content")))
		})
	}
}

func TestDecodeScriptLiterals(t *testing.T) {
	source := `module.exports = {
  // line comment
  'quoted-key': 'it\'s',
  "unicode": "A\u{1F600}",
  template: ` + "`plain`" + `,
  dynamic: ` + "`${base}/x`" + `,
  count: -2,
  flag: true,
  nothing: null,
  ["computed"]: "ok",
  plugins: [require("@tailwindcss/forms"), /* inline */ "named"],
}`
	root, err := newTestDecoder(t).Decode([]byte(source), FormatJavaScript)
	require.NoError(t, err)

	assert.Equal(t, "it's", root.Get("quoted-key").Value)
	assert.Equal(t, "A\U0001F600", root.Get("unicode").Value)
	assert.Equal(t, KindString, root.Get("template").Kind)
	assert.Equal(t, "plain", root.Get("template").Value)
	assert.Equal(t, KindExpression, root.Get("dynamic").Kind)
	assert.Equal(t, KindNumber, root.Get("count").Kind)
	assert.Equal(t, "-2", root.Get("count").Value)
	assert.Equal(t, KindBool, root.Get("flag").Kind)
	assert.Equal(t, KindNull, root.Get("nothing").Kind)
	assert.Equal(t, "ok", root.Get("computed").Value)

	plugins := root.Get("plugins")
	require.Len(t, plugins.Items, 2)
	assert.Equal(t, KindExpression, plugins.Items[0].Kind)
	assert.Equal(t, `require("@tailwindcss/forms")`, plugins.Items[0].Value)
	assert.Equal(t, KindString, plugins.Items[1].Kind)
}

func TestDecodeScriptSurrogatePairs(t *testing.T) {
	source := `module.exports = {
  content: ["\uD83D\uDE00.html"],
  lone: "a\uD83Db",
  trailing: "x\uDE00",
  swapped: "\uDE00\uD83D",
};`
	root, err := newTestDecoder(t).Decode([]byte(source), FormatJavaScript)
	require.NoError(t, err)

	assert.Equal(t, []string{"\U0001F600.html"}, stringItems(t, root.Get("content")))
	assert.Equal(t, "a\uFFFDb", root.Get("lone").Value)
	assert.Equal(t, "x\uFFFD", root.Get("trailing").Value)
	assert.Equal(t, "\uFFFD\uFFFD", root.Get("swapped").Value)
}

func TestDecodeTemplateKeyWithSubstitution(t *testing.T) {
	_, err := newTestDecoder(t).Decode([]byte("module.exports = { [`${x}`]: \"a\" };"), FormatJavaScript)
	assert.ErrorIs(t, err, ErrUnsupportedExpression)

	root, err := newTestDecoder(t).Decode([]byte("module.exports = { [`plain`]: \"a\" };"), FormatJavaScript)
	require.NoError(t, err)
	assert.Equal(t, "a", root.Get("plain").Value)
}

func TestDecodeScriptResolvesSharedConstants(t *testing.T) {
	source := `const paths = ["./index.html", "./src/**/*.rs"];
const sizes = { body: "1rem" };
module.exports = { content: paths, theme: { extend: { fontSize: sizes } } };`
	root, err := newTestDecoder(t).Decode([]byte(source), FormatJavaScript)
	require.NoError(t, err)
	assert.Equal(t, []string{"./index.html", "./src/**/*.rs"}, stringItems(t, root.Get("content")))
	assert.Equal(t, "1rem", root.Get("theme").Get("extend").Get("fontSize").Get("body").Value)
}

func TestDecodeDuplicateKeyRejected(t *testing.T) {
	source := `module.exports = {
  theme: { extend: { fontSize: {
    body: "1rem",
    body: "2rem",
  } } },
}`
	root, err := newTestDecoder(t).Decode([]byte(source), FormatJavaScript)
	require.Error(t, err)
	assert.Nil(t, root)
	assert.True(t, errors.Is(err, ErrDuplicateKey))
	assert.True(t, errors.Is(err, ErrMalformedDocument))

	var dup *DuplicateKeyError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "theme.extend.fontSize.body", dup.Path)
	assert.Equal(t, 3, dup.First.Line)
	assert.Equal(t, 4, dup.Second.Line)
}

func TestDecodeUnterminatedBrace(t *testing.T) {
	source := `module.exports = {
  content: ["./index.html"],
  theme: {
    extend: {
`
	root, err := newTestDecoder(t).Decode([]byte(source), FormatJavaScript)
	require.Error(t, err)
	assert.Nil(t, root, "no partial record on syntax errors")
	assert.True(t, errors.Is(err, ErrMalformedDocument))

	var syntaxErr *SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}

func TestDecodeMissingExport(t *testing.T) {
	_, err := newTestDecoder(t).Decode([]byte(`const config = { content: [] };`), FormatJavaScript)
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestDecodeNonObjectExport(t *testing.T) {
	_, err := newTestDecoder(t).Decode([]byte(`module.exports = ["./index.html"];`), FormatJavaScript)
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestDecodeSpreadUnsupported(t *testing.T) {
	_, err := newTestDecoder(t).Decode([]byte(`module.exports = { ...base, content: [] };`), FormatJavaScript)
	assert.ErrorIs(t, err, ErrUnsupportedExpression)

	_, err = newTestDecoder(t).Decode([]byte(`module.exports = { content: [...paths] };`), FormatJavaScript)
	assert.ErrorIs(t, err, ErrUnsupportedExpression)
}

func TestDecodeScriptWithoutParser(t *testing.T) {
	_, err := NewDecoder(nil).Decode([]byte(`module.exports = {}`), FormatJavaScript)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeUnknownFormat(t *testing.T) {
	_, err := NewDecoder(nil).Decode([]byte(`{}`), FormatUnknown)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeJSON(t *testing.T) {
	source := `{
  "content": ["./index.html", "./src/**/*.rs"],
  "theme": {"extend": {"fontSize": {"keybig": "2rem", "body": "1rem"}}},
  "plugins": [],
  "version": 3
}`
	root, err := NewDecoder(nil).Decode([]byte(source), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, []string{"./index.html", "./src/**/*.rs"}, stringItems(t, root.Get("content")))
	fontSize := root.Get("theme").Get("extend").Get("fontSize")
	assert.Equal(t, []string{"keybig", "body"}, fontSize.Keys(), "declared order is kept")
	assert.Equal(t, KindNumber, root.Get("version").Kind)
	assert.Equal(t, Position{Line: 2, Column: 3}, root.Fields[0].KeyPos)
}

func TestDecodeJSONErrors(t *testing.T) {
	_, err := NewDecoder(nil).Decode([]byte(`{"a": 1, "a": 2}`), FormatJSON)
	assert.ErrorIs(t, err, ErrDuplicateKey)

	_, err = NewDecoder(nil).Decode([]byte(`{"content": [}`), FormatJSON)
	assert.ErrorIs(t, err, ErrMalformedDocument)

	_, err = NewDecoder(nil).Decode([]byte(`{"content": [`), FormatJSON)
	assert.ErrorIs(t, err, ErrMalformedDocument)

	_, err = NewDecoder(nil).Decode([]byte(`{} {}`), FormatJSON)
	assert.ErrorIs(t, err, ErrMalformedDocument)

	_, err = NewDecoder(nil).Decode([]byte(``), FormatJSON)
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestDecodeYAML(t *testing.T) {
	source := `content:
  - ./index.html
  - ./src/**/*.rs
theme:
  extend:
    fontSize: &sizes
      body: clamp(3rem, 5vmin, 4rem)
      keybig: 2rem
variants: {}
plugins: []
copy: *sizes
`
	root, err := NewDecoder(nil).Decode([]byte(source), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, []string{"content", "theme", "variants", "plugins", "copy"}, root.Keys())
	assert.Equal(t, []string{"./index.html", "./src/**/*.rs"}, stringItems(t, root.Get("content")))
	assert.Equal(t, "clamp(3rem, 5vmin, 4rem)", root.Get("theme").Get("extend").Get("fontSize").Get("body").Value)
	assert.Equal(t, []string{"body", "keybig"}, root.Get("copy").Keys(), "aliases resolve to their anchor")
	assert.Equal(t, Position{Line: 1, Column: 1}, root.Fields[0].KeyPos)
}

func TestDecodeYAMLErrors(t *testing.T) {
	_, err := NewDecoder(nil).Decode([]byte("content: [\n"), FormatYAML)
	assert.ErrorIs(t, err, ErrMalformedDocument)

	_, err = NewDecoder(nil).Decode([]byte(""), FormatYAML)
	assert.ErrorIs(t, err, ErrMalformedDocument)

	_, err = NewDecoder(nil).Decode([]byte("- a\n- b\n"), FormatYAML)
	assert.ErrorIs(t, err, ErrMalformedDocument, "top level must be a mapping")

	_, err = NewDecoder(nil).Decode([]byte("a: 1\na: 2\n"), FormatYAML)
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestDecodeIsRepeatable(t *testing.T) {
	dec := newTestDecoder(t)
	first, err := dec.Decode([]byte(originalConfig), FormatJavaScript)
	require.NoError(t, err)
	second, err := dec.Decode([]byte(originalConfig), FormatJavaScript)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatJavaScript, DetectFormat("tailwind.config.cjs"))
	assert.Equal(t, FormatTypeScript, DetectFormat("tailwind.config.ts"))
	assert.Equal(t, FormatJSON, DetectFormat("tailwind.config.json"))
	assert.Equal(t, FormatYAML, DetectFormat("tailwind.config.YML"))
	assert.Equal(t, FormatUnknown, DetectFormat("tailwind.config"))

	assert.Equal(t, FormatYAML, ParseFormat("yml"))
	assert.Equal(t, FormatTypeScript, ParseFormat("TypeScript"))
	assert.Equal(t, FormatUnknown, ParseFormat("toml"))
	assert.Equal(t, "js", FormatJavaScript.String())
}
