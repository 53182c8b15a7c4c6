package config

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/twconfig/pkg/document"
)

const richConfig = `import type { Config } from "tailwindcss";

export default {
  content: { relative: true, files: ["./app/**/*.tsx", "./app/**/*.tsx", "!./app/legacy/**"] },
  theme: {
    extend: {
      fontSize: {
        body: "clamp(3rem, 5vmin, 4rem)",
        "2xs": ["0.625rem", "0.75rem"],
        display: ["4rem", { lineHeight: "1", letterSpacing: "-0.02em", fontWeight: 700 }],
        label: ["0.875rem", { fontWeight: "semibold-ish" }],
      },
    },
  },
  variants: { extend: ["hover", "focus-visible"] },
  plugins: ["daisyui"],
} satisfies Config;
`

func TestEncodeJSExactOutput(t *testing.T) {
	cfg := mustDecode(t, `{"content": ["./index.html"], "theme": {"extend": {"fontSize": {"body": "clamp(3rem, 5vmin, 4rem)"}}}, "variants": {}, "plugins": []}`,
		document.FormatJSON)

	var buf bytes.Buffer
	require.NoError(t, EncodeJS(&buf, cfg))

	assert.Equal(t, `/** @type {import('tailwindcss').Config} */
module.exports = {
  content: [
    "./index.html",
  ],
  theme: {
    extend: {
      fontSize: {
        body: "clamp(3rem, 5vmin, 4rem)",
      },
    },
  },
  variants: {},
  plugins: [],
};
`, buf.String())
}

func TestEncodeRoundTrip(t *testing.T) {
	sources := map[string]struct {
		source string
		format document.Format
	}{
		"app":  {appConfig, document.FormatJavaScript},
		"rich": {richConfig, document.FormatTypeScript},
	}
	targets := []document.Format{
		document.FormatJavaScript,
		document.FormatTypeScript,
		document.FormatJSON,
		document.FormatYAML,
	}

	for name, src := range sources {
		original := mustDecode(t, src.source, src.format)
		for _, target := range targets {
			t.Run(name+"/"+target.String(), func(t *testing.T) {
				var buf bytes.Buffer
				require.NoError(t, Encode(&buf, original, target))

				reloaded := mustDecode(t, buf.String(), target)
				assert.True(t, original.Equal(reloaded), "round trip changed the record:\n%s", buf.String())
				assert.Equal(t, original.Content, reloaded.Content)
				assert.Equal(t, original.FontSizeNames(), reloaded.FontSizeNames())
			})
		}
	}
}

func TestEncodeKeepsDuplicateContentEntries(t *testing.T) {
	cfg := mustDecode(t, richConfig, document.FormatTypeScript)
	require.Equal(t, []string{"./app/**/*.tsx", "./app/**/*.tsx", "!./app/legacy/**"}, cfg.Content)

	var buf bytes.Buffer
	require.NoError(t, EncodeYAML(&buf, cfg))
	reloaded := mustDecode(t, buf.String(), document.FormatYAML)
	assert.Len(t, reloaded.Content, 3)
	assert.True(t, reloaded.ContentRelative)
}

func TestEncodeEmptyCollections(t *testing.T) {
	cfg := New()

	var js, yml bytes.Buffer
	require.NoError(t, EncodeJS(&js, cfg))
	require.NoError(t, EncodeYAML(&yml, cfg))

	assert.Contains(t, js.String(), "  content: [],\n")
	assert.Contains(t, js.String(), "      fontSize: {},\n")
	assert.Contains(t, yml.String(), "content: []\n")
	assert.Contains(t, yml.String(), "variants: {}\n")
}

func TestEncodeYAMLBlockStyle(t *testing.T) {
	cfg := mustDecode(t, `{"content": ["./index.html"], "theme": {"extend": {"fontSize": {"body": "clamp(3rem, 5vmin, 4rem)"}}}}`,
		document.FormatJSON)

	var buf bytes.Buffer
	require.NoError(t, EncodeYAML(&buf, cfg))
	assert.Equal(t, `content:
  - ./index.html
theme:
  extend:
    fontSize:
      body: clamp(3rem, 5vmin, 4rem)
variants: {}
plugins: []
`, buf.String())
}

func TestEncodeExpressionPlugins(t *testing.T) {
	cfg := New()
	cfg.Content = []string{"./index.html"}
	cfg.Plugins = []Plugin{{Name: `require("@tailwindcss/typography")`, Expression: true}}

	var js bytes.Buffer
	require.NoError(t, EncodeJS(&js, cfg))
	assert.Contains(t, js.String(), "    require(\"@tailwindcss/typography\"),\n")

	reloaded := mustDecode(t, js.String(), document.FormatJavaScript)
	assert.True(t, cfg.Equal(reloaded))

	var buf bytes.Buffer
	assert.ErrorIs(t, EncodeJSON(&buf, cfg), ErrNotRepresentable)
	assert.ErrorIs(t, EncodeYAML(&buf, cfg), ErrNotRepresentable)
}

func TestEncodeQuotesKeysAndEscapes(t *testing.T) {
	cfg := New()
	cfg.Content = []string{`./src/<app>/"quoted".html`}
	cfg.Theme.Extend.FontSize.Set("2xl", FontSize{Size: "1.5rem"})
	cfg.Theme.Extend.FontSize.Set("heading_1", FontSize{Size: "2rem"})

	var buf bytes.Buffer
	require.NoError(t, EncodeJS(&buf, cfg))
	out := buf.String()

	assert.Contains(t, out, `"./src/<app>/\"quoted\".html",`)
	assert.Contains(t, out, `"2xl": "1.5rem",`)
	assert.Contains(t, out, `heading_1: "2rem",`)
}

func TestEncodeUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, New(), document.FormatUnknown)
	assert.ErrorIs(t, err, document.ErrUnsupportedFormat)
}
