package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gnana997/twconfig/pkg/document"
)

func TestCloneIsDeep(t *testing.T) {
	cfg := mustDecode(t, richConfig, document.FormatTypeScript)
	clone := cfg.Clone()
	assert.True(t, cfg.Equal(clone))

	clone.Content[0] = "./changed/**"
	clone.Theme.Extend.FontSize.Set("body", FontSize{Size: "1rem"})
	extend, _ := clone.Variants.Get("extend")
	extend[0] = "active"

	assert.Equal(t, "./app/**/*.tsx", cfg.Content[0])
	body, _ := cfg.FontSize("body")
	assert.Equal(t, "clamp(3rem, 5vmin, 4rem)", body.Size)
	original, _ := cfg.Variants.Get("extend")
	assert.Equal(t, "hover", original[0])
	assert.False(t, cfg.Equal(clone))

	pos, ok := clone.Position("theme.extend.fontSize.display")
	assert.True(t, ok)
	assert.Equal(t, 10, pos.Line)
}

func TestEqualIsOrderSensitive(t *testing.T) {
	a := New()
	a.Theme.Extend.FontSize.Set("a", FontSize{Size: "1rem"})
	a.Theme.Extend.FontSize.Set("b", FontSize{Size: "2rem"})

	b := New()
	b.Theme.Extend.FontSize.Set("b", FontSize{Size: "2rem"})
	b.Theme.Extend.FontSize.Set("a", FontSize{Size: "1rem"})

	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(a.Clone()))

	var nilCfg *Config
	assert.True(t, nilCfg.Equal(nil))
	assert.False(t, a.Equal(nil))
}

func TestEqualTreatsNilAndEmptyMapsAlike(t *testing.T) {
	a := &Config{}
	b := New()
	assert.True(t, a.Equal(b))
	assert.Empty(t, a.FontSizeNames())
}
