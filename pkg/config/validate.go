package config

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/twconfig/pkg/cssvalue"
)

var fontWeightKeywords = map[string]bool{
	"normal": true, "bold": true, "bolder": true, "lighter": true,
}

// Validate checks every value against its grammar.
// Returns a slice of *FieldError (empty slice if valid).
func (c *Config) Validate() []error {
	var errs []error
	add := func(path, format string, args ...any) {
		pos, _ := c.Position(path)
		errs = append(errs, &FieldError{
			Path: path,
			Pos:  pos,
			Msg:  fmt.Sprintf(format, args...),
			Kind: ErrInvalidValue,
		})
	}

	for i, pattern := range c.Content {
		path := fmt.Sprintf("content[%d]", i)
		glob := strings.TrimPrefix(pattern, "!")
		switch {
		case strings.TrimSpace(glob) == "":
			add(path, "empty glob pattern")
		case !doublestar.ValidatePattern(glob):
			add(path, "invalid glob pattern %q", pattern)
		}
	}

	if c.Theme.Extend.FontSize != nil {
		for pair := c.Theme.Extend.FontSize.Oldest(); pair != nil; pair = pair.Next() {
			path := "theme.extend.fontSize." + pair.Key
			if pair.Key == "" || strings.ContainsFunc(pair.Key, unicode.IsSpace) {
				add(path, "token name %q must be non-empty and contain no whitespace", pair.Key)
			}
			fs := pair.Value
			if err := cssvalue.ValidateLength(fs.Size); err != nil {
				add(path, "%v", err)
			}
			if fs.LineHeight != "" && !isNumber(fs.LineHeight) {
				if err := cssvalue.ValidateLength(fs.LineHeight); err != nil {
					add(path, "lineHeight: %v", err)
				}
			}
			if fs.LetterSpacing != "" {
				if err := cssvalue.ValidateLength(fs.LetterSpacing); err != nil {
					add(path, "letterSpacing: %v", err)
				}
			}
			if fs.FontWeight != "" && !validFontWeight(fs.FontWeight) {
				add(path, "fontWeight %q must be 1-1000 or normal/bold/bolder/lighter", fs.FontWeight)
			}
		}
	}

	if c.Variants != nil {
		for pair := c.Variants.Oldest(); pair != nil; pair = pair.Next() {
			for i, v := range pair.Value {
				if strings.TrimSpace(v) == "" {
					add(fmt.Sprintf("variants.%s[%d]", pair.Key, i), "empty variant name")
				}
			}
		}
	}

	for i, p := range c.Plugins {
		if strings.TrimSpace(p.Name) == "" {
			add(fmt.Sprintf("plugins[%d]", i), "empty plugin name")
		}
	}

	return errs
}

func isNumber(s string) bool {
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && v >= 0
}

func validFontWeight(s string) bool {
	if fontWeightKeywords[strings.ToLower(s)] {
		return true
	}
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && v >= 1 && v <= 1000
}
