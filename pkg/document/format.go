package document

import (
	"path/filepath"
	"strings"
)

// Format is the source syntax of a configuration document.
type Format int

const (
	FormatUnknown Format = iota
	FormatJavaScript
	FormatTypeScript
	FormatJSON
	FormatYAML
)

// String returns the short name used on the command line.
func (f Format) String() string {
	switch f {
	case FormatJavaScript:
		return "js"
	case FormatTypeScript:
		return "ts"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// DetectFormat infers the format from a file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".cjs", ".mjs":
		return FormatJavaScript
	case ".ts", ".cts", ".mts":
		return FormatTypeScript
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}

// ParseFormat converts a format name such as "js" or "yaml" to a Format.
func ParseFormat(name string) Format {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "js", "javascript", "cjs", "mjs":
		return FormatJavaScript
	case "ts", "typescript":
		return FormatTypeScript
	case "json":
		return FormatJSON
	case "yaml", "yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}
