package parser

// Language is a grammar that configuration documents can be written in.
type Language int

const (
	// LanguageJavaScript covers .js, .cjs and .mjs config files.
	LanguageJavaScript Language = iota
	// LanguageTypeScript covers .ts, .cts and .mts config files.
	LanguageTypeScript
	// LanguageUnknown is anything tree-sitter is not used for.
	LanguageUnknown
)

// String returns the string representation of the language.
func (l Language) String() string {
	switch l {
	case LanguageJavaScript:
		return "javascript"
	case LanguageTypeScript:
		return "typescript"
	default:
		return "unknown"
	}
}
