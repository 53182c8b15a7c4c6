package util

import "runtime"

const (
	minParserPool = 2
	maxParserPool = 8
)

// ParserPoolSize returns how many tree-sitter parsers to keep per language.
//
// Config documents are small and parsed rarely, so the pool follows the core
// count within [2, 8]. A positive override wins, which tests and the
// parser_pool setting use.
func ParserPoolSize(override int) int {
	if override > 0 {
		return override
	}
	return min(max(runtime.NumCPU(), minParserPool), maxParserPool)
}
