// Package parser owns the tree-sitter grammars used to read JavaScript and
// TypeScript configuration documents.
package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/gnana997/twconfig/pkg/util"
)

// Manager parses source text with pooled tree-sitter parsers.
//
// Pools are created lazily, one per language, on first use. The Manager
// owns the pools and must be closed via Close(). Callers own every Tree
// returned by Parse and must close it.
//
// Example:
//
//	manager := parser.NewManager(logger, 0)
//	defer manager.Close()
//
//	tree, err := manager.Parse([]byte("module.exports = {}"), parser.LanguageJavaScript)
//	if err != nil {
//	    return err
//	}
//	defer tree.Close()
type Manager struct {
	pools    map[Language]*parserPool
	poolSize int
	mutex    sync.RWMutex
	logger   *slog.Logger

	parsesCalled int
	closed       bool
}

// NewManager creates a Manager. A poolSize of 0 sizes pools from the CPU count.
func NewManager(logger *slog.Logger, poolSize int) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		pools:    make(map[Language]*parserPool),
		poolSize: util.ParserPoolSize(poolSize),
		logger:   logger,
	}
}

// Parse parses source with the grammar for lang.
//
// Syntax errors do not fail the call: the returned tree marks them with
// ERROR and MISSING nodes, and root.HasError() reports them. Only an
// unusable language or a nil tree is returned as an error.
func (m *Manager) Parse(source []byte, lang Language) (*ts.Tree, error) {
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("cannot parse unknown language")
	}

	m.mutex.Lock()
	if m.closed {
		m.mutex.Unlock()
		return nil, ErrClosed
	}
	m.parsesCalled++
	m.mutex.Unlock()

	pool, err := m.getOrCreatePool(lang)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool for %s: %w", lang, err)
	}

	parser, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("acquire %s parser: %w", lang, err)
	}
	tree := parser.Parse(source, nil)
	pool.release(parser)

	if tree == nil {
		return nil, fmt.Errorf("parser returned nil tree")
	}
	return tree, nil
}

// Close releases every pooled parser. Parses already running finish
// normally; later calls to Parse return ErrClosed.
func (m *Manager) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true

	for lang, pool := range m.pools {
		closed := pool.close()
		m.logger.Debug("closed parser pool",
			"language", lang.String(),
			"parsers_closed", closed)
	}
	m.pools = make(map[Language]*parserPool)
	return nil
}

// getOrCreatePool uses double-checked locking so concurrent first parses
// of one language share a single pool.
func (m *Manager) getOrCreatePool(lang Language) (*parserPool, error) {
	m.mutex.RLock()
	pool, ok := m.pools[lang]
	m.mutex.RUnlock()
	if ok {
		return pool, nil
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if pool, ok = m.pools[lang]; ok {
		return pool, nil
	}

	langPtr, err := languagePointer(lang)
	if err != nil {
		return nil, err
	}
	pool = newParserPool(lang, langPtr, m.poolSize, m.logger)
	m.pools[lang] = pool

	m.logger.Debug("created parser pool",
		"language", lang.String(),
		"maxSize", m.poolSize)
	return pool, nil
}

func languagePointer(lang Language) (unsafe.Pointer, error) {
	switch lang {
	case LanguageJavaScript:
		return ts_javascript.Language(), nil
	case LanguageTypeScript:
		return ts_typescript.LanguageTypescript(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang.String())
	}
}

// Stats returns parser usage counters.
func (m *Manager) Stats() Stats {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	created := 0
	for _, pool := range m.pools {
		created += pool.createdCount()
	}
	return Stats{
		ParsersCreated: created,
		ParsesCalled:   m.parsesCalled,
	}
}

// Stats contains parser usage statistics.
type Stats struct {
	ParsersCreated int
	ParsesCalled   int
}
