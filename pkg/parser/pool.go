package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// ErrClosed is returned by Parse once the Manager has been closed.
var ErrClosed = errors.New("parser pool closed")

// parserPool hands out tree-sitter parsers bound to one grammar.
//
// Parsers are created lazily up to maxSize. When every parser is checked
// out and the pool is full, acquire blocks until one is released or the
// pool is closed. The channel is never closed: releases that race with
// close free their parser instead.
type parserPool struct {
	pool    chan *ts.Parser
	done    chan struct{}
	langPtr unsafe.Pointer
	lang    Language
	maxSize int

	mutex   sync.Mutex
	created int
	closed  bool

	logger *slog.Logger
}

func newParserPool(lang Language, langPtr unsafe.Pointer, maxSize int, logger *slog.Logger) *parserPool {
	return &parserPool{
		pool:    make(chan *ts.Parser, maxSize),
		done:    make(chan struct{}),
		langPtr: langPtr,
		lang:    lang,
		maxSize: maxSize,
		logger:  logger,
	}
}

// acquire returns an idle parser, creating one if the pool has room.
func (p *parserPool) acquire() (*ts.Parser, error) {
	select {
	case <-p.done:
		return nil, ErrClosed
	default:
	}
	select {
	case parser := <-p.pool:
		return parser, nil
	default:
		return p.createOrWait()
	}
}

func (p *parserPool) createOrWait() (*ts.Parser, error) {
	p.mutex.Lock()
	if p.closed {
		p.mutex.Unlock()
		return nil, ErrClosed
	}
	if p.created >= p.maxSize {
		p.mutex.Unlock()
		select {
		case parser := <-p.pool:
			return parser, nil
		case <-p.done:
			return nil, ErrClosed
		}
	}

	parser := ts.NewParser()
	if parser == nil {
		p.mutex.Unlock()
		return nil, fmt.Errorf("failed to create parser")
	}
	if err := parser.SetLanguage(ts.NewLanguage(p.langPtr)); err != nil {
		parser.Close()
		p.mutex.Unlock()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	p.created++
	created := p.created
	p.mutex.Unlock()

	p.logger.Debug("created parser in pool",
		"language", p.lang.String(),
		"pool_size", created)
	return parser, nil
}

// release returns a parser for reuse, or frees it once the pool is closed.
// It never blocks.
func (p *parserPool) release(parser *ts.Parser) {
	if parser == nil {
		return
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		parser.Close()
		return
	}
	select {
	case p.pool <- parser:
	default:
		parser.Close()
		p.logger.Warn("parser pool full, closing excess parser",
			"language", p.lang.String())
	}
}

// close frees every idle parser and wakes blocked acquirers. Parsers still
// checked out are freed when released.
func (p *parserPool) close() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return 0
	}
	p.closed = true
	close(p.done)

	count := 0
	for {
		select {
		case parser := <-p.pool:
			parser.Close()
			count++
		default:
			return count
		}
	}
}

func (p *parserPool) createdCount() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.created
}
