// Package loader reads configuration documents from disk into validated
// records.
//
// A Loader owns the parser pool, a memory-mapped source cache and an LRU of
// parsed records keyed by path, size and modification time. Loading is a
// pure read: the same unchanged file always yields an equal record, and
// every caller gets its own copy.
package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/gnana997/twconfig/pkg/config"
	"github.com/gnana997/twconfig/pkg/document"
	"github.com/gnana997/twconfig/pkg/parser"
	"github.com/gnana997/twconfig/pkg/util"
)

// DefaultMaxRecords bounds the parsed record cache.
const DefaultMaxRecords = 128

// Options configures a Loader.
type Options struct {
	// AllowUnknownKeys skips keys outside the schema with a warning.
	AllowUnknownKeys bool

	// Logger for load events. If nil, uses slog.Default().
	Logger *slog.Logger

	// ParserPoolSize overrides the parsers kept per language.
	ParserPoolSize int

	// MaxSources bounds the memory-mapped source cache.
	MaxSources int

	// MaxRecords bounds the parsed record cache. Zero means DefaultMaxRecords.
	MaxRecords int
}

// Stats reports loader activity.
type Stats struct {
	Loads        int64
	RecordHits   int64
	RecordMisses int64
	Failures     int64
	Records      int
	Sources      util.SourceCacheStats
	Parsers      parser.Stats
}

type cachedRecord struct {
	size    int64
	modTime time.Time
	cfg     *config.Config
}

// Loader loads configuration documents. It is safe for concurrent use.
type Loader struct {
	opts    Options
	logger  *slog.Logger
	parsers *parser.Manager
	decoder *document.Decoder
	sources *util.SourceCache
	records *lru.Cache[string, cachedRecord]
	group   singleflight.Group

	loads        atomic.Int64
	recordHits   atomic.Int64
	recordMisses atomic.Int64
	failures     atomic.Int64

	closeOnce sync.Once
}

// New creates a Loader.
func New(opts Options) (*Loader, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxRecords <= 0 {
		opts.MaxRecords = DefaultMaxRecords
	}

	sources, err := util.NewSourceCache(&util.SourceCacheConfig{
		MaxFiles: opts.MaxSources,
		Logger:   opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	records, err := lru.New[string, cachedRecord](opts.MaxRecords)
	if err != nil {
		sources.Close()
		return nil, fmt.Errorf("create record cache: %w", err)
	}

	parsers := parser.NewManager(opts.Logger, opts.ParserPoolSize)
	return &Loader{
		opts:    opts,
		logger:  opts.Logger,
		parsers: parsers,
		decoder: document.NewDecoder(parsers),
		sources: sources,
		records: records,
	}, nil
}

// Load reads, decodes and validates the document at path. The format is
// taken from the file extension.
func (l *Loader) Load(path string) (*config.Config, error) {
	start := time.Now()
	l.loads.Add(1)

	abs, err := filepath.Abs(path)
	if err != nil {
		l.failures.Add(1)
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	format := document.DetectFormat(abs)
	if format == document.FormatUnknown {
		l.failures.Add(1)
		return nil, fmt.Errorf("load %s: %w: unrecognized extension %q",
			path, document.ErrUnsupportedFormat, filepath.Ext(abs))
	}

	// Concurrent loads of one path share a single decode.
	v, err, _ := l.group.Do(abs, func() (any, error) {
		var cfg *config.Config
		err := l.sources.View(abs, func(src *util.Source) error {
			if rec, ok := l.records.Get(abs); ok && rec.size == src.Size && rec.modTime.Equal(src.ModTime) {
				l.recordHits.Add(1)
				cfg = rec.cfg
				return nil
			}
			l.recordMisses.Add(1)

			decoded, err := l.decode(src.Data, format)
			if err != nil {
				return err
			}
			l.records.Add(abs, cachedRecord{size: src.Size, modTime: src.ModTime, cfg: decoded})
			cfg = decoded
			return nil
		})
		return cfg, err
	})
	if err != nil {
		l.failures.Add(1)
		l.records.Remove(abs)
		l.logger.Debug("config load failed", "path", abs, "error", err)
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	cfg := v.(*config.Config)

	l.logger.Debug("config loaded",
		"path", abs,
		"format", format.String(),
		"content", len(cfg.Content),
		"font_sizes", len(cfg.FontSizeNames()),
		"duration", time.Since(start))
	return cfg.Clone(), nil
}

// LoadBytes decodes and validates an in-memory document. Nothing is cached.
func (l *Loader) LoadBytes(data []byte, format document.Format) (*config.Config, error) {
	l.loads.Add(1)
	cfg, err := l.decode(data, format)
	if err != nil {
		l.failures.Add(1)
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) decode(data []byte, format document.Format) (*config.Config, error) {
	root, err := l.decoder.Decode(data, format)
	if err != nil {
		return nil, err
	}
	cfg, err := config.FromDocument(root, config.DecodeOptions{
		AllowUnknownKeys: l.opts.AllowUnknownKeys,
		Logger:           l.logger,
	})
	if err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// Invalidate forgets anything cached for path.
func (l *Loader) Invalidate(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	l.records.Remove(abs)
	l.sources.Invalidate(abs)
}

// Stats returns loader metrics.
func (l *Loader) Stats() Stats {
	return Stats{
		Loads:        l.loads.Load(),
		RecordHits:   l.recordHits.Load(),
		RecordMisses: l.recordMisses.Load(),
		Failures:     l.failures.Load(),
		Records:      l.records.Len(),
		Sources:      l.sources.Stats(),
		Parsers:      l.parsers.Stats(),
	}
}

// Close releases parsers and mapped files. It is safe to call more than once.
func (l *Loader) Close() error {
	var err error
	l.closeOnce.Do(func() {
		l.records.Purge()
		err = errors.Join(l.sources.Close(), l.parsers.Close())
	})
	return err
}
