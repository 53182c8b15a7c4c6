package util

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/edsrzf/mmap-go"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxSources bounds the number of mapped config files.
const DefaultMaxSources = 64

// ErrSourceCacheClosed is returned by View after Close.
var ErrSourceCacheClosed = errors.New("source cache closed")

// Source is a cached config file. Data is only valid inside the callback
// passed to SourceCache.View.
type Source struct {
	Path    string
	Data    []byte
	Size    int64
	ModTime time.Time

	mapped mmap.MMap
	file   *os.File
}

func (s *Source) matches(info os.FileInfo) bool {
	return s.Size == info.Size() && s.ModTime.Equal(info.ModTime())
}

// SourceCacheConfig controls SourceCache behavior.
type SourceCacheConfig struct {
	// MaxFiles is the number of files kept mapped. Least recently used
	// files are unmapped beyond it. Zero means DefaultMaxSources.
	MaxFiles int

	// Logger for warnings. If nil, uses slog.Default().
	Logger *slog.Logger
}

// SourceCacheStats tracks cache activity.
type SourceCacheStats struct {
	Loads        int64
	Hits         int64
	Misses       int64
	Stale        int64
	Evictions    int64
	MmapFailures int64
	Cached       int
	CachedBytes  int64
}

// SourceCache serves file contents from memory-mapped regions.
//
// Entries are checked against the file's size and modification time on
// every access and reloaded when either changed. Reads run under a shared
// lock so a mapping is never released while a caller is using it.
type SourceCache struct {
	logger  *slog.Logger
	entries *lru.Cache[string, *Source]
	mu      sync.RWMutex
	closed  bool

	stats   SourceCacheStats
	statsMu sync.Mutex
}

// NewSourceCache creates a cache. A nil config uses the defaults.
func NewSourceCache(config *SourceCacheConfig) (*SourceCache, error) {
	if config == nil {
		config = &SourceCacheConfig{}
	}
	maxFiles := config.MaxFiles
	if maxFiles <= 0 {
		maxFiles = DefaultMaxSources
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &SourceCache{logger: logger}
	entries, err := lru.NewWithEvict(maxFiles, c.onEvict)
	if err != nil {
		return nil, fmt.Errorf("create source cache: %w", err)
	}
	c.entries = entries
	return c, nil
}

// View calls fn with the current contents of path. fn must not retain
// src.Data after it returns.
func (c *SourceCache) View(path string, fn func(src *Source) error) error {
	info, err := os.Stat(path)
	if err != nil {
		c.count(func(s *SourceCacheStats) { s.Misses++ })
		return fmt.Errorf("stat %q: %w", path, err)
	}
	if info.IsDir() {
		c.count(func(s *SourceCacheStats) { s.Misses++ })
		return fmt.Errorf("%q is a directory", path)
	}

	c.mu.RLock()
	if src, ok := c.entries.Get(path); ok && src.matches(info) {
		defer c.mu.RUnlock()
		c.count(func(s *SourceCacheStats) { s.Hits++ })
		return fn(src)
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrSourceCacheClosed
	}

	src, ok := c.entries.Peek(path)
	if ok && src.matches(info) {
		c.count(func(s *SourceCacheStats) { s.Hits++ })
		return fn(src)
	}
	if ok {
		c.count(func(s *SourceCacheStats) { s.Stale++ })
		c.entries.Remove(path)
	}

	src, err = c.load(path)
	if err != nil {
		c.count(func(s *SourceCacheStats) { s.Misses++ })
		return err
	}
	c.entries.Add(path, src)
	c.count(func(s *SourceCacheStats) {
		s.Misses++
		s.Loads++
	})
	return fn(src)
}

// Invalidate drops path from the cache. It reports whether it was cached.
func (c *SourceCache) Invalidate(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Remove(path)
}

// Stats returns current cache metrics.
func (c *SourceCache) Stats() SourceCacheStats {
	c.mu.RLock()
	cached := c.entries.Len()
	var cachedBytes int64
	for _, src := range c.entries.Values() {
		cachedBytes += src.Size
	}
	c.mu.RUnlock()

	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	stats := c.stats
	stats.Cached = cached
	stats.CachedBytes = cachedBytes
	return stats
}

// Close unmaps every cached file. It waits for running View callbacks;
// later calls to View return ErrSourceCacheClosed.
func (c *SourceCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.entries.Purge()

	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	c.logger.Debug("source cache closed",
		"loads", c.stats.Loads,
		"hits", c.stats.Hits,
		"misses", c.stats.Misses,
		"mmap_failures", c.stats.MmapFailures)
	return nil
}

// load opens and maps path, falling back to os.ReadFile if mmap fails.
// Must be called while holding mu.Lock.
func (c *SourceCache) load(path string) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}

	src := &Source{Path: path, Size: info.Size(), ModTime: info.ModTime()}

	// Zero-length files cannot be mapped.
	if info.Size() == 0 {
		file.Close()
		src.Data = []byte{}
		return src, nil
	}

	mapped, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		c.logger.Warn("mmap failed, using fallback", "file", path, "size", info.Size(), "error", err)
		c.count(func(s *SourceCacheStats) { s.MmapFailures++ })
		file.Close()

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("read %q after mmap error %v: %w", path, err, readErr)
		}
		src.Data = data
		src.Size = int64(len(data))
		return src, nil
	}

	src.mapped = mapped
	src.file = file
	src.Data = mapped
	return src, nil
}

// onEvict runs inside lru calls made under mu.Lock.
func (c *SourceCache) onEvict(path string, src *Source) {
	c.count(func(s *SourceCacheStats) { s.Evictions++ })
	if src.mapped != nil {
		if err := src.mapped.Unmap(); err != nil {
			c.logger.Warn("failed to unmap file", "path", path, "error", err)
		}
	}
	if src.file != nil {
		if err := src.file.Close(); err != nil {
			c.logger.Warn("failed to close file", "path", path, "error", err)
		}
	}
	src.Data = nil
}

func (c *SourceCache) count(update func(*SourceCacheStats)) {
	c.statsMu.Lock()
	update(&c.stats)
	c.statsMu.Unlock()
}
