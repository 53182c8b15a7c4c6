// Package watch reloads a configuration document when it changes on disk.
package watch

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/twconfig/pkg/config"
	"github.com/gnana997/twconfig/pkg/loader"
)

// DefaultDebounce groups the bursts of events editors emit on save.
const DefaultDebounce = 150 * time.Millisecond

// ErrStopped is returned when starting a watcher that was stopped.
var ErrStopped = errors.New("watcher already stopped")

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration

	// OnChange receives each successfully reloaded record that differs from
	// the previous one. Calls are serialized.
	OnChange func(cfg *config.Config)

	// OnError receives failed reloads. The last good record is kept.
	OnError func(err error)

	Logger *slog.Logger
}

// Stats contains watcher statistics.
type Stats struct {
	Reloads   int
	Unchanged int
	Failures  int
	Pending   bool
	Running   bool
}

// Watcher observes one config file. Its directory is watched rather than
// the file itself so that editors which save by renaming a temporary file
// over the original are still seen.
type Watcher struct {
	fsw     *fsnotify.Watcher
	loader  *loader.Loader
	path    string
	dir     string
	logger  *slog.Logger
	options Options

	timer   *time.Timer
	timerMu sync.Mutex

	reloadMu sync.Mutex
	current  *config.Config
	stats    Stats

	stopChan chan struct{}
	started  bool
	stopped  bool
	mu       sync.Mutex
}

// New creates a watcher for the config file at path.
func New(l *loader.Loader, path string, options Options) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	if options.Debounce <= 0 {
		options.Debounce = DefaultDebounce
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	return &Watcher{
		fsw:      fsw,
		loader:   l,
		path:     abs,
		dir:      filepath.Dir(abs),
		logger:   options.Logger,
		options:  options,
		stopChan: make(chan struct{}),
	}, nil
}

// Start loads the file once and begins watching. A failed initial load is
// reported through OnError and watching continues, so a broken file can be
// fixed while the watcher runs. If the directory cannot be watched the
// watcher stays unstarted and Start may be retried.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return ErrStopped
	}
	if w.started {
		w.mu.Unlock()
		return nil
	}
	if err := w.fsw.Add(w.dir); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.started = true
	w.mu.Unlock()

	w.Reload()
	w.logger.Info("config watcher started", "path", w.path)

	go w.eventLoop()
	return nil
}

// Current returns a copy of the last good record, or nil if none loaded yet.
func (w *Watcher) Current() *config.Config {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()
	if w.current == nil {
		return nil
	}
	return w.current.Clone()
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Stop stops the watcher and waits for a reload in progress to finish, so
// the loader can be closed once Stop returns. Safe to call multiple times.
// OnChange and OnError must not call Stop.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.stopChan)

	w.timerMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.timerMu.Unlock()

	err := w.fsw.Close()
	w.mu.Unlock()

	w.reloadMu.Lock()
	w.reloadMu.Unlock()

	w.logger.Info("config watcher stopped", "path", w.path)
	return err
}

// Stats returns watcher statistics.
func (w *Watcher) Stats() Stats {
	w.timerMu.Lock()
	pending := w.timer != nil
	w.timerMu.Unlock()

	w.mu.Lock()
	running := w.started && !w.stopped
	w.mu.Unlock()

	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()
	stats := w.stats
	stats.Pending = pending
	stats.Running = running
	return stats
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op == fsnotify.Chmod {
		return
	}
	w.logger.Debug("config file event", "op", event.Op.String(), "path", w.path)
	w.scheduleReload()
}

// scheduleReload restarts the debounce timer; only the last event of a
// burst triggers a reload.
func (w *Watcher) scheduleReload() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.options.Debounce, func() {
		w.timerMu.Lock()
		w.timer = nil
		w.timerMu.Unlock()

		select {
		case <-w.stopChan:
			return
		default:
		}
		w.Reload()
	})
}

// Reload loads the file now, bypassing the debounce. Start and file events
// call it; the CLI also calls it on SIGHUP. It does nothing once the watcher
// is stopped.
func (w *Watcher) Reload() {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()

	select {
	case <-w.stopChan:
		return
	default:
	}

	w.loader.Invalidate(w.path)
	cfg, err := w.loader.Load(w.path)
	if err != nil {
		w.stats.Failures++
		w.logger.Warn("config reload failed, keeping last good record", "path", w.path, "error", err)
		if w.options.OnError != nil {
			w.options.OnError(err)
		}
		return
	}

	if w.current != nil && w.current.Equal(cfg) {
		w.stats.Unchanged++
		w.logger.Debug("config unchanged", "path", w.path)
		return
	}

	w.current = cfg
	w.stats.Reloads++
	w.logger.Info("config reloaded", "path", w.path, "content", len(cfg.Content), "font_sizes", len(cfg.FontSizeNames()))
	if w.options.OnChange != nil {
		w.options.OnChange(cfg.Clone())
	}
}
