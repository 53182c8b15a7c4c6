package main

import (
	"fmt"
	"log/slog"

	"github.com/google/renameio/v2"
)

// writeFileAtomic replaces path with data so readers, including a running
// watcher, never observe a partially written file.
func writeFileAtomic(path string, data []byte, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644), renameio.WithExistingPermissions())
	if err != nil {
		return fmt.Errorf("create pending file for %s: %w", path, err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug("pending file cleanup", "path", path, "error", err)
		}
	}()

	if _, err := pendingFile.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", path, err)
	}
	return nil
}
