package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/twconfig/pkg/config"
)

// ErrNotFound is returned by Discover when no config file exists in dir or
// any of its parents.
var ErrNotFound = errors.New("no tailwind config file found")

// candidatePattern matches every supported config file name.
const candidatePattern = "tailwind.config.{js,cjs,mjs,ts,cts,mts,json,yaml,yml}"

// candidateOrder ranks extensions when a directory holds more than one.
var candidateOrder = []string{".js", ".cjs", ".mjs", ".ts", ".cts", ".mts", ".json", ".yaml", ".yml"}

// Discover walks up from dir and returns the first config file found.
func Discover(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("discover from %s: %w", dir, err)
	}

	for current := abs; ; {
		if path, ok := findCandidate(current); ok {
			return path, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return "", fmt.Errorf("%w in %s or its parents", ErrNotFound, abs)
}

func findCandidate(dir string) (string, bool) {
	matches, err := doublestar.Glob(os.DirFS(dir), candidatePattern, doublestar.WithFilesOnly())
	if err != nil || len(matches) == 0 {
		return "", false
	}
	slices.SortFunc(matches, func(a, b string) int {
		return slices.Index(candidateOrder, filepath.Ext(a)) - slices.Index(candidateOrder, filepath.Ext(b))
	})
	return filepath.Join(dir, matches[0]), true
}

// ResolveContent returns the content patterns as a scanner should apply
// them. Relative-mode patterns are joined to the config file's directory;
// negation prefixes are kept.
func ResolveContent(cfg *config.Config, configPath string) []string {
	out := make([]string, 0, len(cfg.Content))
	if !cfg.ContentRelative {
		return append(out, cfg.Content...)
	}

	base := filepath.Dir(configPath)
	for _, pattern := range cfg.Content {
		negated := strings.HasPrefix(pattern, "!")
		glob := strings.TrimPrefix(pattern, "!")
		if !filepath.IsAbs(glob) {
			glob = filepath.ToSlash(filepath.Join(base, glob))
		}
		if negated {
			glob = "!" + glob
		}
		out = append(out, glob)
	}
	return out
}
