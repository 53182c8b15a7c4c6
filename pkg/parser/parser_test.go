package parser

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var languages = []Language{LanguageJavaScript, LanguageTypeScript}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestParseJavaScriptConfig(t *testing.T) {
	manager := NewManager(testLogger(), 0)
	defer manager.Close()

	source := []byte(`module.exports = { content: ["./index.html"], plugins: [] };`)
	tree, err := manager.Parse(source, LanguageJavaScript)
	require.NoError(t, err)
	require.NotNil(t, tree)
	defer tree.Close()

	root := tree.RootNode()
	assert.Equal(t, "program", root.Kind())
	assert.False(t, root.HasError())
	assert.Contains(t, root.ToSexp(), "assignment_expression")
}

func TestParseTypeScriptConfig(t *testing.T) {
	manager := NewManager(testLogger(), 0)
	defer manager.Close()

	source := []byte(`import type { Config } from "tailwindcss";
export default { content: [] } satisfies Config;`)
	tree, err := manager.Parse(source, LanguageTypeScript)
	require.NoError(t, err)
	defer tree.Close()

	root := tree.RootNode()
	assert.Equal(t, "program", root.Kind())
	assert.False(t, root.HasError())
}

func TestParseInvalidSyntaxReturnsTreeWithErrors(t *testing.T) {
	manager := NewManager(testLogger(), 0)
	defer manager.Close()

	tree, err := manager.Parse([]byte(`module.exports = { content: [`), LanguageJavaScript)
	require.NoError(t, err, "syntax errors are reported in the tree, not as an error")
	defer tree.Close()

	assert.True(t, tree.RootNode().HasError())
}

func TestParseUnknownLanguage(t *testing.T) {
	manager := NewManager(testLogger(), 0)
	defer manager.Close()

	tree, err := manager.Parse([]byte("{}"), LanguageUnknown)
	assert.Error(t, err)
	assert.Nil(t, tree)
}

func TestLazyPoolCreation(t *testing.T) {
	manager := NewManager(testLogger(), 0)
	defer manager.Close()

	assert.Equal(t, 0, manager.Stats().ParsersCreated)

	for i := 0; i < 2; i++ {
		tree, err := manager.Parse([]byte("module.exports = {}"), LanguageJavaScript)
		require.NoError(t, err)
		tree.Close()
	}
	stats := manager.Stats()
	assert.Equal(t, 1, stats.ParsersCreated, "sequential parses reuse one parser")
	assert.Equal(t, 2, stats.ParsesCalled)

	tree, err := manager.Parse([]byte("export default {}"), LanguageTypeScript)
	require.NoError(t, err)
	tree.Close()
	assert.Equal(t, 2, manager.Stats().ParsersCreated)
}

func TestConcurrentParsing(t *testing.T) {
	const poolSize = 4
	manager := NewManager(testLogger(), poolSize)
	defer manager.Close()

	const goroutines = 50
	var wg sync.WaitGroup
	errs := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lang := languages[i%2]
			tree, err := manager.Parse([]byte(`module.exports = { plugins: [] }`), lang)
			if err != nil {
				errs <- err
				return
			}
			tree.Close()
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("parse failed: %v", err)
	}
	stats := manager.Stats()
	assert.LessOrEqual(t, stats.ParsersCreated, poolSize*len(languages))
	assert.Equal(t, goroutines, stats.ParsesCalled)
}

func TestCloseClearsPools(t *testing.T) {
	manager := NewManager(testLogger(), 0)
	for _, lang := range languages {
		tree, err := manager.Parse([]byte("export default {}"), lang)
		require.NoError(t, err)
		tree.Close()
	}
	require.NoError(t, manager.Close())
	assert.Empty(t, manager.pools)
}

func TestLanguageString(t *testing.T) {
	assert.Equal(t, "javascript", LanguageJavaScript.String())
	assert.Equal(t, "typescript", LanguageTypeScript.String())
	assert.Equal(t, "unknown", LanguageUnknown.String())
}

func TestParseAfterClose(t *testing.T) {
	manager := NewManager(testLogger(), 0)
	require.NoError(t, manager.Close())
	require.NoError(t, manager.Close())

	tree, err := manager.Parse([]byte("module.exports = {}"), LanguageJavaScript)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Nil(t, tree)
}

func TestPoolReleaseAfterClose(t *testing.T) {
	manager := NewManager(testLogger(), 1)
	pool, err := manager.getOrCreatePool(LanguageJavaScript)
	require.NoError(t, err)

	parser, err := pool.acquire()
	require.NoError(t, err)

	require.NoError(t, manager.Close())
	assert.NotPanics(t, func() { pool.release(parser) })

	_, err = pool.acquire()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPoolCloseWakesWaiters(t *testing.T) {
	manager := NewManager(testLogger(), 1)
	pool, err := manager.getOrCreatePool(LanguageJavaScript)
	require.NoError(t, err)

	parser, err := pool.acquire()
	require.NoError(t, err)

	waiting := make(chan error, 1)
	go func() {
		_, err := pool.acquire()
		waiting <- err
	}()

	require.NoError(t, manager.Close())
	select {
	case err := <-waiting:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("blocked acquire was not woken by close")
	}
	pool.release(parser)
}

func TestCloseDuringConcurrentParses(t *testing.T) {
	manager := NewManager(testLogger(), 2)

	var b strings.Builder
	b.WriteString("module.exports = { content: [\n")
	for i := 0; i < 20000; i++ {
		fmt.Fprintf(&b, "  \"./src/%d/**/*.html\",\n", i)
	}
	b.WriteString("] };\n")
	source := []byte(b.String())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := manager.Parse(source, LanguageJavaScript)
			if err != nil {
				assert.ErrorIs(t, err, ErrClosed)
				return
			}
			tree.Close()
		}()
	}
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, manager.Close())
	wg.Wait()
}
