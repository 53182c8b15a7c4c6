package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/gnana997/twconfig/pkg/config"
	"github.com/gnana997/twconfig/pkg/document"
	"github.com/gnana997/twconfig/pkg/loader"
	"github.com/gnana997/twconfig/pkg/mcp"
	"github.com/gnana997/twconfig/pkg/mcplog"
	"github.com/gnana997/twconfig/pkg/util"
	"github.com/gnana997/twconfig/pkg/watch"
)

// validation is the outcome of checking one file.
type validation struct {
	Path     string           `json:"path"`
	Valid    bool             `json:"valid"`
	Problems []config.Problem `json:"problems,omitempty"`

	cfg *config.Config
}

func (a *app) cmdValidate(args []string) int {
	var cf commonFlags
	fs := a.flagSet("validate", &cf)
	asJSON := fs.Bool("json", false, "print results as JSON")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	l, err := a.setup(cf)
	if err != nil {
		return a.failf("%v", err)
	}
	defer l.Close()

	paths := fs.Args()
	if len(paths) == 0 {
		path, err := resolveConfigPath(cf.configPath, a.project)
		if err != nil {
			return a.failf("%v", err)
		}
		paths = []string{path}
	}

	results := make([]validation, len(paths))
	var g errgroup.Group
	g.SetLimit(util.ParserPoolSize(0))
	for i, path := range paths {
		g.Go(func() error {
			cfg, err := l.Load(path)
			results[i] = validation{Path: path, Valid: err == nil, Problems: config.Problems(err), cfg: cfg}
			return nil
		})
	}
	_ = g.Wait()

	if *asJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return a.failf("%v", err)
		}
	} else {
		printValidations(a.stdout, results)
	}

	for _, r := range results {
		if !r.Valid {
			return exitFailure
		}
	}
	return exitOK
}

func (a *app) cmdPrint(args []string) int {
	var cf commonFlags
	fs := a.flagSet("print", &cf)
	formatName := fs.String("format", "", "output format: js, ts, json or yaml (default: the source format)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	l, err := a.setup(cf)
	if err != nil {
		return a.failf("%v", err)
	}
	defer l.Close()

	path, err := resolveConfigPath(cf.configPath, a.project)
	if err != nil {
		return a.failf("%v", err)
	}
	format := document.DetectFormat(path)
	if *formatName != "" {
		format = document.ParseFormat(*formatName)
		if format == document.FormatUnknown {
			return a.failf("unknown format %q (use js, ts, json or yaml)", *formatName)
		}
	}

	cfg, err := l.Load(path)
	if err != nil {
		printProblems(a.stderr, path, config.Problems(err))
		return exitFailure
	}
	if err := config.Encode(a.stdout, cfg, format); err != nil {
		return a.failf("%v", err)
	}
	return exitOK
}

func (a *app) cmdTokens(args []string) int {
	var cf commonFlags
	fs := a.flagSet("tokens", &cf)
	resolved := fs.Bool("resolved", false, "include the built-in font-size scale")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	l, err := a.setup(cf)
	if err != nil {
		return a.failf("%v", err)
	}
	defer l.Close()

	path, err := resolveConfigPath(cf.configPath, a.project)
	if err != nil {
		return a.failf("%v", err)
	}
	cfg, err := l.Load(path)
	if err != nil {
		printProblems(a.stderr, path, config.Problems(err))
		return exitFailure
	}

	var tokens []config.Token
	if *resolved {
		tokens = cfg.ResolvedFontSizes()
	} else {
		for _, name := range cfg.FontSizeNames() {
			value, _ := cfg.FontSize(name)
			tokens = append(tokens, config.Token{Name: name, Value: value, Source: config.SourceExtend})
		}
	}
	if len(tokens) == 0 {
		fmt.Fprintln(a.stdout, "No font-size tokens. Use --resolved to include the built-in scale.")
		return exitOK
	}
	printTokens(a.stdout, tokens)
	return exitOK
}

// starterConfig is the document written by init.
func starterConfig() *config.Config {
	cfg := config.New()
	cfg.Content = append(cfg.Content, "./index.html", "./src/**/*.{html,js,jsx,ts,tsx}")
	return cfg
}

func (a *app) cmdInit(args []string) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	force := fs.Bool("force", false, "overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	path := "tailwind.config.js"
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	if err := a.writeConfig(path, starterConfig(), *force); err != nil {
		return a.failf("%v", err)
	}
	fmt.Fprintf(a.stdout, "Wrote %s\n", path)
	return exitOK
}

func (a *app) cmdConvert(args []string) int {
	var cf commonFlags
	fs := a.flagSet("convert", &cf)
	to := fs.String("to", "", "destination file; its extension picks the format")
	force := fs.Bool("force", false, "overwrite an existing destination")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *to == "" {
		fmt.Fprintln(a.stderr, "convert: --to <path> is required")
		return exitUsage
	}

	l, err := a.setup(cf)
	if err != nil {
		return a.failf("%v", err)
	}
	defer l.Close()

	path, err := resolveConfigPath(cf.configPath, a.project)
	if err != nil {
		return a.failf("%v", err)
	}
	cfg, err := l.Load(path)
	if err != nil {
		printProblems(a.stderr, path, config.Problems(err))
		return exitFailure
	}
	if err := a.writeConfig(*to, cfg, *force); err != nil {
		return a.failf("%v", err)
	}

	// The converted file must load back to the same record.
	converted, err := l.Load(*to)
	if err != nil {
		return a.failf("converted file does not load: %v", err)
	}
	if !converted.Equal(cfg) {
		return a.failf("converted file %s differs from %s", *to, path)
	}
	fmt.Fprintf(a.stdout, "Converted %s -> %s\n", path, *to)
	return exitOK
}

// writeConfig encodes cfg in the format implied by path and replaces the
// file atomically.
func (a *app) writeConfig(path string, cfg *config.Config, force bool) error {
	format := document.DetectFormat(path)
	if format == document.FormatUnknown {
		return fmt.Errorf("%s: %w (use .js, .ts, .json or .yaml)", path, document.ErrUnsupportedFormat)
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	var buf bytes.Buffer
	if err := config.Encode(&buf, cfg, format); err != nil {
		return err
	}
	return writeFileAtomic(path, buf.Bytes(), a.logger)
}

func (a *app) cmdWatch(args []string) int {
	var cf commonFlags
	fs := a.flagSet("watch", &cf)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	l, err := a.setup(cf)
	if err != nil {
		return a.failf("%v", err)
	}
	defer l.Close()

	path, err := resolveConfigPath(cf.configPath, a.project)
	if err != nil {
		return a.failf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	if err := a.watch(ctx, l, path, hup); err != nil {
		return a.failf("%v", err)
	}
	return exitOK
}

// watch reports each reload of path until ctx is done. A value on reload
// forces a reload without waiting for a file event.
func (a *app) watch(ctx context.Context, l *loader.Loader, path string, reload <-chan os.Signal) error {
	w, err := watch.New(l, path, watch.Options{
		Logger: a.logger,
		OnChange: func(cfg *config.Config) {
			fmt.Fprintf(a.stdout, "loaded %s: %s\n", path, summary(cfg))
		},
		OnError: func(err error) {
			printProblems(a.stderr, path, config.Problems(err))
		},
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		_ = w.Stop()
		return err
	}
	fmt.Fprintf(a.stderr, "Watching %s (Ctrl-C to stop)\n", path)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-reload:
				w.Reload()
			}
		}
	})
	g.Go(func() error {
		<-ctx.Done()
		return w.Stop()
	})
	return g.Wait()
}

func (a *app) cmdServe(args []string) int {
	var cf commonFlags
	fs := a.flagSet("serve", &cf)
	callLogPath := fs.String("call-log", "", "append one JSONL line per tool call to this file")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	l, err := a.setup(cf)
	if err != nil {
		return a.failf("%v", err)
	}
	defer l.Close()

	// A missing config is not fatal: validate_config works without one.
	path, err := resolveConfigPath(cf.configPath, a.project)
	if err != nil && !errors.Is(err, loader.ErrNotFound) {
		return a.failf("%v", err)
	}
	if path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	logPath := *callLogPath
	if logPath == "" && a.project != nil {
		logPath = a.project.resolve(a.project.CallLog)
	}
	callLog, err := mcplog.Open(logPath)
	if err != nil {
		return a.failf("open call log: %v", err)
	}
	defer callLog.Close()

	srv := mcp.NewServer(l, mcp.Options{ConfigPath: path, CallLog: callLog, Logger: a.logger})
	if err := srv.ServeStdio(); err != nil {
		return a.failf("server error: %v", err)
	}
	return exitOK
}
