package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gnana997/twconfig/pkg/loader"
	"github.com/gnana997/twconfig/pkg/util"
)

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	project *ProjectConfig
	logger  *slog.Logger
}

// commonFlags are accepted by every command that reads a config.
type commonFlags struct {
	configPath   string
	logLevel     string
	allowUnknown bool
}

func (a *app) flagSet(name string, cf *commonFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.StringVar(&cf.configPath, "config", "", "path to the tailwind config file")
	fs.StringVar(&cf.logLevel, "log-level", "", "debug, info, warn or error")
	fs.BoolVar(&cf.allowUnknown, "allow-unknown", false, "skip unknown keys with a warning")
	return fs
}

// setup reads the project config and builds the logger and loader.
func (a *app) setup(cf commonFlags) (*loader.Loader, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	a.project, err = loadProjectConfig(wd)
	if err != nil {
		return nil, err
	}

	logCfg := util.DefaultLoggerConfig()
	logCfg.Output = a.stderr
	levelName := cf.logLevel
	if levelName == "" && a.project != nil {
		levelName = a.project.LogLevel
	}
	if levelName != "" {
		level, ok := util.ParseLogLevel(levelName)
		if !ok {
			return nil, fmt.Errorf("unknown log level %q", levelName)
		}
		logCfg.Level = level
	}
	if a.project != nil && a.project.LogFormat != "" {
		logCfg.Format = util.LogFormat(a.project.LogFormat)
	}
	a.logger = util.NewLogger(logCfg)

	opts := loader.Options{
		AllowUnknownKeys: cf.allowUnknown,
		Logger:           a.logger,
	}
	if a.project != nil {
		opts.AllowUnknownKeys = opts.AllowUnknownKeys || a.project.AllowUnknownKeys
		opts.ParserPoolSize = a.project.ParserPool
	}
	return loader.New(opts)
}

func (a *app) failf(format string, args ...any) int {
	fmt.Fprintf(a.stderr, "twconfig: "+format+"\n", args...)
	return exitFailure
}
