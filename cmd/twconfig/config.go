package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/twconfig/pkg/loader"
)

const projectConfigPath = ".twconfig/config.yaml"

// ProjectConfig holds the contents of .twconfig/config.yaml.
type ProjectConfig struct {
	ConfigPath       string `yaml:"config_path"`
	LogLevel         string `yaml:"log_level"`
	LogFormat        string `yaml:"log_format"`
	AllowUnknownKeys bool   `yaml:"allow_unknown_keys"`
	ParserPool       int    `yaml:"parser_pool"`
	CallLog          string `yaml:"call_log"`

	// dir is the directory holding .twconfig, used to resolve relative paths.
	dir string
}

// loadProjectConfig reads .twconfig/config.yaml under dir.
// Returns nil (no error) if the file does not exist.
func loadProjectConfig(dir string) (*ProjectConfig, error) {
	path := filepath.Join(dir, projectConfigPath)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.ParserPool < 0 {
		return nil, fmt.Errorf("%s: parser_pool must not be negative", path)
	}
	cfg.dir = dir
	return &cfg, nil
}

// resolve makes a project-relative path absolute.
func (p *ProjectConfig) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.dir, path)
}

// resolveConfigPath returns the config file to use, applying the fallback chain:
//  1. Explicit --config flag value
//  2. config_path from .twconfig/config.yaml
//  3. The nearest tailwind.config.* found walking up from the working directory
func resolveConfigPath(flagValue string, project *ProjectConfig) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if project != nil && project.ConfigPath != "" {
		return project.resolve(project.ConfigPath), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return loader.Discover(wd)
}
