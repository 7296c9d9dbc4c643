// Package config holds the paths and markers the patcher works with.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults, relative to the base directory.
const (
	DefaultLinter          = "node_modules/.bin/tslint"
	DefaultLintConfig      = "tslint.json"
	DefaultProject         = "tsconfig.json"
	DefaultHeaderMarker    = "// Copyright"
	DefaultDirectivePrefix = "// tslint:disable:"
)

// Config is the complete patcher configuration.
type Config struct {
	// BaseDir anchors every relative path below. Not read from the file.
	BaseDir string `yaml:"-"`
	// WorkDir is where the linter runs and where relative diagnostic
	// paths are resolved. Defaults to BaseDir.
	WorkDir string `yaml:"work_dir"`

	Linter     string `yaml:"linter"`
	LintConfig string `yaml:"lint_config"`
	Project    string `yaml:"project"`

	// HeaderMarker recognises a single-line copyright header.
	HeaderMarker string `yaml:"header_marker"`
	// DirectivePrefix starts a file-level suppression comment.
	DirectivePrefix string `yaml:"directive_prefix"`

	// Timeout bounds the linter run, 0 means wait forever.
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the default configuration rooted at baseDir.
func DefaultConfig(baseDir string) *Config {
	return &Config{
		BaseDir:         baseDir,
		Linter:          DefaultLinter,
		LintConfig:      DefaultLintConfig,
		Project:         DefaultProject,
		HeaderMarker:    DefaultHeaderMarker,
		DirectivePrefix: DefaultDirectivePrefix,
	}
}

// ExecutableDir returns the directory holding the running binary.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// Load reads a YAML config file on top of the defaults for baseDir. Relative
// paths in the file are taken relative to the file itself. A missing file
// yields the defaults.
func Load(path, baseDir string) (*Config, error) {
	cfg := DefaultConfig(baseDir)

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				return nil, fmt.Errorf("resolve config path: %w", err)
			}
			cfg.BaseDir = filepath.Dir(abs)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("LINTSUPPRESS_LINTER"); v != "" {
		c.Linter = v
	}
	if v := os.Getenv("LINTSUPPRESS_LINT_CONFIG"); v != "" {
		c.LintConfig = v
	}
	if v := os.Getenv("LINTSUPPRESS_PROJECT"); v != "" {
		c.Project = v
	}
	if v := os.Getenv("LINTSUPPRESS_HEADER"); v != "" {
		c.HeaderMarker = v
	}
	if v := os.Getenv("LINTSUPPRESS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LINTSUPPRESS_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	return nil
}

// Resolve makes every path absolute against BaseDir.
func (c *Config) Resolve() error {
	base, err := filepath.Abs(c.BaseDir)
	if err != nil {
		return fmt.Errorf("resolve base dir: %w", err)
	}
	c.BaseDir = base
	if c.WorkDir == "" {
		c.WorkDir = base
	}
	c.WorkDir = c.abs(c.WorkDir)
	c.LintConfig = c.abs(c.LintConfig)
	c.Project = c.abs(c.Project)
	// A bare command name is looked up on PATH by exec.
	if filepath.Base(c.Linter) != c.Linter {
		c.Linter = c.abs(c.Linter)
	}
	return nil
}

func (c *Config) abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	switch {
	case c.Linter == "":
		return errors.New("linter path is empty")
	case c.LintConfig == "":
		return errors.New("lint config path is empty")
	case c.Project == "":
		return errors.New("project descriptor path is empty")
	case c.DirectivePrefix == "":
		return errors.New("directive prefix is empty")
	case c.Timeout < 0:
		return fmt.Errorf("timeout %s is negative", c.Timeout)
	}
	return nil
}
