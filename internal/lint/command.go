package lint

import (
	"lintsuppress/internal/config"
)

// Tool defines how a linter is invoked.
type Tool interface {
	Args(cfg *config.Config) []string
	Name() string
}

// TSLint implements Tool for tslint.
type TSLint struct{}

func (t *TSLint) Args(cfg *config.Config) []string {
	return []string{
		"-c", cfg.LintConfig,
		"--fix",
		"--type-check",
		"--project", cfg.Project,
		"--format", "json",
	}
}

func (t *TSLint) Name() string {
	return "tslint"
}
