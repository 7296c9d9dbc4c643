package lint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"lintsuppress/internal/config"
)

// ToolError is returned when the linter wrote anything to stderr. The run
// stops there: no output is parsed and no file is patched.
type ToolError struct {
	Tool     string
	Stderr   string
	ExitCode int
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s reported an error (exit %d): %s", e.Tool, e.ExitCode, strings.TrimSpace(e.Stderr))
}

// Executor runs the linter as a subprocess.
type Executor struct {
	Tool   Tool
	Logger *zap.Logger
}

// NewExecutor returns an Executor for tool.
func NewExecutor(tool Tool, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{Tool: tool, Logger: logger}
}

// Run executes the linter under cfg and returns its standard output.
//
// A non-zero exit status alone is not an error: tslint exits 2 whenever it
// reports failures. Only a non-empty stderr is.
func (e *Executor) Run(ctx context.Context, cfg *config.Config) ([]byte, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	args := e.Tool.Args(cfg)
	cmd := exec.CommandContext(ctx, cfg.Linter, args...)
	cmd.Dir = cfg.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.Logger.Debug("Running linter",
		zap.String("tool", e.Tool.Name()),
		zap.String("binary", cfg.Linter),
		zap.Strings("args", args),
		zap.String("dir", cmd.Dir))

	err := cmd.Run()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%s did not finish: %w", e.Tool.Name(), ctxErr)
	}

	exitCode := 0
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		exitCode = exitErr.ExitCode()
	default:
		return nil, fmt.Errorf("failed to run %s: %w", e.Tool.Name(), err)
	}

	if stderr.Len() > 0 {
		return nil, &ToolError{Tool: e.Tool.Name(), Stderr: stderr.String(), ExitCode: exitCode}
	}

	e.Logger.Debug("Linter finished",
		zap.Int("exit_code", exitCode),
		zap.Int("stdout_bytes", stdout.Len()))

	return stdout.Bytes(), nil
}
