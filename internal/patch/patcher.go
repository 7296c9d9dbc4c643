// Package patch turns linter diagnostics into file-level suppression
// directives and writes them into the offending files.
package patch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"lintsuppress/internal/config"
	"lintsuppress/internal/lint"
	"lintsuppress/internal/model"
)

// Runner produces raw linter output.
type Runner interface {
	Run(ctx context.Context, cfg *config.Config) ([]byte, error)
}

// Patcher plans and applies suppression fixes for one project.
type Patcher struct {
	cfg    *config.Config
	runner Runner
	parser *lint.Parser
	logger *zap.Logger
	out    io.Writer
}

// Option configures a Patcher.
type Option func(*Patcher)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Patcher) { p.logger = l }
}

// WithRunner replaces the tslint subprocess.
func WithRunner(r Runner) Option {
	return func(p *Patcher) { p.runner = r }
}

// WithOutput sets where "Fixed ..." lines go. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(p *Patcher) { p.out = w }
}

// New creates a Patcher for cfg, which must already be resolved.
func New(cfg *config.Config, opts ...Option) *Patcher {
	p := &Patcher{
		cfg:    cfg,
		parser: lint.NewParser(),
		logger: zap.NewNop(),
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.runner == nil {
		p.runner = lint.NewExecutor(&lint.TSLint{}, p.logger)
	}
	return p
}

// Config returns the patcher configuration.
func (p *Patcher) Config() *config.Config {
	return p.cfg
}

func (p *Patcher) options() Options {
	return Options{
		HeaderMarker:    p.cfg.HeaderMarker,
		DirectivePrefix: p.cfg.DirectivePrefix,
	}
}

// Run plans and applies in one go.
func (p *Patcher) Run(ctx context.Context) (model.Plan, error) {
	plan, err := p.Plan(ctx)
	if err != nil {
		return plan, err
	}
	if _, err := p.Apply(ctx, plan); err != nil {
		return plan, err
	}
	return plan, nil
}

// Plan runs the linter and computes every fix without writing anything.
func (p *Patcher) Plan(ctx context.Context) (model.Plan, error) {
	out, err := p.runner.Run(ctx, p.cfg)
	if err != nil {
		return model.Plan{}, err
	}
	diags, err := p.parser.Parse(bytes.NewReader(out))
	if err != nil {
		return model.Plan{}, err
	}
	p.logger.Info("Linter reported diagnostics", zap.Int("count", len(diags)))
	return p.PlanDiagnostics(diags)
}

// PlanDiagnostics computes the fixes for diags, reading each flagged file
// once. Any read failure aborts the plan.
func (p *Patcher) PlanDiagnostics(diags []model.Diagnostic) (model.Plan, error) {
	failures := make(map[string][]string)
	resolved := make([]model.Diagnostic, len(diags))
	for i, d := range diags {
		d.File = p.resolve(d.File)
		resolved[i] = d
		if d.Failure != "" {
			failures[d.File] = append(failures[d.File], fmt.Sprintf("%s: %s", d.Rule, d.Failure))
		}
	}
	set := model.NewFileSuppressionSet(resolved)

	plan := model.Plan{Diagnostics: len(diags)}
	for _, path := range set.Files() {
		fix, err := p.planFile(path, set.Rules(path))
		if err != nil {
			return model.Plan{}, err
		}
		fix.Failures = failures[path]
		plan.Fixes = append(plan.Fixes, fix)
	}
	return plan, nil
}

func (p *Patcher) planFile(path string, rules []string) (model.Fix, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return model.Fix{}, fmt.Errorf("read %s: %w", path, err)
	}
	sf := SplitLines(content)
	edit := PatchFile(sf, rules, p.options())

	p.logger.Debug("Planned fix",
		zap.String("path", path),
		zap.Strings("rules", rules),
		zap.Strings("added", edit.Added),
		zap.Bool("created", edit.Created),
		zap.Bool("changed", edit.Changed))

	return model.Fix{
		Path:      path,
		Line:      edit.Line,
		Directive: edit.Directive,
		Added:     edit.Added,
		Created:   edit.Created,
		Changed:   edit.Changed,
		Lines:     edit.Lines,
		Endings:   edit.Endings,
		Hash:      hashContent(content),
	}, nil
}

// Apply writes every changed fix in plan order and reports each one. It
// refuses to overwrite a file that changed since it was planned. Files
// written before a failure stay written.
func (p *Patcher) Apply(ctx context.Context, plan model.Plan) ([]model.Fix, error) {
	var applied []model.Fix
	for _, fix := range plan.Fixes {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		if !fix.Changed {
			p.logger.Debug("Nothing to add", zap.String("path", fix.Path))
			continue
		}
		if err := p.applyFix(fix); err != nil {
			return applied, err
		}
		applied = append(applied, fix)
		fmt.Fprintf(p.out, "Fixed %s:%d by adding %s\n", fix.Path, fix.Line, fix.Directive)
	}
	p.logger.Info("Applied suppression fixes", zap.Int("files", len(applied)))
	return applied, nil
}

func (p *Patcher) applyFix(fix model.Fix) error {
	current, err := os.ReadFile(fix.Path)
	if err != nil {
		return fmt.Errorf("read %s: %w", fix.Path, err)
	}
	if fix.Hash != "" && hashContent(current) != fix.Hash {
		return fmt.Errorf("%s changed since the fix was planned", fix.Path)
	}
	sf := SourceFile{Lines: fix.Lines, Endings: fix.Endings}
	if err := WriteFileAtomic(fix.Path, sf.Bytes()); err != nil {
		return err
	}
	return nil
}

func (p *Patcher) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(p.cfg.WorkDir, path)
}

func hashContent(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
