package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"lintsuppress/internal/config"
	"lintsuppress/internal/lint"
	"lintsuppress/internal/model"
	"lintsuppress/internal/patch"
	"lintsuppress/internal/tui"
	"lintsuppress/internal/web"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"github.com/tcnksm/go-latest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func checkUpdate(currentVer string) {
	githubTag := &latest.GithubTag{
		Owner:      "terraindata",
		Repository: "lintsuppress",
	}

	res, err := latest.Check(githubTag, currentVer)
	if err != nil {
		return // Silently fail
	}

	if res.Outdated {
		fmt.Printf("\n✨ A new version is available: %s (you have %s)\n", res.Current, currentVer)
		fmt.Println("👉 Download it from https://github.com/terraindata/lintsuppress/releases")
	} else {
		fmt.Printf("✅ You are using the latest version: %s\n", currentVer)
	}
}

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lintsuppress [options]\n\n")
		fmt.Fprintf(os.Stderr, "lintsuppress runs tslint with --fix and silences whatever it could not fix\n")
		fmt.Fprintf(os.Stderr, "by adding a '// tslint:disable:<rules>' directive after each file's copyright line.\n")
		fmt.Fprintf(os.Stderr, "Paths default to the directory holding the lintsuppress binary.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  lintsuppress                 # Lint, patch files, print one line per fix\n")
		fmt.Fprintf(os.Stderr, "  lintsuppress -n --report     # Show what would change, touch nothing\n")
		fmt.Fprintf(os.Stderr, "  lintsuppress -r -o r.txt     # Patch and save the report to a file\n")
		fmt.Fprintf(os.Stderr, "  lintsuppress --tui           # Review the fixes before writing them\n")
		fmt.Fprintf(os.Stderr, "  lintsuppress --root . --json # Run against the current directory, JSON output\n")
	fmt.Fprintf(os.Stderr, "  lintsuppress --write-config lintsuppress.yaml  # Save the resolved settings\n")
	}

	configFlag := pflag.StringP("config", "c", "", "YAML config file (paths in it are relative to the file)")
	rootFlag := pflag.String("root", "", "Base directory for relative paths (default: binary's directory)")
	linterFlag := pflag.String("linter", "", "Path to the tslint binary")
	lintConfigFlag := pflag.String("lint-config", "", "Path to tslint.json")
	projectFlag := pflag.String("project", "", "Path to tsconfig.json")
	headerFlag := pflag.String("header", "", "Prefix of the single-line header to keep above the directive")
	timeoutFlag := pflag.Duration("timeout", 0, "Give up on the linter after this long (0 waits forever)")
	dryRunFlag := pflag.BoolP("dry-run", "n", false, "Plan the fixes but do not write any file")
	reportFlag := pflag.BoolP("report", "r", false, "Print a summary report of the fixes")
	outputFlag := pflag.StringP("output", "o", "", "Save report to the specified file (combined with --report)")
	jsonFlag := pflag.BoolP("json", "j", false, "Output the plan as JSON")
	tuiFlag := pflag.BoolP("tui", "t", false, "Review the fixes interactively before writing")
	webFlag := pflag.BoolP("web", "w", false, "Serve the plan in a browser")
	addrFlag := pflag.String("addr", "localhost:8080", "Listen address for --web")
	writeConfigFlag := pflag.String("write-config", "", "Write the resolved configuration to this YAML file and exit")
	verboseFlag := pflag.BoolP("verbose", "v", false, "Debug logging, and linter messages in the report")
	versionFlag := pflag.BoolP("version", "V", false, "Print version information")
	updateFlag := pflag.BoolP("update", "u", false, "Check for latest version")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return
	}

	if *versionFlag {
		fmt.Printf("lintsuppress version %s\n", model.Version)
		return
	}

	if *updateFlag {
		checkUpdate(model.Version)
		return
	}

	logger, err := newLogger(*verboseFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := loadConfig(*configFlag, *rootFlag)
	if err != nil {
		fail(logger, err)
	}
	flagOverride(&cfg.Linter, *linterFlag)
	flagOverride(&cfg.LintConfig, *lintConfigFlag)
	flagOverride(&cfg.Project, *projectFlag)
	flagOverride(&cfg.HeaderMarker, *headerFlag)
	if pflag.Lookup("timeout").Changed {
		cfg.Timeout = *timeoutFlag
	}
	if err := cfg.Resolve(); err != nil {
		fail(logger, err)
	}
	if err := cfg.Validate(); err != nil {
		fail(logger, fmt.Errorf("invalid configuration: %w", err))
	}
	logger.Debug("Configuration",
		zap.String("base_dir", cfg.BaseDir),
		zap.String("linter", cfg.Linter),
		zap.String("lint_config", cfg.LintConfig),
		zap.String("project", cfg.Project),
		zap.Duration("timeout", cfg.Timeout))

	if *writeConfigFlag != "" {
		if err := writeConfig(cfg, *writeConfigFlag, os.Stdout); err != nil {
			fail(logger, err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case *webFlag:
		p := patch.New(cfg, patch.WithLogger(logger), patch.WithOutput(os.Stdout))
		if err := web.StartServer(ctx, *addrFlag, p, logger); err != nil {
			fail(logger, err)
		}
	case *tuiFlag:
		runTuiMode(ctx, cfg, logger)
	default:
		err := runPatchMode(ctx, cfg, logger, patchModeOptions{
			dryRun:  *dryRunFlag,
			report:  *reportFlag,
			output:  *outputFlag,
			json:    *jsonFlag,
			verbose: *verboseFlag,
			stdout:  os.Stdout,
			stderr:  os.Stderr,
		})
		if err != nil {
			fail(logger, err)
		}
	}
}

type patchModeOptions struct {
	dryRun  bool
	report  bool
	output  string
	json    bool
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
}

func runPatchMode(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts patchModeOptions) error {
	// JSON goes to stdout alone.
	fixOut := opts.stdout
	if opts.json {
		fixOut = opts.stderr
	}
	p := patch.New(cfg, patch.WithLogger(logger), patch.WithOutput(fixOut))

	var plan model.Plan
	var err error
	if opts.dryRun {
		plan, err = p.Plan(ctx)
	} else {
		plan, err = p.Run(ctx)
	}
	if err != nil {
		return err
	}

	if opts.report {
		report := patch.GenerateReport(plan, opts.verbose)
		if opts.output != "" {
			if err := os.WriteFile(opts.output, []byte(report), 0644); err != nil {
				return fmt.Errorf("error writing report to %s: %w", opts.output, err)
			}
			fmt.Fprintf(fixOut, "Report saved to %s\n", opts.output)
		} else {
			fmt.Fprintln(fixOut, report)
		}
	}

	if opts.json {
		enc := json.NewEncoder(opts.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(plan); err != nil {
			return err
		}
	}
	return nil
}

// writeConfig saves cfg with every path already resolved, so the file can be
// loaded from anywhere.
func writeConfig(cfg *config.Config, path string, out io.Writer) error {
	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Configuration saved to %s\n", path)
	return nil
}

func runTuiMode(ctx context.Context, cfg *config.Config, logger *zap.Logger) {
	// The alt screen owns the terminal; fixes are echoed once it closes.
	p := patch.New(cfg, patch.WithLogger(logger), patch.WithOutput(io.Discard))
	m := tui.InitialModel(ctx, p)
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := prog.Run()
	// An interrupt still reports whatever was written before it.
	killed := errors.Is(err, tea.ErrProgramKilled)
	if err != nil && !killed {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
	if fm, ok := final.(tui.AppModel); ok {
		for _, fix := range fm.Applied {
			fmt.Printf("Fixed %s:%d by adding %s\n", fix.Path, fix.Line, fix.Directive)
		}
		if fm.Err != nil {
			fail(logger, fm.Err)
		}
	}
	if killed {
		fail(logger, err)
	}
}

func loadConfig(path, root string) (*config.Config, error) {
	base := root
	if base == "" {
		dir, err := config.ExecutableDir()
		if err != nil {
			return nil, err
		}
		base = dir
	}
	cfg, err := config.Load(path, base)
	if err != nil {
		return nil, err
	}
	// --root wins over the config file's location.
	if root != "" {
		cfg.BaseDir = root
	}
	return cfg, nil
}

func flagOverride(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// fail reports err and exits. The linter's own stderr is echoed verbatim.
func fail(logger *zap.Logger, err error) {
	var toolErr *lint.ToolError
	if errors.As(err, &toolErr) {
		fmt.Fprint(os.Stderr, toolErr.Stderr)
		logger.Error("Linter reported an error, no file was modified",
			zap.String("tool", toolErr.Tool),
			zap.Int("exit_code", toolErr.ExitCode))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	logger.Sync()
	os.Exit(1)
}
