package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	coreapp "importguard/internal/core/app"
	"importguard/internal/core/config"
	"importguard/internal/data/history"
	"importguard/internal/engine/validator"
	"importguard/internal/shared/observability"
	"importguard/internal/shared/version"
	"importguard/internal/ui/report"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if opts.version {
		fmt.Fprintf(stdout, "importguard v%s\n", version.Version)
		return exitOK
	}

	configureLogging(stderr, opts.verbose)

	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("failed to detect working directory", "error", err)
		return exitFail
	}

	cfg, cfgPath, err := config.Resolve(opts.configPath, cwd)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return exitFail
	}
	if cfgPath != "" {
		slog.Debug("loaded config", "path", cfgPath)
	}

	if err := applyModeOptions(&opts, cfg); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitUsage
	}
	cfg.ProjectRoot = resolveProjectRoot(cfg.ProjectRoot, cwd)

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingOptions{
		Endpoint:    cfg.Observability.OTLPEndpoint,
		ServiceName: cfg.Observability.ServiceName,
		Insecure:    cfg.Observability.OTLPInsecure,
	})
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	app, err := coreapp.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return exitFail
	}

	if cfg.History.Enabled || opts.historyList > 0 {
		store, err := history.Open(app.HistoryPath())
		if err != nil {
			slog.Error("history setup failed", "error", err, "path", app.HistoryPath())
			if history.IsCorruptError(err) {
				slog.Error("history database looks corrupt; remove it to start a new history", "path", app.HistoryPath())
			}
			return exitFail
		}
		defer store.Close()
		slog.Debug("history store opened", "path", store.Path())
		app.SetHistoryStore(store)
	}

	if opts.historyList > 0 {
		return runHistoryList(app, cfg, opts.historyList, stdout)
	}

	terminal := report.NewTerminal(report.NewStyler(cfg.Output.Color, stdout), app.Registry().Prefix())

	code := runOnce(ctx, app, cfg, terminal, stdout)
	if !opts.watch || ctx.Err() != nil {
		return code
	}
	return runWatch(ctx, app, cfg, terminal, stdout, code)
}

// runOnce validates, prints the report and writes the side outputs. Side
// output failures are logged and never change the exit code.
func runOnce(ctx context.Context, app *coreapp.App, cfg *config.Config, terminal *report.Terminal, stdout io.Writer) int {
	start := time.Now()
	result, err := app.Run(ctx)
	if err != nil {
		slog.Error("validation failed", "error", err)
		return exitFail
	}
	return finishRun(app, cfg, terminal, stdout, result, time.Since(start))
}

func finishRun(app *coreapp.App, cfg *config.Config, terminal *report.Terminal, stdout io.Writer, result validator.Result, elapsed time.Duration) int {
	code, err := terminal.Render(stdout, result)
	if err != nil {
		slog.Error("failed to print report", "error", err)
	}

	if written, err := app.WriteOutputs(result); err != nil {
		slog.Error("failed to write outputs", "error", err)
	} else if len(written) > 0 {
		slog.Info("wrote outputs", "paths", written)
	}

	if runID, err := app.RecordHistory(result, elapsed); err != nil {
		slog.Error("failed to record history", "error", err)
	} else if runID != "" {
		slog.Debug("recorded run", "run_id", runID)
	}

	if path := strings.TrimSpace(cfg.Observability.MetricsTextfile); path != "" {
		if err := writeMetrics(resolveUnder(cfg.ProjectRoot, path)); err != nil {
			slog.Error("failed to write metrics textfile", "error", err, "path", path)
		}
	}
	return code
}

func runWatch(ctx context.Context, app *coreapp.App, cfg *config.Config, terminal *report.Terminal, stdout io.Writer, code int) int {
	err := app.Watch(ctx, func(result validator.Result, elapsed time.Duration, err error) {
		if err != nil {
			if ctx.Err() == nil {
				slog.Error("validation failed", "error", err)
			}
			return
		}
		code = finishRun(app, cfg, terminal, stdout, result, elapsed)
	})
	if err != nil {
		slog.Error("watch mode failed", "error", err)
		return exitFail
	}
	return code
}

func runHistoryList(app *coreapp.App, cfg *config.Config, limit int, stdout io.Writer) int {
	runs, err := app.RecentHistory(limit)
	if err != nil {
		slog.Error("failed to load history", "error", err)
		return exitFail
	}
	if err := report.RenderHistory(stdout, cfg.History.Project, runs); err != nil {
		slog.Error("failed to print history", "error", err)
		return exitFail
	}
	if len(runs) == 0 {
		return exitOK
	}

	latest := runs[0]
	issues, err := app.RunIssues(latest.RunID)
	if err != nil {
		slog.Error("failed to load run issues", "error", err, "run_id", latest.RunID)
		return exitFail
	}
	if err := report.RenderRunIssues(stdout, latest, issues); err != nil {
		slog.Error("failed to print run issues", "error", err)
		return exitFail
	}
	return exitOK
}

// applyModeOptions folds command-line overrides into cfg and re-validates it.
func applyModeOptions(opts *cliOptions, cfg *config.Config) error {
	if len(opts.args) > 1 {
		return fmt.Errorf("expected at most one source directory argument, got %d", len(opts.args))
	}
	if len(opts.args) == 1 {
		cfg.SourceDir = opts.args[0]
	}

	if opts.historyList < 0 {
		return fmt.Errorf("--history-list must be positive")
	}
	if opts.historyList > 0 && opts.watch {
		return fmt.Errorf("--history-list and --watch cannot be combined")
	}

	if opts.color != "" {
		cfg.Output.Color = strings.ToLower(strings.TrimSpace(opts.color))
	}
	if opts.sarif != "" {
		cfg.Output.SARIF = opts.sarif
	}
	if opts.markdown != "" {
		cfg.Output.Markdown = opts.markdown
	}
	if opts.metricsTextfile != "" {
		cfg.Observability.MetricsTextfile = opts.metricsTextfile
	}
	if opts.history {
		cfg.History.Enabled = true
	}

	return config.Validate(cfg)
}

func resolveProjectRoot(root, cwd string) string {
	root = strings.TrimSpace(root)
	if root == "" {
		return cwd
	}
	return resolveUnder(cwd, root)
}

func resolveUnder(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func writeMetrics(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return observability.WriteTextfile(path)
}

// configureLogging sends logs to stderr; stdout is reserved for the report.
func configureLogging(output io.Writer, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}
