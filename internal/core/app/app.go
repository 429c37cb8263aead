package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"importguard/internal/core/config"
	"importguard/internal/core/ports"
	"importguard/internal/engine/parser"
	"importguard/internal/engine/validator"
	"importguard/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// App drives discovery, analysis and the optional side outputs of a run.
type App struct {
	Config   *config.Config
	Parser   ports.CodeParser
	analyzer *validator.Analyzer
	root     string

	writers []outputTarget
	history ports.HistoryStore

	runMu sync.Mutex
}

type outputTarget struct {
	path   string
	writer ports.ResultWriter
}

var _ ports.ValidationService = (*App)(nil)

func New(cfg *config.Config) (*App, error) {
	p, err := parser.NewPythonParser()
	if err != nil {
		return nil, err
	}
	return NewWithParser(cfg, p)
}

func NewWithParser(cfg *config.Config, p ports.CodeParser) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	registry, err := validator.NewRegistry(cfg.Prefix, cfg.InternalModules)
	if err != nil {
		return nil, err
	}

	root := strings.TrimSpace(cfg.ProjectRoot)
	if root == "" {
		root = "."
	}
	root = filepath.Clean(root)

	analyzer := validator.NewAnalyzer(p, registry)
	if root != "." {
		analyzer.SetBaseDir(root)
	}

	a := &App{
		Config:   cfg,
		Parser:   p,
		analyzer: analyzer,
		root:     root,
	}
	a.configureOutputs()
	slog.Debug("internal module registry", "prefix", registry.Prefix(), "modules", registry.Modules(), "root", root)
	return a, nil
}

func (a *App) Root() string { return a.root }

func (a *App) Registry() *validator.Registry { return a.analyzer.Registry() }

func (a *App) SetHistoryStore(store ports.HistoryStore) {
	a.history = store
}

// Discover lists the files the next run will analyze.
func (a *App) Discover() ([]string, error) {
	return DiscoverFiles(DiscoverOptions{
		Root:         a.root,
		SourceDir:    a.Config.SourceDir,
		EntryFiles:   a.Config.EntryFiles,
		ExcludeDirs:  a.Config.Exclude.Dirs,
		ExcludeFiles: a.Config.Exclude.Files,
	}, a.Parser.IsSupportedPath)
}

// Run analyzes every discovered file in order. Per-file problems become
// records in the result; only discovery failures and cancellation are
// returned as errors.
func (a *App) Run(ctx context.Context) (validator.Result, error) {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	ctx, span := observability.Tracer.Start(ctx, "app.Run")
	defer span.End()

	start := time.Now()
	var result validator.Result

	files, err := a.Discover()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "discovery failed")
		return result, fmt.Errorf("discover files: %w", err)
	}
	slog.Debug("discovered files", "count", len(files), "root", a.root)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		report := a.analyzer.AnalyzeFile(ctx, path)
		result.Add(report)
		observability.FilesCheckedTotal.Inc()
		recordIssueMetrics(report.Critical)
		recordIssueMetrics(report.Warnings)
	}

	elapsed := time.Since(start)
	observability.RunDuration.Observe(elapsed.Seconds())
	if result.Blocked() {
		observability.LastRunBlocked.Set(1)
	} else {
		observability.LastRunBlocked.Set(0)
	}

	span.SetAttributes(
		attribute.Int("files.checked", result.FilesChecked),
		attribute.Int("issues.critical", len(result.Critical)),
		attribute.Int("issues.warnings", len(result.Warnings)),
	)
	slog.Info("validation finished",
		"files", result.FilesChecked,
		"critical", len(result.Critical),
		"warnings", len(result.Warnings),
		"duration", elapsed,
	)
	return result, nil
}

func recordIssueMetrics(issues []validator.Issue) {
	for _, issue := range issues {
		observability.IssuesTotal.WithLabelValues(string(issue.Severity), string(issue.Kind)).Inc()
	}
}

// resolvePath anchors relative artifact paths at the project root.
func (a *App) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(a.root, path)
}
