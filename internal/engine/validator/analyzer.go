package validator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"importguard/internal/core/errors"
	"importguard/internal/engine/parser"
	"importguard/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SourceParser turns file content into import statements.
type SourceParser interface {
	ParseFile(path string, content []byte) (*parser.File, error)
}

// FileReport holds the records produced by analyzing one file.
type FileReport struct {
	Path     string
	Critical []Issue
	Warnings []Issue
}

type Analyzer struct {
	parser   SourceParser
	registry *Registry
	baseDir  string
	readFile func(string) ([]byte, error)
}

func NewAnalyzer(p SourceParser, reg *Registry) *Analyzer {
	return &Analyzer{parser: p, registry: reg, readFile: os.ReadFile}
}

func (a *Analyzer) Registry() *Registry { return a.registry }

// SetBaseDir makes relative paths resolve against dir when reading. Reported
// paths stay as given.
func (a *Analyzer) SetBaseDir(dir string) { a.baseDir = dir }

// AnalyzeFile reads and classifies one file. It never fails: every problem
// becomes an ERROR record in the returned report.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (report FileReport) {
	_, span := observability.Tracer.Start(ctx, "validator.AnalyzeFile", trace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	report.Path = path
	defer func() {
		if r := recover(); r != nil {
			slog.Error("analyzer panic", "path", path, "panic", r)
			report = FileReport{Path: path, Warnings: []Issue{parseErrorIssue(path, fmt.Sprint(r))}}
		}
		span.SetAttributes(
			attribute.Int("issues.critical", len(report.Critical)),
			attribute.Int("issues.warnings", len(report.Warnings)),
		)
	}()

	readPath := path
	if a.baseDir != "" && !filepath.IsAbs(path) {
		readPath = filepath.Join(a.baseDir, path)
	}
	content, err := a.readFile(readPath)
	if err != nil {
		return FileReport{Path: path, Warnings: []Issue{parseErrorIssue(path, err.Error())}}
	}
	return a.AnalyzeSource(path, content)
}

// AnalyzeSource classifies already-loaded content.
func (a *Analyzer) AnalyzeSource(path string, content []byte) FileReport {
	report := FileReport{Path: path}

	file, err := a.parser.ParseFile(path, content)
	if err != nil {
		slog.Debug("failed to parse file", "path", path, "error", err, "code", errors.CodeOf(err))
		report.Warnings = append(report.Warnings, parseErrorIssue(path, errors.MessageOf(err)))
		return report
	}
	if file.Syntax != nil {
		err := file.Syntax.Err(path)
		slog.Debug("syntax error", "path", path, "error", err, "code", errors.CodeOf(err))
		report.Warnings = append(report.Warnings, Issue{
			File:     path,
			Line:     file.Syntax.Line,
			Severity: SeverityError,
			Kind:     KindSyntaxError,
			Code:     fmt.Sprintf("%s (%s, line %d)", file.Syntax.Message, path, file.Syntax.Line),
			Note:     NoteSyntaxError,
		})
		return report
	}

	for _, imp := range file.Imports {
		critical, warnings := Classify(a.registry, path, imp)
		report.Critical = append(report.Critical, critical...)
		report.Warnings = append(report.Warnings, warnings...)
	}
	return report
}

func parseErrorIssue(path, msg string) Issue {
	return Issue{
		File:     path,
		Line:     0,
		Severity: SeverityError,
		Kind:     KindParseError,
		Code:     msg,
		Note:     NoteParseError,
	}
}
