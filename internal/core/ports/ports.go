package ports

import (
	"context"

	"importguard/internal/data/history"
	"importguard/internal/engine/parser"
	"importguard/internal/engine/validator"
)

// CodeParser abstracts source parsing and language-file support checks.
type CodeParser interface {
	ParseFile(path string, content []byte) (*parser.File, error)
	IsSupportedPath(filePath string) bool
	SupportedExtensions() []string
}

// HistoryStore abstracts run persistence for the history workflow.
type HistoryStore interface {
	SaveSnapshot(projectKey string, snapshot history.Snapshot) (string, error)
	LoadRecent(projectKey string, limit int) ([]history.Snapshot, error)
	LoadIssues(runID string) ([]history.IssueRecord, error)
}

// ResultWriter renders a finished run into an artifact (SARIF, Markdown).
type ResultWriter interface {
	Name() string
	Generate(result validator.Result) (string, error)
}

// ValidationService is the driving port used by the CLI and watch mode.
type ValidationService interface {
	Run(ctx context.Context) (validator.Result, error)
}
