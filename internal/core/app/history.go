package app

import (
	"fmt"
	"time"

	"importguard/internal/data/history"
	"importguard/internal/engine/validator"
)

// HistoryPath is where the run history database lives for this project.
func (a *App) HistoryPath() string {
	return a.resolvePath(a.Config.History.Path)
}

// RecordHistory stores a run summary when a history store is attached.
// It returns the run id, or "" when history is off.
func (a *App) RecordHistory(result validator.Result, elapsed time.Duration) (string, error) {
	if a.history == nil {
		return "", nil
	}
	runID, err := a.history.SaveSnapshot(a.Config.History.Project, SnapshotFromResult(result, elapsed))
	if err != nil {
		return "", fmt.Errorf("record history: %w", err)
	}
	return runID, nil
}

// RecentHistory returns up to limit stored runs, newest first.
func (a *App) RecentHistory(limit int) ([]history.Snapshot, error) {
	if a.history == nil {
		return nil, fmt.Errorf("history store is not configured")
	}
	return a.history.LoadRecent(a.Config.History.Project, limit)
}

// RunIssues returns the issues stored for one recorded run.
func (a *App) RunIssues(runID string) ([]history.IssueRecord, error) {
	if a.history == nil {
		return nil, fmt.Errorf("history store is not configured")
	}
	return a.history.LoadIssues(runID)
}

func SnapshotFromResult(result validator.Result, elapsed time.Duration) history.Snapshot {
	errCount := result.ErrorCount()
	snapshot := history.Snapshot{
		Timestamp:     time.Now().UTC(),
		Duration:      elapsed,
		FilesChecked:  result.FilesChecked,
		CriticalCount: len(result.Critical),
		WarningCount:  len(result.Warnings) - errCount,
		ErrorCount:    errCount,
		Passed:        !result.Blocked(),
		Issues:        make([]history.IssueRecord, 0, len(result.Critical)+len(result.Warnings)),
	}
	for _, group := range [][]validator.Issue{result.Critical, result.Warnings} {
		for _, issue := range group {
			snapshot.Issues = append(snapshot.Issues, history.IssueRecord{
				File:     issue.File,
				Line:     issue.Line,
				Severity: string(issue.Severity),
				Kind:     string(issue.Kind),
				Code:     issue.Code,
				Fix:      issue.Fix,
			})
		}
	}
	return snapshot
}
