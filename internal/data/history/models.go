package history

import "time"

const SchemaVersion = 1

// Snapshot is the persisted summary of one validation run.
type Snapshot struct {
	RunID         string
	ProjectKey    string
	SchemaVersion int
	Timestamp     time.Time
	Duration      time.Duration
	FilesChecked  int
	CriticalCount int
	WarningCount  int
	ErrorCount    int
	Passed        bool
	Issues        []IssueRecord
}

// IssueRecord is one blocking or advisory finding attached to a snapshot.
type IssueRecord struct {
	File     string
	Line     int
	Severity string
	Kind     string
	Code     string
	Fix      string
}
