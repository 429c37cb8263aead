package validator

import (
	"sort"
)

// Result accumulates the records of one run in analysis order.
type Result struct {
	Critical     []Issue
	Warnings     []Issue
	FilesChecked int
}

type FileIssues struct {
	File   string
	Issues []Issue
}

// Add merges one file's report and counts the file exactly once.
func (r *Result) Add(fr FileReport) {
	r.FilesChecked++
	r.Critical = append(r.Critical, fr.Critical...)
	r.Warnings = append(r.Warnings, fr.Warnings...)
}

func (r Result) Blocked() bool {
	for _, issue := range r.Critical {
		if issue.Blocking() {
			return true
		}
	}
	return false
}

// ExitCode maps the run to the process status: only critical issues block.
func (r Result) ExitCode() int {
	if r.Blocked() {
		return 1
	}
	return 0
}

// ErrorCount counts warning-class records that come from unparseable files.
func (r Result) ErrorCount() int {
	n := 0
	for _, w := range r.Warnings {
		if w.Severity == SeverityError {
			n++
		}
	}
	return n
}

// CriticalByFile groups critical issues by file path (sorted) with issues
// ordered by line. Issues on the same line keep their analysis order.
func (r Result) CriticalByFile() []FileIssues {
	byFile := make(map[string][]Issue)
	for _, issue := range r.Critical {
		byFile[issue.File] = append(byFile[issue.File], issue)
	}

	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	out := make([]FileIssues, 0, len(files))
	for _, f := range files {
		issues := byFile[f]
		sort.SliceStable(issues, func(i, j int) bool { return issues[i].Line < issues[j].Line })
		out = append(out, FileIssues{File: f, Issues: issues})
	}
	return out
}
