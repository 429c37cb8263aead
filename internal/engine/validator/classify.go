package validator

import (
	"importguard/internal/engine/parser"
)

// Classify applies the prefix policy to one import statement.
//
// The critical check looks only at the first module segment and ignores the
// relative level, so `from ..core.x import y` is both a critical issue and a
// relative-import warning. An empty module (`from . import core`) produces
// nothing.
func Classify(reg *Registry, file string, imp parser.Import) (critical []Issue, warnings []Issue) {
	segments := imp.Segments()
	if len(segments) == 0 {
		return nil, nil
	}
	line := imp.Location.Line

	switch imp.Kind {
	case parser.ImportAbsolute:
		if reg.Contains(segments[0]) {
			critical = append(critical, Issue{
				File:     file,
				Line:     line,
				Severity: SeverityCritical,
				Kind:     KindImport,
				Module:   imp.Module,
				Code:     imp.Statement(),
				Fix:      imp.StatementWithPrefix(reg.Prefix()),
			})
		}

	case parser.ImportFrom:
		if reg.Contains(segments[0]) {
			critical = append(critical, Issue{
				File:     file,
				Line:     line,
				Severity: SeverityCritical,
				Kind:     KindImportFrom,
				Module:   imp.Module,
				Code:     imp.Statement(),
				Fix:      imp.StatementWithPrefix(reg.Prefix()),
			})
		}

		if imp.IsRelative() && (reg.Contains(segments[0]) || reg.Contains(segments[len(segments)-1])) {
			warnings = append(warnings, Issue{
				File:     file,
				Line:     line,
				Severity: SeverityWarning,
				Kind:     KindRelativeImport,
				Module:   imp.Module,
				Level:    imp.Level,
				Code:     imp.Statement(),
				Note:     NoteRelativeImport,
			})
		}
	}

	return critical, warnings
}
