package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"importguard/internal/data/history"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// RenderHistory prints recorded runs newest first as a bordered table.
func RenderHistory(w io.Writer, project string, runs []history.Snapshot) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintf(w, "Sin ejecuciones registradas para %q\n", project)
		return err
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		status := "OK"
		if !run.Passed {
			status = "BLOQUEADO"
		}
		rows = append(rows, []string{
			run.Timestamp.Local().Format(time.DateTime),
			shortID(run.RunID),
			strconv.Itoa(run.FilesChecked),
			strconv.Itoa(run.CriticalCount),
			strconv.Itoa(run.WarningCount),
			strconv.Itoa(run.ErrorCount),
			run.Duration.Round(time.Millisecond).String(),
			status,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Fecha", "Run", "Archivos", "Críticos", "Advertencias", "Errores", "Duración", "Estado").
		Rows(rows...)

	_, err := fmt.Fprintf(w, "Historial de %s (%d ejecuciones)\n%s\n", project, len(runs), t.Render())
	return err
}

// RenderRunIssues prints the issues stored for one run, in recorded order.
func RenderRunIssues(w io.Writer, run history.Snapshot, issues []history.IssueRecord) error {
	if len(issues) == 0 {
		_, err := fmt.Fprintf(w, "La ejecución %s no registró problemas\n", shortID(run.RunID))
		return err
	}

	rows := make([][]string, 0, len(issues))
	for _, issue := range issues {
		rows = append(rows, []string{
			issue.Severity,
			issue.Kind,
			issue.File,
			strconv.Itoa(issue.Line),
			issue.Code,
			issue.Fix,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Severidad", "Tipo", "Archivo", "Línea", "Código", "Fix").
		Rows(rows...)

	_, err := fmt.Fprintf(w, "Problemas de la ejecución %s (%d)\n%s\n", shortID(run.RunID), len(issues), t.Render())
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
