package formats

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"importguard/internal/engine/validator"
)

type MarkdownReportOptions struct {
	ProjectName         string
	ProjectRoot         string
	Version             string
	GeneratedAt         time.Time
	CollapsibleSections bool
}

// MarkdownGenerator renders a run as a Markdown document suitable for PR
// comments and CI job summaries.
type MarkdownGenerator struct {
	opts MarkdownReportOptions
}

func NewMarkdownGenerator(opts MarkdownReportOptions) *MarkdownGenerator {
	return &MarkdownGenerator{opts: opts}
}

func (m *MarkdownGenerator) Name() string { return "markdown" }

func (m *MarkdownGenerator) Generate(result validator.Result) (string, error) {
	opts := m.opts
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now().UTC()
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: Import Validation Report\n")
	b.WriteString("project: " + nonEmpty(opts.ProjectName, "unknown") + "\n")
	b.WriteString("generated_at: " + opts.GeneratedAt.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("version: " + nonEmpty(opts.Version, "unknown") + "\n")
	b.WriteString("---\n\n")

	b.WriteString("# Validación de imports\n\n")

	status := "✅ Listo para deployment"
	if result.Blocked() {
		status = "❌ Deployment bloqueado"
	}
	b.WriteString("## Resumen\n")
	b.WriteString("| Métrica | Valor |\n")
	b.WriteString("| --- | --- |\n")
	b.WriteString(fmt.Sprintf("| Archivos revisados | %d |\n", result.FilesChecked))
	b.WriteString(fmt.Sprintf("| Problemas críticos | %d |\n", len(result.Critical)))
	b.WriteString(fmt.Sprintf("| Advertencias | %d |\n", len(result.Warnings)-result.ErrorCount()))
	b.WriteString(fmt.Sprintf("| Errores de análisis | %d |\n", result.ErrorCount()))
	b.WriteString(fmt.Sprintf("| Estado | %s |\n\n", status))

	m.writeCritical(&b, result, opts)
	m.writeWarnings(&b, result, opts)

	return b.String(), nil
}

func (m *MarkdownGenerator) writeCritical(b *strings.Builder, result validator.Result, opts MarkdownReportOptions) {
	b.WriteString("## Problemas críticos\n")
	if len(result.Critical) == 0 {
		b.WriteString("No se encontraron problemas críticos.\n\n")
		return
	}
	rows := make([]string, 0, len(result.Critical))
	for _, group := range result.CriticalByFile() {
		for _, issue := range group.Issues {
			rows = append(rows, fmt.Sprintf("| `%s:%d` | `%s` | `%s` |\n",
				relPath(opts.ProjectRoot, issue.File), issue.Line, escapeCell(issue.Code), escapeCell(issue.Fix)))
		}
	}
	writeTableWithCollapse(
		b,
		"Detalle de problemas críticos",
		opts.CollapsibleSections,
		len(rows) > 10,
		[]string{"| Ubicación | Import | Fix |\n", "| --- | --- | --- |\n"},
		rows,
	)
}

func (m *MarkdownGenerator) writeWarnings(b *strings.Builder, result validator.Result, opts MarkdownReportOptions) {
	b.WriteString("## Advertencias\n")
	if len(result.Warnings) == 0 {
		b.WriteString("No hay advertencias.\n\n")
		return
	}
	rows := make([]string, 0, len(result.Warnings))
	for _, issue := range result.Warnings {
		rows = append(rows, fmt.Sprintf("| %s | `%s:%d` | `%s` | %s |\n",
			issue.Severity, relPath(opts.ProjectRoot, issue.File), issue.Line, escapeCell(issue.Code), escapeCell(issue.Note)))
	}
	writeTableWithCollapse(
		b,
		"Detalle de advertencias",
		opts.CollapsibleSections,
		len(rows) > 15,
		[]string{"| Severidad | Ubicación | Código | Nota |\n", "| --- | --- | --- | --- |\n"},
		rows,
	)
}

func writeTableWithCollapse(
	b *strings.Builder,
	summary string,
	collapsible bool,
	collapse bool,
	header []string,
	rows []string,
) {
	if collapsible && collapse {
		b.WriteString("<details>\n")
		b.WriteString("<summary>")
		b.WriteString(summary)
		b.WriteString("</summary>\n\n")
	}
	for _, line := range header {
		b.WriteString(line)
	}
	for _, line := range rows {
		b.WriteString(line)
	}
	b.WriteString("\n")
	if collapsible && collapse {
		b.WriteString("</details>\n\n")
	}
}

func relPath(root, path string) string {
	root = strings.TrimSpace(root)
	path = strings.TrimSpace(path)
	if root == "" || path == "" || !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// escapeCell keeps table rows on one line and unbroken by pipes.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func nonEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
