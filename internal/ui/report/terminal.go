package report

import (
	"fmt"
	"io"
	"strings"

	"importguard/internal/engine/validator"
)

// fixExamples is how many critical issues the "how to fix" section repeats.
const fixExamples = 5

var (
	banner    = strings.Repeat("=", 80)
	separator = strings.Repeat("-", 80)
)

// Terminal renders the human-readable report.
type Terminal struct {
	styler Styler
	title  string
}

// NewTerminal builds a reporter whose title names the project prefix.
func NewTerminal(styler Styler, prefix string) *Terminal {
	if styler == nil {
		styler = PlainStyler{}
	}
	return &Terminal{styler: styler, title: strings.ToUpper(prefix)}
}

// Render writes the full report and returns the process exit code.
// Warnings are only listed when nothing blocks the deployment.
func (t *Terminal) Render(w io.Writer, result validator.Result) (int, error) {
	p := &printer{w: w}
	s := t.styler

	p.line(s.Blue(banner))
	p.line(s.Blue(t.title + " - VALIDADOR DE IMPORTS"))
	p.line(s.Blue(banner))
	p.line("")
	p.line(fmt.Sprintf("Archivos revisados: %d", result.FilesChecked))
	p.line("")

	if result.Blocked() {
		t.renderCritical(p, result)
		return result.ExitCode(), p.err
	}

	if len(result.Warnings) > 0 {
		t.renderWarnings(p, result.Warnings)
	}

	p.line(s.Green(banner))
	p.line(s.Green("✅ TODOS LOS IMPORTS SON CORRECTOS"))
	p.line(s.Green(banner))
	p.line("")
	p.line(fmt.Sprintf("%s %d archivos verificados", s.Green("✓"), result.FilesChecked))
	p.line(fmt.Sprintf("%s 0 problemas críticos", s.Green("✓")))
	p.line(fmt.Sprintf("%s Listo para deployment", s.Green("✓")))
	p.line("")
	return result.ExitCode(), p.err
}

func (t *Terminal) renderCritical(p *printer, result validator.Result) {
	s := t.styler

	p.line(s.Red(banner))
	p.line(s.Red(fmt.Sprintf("❌ ENCONTRADOS %d PROBLEMAS CRÍTICOS", len(result.Critical))))
	p.line(s.Red(banner))
	p.line("")

	for _, group := range result.CriticalByFile() {
		p.line(s.Red("📄 " + group.File))
		p.line(separator)
		for _, issue := range group.Issues {
			p.line(fmt.Sprintf("  %s: %s", s.Red(fmt.Sprintf("Línea %4d", issue.Line)), issue.Code))
			p.line(fmt.Sprintf("  %s:        %s", s.Green("Fix"), issue.Fix))
			p.line("")
		}
	}

	p.line(s.Red(banner))
	p.line(s.Red("DEPLOYMENT BLOQUEADO - Corrige estos imports primero"))
	p.line(s.Red(banner))
	p.line("")

	p.line(s.Yellow("CÓMO ARREGLAR:"))
	p.line("")
	p.line("Reemplaza cada import incorrecto con su versión correcta:")
	p.line("")
	for i, issue := range result.Critical {
		if i == fixExamples {
			break
		}
		p.line(fmt.Sprintf("  %s %s", s.Red("❌"), issue.Code))
		p.line(fmt.Sprintf("  %s %s", s.Green("✅"), issue.Fix))
		p.line("")
	}
	if extra := len(result.Critical) - fixExamples; extra > 0 {
		p.line(fmt.Sprintf("  ... y %d más", extra))
		p.line("")
	}
}

func (t *Terminal) renderWarnings(p *printer, warnings []validator.Issue) {
	s := t.styler

	p.line(s.Yellow(banner))
	p.line(s.Yellow(fmt.Sprintf("⚠️  %d ADVERTENCIAS", len(warnings))))
	p.line(s.Yellow(banner))
	p.line("")

	for _, w := range warnings {
		p.line(s.Yellow(fmt.Sprintf("📄 %s (línea %d)", w.File, w.Line)))
		p.line("  " + w.Code)
		if w.Note != "" {
			p.line("  Nota: " + w.Note)
		}
		p.line("")
	}
}

// printer keeps the first write error so rendering code stays linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s+"\n")
}
