package app

import (
	"fmt"
	"log/slog"
	"strings"

	"importguard/internal/core/ports"
	"importguard/internal/engine/validator"
	"importguard/internal/shared/util"
	"importguard/internal/shared/version"
	"importguard/internal/ui/report/formats"
)

func (a *App) configureOutputs() {
	a.writers = nil
	if path := strings.TrimSpace(a.Config.Output.SARIF); path != "" {
		a.AddOutput(path, formats.NewSARIFWriter(""))
	}
	if path := strings.TrimSpace(a.Config.Output.Markdown); path != "" {
		a.AddOutput(path, formats.NewMarkdownGenerator(formats.MarkdownReportOptions{
			ProjectName:         a.Config.History.Project,
			Version:             version.Version,
			CollapsibleSections: true,
		}))
	}
}

// AddOutput registers an artifact written after each run.
func (a *App) AddOutput(path string, w ports.ResultWriter) {
	a.writers = append(a.writers, outputTarget{path: a.resolvePath(path), writer: w})
}

// WriteOutputs renders every configured artifact and returns the paths written.
func (a *App) WriteOutputs(result validator.Result) ([]string, error) {
	written := make([]string, 0, len(a.writers))
	for _, target := range a.writers {
		content, err := target.writer.Generate(result)
		if err != nil {
			return written, fmt.Errorf("generate %s output: %w", target.writer.Name(), err)
		}
		if err := util.WriteStringWithDirs(target.path, content, 0o644); err != nil {
			return written, fmt.Errorf("write %s output %q: %w", target.writer.Name(), target.path, err)
		}
		slog.Debug("wrote output", "format", target.writer.Name(), "path", target.path)
		written = append(written, target.path)
	}
	return written, nil
}
