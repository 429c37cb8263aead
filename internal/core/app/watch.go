package app

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"importguard/internal/core/watcher"
	"importguard/internal/engine/validator"
)

// Watch re-runs the validation after each debounced batch of source changes
// until ctx is done. onRun receives every run outcome and its wall time.
func (a *App) Watch(ctx context.Context, onRun func(validator.Result, time.Duration, error)) error {
	trigger := make(chan struct{}, 1)
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		a.Parser.SupportedExtensions(),
		func(paths []string) {
			slog.Info("change detected", "files", len(paths))
			select {
			case trigger <- struct{}{}:
			default:
			}
		},
	)
	if err != nil {
		return err
	}
	defer w.Close()

	entries := make([]string, 0, len(a.Config.EntryFiles))
	for _, entry := range a.Config.EntryFiles {
		entries = append(entries, filepath.Join(a.root, entry))
	}
	if err := w.Watch([]string{filepath.Join(a.root, a.Config.SourceDir)}, entries); err != nil {
		return err
	}
	slog.Info("watching for changes", "root", a.root, "source_dir", a.Config.SourceDir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-trigger:
			start := time.Now()
			result, err := a.Run(ctx)
			onRun(result, time.Since(start), err)
		}
	}
}
