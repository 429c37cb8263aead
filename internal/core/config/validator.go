package config

import (
	"fmt"
	"regexp"
	"strings"

	"importguard/internal/shared/util"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks a fully defaulted config.
func Validate(cfg *Config) error {
	if err := validateVersion(cfg); err != nil {
		return err
	}
	if err := validateRegistry(cfg); err != nil {
		return err
	}
	if err := validatePaths(cfg); err != nil {
		return err
	}
	if err := validateExclude(cfg); err != nil {
		return err
	}
	if err := validateOutput(cfg); err != nil {
		return err
	}
	if err := validateWatch(cfg); err != nil {
		return err
	}
	return nil
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateRegistry(cfg *Config) error {
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		return fmt.Errorf("prefix must not be empty")
	}
	for _, part := range strings.Split(prefix, ".") {
		if !identifierPattern.MatchString(part) {
			return fmt.Errorf("prefix %q must be a dotted Python identifier", cfg.Prefix)
		}
	}

	if len(cfg.InternalModules) == 0 {
		return fmt.Errorf("internal_modules must list at least one module")
	}
	for i, name := range cfg.InternalModules {
		if !identifierPattern.MatchString(strings.TrimSpace(name)) {
			return fmt.Errorf("internal_modules[%d] %q must be a single Python identifier", i, name)
		}
	}
	return nil
}

func validatePaths(cfg *Config) error {
	if strings.TrimSpace(cfg.SourceDir) == "" {
		return fmt.Errorf("source_dir must not be empty")
	}
	for i, entry := range cfg.EntryFiles {
		if strings.TrimSpace(entry) == "" {
			return fmt.Errorf("entry_files[%d] must not be empty", i)
		}
	}
	if cfg.History.Enabled && strings.TrimSpace(cfg.History.Path) == "" {
		return fmt.Errorf("history.path must not be empty when history is enabled")
	}
	return nil
}

func validateExclude(cfg *Config) error {
	if _, err := util.CompileGlobs("exclude.dirs", cfg.Exclude.Dirs); err != nil {
		return err
	}
	if _, err := util.CompileGlobs("exclude.files", cfg.Exclude.Files); err != nil {
		return err
	}
	return nil
}

func validateOutput(cfg *Config) error {
	switch cfg.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("output.color must be one of: auto, always, never (got %q)", cfg.Output.Color)
	}
	if sarif, md := strings.TrimSpace(cfg.Output.SARIF), strings.TrimSpace(cfg.Output.Markdown); sarif != "" && sarif == md {
		return fmt.Errorf("output.sarif and output.markdown must not point to the same file")
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}
