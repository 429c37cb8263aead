package config

import (
	"strings"
	"time"
)

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

type Config struct {
	Version         int           `toml:"version" yaml:"version"`
	ProjectRoot     string        `toml:"project_root" yaml:"project_root"`
	Prefix          string        `toml:"prefix" yaml:"prefix"`
	InternalModules []string      `toml:"internal_modules" yaml:"internal_modules"`
	SourceDir       string        `toml:"source_dir" yaml:"source_dir"`
	EntryFiles      []string      `toml:"entry_files" yaml:"entry_files"`
	Exclude         Exclude       `toml:"exclude" yaml:"exclude"`
	Output          Output        `toml:"output" yaml:"output"`
	History         History       `toml:"history" yaml:"history"`
	Observability   Observability `toml:"observability" yaml:"observability"`
	Watch           Watch         `toml:"watch" yaml:"watch"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs" yaml:"dirs"`   // Base-name globs of directories to skip
	Files []string `toml:"files" yaml:"files"` // Base-name globs of files to skip
}

type Output struct {
	Color    string `toml:"color" yaml:"color"`
	SARIF    string `toml:"sarif" yaml:"sarif"`
	Markdown string `toml:"markdown" yaml:"markdown"`
}

type History struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
	Project string `toml:"project" yaml:"project"`
}

type Observability struct {
	MetricsTextfile string `toml:"metrics_textfile" yaml:"metrics_textfile"`
	OTLPEndpoint    string `toml:"otlp_endpoint" yaml:"otlp_endpoint"`
	OTLPInsecure    bool   `toml:"otlp_insecure" yaml:"otlp_insecure"`
	ServiceName     string `toml:"service_name" yaml:"service_name"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce" yaml:"debounce"`
}

// Default returns the built-in configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if strings.TrimSpace(cfg.Prefix) == "" {
		cfg.Prefix = "abra"
	}
	if cfg.InternalModules == nil {
		cfg.InternalModules = []string{"analysis", "components", "config", "core", "pages", "ui", "utils"}
	}
	if strings.TrimSpace(cfg.SourceDir) == "" {
		cfg.SourceDir = cfg.Prefix
	}
	if cfg.EntryFiles == nil {
		cfg.EntryFiles = []string{"app.py"}
	}
	if cfg.Exclude.Dirs == nil {
		cfg.Exclude.Dirs = []string{"__pycache__"}
	}

	if strings.TrimSpace(cfg.Output.Color) == "" {
		cfg.Output.Color = ColorAuto
	}
	cfg.Output.Color = strings.ToLower(strings.TrimSpace(cfg.Output.Color))

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "data/database/importguard.db"
	}
	if strings.TrimSpace(cfg.History.Project) == "" {
		cfg.History.Project = "default"
	}

	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "importguard"
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
}
