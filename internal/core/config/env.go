package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: IMPORTGUARD_[SECTION]_[KEY] (e.g., IMPORTGUARD_HISTORY_PATH).
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.ProjectRoot, "IMPORTGUARD_PROJECT_ROOT")
	setEnvString(&cfg.Prefix, "IMPORTGUARD_PREFIX")
	setEnvList(&cfg.InternalModules, "IMPORTGUARD_INTERNAL_MODULES")
	setEnvString(&cfg.SourceDir, "IMPORTGUARD_SOURCE_DIR")
	setEnvList(&cfg.EntryFiles, "IMPORTGUARD_ENTRY_FILES")

	// Exclude
	setEnvList(&cfg.Exclude.Dirs, "IMPORTGUARD_EXCLUDE_DIRS")
	setEnvList(&cfg.Exclude.Files, "IMPORTGUARD_EXCLUDE_FILES")

	// Output
	setEnvString(&cfg.Output.Color, "IMPORTGUARD_OUTPUT_COLOR")
	setEnvString(&cfg.Output.SARIF, "IMPORTGUARD_OUTPUT_SARIF")
	setEnvString(&cfg.Output.Markdown, "IMPORTGUARD_OUTPUT_MARKDOWN")

	// History
	setEnvBool(&cfg.History.Enabled, "IMPORTGUARD_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "IMPORTGUARD_HISTORY_PATH")
	setEnvString(&cfg.History.Project, "IMPORTGUARD_HISTORY_PROJECT")

	// Observability
	setEnvString(&cfg.Observability.MetricsTextfile, "IMPORTGUARD_OBSERVABILITY_METRICS_TEXTFILE")
	setEnvString(&cfg.Observability.OTLPEndpoint, "IMPORTGUARD_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvBool(&cfg.Observability.OTLPInsecure, "IMPORTGUARD_OBSERVABILITY_OTLP_INSECURE")
	setEnvString(&cfg.Observability.ServiceName, "IMPORTGUARD_OBSERVABILITY_SERVICE_NAME")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "IMPORTGUARD_WATCH_DEBOUNCE")

	cfg.Output.Color = strings.ToLower(strings.TrimSpace(cfg.Output.Color))
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

// setEnvList reads a comma-separated list; blank entries are dropped.
func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		out := make([]string, 0)
		for _, part := range strings.Split(val, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
		*target = out
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
