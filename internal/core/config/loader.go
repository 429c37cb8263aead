package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Load reads a TOML or YAML config (chosen by extension), applies
// environment overrides and then defaults, and validates. Overrides land
// first so derived defaults such as source_dir follow an overridden prefix.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("decode yaml config %q: %w", path, err)
		}
	default:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("decode toml config %q: %w", path, err)
		}
	}

	ApplyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault returns the built-in configuration with environment overrides.
func LoadDefault() (*Config, error) {
	cfg := &Config{}
	ApplyEnvOverrides(cfg)
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DiscoverDefaultConfig lists the config locations tried when no explicit
// path is given, in priority order.
func DiscoverDefaultConfig(cwd string) ([]string, error) {
	if strings.TrimSpace(cwd) == "" {
		return nil, fmt.Errorf("cwd must not be empty")
	}
	return []string{
		filepath.Clean(filepath.Join(cwd, "importguard.toml")),
		filepath.Clean(filepath.Join(cwd, "data/config/importguard.toml")),
		filepath.Clean(filepath.Join(cwd, "importguard.yaml")),
		filepath.Clean(filepath.Join(cwd, "importguard.yml")),
	}, nil
}

// Resolve loads path when given; otherwise it tries the default locations
// and falls back to the built-in configuration. It returns the file used,
// or "" for built-in defaults.
func Resolve(path, cwd string) (*Config, string, error) {
	if strings.TrimSpace(path) != "" {
		cfg, err := Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}

	candidates, err := DiscoverDefaultConfig(cwd)
	if err != nil {
		return nil, "", err
	}
	for _, candidate := range candidates {
		cfg, loadErr := Load(candidate)
		if loadErr == nil {
			return cfg, candidate, nil
		}
		if os.IsNotExist(loadErr) {
			continue
		}
		return nil, "", loadErr
	}

	cfg, err := LoadDefault()
	if err != nil {
		return nil, "", err
	}
	return cfg, "", nil
}
