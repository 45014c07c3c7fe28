package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name, e.g.
// CONTACTSHEET_ROWS or CONTACTSHEET_TASK_TIMEOUT.
const EnvPrefix = "CONTACTSHEET_"

// Load builds the file and environment layers on top of [DefaultConfig].
// An explicit path must exist; without one the default locations are
// searched and silently skipped when absent.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFile(&cfg, path, explicit); err != nil {
			return cfg, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("environment: %w", err)
	}

	mode, err := ParseColorMode(string(cfg.ColorMode))
	if err != nil {
		return cfg, err
	}
	cfg.ColorMode = mode
	return cfg, nil
}

// loadFile decodes a YAML file over cfg. Unknown keys are rejected so typos
// do not silently fall back to defaults.
func loadFile(cfg *Config, path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// findConfigFile returns the first existing default config location.
func findConfigFile() string {
	candidates := []string{
		"./contactsheet.yaml",
		"./contactsheet.yml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "contactsheet", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
