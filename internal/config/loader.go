// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence.
type Loader struct {
	configPath string
	version    string
}

func NewLoader(configPath, version string) *Loader {
	return &Loader{configPath: configPath, version: version}
}

// Path is the config file, empty when running from ENV only.
func (l *Loader) Path() string { return l.configPath }

// Load applies defaults, then the file, then the environment, and validates
// the result.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	mergeEnv(&cfg)
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes path strictly onto cfg. Keys absent from the file keep
// their current value.
func loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- the path is provided by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func mergeEnv(cfg *AppConfig) {
	cfg.Log.Level = ParseString(EnvLogLevel, cfg.Log.Level)
	cfg.Gateway.BaseURL = ParseString(EnvGatewayURL, cfg.Gateway.BaseURL)
	cfg.Gateway.Token = ParseString(EnvGatewayToken, cfg.Gateway.Token)
	cfg.Gateway.Timeout = ParseDuration(EnvGatewayTimeout, cfg.Gateway.Timeout)
	cfg.KeepAlive.Interval = ParseDuration(EnvKeepAliveSeconds, cfg.KeepAlive.Interval)
	cfg.Telemetry.Enabled = ParseBool(EnvTelemetry, cfg.Telemetry.Enabled)
	cfg.Telemetry.Endpoint = ParseString(EnvTelemetryURL, cfg.Telemetry.Endpoint)

	// An explicitly empty listen address disables the ops server.
	if v, ok := os.LookupEnv(EnvMetricsListen); ok {
		cfg.Metrics.Listen = strings.TrimSpace(v)
	}
}
