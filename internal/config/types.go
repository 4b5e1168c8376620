// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads vssplay configuration with precedence
// ENV > file > defaults.
package config

import "time"

// AppConfig is the complete runtime configuration.
type AppConfig struct {
	Version string `yaml:"-"`

	Log       LogConfig       `yaml:"log"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Session   SessionConfig   `yaml:"session"`
	KeepAlive KeepAliveConfig `yaml:"keepalive"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Format is "json" or "console".
	Format string `yaml:"format"`
}

type GatewayConfig struct {
	BaseURL          string        `yaml:"baseURL"`
	Timeout          time.Duration `yaml:"timeout"`
	Token            string        `yaml:"token"`
	RatePerSecond    float64       `yaml:"ratePerSecond"`
	Burst            int           `yaml:"burst"`
	BreakerThreshold int           `yaml:"breakerThreshold"`
	BreakerReset     time.Duration `yaml:"breakerReset"`
}

type SessionConfig struct {
	MaxConnectionAttempts int           `yaml:"maxConnectionAttempts"`
	MaxStreamingAttempts  int           `yaml:"maxStreamingAttempts"`
	MaxArchiveAttempts    int           `yaml:"maxArchiveAttempts"`
	ArchiveStep           time.Duration `yaml:"archiveStep"`
	StepDebounce          time.Duration `yaml:"stepDebounce"`
	ViewModeInterval      time.Duration `yaml:"viewModeInterval"`
	BackgroundBudget      time.Duration `yaml:"backgroundBudget"`
	ConnectBackoffInitial time.Duration `yaml:"connectBackoffInitial"`
	ConnectBackoffMax     time.Duration `yaml:"connectBackoffMax"`
	RequestTimeout        time.Duration `yaml:"requestTimeout"`
}

type KeepAliveConfig struct {
	Interval       time.Duration `yaml:"interval"`
	InterruptGrace time.Duration `yaml:"interruptGrace"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
}

type MetricsConfig struct {
	// Listen is the ops server address. Empty disables it.
	Listen string `yaml:"listen"`
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		Log: LogConfig{Level: "info", Format: "json"},
		Gateway: GatewayConfig{
			Timeout:          10 * time.Second,
			RatePerSecond:    20,
			Burst:            40,
			BreakerThreshold: 5,
			BreakerReset:     30 * time.Second,
		},
		Session: SessionConfig{
			MaxConnectionAttempts: 3,
			MaxStreamingAttempts:  3,
			MaxArchiveAttempts:    3,
			ArchiveStep:           10 * time.Second,
			StepDebounce:          400 * time.Millisecond,
			ViewModeInterval:      time.Second,
			BackgroundBudget:      time.Minute,
			ConnectBackoffInitial: 500 * time.Millisecond,
			ConnectBackoffMax:     8 * time.Second,
			RequestTimeout:        10 * time.Second,
		},
		KeepAlive: KeepAliveConfig{
			Interval:       10 * time.Second,
			InterruptGrace: 30 * time.Second,
			RequestTimeout: 5 * time.Second,
		},
		Telemetry: TelemetryConfig{Exporter: "grpc", Endpoint: "localhost:4317", SamplingRate: 1.0},
		Metrics:   MetricsConfig{Listen: "127.0.0.1:9464"},
	}
}
