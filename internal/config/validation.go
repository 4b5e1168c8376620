// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"errors"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const minViewModeInterval = 50 * time.Millisecond

type validator struct {
	errs []error
}

func (v *validator) add(field, reason string) {
	v.errs = append(v.errs, &FieldError{Field: field, Reason: reason})
}

func (v *validator) positive(field string, n int) {
	if n <= 0 {
		v.add(field, "must be positive")
	}
}

func (v *validator) positiveDur(field string, d time.Duration) {
	if d <= 0 {
		v.add(field, "must be a positive duration")
	}
}

// Validate reports every invalid key at once. All returned errors match
// ErrInvalid.
func Validate(cfg AppConfig) error {
	v := &validator{}

	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		v.add("log.level", "unknown level "+cfg.Log.Level)
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "console" {
		v.add("log.format", "must be json or console")
	}

	if cfg.Gateway.BaseURL != "" {
		u, err := url.Parse(cfg.Gateway.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			v.add("gateway.baseURL", "must be an http(s) URL")
		}
	}
	v.positiveDur("gateway.timeout", cfg.Gateway.Timeout)
	if cfg.Gateway.RatePerSecond <= 0 {
		v.add("gateway.ratePerSecond", "must be positive")
	}
	v.positive("gateway.burst", cfg.Gateway.Burst)
	v.positive("gateway.breakerThreshold", cfg.Gateway.BreakerThreshold)
	v.positiveDur("gateway.breakerReset", cfg.Gateway.BreakerReset)

	s := cfg.Session
	v.positive("session.maxConnectionAttempts", s.MaxConnectionAttempts)
	v.positive("session.maxStreamingAttempts", s.MaxStreamingAttempts)
	v.positive("session.maxArchiveAttempts", s.MaxArchiveAttempts)
	if s.ArchiveStep < time.Second || s.ArchiveStep%time.Second != 0 {
		v.add("session.archiveStep", "must be a whole number of seconds")
	}
	v.positiveDur("session.stepDebounce", s.StepDebounce)
	if s.ViewModeInterval < minViewModeInterval {
		v.add("session.viewModeInterval", "must be at least 50ms")
	}
	v.positiveDur("session.backgroundBudget", s.BackgroundBudget)
	v.positiveDur("session.connectBackoffInitial", s.ConnectBackoffInitial)
	if s.ConnectBackoffMax < s.ConnectBackoffInitial {
		v.add("session.connectBackoffMax", "must not be below connectBackoffInitial")
	}
	v.positiveDur("session.requestTimeout", s.RequestTimeout)

	v.positiveDur("keepalive.interval", cfg.KeepAlive.Interval)
	v.positiveDur("keepalive.interruptGrace", cfg.KeepAlive.InterruptGrace)
	v.positiveDur("keepalive.requestTimeout", cfg.KeepAlive.RequestTimeout)

	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.Exporter != "grpc" && cfg.Telemetry.Exporter != "http" {
			v.add("telemetry.exporter", "must be grpc or http")
		}
		if cfg.Telemetry.Endpoint == "" {
			v.add("telemetry.endpoint", "required when telemetry is enabled")
		}
	}
	if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
		v.add("telemetry.samplingRate", "must be within [0,1]")
	}

	return errors.Join(v.errs...)
}
