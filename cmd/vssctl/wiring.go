// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"io"
	"os"
	"time"

	"github.com/ManuGH/vssplay/internal/config"
	"github.com/ManuGH/vssplay/internal/domain/session/lifecycle"
	"github.com/ManuGH/vssplay/internal/domain/session/manager"
	"github.com/ManuGH/vssplay/internal/gateway"
	"github.com/ManuGH/vssplay/internal/keepalive"
	"github.com/ManuGH/vssplay/internal/log"
	"github.com/ManuGH/vssplay/internal/telemetry"
	"github.com/ManuGH/vssplay/internal/version"
	"github.com/rs/zerolog"
)

const serviceName = "vssplay"

func hubConfig(cfg config.AppConfig) manager.HubConfig {
	s := cfg.Session
	hc := manager.DefaultHubConfig()
	hc.Session.Limits = lifecycle.Limits{
		MaxConnectionAttempts: s.MaxConnectionAttempts,
		MaxStreamingAttempts:  s.MaxStreamingAttempts,
		MaxArchiveAttempts:    s.MaxArchiveAttempts,
		ArchiveStep:           int(s.ArchiveStep / time.Second),
		ViewModeInterval:      s.ViewModeInterval,
		BackgroundBudget:      s.BackgroundBudget,
	}
	hc.Session.StepDebounce = s.StepDebounce
	hc.Session.RequestTimeout = s.RequestTimeout
	hc.Session.ConnectBackoffInitial = s.ConnectBackoffInitial
	hc.Session.ConnectBackoffMax = s.ConnectBackoffMax
	hc.KeepAlive = keepalive.Config{
		Interval:       cfg.KeepAlive.Interval,
		InterruptGrace: cfg.KeepAlive.InterruptGrace,
		RequestTimeout: cfg.KeepAlive.RequestTimeout,
	}
	return hc
}

func gatewayOptions(cfg config.AppConfig) gateway.Options {
	g := cfg.Gateway
	return gateway.Options{
		BaseURL:          g.BaseURL,
		Token:            g.Token,
		Timeout:          g.Timeout,
		RatePerSecond:    g.RatePerSecond,
		Burst:            g.Burst,
		BreakerThreshold: g.BreakerThreshold,
		BreakerReset:     g.BreakerReset,
		UserAgent:        serviceName + "/" + version.Version,
	}
}

func telemetryConfig(cfg config.AppConfig) telemetry.Config {
	t := cfg.Telemetry
	return telemetry.Config{
		Enabled:        t.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.Version,
		Exporter:       t.Exporter,
		Endpoint:       t.Endpoint,
		SamplingRate:   t.SamplingRate,
	}
}

func configureLogging(cfg config.AppConfig) {
	var out io.Writer = os.Stdout
	if cfg.Log.Format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	log.Configure(log.Config{
		Level:   cfg.Log.Level,
		Output:  out,
		Service: serviceName,
		Version: cfg.Version,
	})
}
