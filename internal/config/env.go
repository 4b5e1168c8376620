// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/vssplay/internal/log"
	"github.com/rs/zerolog"
)

// Environment keys.
const (
	EnvLogLevel         = "VSS_LOG_LEVEL"
	EnvGatewayURL       = "VSS_GATEWAY_URL"
	EnvGatewayToken     = "VSS_GATEWAY_TOKEN"
	EnvGatewayTimeout   = "VSS_GATEWAY_TIMEOUT"
	EnvMetricsListen    = "VSS_METRICS_LISTEN"
	EnvTelemetry        = "VSS_TELEMETRY_ENABLED"
	EnvTelemetryURL     = "VSS_TELEMETRY_ENDPOINT"
	EnvKeepAliveSeconds = "VSS_KEEPALIVE_INTERVAL"
)

func envLogger() zerolog.Logger { return log.WithComponent("config") }

func sensitive(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "token") || strings.Contains(k, "password")
}

// ParseString reads key from the environment, falling back to def when it is
// unset or empty.
func ParseString(key, def string) string {
	logger := envLogger()
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logger.Debug().Str("key", key).Str("source", "default").Msg("using default value")
		return def
	}
	ev := logger.Debug().Str("key", key).Str("source", "environment")
	if sensitive(key) {
		ev = ev.Bool("sensitive", true)
	} else {
		ev = ev.Str("value", v)
	}
	ev.Msg("using environment variable")
	return v
}

// ParseBool accepts the forms strconv.ParseBool does.
func ParseBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger := envLogger()
		logger.Warn().Str("key", key).Str("value", v).Bool("default", def).Msg("invalid boolean, using default")
		return def
	}
	return b
}

// ParseDuration accepts Go durations ("5s") and plain integers as seconds.
func ParseDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	logger := envLogger()
	logger.Warn().Str("key", key).Str("value", v).Dur("default", def).Msg("invalid duration, using default")
	return def
}
