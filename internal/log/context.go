// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package log provides structured logging utilities.
package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey string

// Keys double as the log field they are emitted under.
const (
	sessionKey ctxKey = FieldSessionID
	requestKey ctxKey = FieldRequestID
	deviceKey  ctxKey = FieldDeviceID
)

var ctxFields = []ctxKey{sessionKey, requestKey, deviceKey}

func with(ctx context.Context, key ctxKey, v string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func value(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// ContextWithSessionID tags ctx with the session issuing the work.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return with(ctx, sessionKey, id)
}

// ContextWithRequestID tags ctx with a registry token.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return with(ctx, requestKey, id)
}

func ContextWithDeviceID(ctx context.Context, id string) context.Context {
	return with(ctx, deviceKey, id)
}

func SessionIDFromContext(ctx context.Context) string { return value(ctx, sessionKey) }
func RequestIDFromContext(ctx context.Context) string { return value(ctx, requestKey) }
func DeviceIDFromContext(ctx context.Context) string  { return value(ctx, deviceKey) }

// WithContext adds the ids carried by ctx to logger. The logger is returned
// unchanged when ctx carries none.
func WithContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	b := logger.With()
	added := false
	for _, k := range ctxFields {
		if v := value(ctx, k); v != "" {
			b = b.Str(string(k), v)
			added = true
		}
	}
	if !added {
		return logger
	}
	return b.Logger()
}

// FromContext returns the logger attached with zerolog's WithContext, or the
// base logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return L()
	}
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return L()
	}
	return l
}
