// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"time"

	"github.com/ManuGH/vssplay/internal/domain/session/lifecycle"
)

// Config tunes a session.
type Config struct {
	Limits lifecycle.Limits
	// StepDebounce coalesces rapid archive steps into one seek.
	StepDebounce   time.Duration
	RequestTimeout time.Duration

	ConnectBackoffInitial time.Duration
	ConnectBackoffMax     time.Duration
	// ConnectJitter is the backoff randomization factor in [0,1).
	ConnectJitter float64
}

func DefaultConfig() Config {
	return Config{
		Limits:                lifecycle.DefaultLimits(),
		StepDebounce:          400 * time.Millisecond,
		RequestTimeout:        10 * time.Second,
		ConnectBackoffInitial: 500 * time.Millisecond,
		ConnectBackoffMax:     8 * time.Second,
		ConnectJitter:         0.2,
	}
}
