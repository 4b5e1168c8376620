// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package keepalive

import (
	"errors"
	"time"
)

// Status is the health of the keep-alive channel.
type Status int

const (
	StatusRunning Status = iota
	StatusInterrupted
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusInterrupted:
		return "interrupted"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

var (
	// ErrInterruptGraceExceeded stops the channel after it stayed interrupted
	// for longer than the grace period.
	ErrInterruptGraceExceeded = errors.New("keepalive: interrupted for too long")
	// ErrServerStopped is reported when the server ends the session itself.
	ErrServerStopped = errors.New("keepalive: stopped by server")
)

// StatusEvent is published on every status change.
type StatusEvent struct {
	Status Status
	Err    error
	At     time.Time
}
