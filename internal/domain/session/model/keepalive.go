// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

import "time"

// KeepAliveMode tells the server what kind of media the client is consuming.
type KeepAliveMode string

const (
	ModeLiveVideo       KeepAliveMode = "live-video"
	ModeLiveSnapshot    KeepAliveMode = "live-snapshot"
	ModeArchiveVideo    KeepAliveMode = "archive-video"
	ModeArchiveSnapshot KeepAliveMode = "archive-snapshot"
	ModeUnchanged       KeepAliveMode = "unchanged"
)

// KeepAliveState is the client-side playback state reported per device.
type KeepAliveState string

const (
	KeepAlivePlaying   KeepAliveState = "playing"
	KeepAlivePaused    KeepAliveState = "paused"
	KeepAliveLoading   KeepAliveState = "loading"
	KeepAliveError     KeepAliveState = "error"
	KeepAliveSuspended KeepAliveState = "suspended"
)

type ArchivePosition struct {
	Position time.Time `json:"position"`
	Scale    float64   `json:"scale"`
}

// KeepAliveEntry is the intent reported for one device. Mode and Archive
// must always be read and written together.
type KeepAliveEntry struct {
	Mode    KeepAliveMode    `json:"mode"`
	State   KeepAliveState   `json:"state"`
	Archive *ArchivePosition `json:"archive,omitempty"`
}

// Clone returns a deep copy so callers never share the Archive pointer.
func (e KeepAliveEntry) Clone() KeepAliveEntry {
	out := e
	if e.Archive != nil {
		a := *e.Archive
		out.Archive = &a
	}
	return out
}

// KeepAlivePayload is the full intent map flushed to the heartbeat endpoint.
type KeepAlivePayload map[DeviceID]KeepAliveEntry

// HeartbeatStatus is the server verdict for a heartbeat.
type HeartbeatStatus string

const (
	HeartbeatRunning     HeartbeatStatus = "running"
	HeartbeatInterrupted HeartbeatStatus = "interrupted"
	HeartbeatStopped     HeartbeatStatus = "stopped"
)

type HeartbeatResult struct {
	Status HeartbeatStatus `json:"status"`
	Reason string          `json:"reason,omitempty"`
}
