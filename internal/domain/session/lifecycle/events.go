// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"fmt"
	"time"

	"github.com/ManuGH/vssplay/internal/domain/session/model"
)

// EventKind is an input to the session state machine.
type EventKind int

const (
	EvUnknown EventKind = iota
	EvStart
	EvRefresh
	EvConnectSucceeded
	EvConnectFailed
	EvArchiveControlLoaded
	EvSideRequestFailed
	EvPlaybackFailed
	EvArchivePlaybackFailed
	EvPause
	EvResume
	EvSetViewMode
	EvPlayArchive
	EvResumeLive
	EvStop
	EvBackground
	EvForeground
	EvKeepAliveStopped
)

var eventNames = map[EventKind]string{
	EvUnknown:               "unknown",
	EvStart:                 "start",
	EvRefresh:               "refresh",
	EvConnectSucceeded:      "connect_succeeded",
	EvConnectFailed:         "connect_failed",
	EvArchiveControlLoaded:  "archive_control_loaded",
	EvSideRequestFailed:     "side_request_failed",
	EvPlaybackFailed:        "playback_failed",
	EvArchivePlaybackFailed: "archive_playback_failed",
	EvPause:                 "pause",
	EvResume:                "resume",
	EvSetViewMode:           "set_view_mode",
	EvPlayArchive:           "play_archive",
	EvResumeLive:            "resume_live",
	EvStop:                  "stop",
	EvBackground:            "background",
	EvForeground:            "foreground",
	EvKeepAliveStopped:      "keepalive_stopped",
}

func (k EventKind) String() string {
	if s, ok := eventNames[k]; ok {
		return s
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is one input. Only the fields relevant to Kind are read.
type Event struct {
	Kind EventKind
	At   time.Time

	Device  model.Device         // EvConnectSucceeded
	Archive model.ArchiveControl // EvArchiveControlLoaded

	// ErrKind classifies failure events. EUnauthorized overrides the
	// kind implied by the event.
	ErrKind model.ErrorKind
	Op      string
	Err     error

	Depth    int           // EvPlayArchive
	ViewMode bool          // EvSetViewMode
	Interval time.Duration // EvSetViewMode, zero means default
}
