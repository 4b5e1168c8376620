// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"fmt"
	"time"

	"github.com/ManuGH/vssplay/internal/domain/session/model"
)

// EffectKind is a side effect requested by a transition. Effects are data;
// the session actor executes them in order.
type EffectKind int

const (
	FxSetControls EffectKind = iota + 1
	FxRefreshed
	FxConnect
	FxFetchArchiveControl
	FxFetchLiveSnapshot
	FxFetchSecurityMarker
	FxFetchDescription
	FxPlayLive
	FxPlayArchive
	FxPausePlayback
	FxStopPlayback
	FxStartViewMode
	FxStopViewMode
	FxKeepAlive
	FxNotify
	FxAdvise
	FxDidFail
	FxCancelAll
	FxShutdown
	FxLogFault
)

var effectNames = map[EffectKind]string{
	FxSetControls:         "set_controls",
	FxRefreshed:           "refreshed",
	FxConnect:             "connect",
	FxFetchArchiveControl: "fetch_archive_control",
	FxFetchLiveSnapshot:   "fetch_live_snapshot",
	FxFetchSecurityMarker: "fetch_security_marker",
	FxFetchDescription:    "fetch_description",
	FxPlayLive:            "play_live",
	FxPlayArchive:         "play_archive",
	FxPausePlayback:       "pause_playback",
	FxStopPlayback:        "stop_playback",
	FxStartViewMode:       "start_view_mode",
	FxStopViewMode:        "stop_view_mode",
	FxKeepAlive:           "keepalive",
	FxNotify:              "notify",
	FxAdvise:              "advise",
	FxDidFail:             "did_fail",
	FxCancelAll:           "cancel_all",
	FxShutdown:            "shutdown",
	FxLogFault:            "log_fault",
}

func (k EffectKind) String() string {
	if s, ok := effectNames[k]; ok {
		return s
	}
	return fmt.Sprintf("effect(%d)", int(k))
}

// NoteKind is a delegate notification.
type NoteKind int

const (
	NoteWillChangeState NoteKind = iota + 1
	NoteDidChangeState
	NoteWillPlayArchive
	NoteFinishedPlayingArchive
	NoteWillStreamLive
	NoteFinishedLiveStreaming
	NoteWillShutdown
)

type Notification struct {
	Kind  NoteKind
	State model.StateKind // change-state notes
	Depth int             // archive notes
}

// Effect is a tagged union; only the fields relevant to Kind are set.
type Effect struct {
	Kind EffectKind

	Enabled  bool          // FxSetControls
	Attempt  int           // FxConnect, 0 for the first attempt
	URL      string        // FxPlayLive
	Depth    int           // FxPlayArchive, FxStartViewMode
	Archive  bool          // FxStartViewMode
	Interval time.Duration // FxStartViewMode

	Entry    model.KeepAliveEntry // FxKeepAlive
	Note     Notification         // FxNotify
	Advisory model.Advisory       // FxAdvise
	Err      error                // FxDidFail, FxLogFault
}

// Kinds returns the effect kinds in order.
func Kinds(effects []Effect) []EffectKind {
	out := make([]EffectKind, len(effects))
	for i, fx := range effects {
		out[i] = fx.Kind
	}
	return out
}
