// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package ports

import "github.com/ManuGH/vssplay/internal/domain/session/model"

// Player renders media for one session. Methods are called from the session
// goroutine and must not block.
type Player interface {
	SetControlsEnabled(enabled bool)
	Refreshed()
	PlayLive(url string)
	// PlayArchive starts recorded playback depth seconds behind live.
	PlayArchive(depth int)
	Pause()
	Stop()
	ShowFrame(frame []byte)
	ShowSecurityMarker(marker string)
	ShowDescription(desc model.Description)
}

// Delegate receives lifecycle notifications. Like Player, it is called from
// the session goroutine.
//
// Callbacks are keyed by session id, not device id: the device is unknown
// until the connect request completes, and a reconnect may yield a new one.
// Hosts that need the device read it from the session snapshot.
type Delegate interface {
	WillChangeState(session string, to model.StateKind)
	DidChangeState(session string, to model.StateKind)
	DidFail(session string, err *model.SessionError)
	Advise(session string, adv model.Advisory)
	WillPlayArchive(session string, depth int)
	FinishedPlayingArchive(session string, depth int)
	WillStreamLive(session string)
	FinishedLiveStreaming(session string)
	WillShutdown(session string)
}

// IntentSink receives per-device keep-alive intents.
type IntentSink interface {
	SetIntent(device model.DeviceID, entry model.KeepAliveEntry)
	RemoveIntent(device model.DeviceID)
}
