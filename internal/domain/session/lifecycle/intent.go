// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"time"

	"github.com/ManuGH/vssplay/internal/domain/session/model"
)

// IntentFor derives the keep-alive entry advertised while in s. States that
// advertise nothing return false.
func IntentFor(s model.State, archive *model.ArchiveControl, now time.Time) (model.KeepAliveEntry, bool) {
	position := func(depth int) *model.ArchivePosition {
		at := now.Add(time.Duration(depth) * time.Second)
		if archive != nil {
			at = archive.Timestamp(depth)
		}
		return &model.ArchivePosition{Position: at, Scale: 1}
	}

	switch s := s.(type) {
	case model.Connecting, model.Connected:
		return model.KeepAliveEntry{Mode: model.ModeUnchanged, State: model.KeepAliveLoading}, true
	case model.Streaming:
		return model.KeepAliveEntry{Mode: liveMode(s.ViewMode), State: model.KeepAlivePlaying}, true
	case model.Paused:
		if s.ArchiveDepth < 0 {
			return model.KeepAliveEntry{
				Mode:    archiveMode(s.ViewMode),
				State:   model.KeepAlivePaused,
				Archive: position(s.ArchiveDepth),
			}, true
		}
		return model.KeepAliveEntry{Mode: liveMode(s.ViewMode), State: model.KeepAlivePaused}, true
	case model.PlayingArchive:
		return model.KeepAliveEntry{
			Mode:    archiveMode(s.ViewMode),
			State:   model.KeepAlivePlaying,
			Archive: position(s.DepthSeconds),
		}, true
	case model.Failed:
		return model.KeepAliveEntry{Mode: model.ModeUnchanged, State: model.KeepAliveError}, true
	case model.Stopped:
		return model.KeepAliveEntry{Mode: model.ModeUnchanged, State: model.KeepAliveSuspended}, true
	}
	return model.KeepAliveEntry{}, false
}

func liveMode(viewMode bool) model.KeepAliveMode {
	if viewMode {
		return model.ModeLiveSnapshot
	}
	return model.ModeLiveVideo
}

func archiveMode(viewMode bool) model.KeepAliveMode {
	if viewMode {
		return model.ModeArchiveSnapshot
	}
	return model.ModeArchiveVideo
}

func (m *machine) intent(s model.State) {
	if e, ok := IntentFor(s, m.snap.Archive, m.at); ok {
		m.emit(Effect{Kind: FxKeepAlive, Entry: e})
	}
}
