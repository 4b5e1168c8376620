// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"time"

	"github.com/ManuGH/vssplay/internal/domain/session/model"
)

var zeroTime time.Time

type mediaKind int

const (
	mediaNone mediaKind = iota
	mediaVideo
	mediaPoll
	mediaPaused
)

// media describes what the player is doing in a given state.
type media struct {
	kind     mediaKind
	archive  bool
	depth    int
	url      string
	interval time.Duration
}

func mediaOf(s model.State) media {
	switch s := s.(type) {
	case model.Streaming:
		if s.ViewMode {
			return media{kind: mediaPoll, interval: s.ViewModeInterval}
		}
		return media{kind: mediaVideo, url: s.StreamURL}
	case model.PlayingArchive:
		if s.ViewMode {
			return media{kind: mediaPoll, archive: true, depth: s.DepthSeconds, interval: s.ViewModeInterval}
		}
		return media{kind: mediaVideo, archive: true, depth: s.DepthSeconds}
	case model.Paused:
		if s.ViewMode {
			return media{}
		}
		return media{kind: mediaPaused, archive: s.ArchiveDepth < 0, depth: s.ArchiveDepth}
	}
	return media{}
}

// switchMedia emits the minimal effects taking the player from prior's media
// to next's.
func (m *machine) switchMedia(prior, next model.State) {
	from, to := mediaOf(prior), mediaOf(next)
	if model.KindOf(prior) == model.StateFailed {
		// The failed playback has to be restarted even when nothing changed.
		from = media{}
		if f, ok := prior.(model.Failed); ok && mediaOf(f.Prior).kind == mediaPoll {
			m.emit(Effect{Kind: FxStopViewMode})
		}
	}
	if from == to {
		return
	}
	switch {
	case from.kind == mediaPoll:
		m.emit(Effect{Kind: FxStopViewMode})
	case (from.kind == mediaVideo || from.kind == mediaPaused) && to.kind == mediaPoll:
		m.emit(Effect{Kind: FxStopPlayback})
	}
	switch {
	case to.kind == mediaPoll:
		m.emit(Effect{Kind: FxStartViewMode, Archive: to.archive, Depth: to.depth, Interval: to.interval})
	case to.archive:
		m.emit(Effect{Kind: FxPlayArchive, Depth: to.depth})
	default:
		m.emit(Effect{Kind: FxPlayLive, URL: to.url})
	}
}

type playback int

const (
	playbackNone playback = iota
	playbackLive
	playbackArchive
)

// contextOf is the playback context a state belongs to. Failed inherits the
// context of its prior state.
func contextOf(s model.State) (playback, int) {
	switch s := s.(type) {
	case model.Streaming:
		return playbackLive, 0
	case model.PlayingArchive:
		return playbackArchive, s.DepthSeconds
	case model.Paused:
		if s.ArchiveDepth < 0 {
			return playbackArchive, s.ArchiveDepth
		}
		return playbackLive, 0
	case model.Failed:
		return contextOf(s.Prior)
	}
	return playbackNone, 0
}

func (m *machine) playbackNotes(prior, next model.State) {
	pc, pd := contextOf(prior)
	nc, nd := contextOf(next)
	if pc == nc && pd == nd {
		return
	}
	switch {
	case pc == playbackLive && nc != playbackLive:
		m.notify(Notification{Kind: NoteFinishedLiveStreaming})
	case pc == playbackArchive && nc != playbackArchive:
		m.notify(Notification{Kind: NoteFinishedPlayingArchive, Depth: pd})
	}
	switch nc {
	case playbackLive:
		m.notify(Notification{Kind: NoteWillStreamLive})
	case playbackArchive:
		m.notify(Notification{Kind: NoteWillPlayArchive, Depth: nd})
	}
}
