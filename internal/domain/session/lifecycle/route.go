// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"time"

	"github.com/ManuGH/vssplay/internal/domain/session/model"
)

func isActive(k model.StateKind) bool {
	switch k {
	case model.StateConnecting, model.StateConnected, model.StateStreaming,
		model.StatePaused, model.StatePlayingArchive:
		return true
	}
	return false
}

// failureKind lets an unauthorized classification override the event's own.
func failureKind(ev Event, fallback model.ErrorKind) model.ErrorKind {
	if ev.ErrKind == model.EUnauthorized {
		return model.EUnauthorized
	}
	if ev.ErrKind != model.ENone {
		return ev.ErrKind
	}
	return fallback
}

// route maps an event to the state it requests, or nil when the event is
// absorbed by the current state.
func (m *machine) route(ev Event) model.State {
	cur := m.snap.State
	kind := model.KindOf(cur)
	if kind == model.StateInvalidated {
		return nil
	}

	switch ev.Kind {
	case EvStart:
		return model.Initial{}

	case EvRefresh:
		if kind == model.StateNone {
			return nil
		}
		m.resetBudgets()
		m.snap.PausedByBackground = false
		return model.Connecting{TriesLeft: m.lim.MaxConnectionAttempts}

	case EvStop:
		if kind == model.StateNone {
			return nil
		}
		return model.Stopped{}

	case EvConnectSucceeded:
		if kind != model.StateConnecting {
			return nil
		}
		return model.Connected{Device: ev.Device}

	case EvConnectFailed:
		c, ok := cur.(model.Connecting)
		if !ok {
			return nil
		}
		k := failureKind(ev, model.EConnectionFailed)
		if k == model.EConnectionFailed {
			c.TriesLeft = max(c.TriesLeft-1, 0)
		}
		return m.fail(c, k, opOr(ev, "connect"), ev.Err)

	case EvArchiveControlLoaded:
		if !isActive(kind) {
			return nil
		}
		ac := ev.Archive
		m.snap.Archive = &ac
		return nil

	case EvSideRequestFailed:
		if !isActive(kind) {
			return nil
		}
		return m.fail(cur, failureKind(ev, model.EViewModeSnapshotFailed), ev.Op, ev.Err)

	case EvPlaybackFailed:
		switch s := cur.(type) {
		case model.Streaming:
			k := failureKind(ev, model.EStreamingFailed)
			if k == model.EStreamingFailed {
				s.TriesLeft = max(s.TriesLeft-1, 0)
			}
			return m.fail(s, k, opOr(ev, "play_live"), ev.Err)
		case model.PlayingArchive:
			return m.archiveFailed(s, ev)
		}
		return nil

	case EvArchivePlaybackFailed:
		if a, ok := cur.(model.PlayingArchive); ok {
			return m.archiveFailed(a, ev)
		}
		return nil

	case EvPause:
		m.snap.PausedByBackground = false
		return pauseOf(cur)

	case EvResume:
		if p, ok := cur.(model.Paused); ok {
			m.snap.PausedByBackground = false
			return m.resume(p)
		}
		return nil

	case EvSetViewMode:
		return m.setViewMode(cur, ev)

	case EvPlayArchive:
		return m.seek(cur, ev.Depth)

	case EvResumeLive:
		switch s := cur.(type) {
		case model.PlayingArchive:
			return m.live(s.LiveStreamURL, s.ViewMode, s.ViewModeInterval)
		case model.Paused:
			m.snap.PausedByBackground = false
			return m.live(s.StreamURL, s.ViewMode, s.ViewModeInterval)
		}
		return nil

	case EvBackground:
		if kind == model.StateNone || kind.IsTerminal() {
			return nil
		}
		if m.snap.BackgroundedAt.IsZero() {
			m.snap.BackgroundedAt = ev.At
		}
		if p := pauseOf(cur); p != nil {
			m.snap.PausedByBackground = true
			return p
		}
		return nil

	case EvForeground:
		if m.snap.BackgroundedAt.IsZero() {
			return nil
		}
		elapsed := ev.At.Sub(m.snap.BackgroundedAt)
		byBackground := m.snap.PausedByBackground
		m.snap.BackgroundedAt = time.Time{}
		m.snap.PausedByBackground = false
		if !isActive(kind) {
			return nil
		}
		if elapsed > m.lim.BackgroundBudget {
			return m.fail(cur, model.EBackgroundTimeout, "foreground", nil)
		}
		if p, ok := cur.(model.Paused); ok && byBackground {
			return m.resume(p)
		}
		return nil

	case EvKeepAliveStopped:
		if !isActive(kind) {
			return nil
		}
		return m.fail(cur, failureKind(ev, model.EKeepAliveStopped), opOr(ev, "keepalive"), ev.Err)
	}
	return nil
}

func opOr(ev Event, op string) string {
	if ev.Op != "" {
		return ev.Op
	}
	return op
}

func (m *machine) archiveFailed(a model.PlayingArchive, ev Event) model.State {
	k := failureKind(ev, model.EArchivePlaybackFailed)
	if k != model.EArchivePlaybackFailed {
		return m.fail(a, k, opOr(ev, "play_archive"), ev.Err)
	}
	m.snap.Budgets.Archive = max(m.snap.Budgets.Archive-1, 0)
	a.DepthSeconds -= m.lim.ArchiveStep
	return m.fail(a, k, opOr(ev, "play_archive"), ev.Err)
}

func pauseOf(cur model.State) model.State {
	switch s := cur.(type) {
	case model.Streaming:
		return model.Paused{StreamURL: s.StreamURL, ViewMode: s.ViewMode, ViewModeInterval: s.ViewModeInterval}
	case model.PlayingArchive:
		return model.Paused{
			StreamURL:        s.LiveStreamURL,
			ArchiveDepth:     s.DepthSeconds,
			ViewMode:         s.ViewMode,
			ViewModeInterval: s.ViewModeInterval,
		}
	}
	return nil
}

func (m *machine) live(url string, viewMode bool, interval time.Duration) model.State {
	return model.Streaming{
		StreamURL:        url,
		TriesLeft:        m.lim.MaxStreamingAttempts,
		ViewMode:         viewMode,
		ViewModeInterval: interval,
	}
}

func (m *machine) resume(p model.Paused) model.State {
	if p.ArchiveDepth < 0 {
		return model.PlayingArchive{
			DepthSeconds:     p.ArchiveDepth,
			LiveStreamURL:    p.StreamURL,
			ViewMode:         p.ViewMode,
			ViewModeInterval: p.ViewModeInterval,
		}
	}
	return m.live(p.StreamURL, p.ViewMode, p.ViewModeInterval)
}

func (m *machine) setViewMode(cur model.State, ev Event) model.State {
	interval := ev.Interval
	if interval <= 0 {
		interval = m.lim.ViewModeInterval
	}
	same := func(on bool, iv time.Duration) bool {
		return on == ev.ViewMode && (!on || iv == interval)
	}
	switch s := cur.(type) {
	case model.Streaming:
		if same(s.ViewMode, s.ViewModeInterval) {
			return nil
		}
		s.ViewMode, s.ViewModeInterval = ev.ViewMode, interval
		return s
	case model.PlayingArchive:
		if same(s.ViewMode, s.ViewModeInterval) {
			return nil
		}
		s.ViewMode, s.ViewModeInterval = ev.ViewMode, interval
		return s
	case model.Paused:
		// Takes effect on resume.
		if same(s.ViewMode, s.ViewModeInterval) {
			return nil
		}
		s.ViewMode, s.ViewModeInterval = ev.ViewMode, interval
		m.snap.State = s
		m.intent(s)
	}
	return nil
}

// seek moves playback to depth seconds behind live. Depths at or past the
// live edge resume live; depths outside a known window are ignored.
func (m *machine) seek(cur model.State, depth int) model.State {
	switch s := cur.(type) {
	case model.Streaming:
		if depth >= 0 || !m.inWindow(depth) {
			return nil
		}
		return model.PlayingArchive{
			DepthSeconds:     depth,
			LiveStreamURL:    s.StreamURL,
			ViewMode:         s.ViewMode,
			ViewModeInterval: s.ViewModeInterval,
		}
	case model.PlayingArchive:
		if depth >= 0 {
			return m.live(s.LiveStreamURL, s.ViewMode, s.ViewModeInterval)
		}
		if depth == s.DepthSeconds || !m.inWindow(depth) {
			return nil
		}
		s.DepthSeconds = depth
		return s
	case model.Paused:
		if depth >= 0 {
			return m.live(s.StreamURL, s.ViewMode, s.ViewModeInterval)
		}
		if !m.inWindow(depth) {
			return nil
		}
		return model.PlayingArchive{
			DepthSeconds:     depth,
			LiveStreamURL:    s.StreamURL,
			ViewMode:         s.ViewMode,
			ViewModeInterval: s.ViewModeInterval,
		}
	}
	return nil
}
