// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"fmt"

	"github.com/ManuGH/vssplay/internal/domain/session/model"
)

// step is what follows a state entry: another state to enter, or one to
// restore without entry effects.
type step struct {
	next    model.State
	restore bool
}

func (m *machine) enter(prior, next model.State) step {
	switch s := next.(type) {
	case model.Initial:
		m.resetBudgets()
		m.emit(Effect{Kind: FxSetControls, Enabled: false})
		return step{next: model.Connecting{TriesLeft: m.lim.MaxConnectionAttempts}}

	case model.Connecting:
		return m.enterConnecting(prior, s)

	case model.Connected:
		d := s.Device
		m.snap.Device = &d
		m.snap.Archive = nil
		m.intent(s)
		if d.LiveURL == "" {
			return step{next: m.fail(s, model.ENoStreamingURL, "connected", nil)}
		}
		m.emit(Effect{Kind: FxFetchArchiveControl})
		m.emit(Effect{Kind: FxFetchLiveSnapshot})
		m.emit(Effect{Kind: FxFetchSecurityMarker})
		m.emit(Effect{Kind: FxFetchDescription})
		m.snap.Budgets.Streaming = m.lim.MaxStreamingAttempts
		return step{next: m.live(d.LiveURL, false, m.lim.ViewModeInterval)}

	case model.Streaming:
		m.snap.Budgets.Streaming = s.TriesLeft
		if s.TriesLeft <= 0 {
			return step{next: m.fail(s, model.EStreamingRetryExceeded, "stream", nil)}
		}
		if m.inBackground() {
			return m.holdPaused(s)
		}
		m.emit(Effect{Kind: FxSetControls, Enabled: true})
		m.switchMedia(prior, s)
		m.intent(s)
		return step{}

	case model.Paused:
		if !m.held {
			switch running := mediaOf(prior); running.kind {
			case mediaPoll:
				m.emit(Effect{Kind: FxStopViewMode})
			case mediaVideo:
				m.emit(Effect{Kind: FxPausePlayback})
			}
		}
		m.held = false
		m.emit(Effect{Kind: FxSetControls, Enabled: true})
		m.intent(s)
		return step{}

	case model.PlayingArchive:
		if model.KindOf(prior) == model.StateFailed && m.snap.Budgets.Archive <= 0 {
			return step{next: m.fail(s, model.EArchiveRetryExceeded, "play_archive", nil)}
		}
		if m.inBackground() {
			return m.holdPaused(s)
		}
		m.emit(Effect{Kind: FxSetControls, Enabled: true})
		m.switchMedia(prior, s)
		m.intent(s)
		return step{}

	case model.Stopped:
		if model.KindOf(prior) == model.StateStopped {
			return step{next: model.Invalidated{}}
		}
		m.snap.BackgroundedAt = zeroTime
		m.snap.PausedByBackground = false
		m.emit(Effect{Kind: FxCancelAll})
		m.emit(Effect{Kind: FxStopViewMode})
		m.emit(Effect{Kind: FxStopPlayback})
		m.emit(Effect{Kind: FxSetControls, Enabled: false})
		m.intent(s)
		return step{}

	case model.Invalidated:
		m.notify(Notification{Kind: NoteWillShutdown})
		m.emit(Effect{Kind: FxShutdown})
		return step{}

	case model.Failed:
		return m.enterFailed(s)
	}
	m.fault(fmt.Errorf("%w: no entry for %T", ErrIllegalTransition, next))
	return step{}
}

func (m *machine) inBackground() bool { return !m.snap.BackgroundedAt.IsZero() }

// holdPaused parks playback reached while the app is in the background. The
// player was never started, so the paused entry skips pausing it.
func (m *machine) holdPaused(s model.State) step {
	m.snap.PausedByBackground = true
	m.held = true
	return step{next: pauseOf(s)}
}

func (m *machine) enterConnecting(prior model.State, c model.Connecting) step {
	m.snap.Budgets.Connection = c.TriesLeft
	if c.TriesLeft <= 0 {
		return step{next: m.fail(c, model.EConnectionRetryExceeded, "connect", nil)}
	}
	switch model.KindOf(prior) {
	case model.StateStopped, model.StatePaused, model.StateFailed,
		model.StatePlayingArchive, model.StateStreaming:
		m.emit(Effect{Kind: FxRefreshed})
	}
	switch mediaOf(prior).kind {
	case mediaPoll:
		m.emit(Effect{Kind: FxStopViewMode})
	case mediaVideo, mediaPaused:
		m.emit(Effect{Kind: FxStopPlayback})
	}
	m.emit(Effect{Kind: FxSetControls, Enabled: false})
	m.intent(c)
	m.emit(Effect{Kind: FxConnect, Attempt: m.lim.MaxConnectionAttempts - c.TriesLeft})
	return step{}
}

func (m *machine) enterFailed(f model.Failed) step {
	if f.Err == nil {
		f.Err = model.NewError(model.EStateTransitionFault, "failed", nil)
		m.snap.State = f
	}
	m.intent(f)
	m.emit(Effect{Kind: FxAdvise, Advisory: model.AdvisoryFor(f.Err)})

	switch PolicyFor(model.KindOf(f.Prior), f.Err.Kind) {
	case PolicyRetryPrior:
		return step{next: f.Prior}
	case PolicyRollback:
		return step{next: f.Prior, restore: true}
	case PolicyStepBack:
		a, ok := f.Prior.(model.PlayingArchive)
		if !ok {
			return step{next: f.Prior, restore: true}
		}
		if m.inWindow(a.DepthSeconds) {
			return step{next: a}
		}
		return step{next: m.live(a.LiveStreamURL, a.ViewMode, a.ViewModeInterval)}
	case PolicyLogFault:
		m.emit(Effect{Kind: FxLogFault, Err: f.Err})
		return step{next: f.Prior, restore: true}
	default:
		m.emit(Effect{Kind: FxDidFail, Err: f.Err})
		return step{next: model.Stopped{}}
	}
}
