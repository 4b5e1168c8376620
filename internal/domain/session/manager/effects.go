// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"context"
	"errors"

	"github.com/ManuGH/vssplay/internal/domain/session/lifecycle"
	"github.com/ManuGH/vssplay/internal/domain/session/model"
	"github.com/ManuGH/vssplay/internal/log"
	"github.com/ManuGH/vssplay/internal/metrics"
	"github.com/cenkalti/backoff/v5"
)

// launch runs call on its own goroutine under a registered, time-bounded
// context. done runs on the session goroutine, and only if the request was
// not canceled or superseded in the meantime.
func launch[T any](s *Session, op string, call func(context.Context) (T, error), done func(T, error)) Token {
	ctx, cancel := context.WithTimeout(s.runCtx, s.cfg.RequestTimeout)
	tok := s.requests.Register(op, cancel)
	ctx = log.ContextWithRequestID(log.ContextWithSessionID(ctx, s.id), string(tok))
	go func() {
		v, err := call(ctx)
		_ = s.post(func() {
			if !s.requests.Complete(tok) {
				s.logger.Debug().Str(log.FieldOperation, op).Msg("stale completion dropped")
				return
			}
			done(v, err)
			s.publishView()
		})
	}()
	return tok
}

// execute performs one effect. It runs on the session goroutine.
func (s *Session) execute(fx lifecycle.Effect) {
	p := s.deps.Player
	switch fx.Kind {
	case lifecycle.FxSetControls:
		p.SetControlsEnabled(fx.Enabled)
	case lifecycle.FxRefreshed:
		p.Refreshed()
	case lifecycle.FxConnect:
		s.connect(fx.Attempt)
	case lifecycle.FxFetchArchiveControl:
		s.fetchArchiveControl()
	case lifecycle.FxFetchLiveSnapshot:
		s.fetchLiveSnapshot()
	case lifecycle.FxFetchSecurityMarker:
		s.fetchSecurityMarker()
	case lifecycle.FxFetchDescription:
		s.fetchDescription()
	case lifecycle.FxPlayLive:
		p.PlayLive(fx.URL)
	case lifecycle.FxPlayArchive:
		p.PlayArchive(fx.Depth)
	case lifecycle.FxPausePlayback:
		p.Pause()
	case lifecycle.FxStopPlayback:
		p.Stop()
	case lifecycle.FxStartViewMode:
		s.startPoller(fx.Archive, fx.Depth, fx.Interval)
	case lifecycle.FxStopViewMode:
		s.stopPoller()
	case lifecycle.FxKeepAlive:
		if s.deps.Intents != nil && s.snap.Device != nil {
			s.deps.Intents.SetIntent(s.snap.Device.ID, fx.Entry)
		}
	case lifecycle.FxNotify:
		s.notify(fx.Note)
	case lifecycle.FxAdvise:
		metrics.RecordFailure(string(fx.Advisory.Kind))
		s.deps.Delegate.Advise(s.id, fx.Advisory)
	case lifecycle.FxDidFail:
		var se *model.SessionError
		if !errors.As(fx.Err, &se) {
			se = model.NewError(model.KindOfError(fx.Err), "", fx.Err)
		}
		if se.Kind.ExhaustsBudget() {
			metrics.SessionBudgetsExhaustedTotal.WithLabelValues(string(se.Kind)).Inc()
		}
		s.logger.Warn().Err(se).Str(log.FieldErrorKind, string(se.Kind)).Msg("session failed")
		s.deps.Delegate.DidFail(s.id, se)
	case lifecycle.FxCancelAll:
		s.cancelAll()
	case lifecycle.FxShutdown:
		s.finish()
	case lifecycle.FxLogFault:
		s.logger.Error().Err(fx.Err).Msg("transition fault")
	default:
		s.logger.Warn().Str("effect", fx.Kind.String()).Msg("unhandled effect")
	}
}

func (s *Session) notify(n lifecycle.Notification) {
	d := s.deps.Delegate
	switch n.Kind {
	case lifecycle.NoteWillChangeState:
		d.WillChangeState(s.id, n.State)
	case lifecycle.NoteDidChangeState:
		d.DidChangeState(s.id, n.State)
	case lifecycle.NoteWillPlayArchive:
		d.WillPlayArchive(s.id, n.Depth)
	case lifecycle.NoteFinishedPlayingArchive:
		d.FinishedPlayingArchive(s.id, n.Depth)
	case lifecycle.NoteWillStreamLive:
		d.WillStreamLive(s.id)
	case lifecycle.NoteFinishedLiveStreaming:
		d.FinishedLiveStreaming(s.id)
	case lifecycle.NoteWillShutdown:
		d.WillShutdown(s.id)
	}
}

// connect supersedes any pending connect. Retries wait for the next backoff
// interval before dialing.
func (s *Session) connect(attempt int) {
	s.requests.Cancel(s.primary)
	if attempt == 0 {
		s.backoff.Reset()
		s.primary = s.dial()
		return
	}

	delay := s.backoff.NextBackOff()
	if delay == backoff.Stop {
		delay = s.backoff.MaxInterval
	}
	s.logger.Info().Int("attempt", attempt).Dur("delay", delay).Msg("reconnecting")

	var wait Token
	t := s.clock.AfterFunc(delay, func() {
		_ = s.post(func() {
			if s.requests.Complete(wait) {
				s.primary = s.dial()
				s.publishView()
			}
		})
	})
	wait = s.requests.Register("connect_backoff", func() { t.Stop() })
	s.primary = wait
}

func (s *Session) dial() Token {
	return launch(s, lifecycle.OpConnect,
		func(ctx context.Context) (model.Device, error) {
			return s.deps.Gateway.Connect(ctx, s.target)
		},
		func(d model.Device, err error) {
			s.primary = ""
			if err != nil {
				s.dispatch(lifecycle.Event{
					Kind:    lifecycle.EvConnectFailed,
					Op:      lifecycle.OpConnect,
					Err:     err,
					ErrKind: lifecycle.Classify(lifecycle.OpConnect, err),
				})
				return
			}
			s.dispatch(lifecycle.Event{Kind: lifecycle.EvConnectSucceeded, Device: d})
		})
}

// sideFailed reports a failed auxiliary request. These are soft unless the
// server rejected our credentials.
func (s *Session) sideFailed(op string, err error) {
	s.dispatch(lifecycle.Event{Kind: lifecycle.EvSideRequestFailed, Op: op, ErrKind: lifecycle.Classify(op, err), Err: err})
}

func (s *Session) device() (model.Device, bool) {
	if s.snap.Device == nil {
		return model.Device{}, false
	}
	return *s.snap.Device, true
}

func (s *Session) fetchArchiveControl() {
	dev, ok := s.device()
	if !ok {
		return
	}
	launch(s, lifecycle.OpFetchArchiveControl,
		func(ctx context.Context) (model.ArchiveControl, error) {
			return s.deps.Gateway.FetchArchiveControl(ctx, dev)
		},
		func(ac model.ArchiveControl, err error) {
			if err != nil {
				s.sideFailed(lifecycle.OpFetchArchiveControl, err)
				return
			}
			s.dispatch(lifecycle.Event{Kind: lifecycle.EvArchiveControlLoaded, Archive: ac})
		})
}

func (s *Session) fetchLiveSnapshot() {
	dev, ok := s.device()
	if !ok {
		return
	}
	launch(s, lifecycle.OpFetchLiveSnapshot,
		func(ctx context.Context) ([]byte, error) {
			return s.deps.Gateway.FetchLiveSnapshot(ctx, dev)
		},
		func(frame []byte, err error) {
			if err != nil {
				s.sideFailed(lifecycle.OpFetchLiveSnapshot, err)
				return
			}
			s.deps.Player.ShowFrame(frame)
		})
}

func (s *Session) fetchSecurityMarker() {
	dev, ok := s.device()
	if !ok {
		return
	}
	launch(s, lifecycle.OpFetchSecurityMarker,
		func(ctx context.Context) (string, error) {
			return s.deps.Gateway.FetchSecurityMarker(ctx, dev)
		},
		func(marker string, err error) {
			if err != nil {
				s.sideFailed(lifecycle.OpFetchSecurityMarker, err)
				return
			}
			s.deps.Player.ShowSecurityMarker(marker)
		})
}

func (s *Session) fetchDescription() {
	launch(s, lifecycle.OpFetchDescription,
		func(ctx context.Context) (model.Description, error) {
			return s.deps.Gateway.FetchShortDescription(ctx, s.target)
		},
		func(d model.Description, err error) {
			if err != nil {
				s.sideFailed(lifecycle.OpFetchDescription, err)
				return
			}
			s.deps.Player.ShowDescription(d)
		})
}

func (s *Session) cancelAll() {
	n := s.requests.CancelAll()
	s.steps.CancelAll()
	s.stepTarget = nil
	s.poll, s.pollTok = nil, ""
	s.primary = ""
	if n > 0 {
		s.logger.Debug().Int("count", n).Msg("pending requests canceled")
	}
}

func (s *Session) finish() {
	s.shutdown = true
	if dev, ok := s.device(); ok {
		if s.deps.Intents != nil {
			s.deps.Intents.RemoveIntent(dev.ID)
		}
		if s.deps.Frames != nil {
			s.deps.Frames.Forget(dev.ID)
		}
	}
	s.logger.Info().Msg("session invalidated")
	if s.deps.OnShutdown != nil {
		s.deps.OnShutdown(s.id)
	}
}
