// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/ManuGH/vssplay/internal/domain/session/lifecycle"
	"github.com/ManuGH/vssplay/internal/domain/session/model"
	"github.com/ManuGH/vssplay/internal/domain/session/ports"
	"github.com/ManuGH/vssplay/internal/framecache"
	"github.com/ManuGH/vssplay/internal/log"
	"github.com/ManuGH/vssplay/internal/metrics"
	"github.com/ManuGH/vssplay/internal/timer"
	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const inboxSize = 64

// ErrSessionClosed is returned when posting to a session whose loop ended.
var ErrSessionClosed = errors.New("session closed")

// Deps are the collaborators of a session. Gateway is required.
type Deps struct {
	Gateway  ports.Gateway
	Player   ports.Player
	Delegate ports.Delegate
	Intents  ports.IntentSink
	Clock    timer.Clock
	Frames   *framecache.Cache
	// OnShutdown runs on the session goroutine once the session is invalidated.
	OnShutdown func(id string)
	// Initial is applied once the session first streams live.
	Initial Initial
}

// Initial holds playback requested before the session has connected. View
// mode is switched on when live streaming starts; the archive seek waits for
// the archive bounds as well.
type Initial struct {
	ViewMode     bool
	ViewInterval time.Duration
	// ArchiveDepth is seconds behind live. Zero stays live.
	ArchiveDepth int
}

// View is a read-only copy of session state for other goroutines.
type View struct {
	ID        string                `json:"id"`
	Camera    string                `json:"camera"`
	State     string                `json:"state"`
	Device    model.DeviceID        `json:"device,omitempty"`
	StreamURL string                `json:"streamUrl,omitempty"`
	Depth     int                   `json:"depth"`
	Archive   *model.ArchiveControl `json:"archive,omitempty"`
	ViewMode  bool                  `json:"viewMode"`
	Budgets   model.Budgets         `json:"budgets"`
	Pending   int                   `json:"pending"`
	UpdatedAt time.Time             `json:"updatedAt"`
	kind      model.StateKind
}

// Kind is the state kind of the view.
func (v View) Kind() model.StateKind { return v.kind }

// Session drives one camera. All state is owned by the Run goroutine; public
// methods post events to it and return immediately.
type Session struct {
	id     string
	target model.SearchResult
	cfg    Config
	deps   Deps
	clock  timer.Clock
	logger zerolog.Logger

	inbox   chan func()
	done    chan struct{}
	started atomic.Bool

	// Owned by the loop.
	runCtx     context.Context
	snap       lifecycle.Snapshot
	requests   *Registry
	primary    Token
	backoff    *backoff.ExponentialBackOff
	poll       *poller
	pollTok    Token
	steps      *timer.Debouncer
	stepTarget *int
	shutdown   bool
	initial    Initial

	view atomic.Pointer[View]
}

// NewSession builds a session for target. It does nothing until Run.
func NewSession(target model.SearchResult, cfg Config, deps Deps) *Session {
	if deps.Player == nil {
		deps.Player = noopPlayer{}
	}
	if deps.Delegate == nil {
		deps.Delegate = noopDelegate{}
	}
	clock := timer.Or(deps.Clock)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.ConnectBackoffInitial
	bo.MaxInterval = cfg.ConnectBackoffMax
	bo.RandomizationFactor = cfg.ConnectJitter
	bo.Reset()

	s := &Session{
		id:       uuid.NewString(),
		target:   target,
		cfg:      cfg,
		deps:     deps,
		clock:    clock,
		inbox:    make(chan func(), inboxSize),
		done:     make(chan struct{}),
		requests: NewRegistry(),
		backoff:  bo,
		steps:    timer.NewDebouncer(clock, cfg.StepDebounce),
		initial:  deps.Initial,
	}
	s.logger = log.Derive(func(c *zerolog.Context) {
		*c = c.Str(log.FieldComponent, "session").
			Str(log.FieldSessionID, s.id).
			Str("camera", target.CameraID)
	})
	s.publishView()
	return s
}

func (s *Session) ID() string { return s.id }

// Done is closed when the session loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Snapshot returns the latest published state.
func (s *Session) Snapshot() View { return *s.view.Load() }

// Run processes events until the session is invalidated or ctx is done. On
// ctx cancellation the session is stopped and invalidated first.
func (s *Session) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New("session already running")
	}
	defer close(s.done)
	metrics.SessionsActive.Inc()
	defer metrics.SessionsActive.Dec()
	s.runCtx = ctx
	for {
		select {
		case fn := <-s.inbox:
			fn()
		case <-ctx.Done():
			s.dispatch(lifecycle.Event{Kind: lifecycle.EvStop})
			s.dispatch(lifecycle.Event{Kind: lifecycle.EvStop})
			return ctx.Err()
		}
		if s.shutdown {
			return nil
		}
	}
}

// post queues fn for the loop. It never blocks once the loop has exited.
func (s *Session) post(fn func()) error {
	select {
	case s.inbox <- fn:
		return nil
	case <-s.done:
		return ErrSessionClosed
	}
}

func (s *Session) send(ev lifecycle.Event) {
	ev.At = s.clock.Now()
	if err := s.post(func() { s.dispatch(ev) }); err != nil {
		s.logger.Debug().Str(log.FieldEvent, ev.Kind.String()).Msg("event after session end dropped")
	}
}

func (s *Session) Start()   { s.send(lifecycle.Event{Kind: lifecycle.EvStart}) }
func (s *Session) Stop()    { s.send(lifecycle.Event{Kind: lifecycle.EvStop}) }
func (s *Session) Refresh() { s.send(lifecycle.Event{Kind: lifecycle.EvRefresh}) }
func (s *Session) Pause()   { s.send(lifecycle.Event{Kind: lifecycle.EvPause}) }
func (s *Session) Resume()  { s.send(lifecycle.Event{Kind: lifecycle.EvResume}) }

// Close stops and invalidates the session.
func (s *Session) Close() {
	s.Stop()
	s.Stop()
}

// SetViewMode switches between video and periodic stills. A zero interval
// selects the configured default.
func (s *Session) SetViewMode(on bool, interval time.Duration) {
	s.send(lifecycle.Event{Kind: lifecycle.EvSetViewMode, ViewMode: on, Interval: interval})
}

// PlayArchive seeks to depth seconds behind live. Depths at or past live
// resume live streaming.
func (s *Session) PlayArchive(depth int) {
	s.send(lifecycle.Event{Kind: lifecycle.EvPlayArchive, Depth: depth})
}

func (s *Session) ResumeLive() { s.send(lifecycle.Event{Kind: lifecycle.EvResumeLive}) }

func (s *Session) EnterBackground() { s.send(lifecycle.Event{Kind: lifecycle.EvBackground}) }
func (s *Session) EnterForeground() { s.send(lifecycle.Event{Kind: lifecycle.EvForeground}) }

// ReportPlaybackFailure is called by the player when decoding fails.
func (s *Session) ReportPlaybackFailure(err error) {
	s.send(lifecycle.Event{Kind: lifecycle.EvPlaybackFailed, Err: err, ErrKind: classify(err)})
}

// KeepAliveStopped forces the session to stop because the keep-alive channel
// ended.
func (s *Session) KeepAliveStopped(err error) {
	s.send(lifecycle.Event{Kind: lifecycle.EvKeepAliveStopped, Err: err, ErrKind: classify(err)})
}

// KeepAliveInterrupted tells the host that the keep-alive channel is degraded.
func (s *Session) KeepAliveInterrupted(err error) {
	_ = s.post(func() {
		if !isLive(model.KindOf(s.snap.State)) {
			return
		}
		s.deps.Delegate.Advise(s.id, model.Advisory{
			Severity: model.SeverityWarning,
			Message:  "connection to the server is unstable",
		})
		s.logger.Warn().Err(err).Msg("keepalive interrupted")
	})
}

func isLive(k model.StateKind) bool {
	return k != model.StateNone && !k.IsTerminal()
}

// classify keeps only classifications that override the event's own kind.
func classify(err error) model.ErrorKind {
	return lifecycle.Classify("", err)
}

func (s *Session) dispatch(ev lifecycle.Event) {
	if ev.At.IsZero() {
		ev.At = s.clock.Now()
	}
	prior := s.snap.State
	out := lifecycle.Apply(s.snap, ev, s.cfg.Limits)
	s.snap = out.Next

	for _, f := range out.Faults {
		metrics.SessionFaultsTotal.Inc()
		s.logger.Error().Err(f).Str(log.FieldEvent, ev.Kind.String()).Msg("illegal state transition")
	}
	if out.Dropped {
		s.logger.Debug().
			Str(log.FieldEvent, ev.Kind.String()).
			Str(log.FieldOldState, model.KindOf(prior).String()).
			Msg("event ignored")
		return
	}

	from := model.KindOf(prior)
	for _, to := range out.Path {
		metrics.RecordTransition(from.String(), to.String())
		s.logger.Debug().
			Str(log.FieldEvent, ev.Kind.String()).
			Str(log.FieldOldState, from.String()).
			Str(log.FieldNewState, to.String()).
			Msg("state transition")
		from = to
	}
	for _, fx := range out.Effects {
		s.execute(fx)
	}
	s.publishView()
	s.applyInitial()
}

// applyInitial issues the pending initial requests once their preconditions
// hold. Each request is cleared before it is dispatched.
func (s *Session) applyInitial() {
	if _, ok := s.snap.State.(model.Streaming); !ok {
		return
	}
	if in := s.initial; in.ViewMode {
		s.initial.ViewMode = false
		s.dispatch(lifecycle.Event{Kind: lifecycle.EvSetViewMode, ViewMode: true, Interval: in.ViewInterval})
	}
	if depth := s.initial.ArchiveDepth; depth < 0 && s.snap.Archive != nil {
		s.initial.ArchiveDepth = 0
		if _, ok := s.snap.State.(model.Streaming); !ok {
			return
		}
		s.logger.Debug().Int("depth", depth).Msg("applying initial archive seek")
		s.dispatch(lifecycle.Event{Kind: lifecycle.EvPlayArchive, Depth: depth})
	}
}

func (s *Session) publishView() {
	v := View{
		ID:        s.id,
		Camera:    s.target.CameraID,
		kind:      model.KindOf(s.snap.State),
		Budgets:   s.snap.Budgets,
		Pending:   s.requests.Pending(),
		UpdatedAt: s.clock.Now(),
	}
	v.State = v.kind.String()
	if s.snap.Device != nil {
		v.Device = s.snap.Device.ID
	}
	if s.snap.Archive != nil {
		ac := *s.snap.Archive
		v.Archive = &ac
	}
	switch st := s.snap.State.(type) {
	case model.Streaming:
		v.StreamURL, v.ViewMode = st.StreamURL, st.ViewMode
	case model.Paused:
		v.StreamURL, v.ViewMode, v.Depth = st.StreamURL, st.ViewMode, st.ArchiveDepth
	case model.PlayingArchive:
		v.StreamURL, v.ViewMode, v.Depth = st.LiveStreamURL, st.ViewMode, st.DepthSeconds
	}
	s.view.Store(&v)
}
