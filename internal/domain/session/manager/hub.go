// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ManuGH/vssplay/internal/bus"
	"github.com/ManuGH/vssplay/internal/domain/session/model"
	"github.com/ManuGH/vssplay/internal/domain/session/ports"
	"github.com/ManuGH/vssplay/internal/framecache"
	"github.com/ManuGH/vssplay/internal/keepalive"
	"github.com/ManuGH/vssplay/internal/log"
	"github.com/ManuGH/vssplay/internal/timer"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrHubClosed is returned by Open after Close.
var ErrHubClosed = errors.New("hub closed")

type HubConfig struct {
	Session        Config
	KeepAlive      keepalive.Config
	FrameCacheSize int
}

func DefaultHubConfig() HubConfig {
	return HubConfig{
		Session:        DefaultConfig(),
		KeepAlive:      keepalive.DefaultConfig(),
		FrameCacheSize: 256,
	}
}

type HubDeps struct {
	Gateway   ports.Gateway
	Heartbeat ports.HeartbeatSender
	Refresher ports.TokenRefresher
	Clock     timer.Clock
}

// Hub owns the process-wide pieces shared by sessions: the keep-alive
// coordinator, the event bus and the archive frame cache.
type Hub struct {
	cfg    HubConfig
	deps   HubDeps
	logger zerolog.Logger

	bus    *bus.MemoryBus
	keep   *keepalive.Coordinator
	frames *framecache.Cache

	workers workerGroup

	mu       sync.Mutex
	closed   bool
	sessions map[string]*Session
}

func NewHub(cfg HubConfig, deps HubDeps) *Hub {
	deps.Clock = timer.Or(deps.Clock)
	b := bus.NewMemoryBus()
	opts := []keepalive.Option{keepalive.WithClock(deps.Clock), keepalive.WithPublisher(b)}
	if deps.Refresher != nil {
		opts = append(opts, keepalive.WithRefresher(deps.Refresher))
	}
	return &Hub{
		cfg:      cfg,
		deps:     deps,
		logger:   log.WithComponent("hub"),
		bus:      b,
		keep:     keepalive.New(cfg.KeepAlive, deps.Heartbeat, opts...),
		frames:   framecache.New(cfg.FrameCacheSize, deps.Gateway.FetchArchiveSnapshot),
		sessions: map[string]*Session{},
	}
}

func (h *Hub) Bus() *bus.MemoryBus               { return h.bus }
func (h *Hub) KeepAlive() *keepalive.Coordinator { return h.keep }

// Run drives the keep-alive coordinator and fans its status changes out to
// the open sessions until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	sub, err := h.bus.Subscribe(ctx, ports.TopicKeepAliveStatus)
	if err != nil {
		return err
	}
	defer sub.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return h.keep.Run(gctx) })
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case msg, ok := <-sub.C():
				if !ok {
					return nil
				}
				if ev, ok := msg.(keepalive.StatusEvent); ok {
					h.onKeepAlive(ev)
				}
			}
		}
	})
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (h *Hub) onKeepAlive(ev keepalive.StatusEvent) {
	h.logger.Info().Str(log.FieldKeepAliveStatus, ev.Status.String()).Err(ev.Err).Msg("keepalive status changed")
	for _, s := range h.snapshot() {
		switch ev.Status {
		case keepalive.StatusStopped:
			s.KeepAliveStopped(ev.Err)
		case keepalive.StatusInterrupted:
			s.KeepAliveInterrupted(ev.Err)
		}
	}
}

// Open creates a session for target and starts it. The session runs until it
// is stopped twice, the hub is closed, or ctx is done.
// OpenOption configures a session opened by Hub.Open.
type OpenOption func(*Initial)

// WithViewMode starts snapshot polling at interval once the session streams.
func WithViewMode(interval time.Duration) OpenOption {
	return func(in *Initial) { in.ViewMode, in.ViewInterval = true, interval }
}

// WithArchiveDepth seeks depth seconds behind live once the archive bounds
// are known. Non-negative depths are ignored.
func WithArchiveDepth(depth int) OpenOption {
	return func(in *Initial) {
		if depth < 0 {
			in.ArchiveDepth = depth
		}
	}
}

func (h *Hub) Open(ctx context.Context, target model.SearchResult, player ports.Player, delegate ports.Delegate, opts ...OpenOption) (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHubClosed
	}
	if st, _ := h.keep.Status(); st == keepalive.StatusStopped {
		h.keep.Reset()
	}

	var initial Initial
	for _, opt := range opts {
		opt(&initial)
	}
	s := NewSession(target, h.cfg.Session, Deps{
		Gateway:    h.deps.Gateway,
		Player:     player,
		Delegate:   NewBusDelegate(h.bus, delegate),
		Intents:    h.keep,
		Clock:      h.deps.Clock,
		Frames:     h.frames,
		OnShutdown: h.forget,
		Initial:    initial,
	})
	if !h.workers.Go(func() {
		if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn().Err(err).Msg("session ended")
		}
	}) {
		return nil, ErrHubClosed
	}
	h.sessions[s.ID()] = s
	s.Start()
	return s, nil
}

func (h *Hub) forget(id string) {
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
}

func (h *Hub) Get(id string) (*Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	return s, ok
}

func (h *Hub) snapshot() []*Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		out = append(out, s)
	}
	return out
}

// Sessions returns views of the open sessions ordered by id.
func (h *Hub) Sessions() []View {
	all := h.snapshot()
	out := make([]View, 0, len(all))
	for _, s := range all {
		out = append(out, s.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Close invalidates every session and waits for their loops to exit.
func (h *Hub) Close(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()

	for _, s := range h.snapshot() {
		s.Close()
	}
	return h.workers.CloseAndWait(ctx)
}
