// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ManuGH/vssplay/internal/domain/session/lifecycle"
	"github.com/ManuGH/vssplay/internal/domain/session/model"
	"github.com/ManuGH/vssplay/internal/metrics"
	"github.com/ManuGH/vssplay/internal/timer"
)

// NextPollDelay is the wait before the next still after a fetch that took
// rtt. It never drops below one percent of interval.
func NextPollDelay(interval, rtt time.Duration) time.Duration {
	return max(interval-rtt, interval/100)
}

// poller fetches stills at a fixed cadence while view mode is on. At most one
// fetch is in flight.
type poller struct {
	s        *Session
	device   model.Device
	archive  *model.ArchiveControl
	depth    int
	interval time.Duration
	started  time.Time

	ctx      context.Context
	cancel   context.CancelFunc
	inFlight atomic.Bool

	mu    sync.Mutex
	timer timer.Timer
}

func (s *Session) startPoller(archive bool, depth int, interval time.Duration) {
	s.stopPoller()
	dev, ok := s.device()
	if !ok {
		return
	}
	if interval <= 0 {
		interval = s.cfg.Limits.ViewModeInterval
	}
	p := &poller{
		s:        s,
		device:   dev,
		interval: interval,
		started:  s.clock.Now(),
	}
	if archive {
		p.archive = s.snap.Archive
		p.depth = depth
	}
	p.ctx, p.cancel = context.WithCancel(s.runCtx)
	s.poll = p
	s.pollTok = s.requests.Register(lifecycle.OpViewMode, p.stop)
	p.schedule(0)
}

func (s *Session) stopPoller() {
	if s.poll == nil {
		return
	}
	s.requests.Cancel(s.pollTok)
	s.poll, s.pollTok = nil, ""
}

func (p *poller) stop() {
	p.cancel()
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.mu.Unlock()
}

func (p *poller) schedule(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctx.Err() != nil {
		return
	}
	p.timer = p.s.clock.AfterFunc(d, p.tick)
}

func (p *poller) tick() {
	if p.ctx.Err() != nil || !p.inFlight.CompareAndSwap(false, true) {
		return
	}
	go p.fetch()
}

// currentDepth advances an archive position with wall time.
func (p *poller) currentDepth(now time.Time) int {
	return p.depth + int(now.Sub(p.started)/time.Second)
}

func (p *poller) fetch() {
	clock := p.s.clock
	begin := clock.Now()

	var (
		frame []byte
		err   error
		live  bool
		op    = lifecycle.OpViewMode
	)
	if p.archive == nil {
		frame, err = p.s.deps.Gateway.FetchLiveSnapshot(p.ctx, p.device)
	} else {
		op = lifecycle.OpArchiveViewMode
		depth := p.currentDepth(begin)
		if depth >= 0 {
			live = true
		} else {
			ts := p.archive.Timestamp(depth).Unix()
			if p.s.deps.Frames != nil {
				frame, err = p.s.deps.Frames.Get(p.ctx, p.device, ts)
			} else {
				frame, err = p.s.deps.Gateway.FetchArchiveSnapshot(p.ctx, p.device, ts)
			}
		}
	}
	rtt := clock.Now().Sub(begin)
	metrics.ViewModeFetchSeconds.Observe(rtt.Seconds())

	if p.ctx.Err() != nil {
		p.inFlight.Store(false)
		return
	}
	_ = p.s.post(func() { p.deliver(frame, err, op, live) })
	// Free the slot before rescheduling so an early tick is not dropped.
	p.inFlight.Store(false)
	if !live {
		p.schedule(NextPollDelay(p.interval, rtt))
	}
}

// deliver runs on the session goroutine.
func (p *poller) deliver(frame []byte, err error, op string, live bool) {
	s := p.s
	if s.poll != p {
		return
	}
	switch {
	case live:
		s.dispatch(lifecycle.Event{Kind: lifecycle.EvResumeLive})
	case err != nil:
		s.sideFailed(op, err)
	default:
		s.deps.Player.ShowFrame(frame)
	}
}
