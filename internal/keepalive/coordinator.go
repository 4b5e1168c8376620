// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package keepalive aggregates per-device playback intents and reports them
// to the server on a fixed interval and on every change.
package keepalive

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ManuGH/vssplay/internal/domain/session/model"
	"github.com/ManuGH/vssplay/internal/domain/session/ports"
	"github.com/ManuGH/vssplay/internal/log"
	"github.com/ManuGH/vssplay/internal/metrics"
	"github.com/ManuGH/vssplay/internal/timer"
	"github.com/rs/zerolog"
)

type Config struct {
	Interval       time.Duration
	InterruptGrace time.Duration
	RequestTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{Interval: 10 * time.Second, InterruptGrace: 30 * time.Second, RequestTimeout: 5 * time.Second}
}

// Publisher receives status events. *bus.MemoryBus satisfies it.
type Publisher interface {
	TryPublish(topic string, msg interface{}) error
}

// Coordinator owns the intent map. Writers replace whole entries under the
// write lock; the flusher copies the map under the read lock.
type Coordinator struct {
	cfg       Config
	sender    ports.HeartbeatSender
	refresher ports.TokenRefresher
	clock     timer.Clock
	pub       Publisher
	logger    zerolog.Logger

	mu      sync.RWMutex
	intents model.KeepAlivePayload

	kick chan struct{}

	statusMu      sync.Mutex
	status        Status
	statusErr     error
	interruptedAt time.Time
	grace         timer.Timer

	flushMu sync.Mutex
}

type Option func(*Coordinator)

func WithClock(c timer.Clock) Option { return func(k *Coordinator) { k.clock = c } }

func WithPublisher(p Publisher) Option { return func(k *Coordinator) { k.pub = p } }

func WithRefresher(r ports.TokenRefresher) Option { return func(k *Coordinator) { k.refresher = r } }

func New(cfg Config, sender ports.HeartbeatSender, opts ...Option) *Coordinator {
	c := &Coordinator{
		cfg:     cfg,
		sender:  sender,
		clock:   timer.Real,
		intents: model.KeepAlivePayload{},
		kick:    make(chan struct{}, 1),
		logger:  log.WithComponent("keepalive"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetIntent replaces the entry for device and schedules a flush.
func (c *Coordinator) SetIntent(device model.DeviceID, entry model.KeepAliveEntry) {
	c.mu.Lock()
	c.intents[device] = entry.Clone()
	n := len(c.intents)
	c.mu.Unlock()
	metrics.KeepAliveDevices.Set(float64(n))
	c.trigger()
}

// RemoveIntent drops device from the map and schedules a flush.
func (c *Coordinator) RemoveIntent(device model.DeviceID) {
	c.mu.Lock()
	_, ok := c.intents[device]
	delete(c.intents, device)
	n := len(c.intents)
	c.mu.Unlock()
	if ok {
		metrics.KeepAliveDevices.Set(float64(n))
		c.trigger()
	}
}

// Snapshot returns a deep copy of the intent map.
func (c *Coordinator) Snapshot() model.KeepAlivePayload {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(model.KeepAlivePayload, len(c.intents))
	for id, e := range c.intents {
		out[id] = e.Clone()
	}
	return out
}

func (c *Coordinator) trigger() {
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// Status returns the current status and, when stopped, its cause.
func (c *Coordinator) Status() (Status, error) {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	return c.status, c.statusErr
}

// Run flushes on every interval tick and every intent change until ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	ticker := c.clock.NewTicker(c.cfg.Interval)
	defer ticker.Stop()
	defer c.stopGrace()

	c.logger.Info().Dur("interval", c.cfg.Interval).Msg("keepalive coordinator started")
	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("keepalive coordinator stopped")
			return ctx.Err()
		case <-ticker.C():
		case <-c.kick:
		}
		if err := c.FlushOnce(ctx); err != nil && ctx.Err() == nil {
			c.logger.Debug().Err(err).Msg("keepalive flush failed")
		}
	}
}

// FlushOnce sends the current intent map once. An empty map is not sent.
func (c *Coordinator) FlushOnce(ctx context.Context) error {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()

	payload := c.Snapshot()
	if len(payload) == 0 {
		return nil
	}

	res, err := c.send(ctx, payload)
	if isUnauthorized(err) && c.refresher != nil {
		if rerr := c.refresher.RefreshToken(ctx); rerr != nil {
			c.logger.Warn().Err(rerr).Msg("token refresh failed")
		} else {
			res, err = c.send(ctx, c.Snapshot())
		}
	}

	switch {
	case isUnauthorized(err):
		metrics.KeepAliveFlushesTotal.WithLabelValues("unauthorized").Inc()
		cause := err
		if cause == nil {
			cause = ports.ErrUnauthorized
		}
		c.setStopped(cause)
		return cause
	case err != nil && isConnectivity(ctx, err):
		metrics.KeepAliveFlushesTotal.WithLabelValues("error").Inc()
		c.markInterrupted(err)
		return err
	case err != nil:
		// Reached but refused. The status stays as it was and the next
		// flush tries again.
		metrics.KeepAliveFlushesTotal.WithLabelValues("rejected").Inc()
		if ctx.Err() == nil {
			c.logger.Warn().Err(err).Msg("keepalive rejected")
		}
		return err
	case res.Status == model.HeartbeatStopped:
		metrics.KeepAliveFlushesTotal.WithLabelValues("stopped").Inc()
		c.setStopped(fmt.Errorf("%w: %s", ErrServerStopped, res.Reason))
		return nil
	case res.Status == model.HeartbeatInterrupted:
		metrics.KeepAliveFlushesTotal.WithLabelValues("interrupted").Inc()
		c.markInterrupted(fmt.Errorf("server reported interruption: %s", res.Reason))
		return nil
	default:
		metrics.KeepAliveFlushesTotal.WithLabelValues("ok").Inc()
		c.markRunning()
		return nil
	}
}

func isUnauthorized(err error) bool {
	return errors.Is(err, ports.ErrUnauthorized)
}

// isConnectivity reports whether err means the server was not reached. A
// request timeout counts unless the caller itself gave up.
func isConnectivity(ctx context.Context, err error) bool {
	if ports.IsConnectivity(err) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil
}

func (c *Coordinator) send(ctx context.Context, payload model.KeepAlivePayload) (model.HeartbeatResult, error) {
	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}
	return c.sender.SendHeartbeat(ctx, payload)
}

func (c *Coordinator) markRunning() {
	c.statusMu.Lock()
	if c.status == StatusRunning {
		c.statusMu.Unlock()
		return
	}
	c.status, c.statusErr = StatusRunning, nil
	c.interruptedAt = time.Time{}
	if c.grace != nil {
		c.grace.Stop()
		c.grace = nil
	}
	c.statusMu.Unlock()
	c.publish(StatusRunning, nil)
}

// markInterrupted keeps the intent map and arms the grace timer on the first
// failure. Later failures check the wall clock so a suspended process still
// gives up once resumed.
func (c *Coordinator) markInterrupted(cause error) {
	c.statusMu.Lock()
	now := c.clock.Now()
	switch c.status {
	case StatusInterrupted:
		expired := now.Sub(c.interruptedAt) >= c.cfg.InterruptGrace
		c.statusMu.Unlock()
		if expired {
			c.setStopped(fmt.Errorf("%w: %v", ErrInterruptGraceExceeded, cause))
		}
		return
	case StatusStopped:
		c.statusMu.Unlock()
		return
	}
	c.status, c.statusErr = StatusInterrupted, cause
	c.interruptedAt = now
	c.grace = c.clock.AfterFunc(c.cfg.InterruptGrace, c.graceExpired)
	c.statusMu.Unlock()

	c.logger.Warn().Err(cause).Dur("grace", c.cfg.InterruptGrace).Msg("keepalive interrupted")
	c.publish(StatusInterrupted, cause)
}

func (c *Coordinator) graceExpired() {
	c.statusMu.Lock()
	if c.status != StatusInterrupted || c.clock.Now().Sub(c.interruptedAt) < c.cfg.InterruptGrace {
		c.statusMu.Unlock()
		return
	}
	cause := c.statusErr
	c.statusMu.Unlock()
	c.setStopped(fmt.Errorf("%w: %v", ErrInterruptGraceExceeded, cause))
}

func (c *Coordinator) setStopped(cause error) {
	c.statusMu.Lock()
	if c.status == StatusStopped {
		c.statusMu.Unlock()
		return
	}
	c.status, c.statusErr = StatusStopped, cause
	if c.grace != nil {
		c.grace.Stop()
		c.grace = nil
	}
	c.statusMu.Unlock()

	c.logger.Error().Err(cause).Msg("keepalive stopped")
	c.publish(StatusStopped, cause)
}

// Reset returns a stopped coordinator to running so new sessions can start.
func (c *Coordinator) Reset() {
	c.statusMu.Lock()
	c.status, c.statusErr = StatusRunning, nil
	c.interruptedAt = time.Time{}
	c.statusMu.Unlock()
	metrics.SetKeepAliveStatus(StatusRunning.String())
}

func (c *Coordinator) stopGrace() {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	if c.grace != nil {
		c.grace.Stop()
		c.grace = nil
	}
}

func (c *Coordinator) publish(s Status, err error) {
	metrics.SetKeepAliveStatus(s.String())
	if c.pub == nil {
		return
	}
	ev := StatusEvent{Status: s, Err: err, At: c.clock.Now()}
	if perr := c.pub.TryPublish(ports.TopicKeepAliveStatus, ev); perr != nil {
		c.logger.Warn().Err(perr).Str(log.FieldKeepAliveStatus, s.String()).Msg("status event dropped")
	}
}

var _ ports.IntentSink = (*Coordinator)(nil)
