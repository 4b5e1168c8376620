// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package keepalive

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ManuGH/vssplay/internal/bus"
	"github.com/ManuGH/vssplay/internal/domain/session/model"
	"github.com/ManuGH/vssplay/internal/domain/session/ports"
	"github.com/ManuGH/vssplay/internal/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var epoch = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

type reply struct {
	res model.HeartbeatResult
	err error
}

type fakeSender struct {
	mu       sync.Mutex
	replies  []reply
	payloads []model.KeepAlivePayload
}

func (f *fakeSender) push(r ...reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, r...)
}

func (f *fakeSender) SendHeartbeat(_ context.Context, p model.KeepAlivePayload) (model.HeartbeatResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)
	if len(f.replies) == 0 {
		return model.HeartbeatResult{Status: model.HeartbeatRunning}, nil
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r.res, r.err
}

func (f *fakeSender) sent() []model.KeepAlivePayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.KeepAlivePayload(nil), f.payloads...)
}

type fakeRefresher struct {
	calls int
	err   error
}

func (f *fakeRefresher) RefreshToken(context.Context) error {
	f.calls++
	return f.err
}

func newTestCoordinator(t *testing.T, sender *fakeSender, opts ...Option) (*Coordinator, *timer.FakeClock, ports.Subscription) {
	t.Helper()
	clock := timer.NewFakeClock(epoch)
	b := bus.NewMemoryBus()
	sub, err := b.Subscribe(context.Background(), ports.TopicKeepAliveStatus)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Close() })
	opts = append([]Option{WithClock(clock), WithPublisher(b)}, opts...)
	return New(DefaultConfig(), sender, opts...), clock, sub
}

func nextStatus(t *testing.T, sub ports.Subscription) StatusEvent {
	t.Helper()
	select {
	case msg := <-sub.C():
		ev, ok := msg.(StatusEvent)
		require.True(t, ok)
		return ev
	case <-time.After(time.Second):
		t.Fatal("no status event")
		return StatusEvent{}
	}
}

var playing = model.KeepAliveEntry{Mode: model.ModeLiveVideo, State: model.KeepAlivePlaying}

func TestFlushOnce_EmptyMapIsNotSent(t *testing.T) {
	sender := &fakeSender{}
	c, _, _ := newTestCoordinator(t, sender)
	require.NoError(t, c.FlushOnce(context.Background()))
	assert.Empty(t, sender.sent())
}

func TestSetIntent_ReplacesWholeEntry(t *testing.T) {
	c, _, _ := newTestCoordinator(t, &fakeSender{})
	archive := model.KeepAliveEntry{
		Mode: model.ModeArchiveVideo, State: model.KeepAlivePlaying,
		Archive: &model.ArchivePosition{Position: epoch, Scale: 1},
	}
	c.SetIntent("cam-1", archive)
	c.SetIntent("cam-1", playing)
	c.SetIntent("cam-2", archive)

	snap := c.Snapshot()
	assert.Equal(t, model.KeepAlivePayload{"cam-1": playing, "cam-2": archive}, snap)

	snap["cam-2"].Archive.Scale = 4
	assert.Equal(t, 1.0, c.Snapshot()["cam-2"].Archive.Scale, "snapshot must be a deep copy")

	c.RemoveIntent("cam-1")
	c.RemoveIntent("unknown")
	assert.Len(t, c.Snapshot(), 1)
}

func TestFlushOnce_SendsAllDevices(t *testing.T) {
	sender := &fakeSender{}
	c, _, _ := newTestCoordinator(t, sender)
	c.SetIntent("cam-1", playing)
	c.SetIntent("cam-2", model.KeepAliveEntry{Mode: model.ModeUnchanged, State: model.KeepAliveLoading})

	require.NoError(t, c.FlushOnce(context.Background()))
	require.Len(t, sender.sent(), 1)
	assert.Len(t, sender.sent()[0], 2)
	st, err := c.Status()
	assert.Equal(t, StatusRunning, st)
	assert.NoError(t, err)
}

func TestInterruption_StopsAfterGrace(t *testing.T) {
	sender := &fakeSender{}
	c, clock, sub := newTestCoordinator(t, sender)
	c.SetIntent("cam-1", playing)

	sender.push(reply{err: fmt.Errorf("dial: %w", ports.ErrNotReachable)})
	require.Error(t, c.FlushOnce(context.Background()))

	ev := nextStatus(t, sub)
	assert.Equal(t, StatusInterrupted, ev.Status)
	assert.ErrorIs(t, ev.Err, ports.ErrNotReachable)
	assert.Len(t, c.Snapshot(), 1, "intents survive interruption")

	clock.Advance(29 * time.Second)
	st, _ := c.Status()
	require.Equal(t, StatusInterrupted, st)

	clock.Advance(time.Second)
	ev = nextStatus(t, sub)
	assert.Equal(t, StatusStopped, ev.Status)
	assert.ErrorIs(t, ev.Err, ErrInterruptGraceExceeded)
}

func TestInterruption_RecoversBeforeGrace(t *testing.T) {
	sender := &fakeSender{}
	c, clock, sub := newTestCoordinator(t, sender)
	c.SetIntent("cam-1", playing)

	sender.push(reply{err: ports.ErrTimeout})
	_ = c.FlushOnce(context.Background())
	assert.Equal(t, StatusInterrupted, nextStatus(t, sub).Status)

	clock.Advance(10 * time.Second)
	require.NoError(t, c.FlushOnce(context.Background()))
	assert.Equal(t, StatusRunning, nextStatus(t, sub).Status)

	clock.Advance(time.Minute)
	st, _ := c.Status()
	assert.Equal(t, StatusRunning, st)
	assert.Zero(t, clock.Pending())
}

func TestInterruption_RepeatedFailuresKeepFirstTimestamp(t *testing.T) {
	sender := &fakeSender{}
	c, _, sub := newTestCoordinator(t, sender)
	c.SetIntent("cam-1", playing)

	for i := 0; i < 3; i++ {
		sender.push(reply{res: model.HeartbeatResult{Status: model.HeartbeatInterrupted, Reason: "busy"}})
		require.NoError(t, c.FlushOnce(context.Background()))
	}
	assert.Equal(t, StatusInterrupted, nextStatus(t, sub).Status)
	assert.Len(t, sub.C(), 0, "only the first interruption is published")
}

func TestFlushOnce_RejectedDoesNotInterrupt(t *testing.T) {
	sender := &fakeSender{}
	c, clock, sub := newTestCoordinator(t, sender)
	c.SetIntent("cam-1", playing)

	sender.push(
		reply{err: fmt.Errorf("decode: %w", ports.ErrBadResponse)},
		reply{err: ports.ErrUpstream},
	)
	require.ErrorIs(t, c.FlushOnce(context.Background()), ports.ErrBadResponse)
	require.ErrorIs(t, c.FlushOnce(context.Background()), ports.ErrUpstream)

	st, err := c.Status()
	assert.Equal(t, StatusRunning, st)
	assert.NoError(t, err)
	assert.Len(t, sub.C(), 0, "no status change published")
	assert.Zero(t, clock.Pending(), "no grace timer armed")
	assert.Len(t, c.Snapshot(), 1)
}

func TestFlushOnce_RequestTimeoutInterrupts(t *testing.T) {
	sender := &fakeSender{}
	c, _, sub := newTestCoordinator(t, sender)
	c.SetIntent("cam-1", playing)

	sender.push(reply{err: fmt.Errorf("post: %w", context.DeadlineExceeded)})
	require.Error(t, c.FlushOnce(context.Background()))
	assert.Equal(t, StatusInterrupted, nextStatus(t, sub).Status)
}

func TestFlushOnce_CanceledCallerDoesNotInterrupt(t *testing.T) {
	sender := &fakeSender{}
	c, _, sub := newTestCoordinator(t, sender)
	c.SetIntent("cam-1", playing)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sender.push(reply{err: context.Canceled})
	require.ErrorIs(t, c.FlushOnce(ctx), context.Canceled)
	st, _ := c.Status()
	assert.Equal(t, StatusRunning, st)
	assert.Len(t, sub.C(), 0)
}

func TestUnauthorized_RefreshesAndRetriesOnce(t *testing.T) {
	sender := &fakeSender{}
	ref := &fakeRefresher{}
	c, _, _ := newTestCoordinator(t, sender, WithRefresher(ref))
	c.SetIntent("cam-1", playing)

	sender.push(reply{err: ports.ErrUnauthorized})
	require.NoError(t, c.FlushOnce(context.Background()))
	assert.Equal(t, 1, ref.calls)
	assert.Len(t, sender.sent(), 2)
	st, _ := c.Status()
	assert.Equal(t, StatusRunning, st)
}

func TestUnauthorized_StopsWhenRefreshFails(t *testing.T) {
	sender := &fakeSender{}
	ref := &fakeRefresher{err: errors.New("refresh denied")}
	c, _, sub := newTestCoordinator(t, sender, WithRefresher(ref))
	c.SetIntent("cam-1", playing)

	sender.push(reply{err: ports.ErrUnauthorized})
	err := c.FlushOnce(context.Background())
	require.ErrorIs(t, err, ports.ErrUnauthorized)

	ev := nextStatus(t, sub)
	assert.Equal(t, StatusStopped, ev.Status)
	assert.ErrorIs(t, ev.Err, ports.ErrUnauthorized)
	assert.Len(t, sender.sent(), 1)
}

func TestServerStopped(t *testing.T) {
	sender := &fakeSender{}
	c, _, sub := newTestCoordinator(t, sender)
	c.SetIntent("cam-1", playing)

	sender.push(reply{res: model.HeartbeatResult{Status: model.HeartbeatStopped, Reason: "evicted"}})
	require.NoError(t, c.FlushOnce(context.Background()))
	ev := nextStatus(t, sub)
	assert.Equal(t, StatusStopped, ev.Status)
	assert.ErrorIs(t, ev.Err, ErrServerStopped)

	c.Reset()
	st, err := c.Status()
	assert.Equal(t, StatusRunning, st)
	assert.NoError(t, err)
}

func TestRun_FlushesOnChangeAndTick(t *testing.T) {
	sender := &fakeSender{}
	c, clock, _ := newTestCoordinator(t, sender)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	c.SetIntent("cam-1", playing)
	require.Eventually(t, func() bool { return len(sender.sent()) == 1 }, time.Second, 5*time.Millisecond)

	clock.Advance(10 * time.Second)
	require.Eventually(t, func() bool { return len(sender.sent()) == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
