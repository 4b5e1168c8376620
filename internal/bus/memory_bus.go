// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package bus is an in-process topic fan-out for status and session events.
package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ManuGH/vssplay/internal/domain/session/ports"
	"github.com/ManuGH/vssplay/internal/log"
	"github.com/ManuGH/vssplay/internal/metrics"
)

// ErrFull is returned by TryPublish when a subscriber buffer is full.
var ErrFull = errors.New("subscriber buffer full")

// MemoryBus delivers each message to every subscriber of its topic. It is not
// durable; delivery is best effort while the publish context is active.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[string][]*memSub
	buffer int
}

const (
	dropLogEvery  = 100
	defaultBuffer = 64
)

var dropCount atomic.Uint64

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string][]*memSub), buffer: defaultBuffer}
}

func publishDropReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrFull):
		return "full"
	default:
		return "context_done"
	}
}

func (b *MemoryBus) snapshot(topic string) []*memSub {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]*memSub(nil), b.subs[topic]...)
}

func (b *MemoryBus) dropped(topic string, err error) {
	reason := publishDropReason(err)
	metrics.IncBusDropReason(topic, reason)
	if count := dropCount.Add(1); count%dropLogEvery == 0 {
		log.L().Warn().
			Str("topic", topic).
			Str("reason", reason).
			Uint64("dropped", count).
			Msg("memory bus dropped messages")
	}
}

// Publish blocks until every subscriber has the message or ctx is done.
func (b *MemoryBus) Publish(ctx context.Context, topic string, msg interface{}) error {
	if ctx == nil {
		return fmt.Errorf("publish context is nil")
	}
	for _, s := range b.snapshot(topic) {
		if err := s.deliver(ctx, msg); err != nil {
			b.dropped(topic, err)
			return fmt.Errorf("publish topic %q: %w", topic, err)
		}
	}
	return nil
}

// TryPublish delivers without blocking, skipping subscribers whose buffer is
// full. It returns ErrFull if any subscriber missed the message.
func (b *MemoryBus) TryPublish(topic string, msg interface{}) error {
	var missed bool
	for _, s := range b.snapshot(topic) {
		if !s.offer(msg) {
			missed = true
			b.dropped(topic, ErrFull)
		}
	}
	if missed {
		return fmt.Errorf("publish topic %q: %w", topic, ErrFull)
	}
	return nil
}

// Subscribe registers a subscriber. The subscription closes itself when ctx
// is done.
func (b *MemoryBus) Subscribe(ctx context.Context, topic string) (ports.Subscription, error) {
	if ctx == nil {
		return nil, fmt.Errorf("subscribe context is nil")
	}
	s := &memSub{b: b, topic: topic, ch: make(chan interface{}, b.buffer), done: make(chan struct{})}

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], s)
	b.mu.Unlock()

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				_ = s.Close()
			case <-s.done:
			}
		}()
	}
	return s, nil
}

type memSub struct {
	b     *MemoryBus
	topic string
	ch    chan interface{}

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func (s *memSub) deliver(ctx context.Context, msg interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	select {
	case s.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *memSub) offer(msg interface{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}

func (s *memSub) C() <-chan interface{} {
	return s.ch
}

func (s *memSub) Close() error {
	s.b.mu.Lock()
	lst := s.b.subs[s.topic]
	out := lst[:0]
	for _, c := range lst {
		if c != s {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		delete(s.b.subs, s.topic)
	} else {
		s.b.subs[s.topic] = out
	}
	s.b.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)
	close(s.ch)
	return nil
}

var _ ports.Bus = (*MemoryBus)(nil)
