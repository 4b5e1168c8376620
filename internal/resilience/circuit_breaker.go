// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package resilience guards gateway calls with a circuit breaker.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ManuGH/vssplay/internal/domain/session/ports"
	"github.com/ManuGH/vssplay/internal/metrics"
	"github.com/ManuGH/vssplay/internal/timer"
)

type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// ErrCircuitOpen is returned without calling the guarded function.
var ErrCircuitOpen = ports.ErrCircuitOpen

// Classifier decides whether an error counts against the breaker.
type Classifier func(error) bool

// CountsAsFailure trips on connectivity and upstream errors only. A service
// that answers with 401 or 404 is healthy, and a canceled call says nothing
// about the service.
func CountsAsFailure(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, ports.ErrUnauthorized), errors.Is(err, ports.ErrNotFound):
		return false
	}
	return true
}

// CircuitBreaker opens after threshold consecutive failures and lets a single
// trial through once resetTimeout has passed.
type CircuitBreaker struct {
	mu           sync.Mutex
	name         string
	state        State
	failures     int
	threshold    int
	resetTimeout time.Duration
	openedAt     time.Time
	probing      bool

	clock    timer.Clock
	classify Classifier
}

type Option func(*CircuitBreaker)

func WithClock(c timer.Clock) Option {
	return func(cb *CircuitBreaker) { cb.clock = c }
}

func WithClassifier(c Classifier) Option {
	return func(cb *CircuitBreaker) { cb.classify = c }
}

func NewCircuitBreaker(name string, threshold int, resetTimeout time.Duration, opts ...Option) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}

	cb := &CircuitBreaker{
		name:         name,
		state:        StateClosed,
		threshold:    threshold,
		resetTimeout: resetTimeout,
		clock:        timer.Real,
		classify:     CountsAsFailure,
	}
	for _, opt := range opts {
		opt(cb)
	}

	metrics.SetCircuitBreakerState(cb.name, string(cb.state))
	return cb
}

// Execute runs fn unless the breaker is open.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	trial, ok := cb.allow()
	if !ok {
		return ErrCircuitOpen
	}
	err := fn(ctx)
	cb.record(trial, err)
	return err
}

func (cb *CircuitBreaker) allow() (trial bool, ok bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return false, true
	case StateOpen:
		if cb.clock.Now().Sub(cb.openedAt) < cb.resetTimeout {
			return false, false
		}
		cb.transitionTo(StateHalfOpen)
	}
	if cb.probing {
		return false, false
	}
	cb.probing = true
	return true, true
}

func (cb *CircuitBreaker) record(trial bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if trial {
		cb.probing = false
	}
	if !cb.classify(err) {
		if err == nil || trial {
			cb.failures = 0
			cb.transitionTo(StateClosed)
		}
		return
	}

	cb.failures++
	switch {
	case cb.state == StateHalfOpen:
		cb.trip()
	case cb.state == StateClosed && cb.failures >= cb.threshold:
		cb.trip()
	}
}

// trip opens the breaker. Caller must hold lock.
func (cb *CircuitBreaker) trip() {
	metrics.RecordCircuitBreakerTrip(cb.name)
	cb.transitionTo(StateOpen)
}

// transitionTo handles state transitions and updates metrics.
// Caller must hold lock.
func (cb *CircuitBreaker) transitionTo(newState State) {
	if cb.state == newState {
		return
	}
	cb.state = newState
	if newState == StateOpen {
		cb.openedAt = cb.clock.Now()
	}
	metrics.SetCircuitBreakerState(cb.name, string(newState))
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
