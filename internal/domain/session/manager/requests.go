// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"context"
	"sync"

	"github.com/ManuGH/vssplay/internal/metrics"
	"github.com/google/uuid"
)

// Token identifies a registered request.
type Token string

type pending struct {
	op     string
	cancel context.CancelFunc
}

// Registry tracks in-flight requests of one session. A completion is only
// honored when its token is still registered, so results of canceled or
// superseded requests are dropped.
type Registry struct {
	mu      sync.Mutex
	pending map[Token]pending
}

func NewRegistry() *Registry {
	return &Registry{pending: map[Token]pending{}}
}

// Register stores cancel under a fresh token.
func (r *Registry) Register(op string, cancel context.CancelFunc) Token {
	tok := Token(uuid.NewString())
	r.mu.Lock()
	r.pending[tok] = pending{op: op, cancel: cancel}
	r.mu.Unlock()
	metrics.PendingRequests.Inc()
	return tok
}

// Complete removes tok and reports whether it was still pending.
func (r *Registry) Complete(tok Token) bool {
	return r.take(tok)
}

// Cancel aborts tok if it is pending.
func (r *Registry) Cancel(tok Token) bool {
	if tok == "" {
		return false
	}
	return r.take(tok)
}

func (r *Registry) take(tok Token) bool {
	r.mu.Lock()
	p, ok := r.pending[tok]
	delete(r.pending, tok)
	r.mu.Unlock()
	if !ok {
		return false
	}
	metrics.PendingRequests.Dec()
	p.cancel()
	return true
}

// CancelAll aborts every pending request and returns how many there were.
func (r *Registry) CancelAll() int {
	r.mu.Lock()
	all := r.pending
	r.pending = map[Token]pending{}
	r.mu.Unlock()

	for _, p := range all {
		p.cancel()
	}
	metrics.PendingRequests.Sub(float64(len(all)))
	return len(all)
}

// Pending returns the number of in-flight requests.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Ops lists the operations of pending requests, for diagnostics.
func (r *Registry) Ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.pending))
	for _, p := range r.pending {
		out = append(out, p.op)
	}
	return out
}
