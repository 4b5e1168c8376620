// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"context"
	"fmt"
	"sync"
)

// workerGroup tracks hub-owned session goroutines and provides a bounded
// join on shutdown.
type workerGroup struct {
	mu      sync.Mutex
	closing bool
	running int
	wg      sync.WaitGroup
}

// Go starts fn unless the group is closing.
func (g *workerGroup) Go(fn func()) bool {
	g.mu.Lock()
	if g.closing {
		g.mu.Unlock()
		return false
	}
	g.running++
	g.wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer func() {
			g.mu.Lock()
			g.running--
			g.mu.Unlock()
			g.wg.Done()
		}()
		fn()
	}()
	return true
}

func (g *workerGroup) Running() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

func (g *workerGroup) CloseAndWait(ctx context.Context) error {
	g.mu.Lock()
	g.closing = true
	g.mu.Unlock()

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("session worker drain timeout: %w", ctx.Err())
	}
}
