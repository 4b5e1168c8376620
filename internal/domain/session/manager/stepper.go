// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"github.com/ManuGH/vssplay/internal/domain/session/lifecycle"
	"github.com/ManuGH/vssplay/internal/domain/session/model"
	"github.com/ManuGH/vssplay/internal/metrics"
)

// Step directions for StepArchive.
const (
	StepBack    = -1
	StepForward = 1
)

func stepKey(dir int) string {
	if dir < 0 {
		return "back"
	}
	return "forward"
}

// StepArchive moves the archive position by one step. Rapid steps in the
// same direction accumulate and are flushed as a single seek.
func (s *Session) StepArchive(dir int) {
	if dir == 0 {
		return
	}
	_ = s.post(func() { s.step(dir) })
}

func (s *Session) step(dir int) {
	base, ok := s.currentDepth()
	if !ok {
		return
	}
	if s.stepTarget != nil {
		base = *s.stepTarget
	}
	target := base + dir*s.cfg.Limits.ArchiveStep
	if target > 0 {
		target = 0
	}
	if ac := s.snap.Archive; ac != nil && target < -ac.DepthSeconds() {
		target = -ac.DepthSeconds()
	}
	s.stepTarget = &target

	key := stepKey(dir)
	s.steps.Cancel(stepKey(-dir))
	s.steps.Trigger(key, func() {
		_ = s.post(func() { s.flushStep(key) })
	})
}

func (s *Session) flushStep(direction string) {
	if s.stepTarget == nil {
		return
	}
	depth := *s.stepTarget
	s.stepTarget = nil
	metrics.ArchiveStepsTotal.WithLabelValues(direction).Inc()
	s.dispatch(lifecycle.Event{Kind: lifecycle.EvPlayArchive, Depth: depth})
}

func (s *Session) currentDepth() (int, bool) {
	switch st := s.snap.State.(type) {
	case model.Streaming:
		return 0, true
	case model.Paused:
		return st.ArchiveDepth, true
	case model.PlayingArchive:
		return st.DepthSeconds, true
	}
	return 0, false
}
