// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import "github.com/ManuGH/vssplay/internal/domain/session/model"

const (
	ForbiddenTerminalAbsorbing = "terminal_absorbing"
	ForbiddenOutOfOrder        = "out_of_order"
	ForbiddenAlreadyInState    = "already_in_state"
	ForbiddenRequiresInitial   = "requires_initial"
	ForbiddenInitialOnce       = "initial_once"
	ForbiddenRequiresStopped   = "requires_stopped"
	ForbiddenRequiresPlayback  = "requires_playback"
)

// Decision is the verdict for a prior-state to next-state pair.
type Decision struct {
	Allowed bool
	Reason  string
}

func allowed() Decision        { return Decision{Allowed: true} }
func forbid(r string) Decision { return Decision{Allowed: false, Reason: r} }

// decisionTable holds an explicit decision for every prior×next pair.
var decisionTable = map[model.StateKind]map[model.StateKind]Decision{
	model.StateNone: {
		model.StateInitial:        allowed(),
		model.StateConnecting:     forbid(ForbiddenRequiresInitial),
		model.StateConnected:      forbid(ForbiddenRequiresInitial),
		model.StateStreaming:      forbid(ForbiddenRequiresInitial),
		model.StatePaused:         forbid(ForbiddenRequiresInitial),
		model.StatePlayingArchive: forbid(ForbiddenRequiresInitial),
		model.StateStopped:        forbid(ForbiddenRequiresInitial),
		model.StateFailed:         forbid(ForbiddenRequiresInitial),
		model.StateInvalidated:    forbid(ForbiddenRequiresInitial),
	},
	model.StateInitial: {
		model.StateInitial:        forbid(ForbiddenInitialOnce),
		model.StateConnecting:     allowed(),
		model.StateConnected:      forbid(ForbiddenOutOfOrder),
		model.StateStreaming:      forbid(ForbiddenOutOfOrder),
		model.StatePaused:         forbid(ForbiddenOutOfOrder),
		model.StatePlayingArchive: forbid(ForbiddenOutOfOrder),
		model.StateStopped:        allowed(),
		model.StateFailed:         allowed(),
		model.StateInvalidated:    forbid(ForbiddenRequiresStopped),
	},
	model.StateConnecting: {
		model.StateInitial:        forbid(ForbiddenInitialOnce),
		model.StateConnecting:     allowed(),
		model.StateConnected:      allowed(),
		model.StateStreaming:      forbid(ForbiddenOutOfOrder),
		model.StatePaused:         forbid(ForbiddenRequiresPlayback),
		model.StatePlayingArchive: forbid(ForbiddenOutOfOrder),
		model.StateStopped:        allowed(),
		model.StateFailed:         allowed(),
		model.StateInvalidated:    forbid(ForbiddenRequiresStopped),
	},
	model.StateConnected: {
		model.StateInitial:        forbid(ForbiddenInitialOnce),
		model.StateConnecting:     allowed(),
		model.StateConnected:      forbid(ForbiddenAlreadyInState),
		model.StateStreaming:      allowed(),
		model.StatePaused:         forbid(ForbiddenRequiresPlayback),
		model.StatePlayingArchive: forbid(ForbiddenOutOfOrder),
		model.StateStopped:        allowed(),
		model.StateFailed:         allowed(),
		model.StateInvalidated:    forbid(ForbiddenRequiresStopped),
	},
	model.StateStreaming: {
		model.StateInitial:        forbid(ForbiddenInitialOnce),
		model.StateConnecting:     allowed(),
		model.StateConnected:      forbid(ForbiddenOutOfOrder),
		model.StateStreaming:      allowed(),
		model.StatePaused:         allowed(),
		model.StatePlayingArchive: allowed(),
		model.StateStopped:        allowed(),
		model.StateFailed:         allowed(),
		model.StateInvalidated:    forbid(ForbiddenRequiresStopped),
	},
	model.StatePaused: {
		model.StateInitial:        forbid(ForbiddenInitialOnce),
		model.StateConnecting:     allowed(),
		model.StateConnected:      forbid(ForbiddenOutOfOrder),
		model.StateStreaming:      allowed(),
		model.StatePaused:         forbid(ForbiddenAlreadyInState),
		model.StatePlayingArchive: allowed(),
		model.StateStopped:        allowed(),
		model.StateFailed:         allowed(),
		model.StateInvalidated:    forbid(ForbiddenRequiresStopped),
	},
	model.StatePlayingArchive: {
		model.StateInitial:        forbid(ForbiddenInitialOnce),
		model.StateConnecting:     allowed(),
		model.StateConnected:      forbid(ForbiddenOutOfOrder),
		model.StateStreaming:      allowed(),
		model.StatePaused:         allowed(),
		model.StatePlayingArchive: allowed(),
		model.StateStopped:        allowed(),
		model.StateFailed:         allowed(),
		model.StateInvalidated:    forbid(ForbiddenRequiresStopped),
	},
	model.StateStopped: {
		model.StateInitial:        forbid(ForbiddenInitialOnce),
		model.StateConnecting:     allowed(),
		model.StateConnected:      forbid(ForbiddenTerminalAbsorbing),
		model.StateStreaming:      forbid(ForbiddenTerminalAbsorbing),
		model.StatePaused:         forbid(ForbiddenTerminalAbsorbing),
		model.StatePlayingArchive: forbid(ForbiddenTerminalAbsorbing),
		model.StateStopped:        allowed(),
		model.StateFailed:         forbid(ForbiddenTerminalAbsorbing),
		model.StateInvalidated:    allowed(),
	},
	model.StateFailed: {
		model.StateInitial:        forbid(ForbiddenInitialOnce),
		model.StateConnecting:     allowed(),
		model.StateConnected:      allowed(),
		model.StateStreaming:      allowed(),
		model.StatePaused:         allowed(),
		model.StatePlayingArchive: allowed(),
		model.StateStopped:        allowed(),
		model.StateFailed:         forbid(ForbiddenAlreadyInState),
		model.StateInvalidated:    forbid(ForbiddenRequiresStopped),
	},
	model.StateInvalidated: {
		model.StateInitial:        forbid(ForbiddenTerminalAbsorbing),
		model.StateConnecting:     forbid(ForbiddenTerminalAbsorbing),
		model.StateConnected:      forbid(ForbiddenTerminalAbsorbing),
		model.StateStreaming:      forbid(ForbiddenTerminalAbsorbing),
		model.StatePaused:         forbid(ForbiddenTerminalAbsorbing),
		model.StatePlayingArchive: forbid(ForbiddenTerminalAbsorbing),
		model.StateStopped:        forbid(ForbiddenTerminalAbsorbing),
		model.StateFailed:         forbid(ForbiddenTerminalAbsorbing),
		model.StateInvalidated:    forbid(ForbiddenTerminalAbsorbing),
	},
}

// DecisionFor returns the decision for the pair and whether one is defined.
func DecisionFor(from, to model.StateKind) (Decision, bool) {
	row, ok := decisionTable[from]
	if !ok {
		return Decision{}, false
	}
	d, ok := row[to]
	return d, ok
}

// ForbiddenTransitionReason documents why a transition is disallowed, or
// returns "" when it is allowed or undefined.
func ForbiddenTransitionReason(from, to model.StateKind) string {
	d, ok := DecisionFor(from, to)
	if !ok || d.Allowed {
		return ""
	}
	return d.Reason
}

func isAllowed(from, to model.StateKind) bool {
	d, ok := DecisionFor(from, to)
	return ok && d.Allowed
}
