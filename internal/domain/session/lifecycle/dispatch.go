// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import "github.com/ManuGH/vssplay/internal/domain/session/model"

// Policy is how a Failed state is resolved.
type Policy int

const (
	PolicyNone Policy = iota
	// PolicyRetryPrior re-enters the prior state, whose budget was already
	// decremented when the failure was recorded.
	PolicyRetryPrior
	// PolicyRollback restores the prior state without re-running its entry.
	PolicyRollback
	// PolicyStepBack replays the archive further back, or resumes live when
	// the stepped depth leaves the recorded window.
	PolicyStepBack
	// PolicyStop reports the error and stops the session.
	PolicyStop
	// PolicyLogFault records an internal fault and rolls back.
	PolicyLogFault
)

func (p Policy) String() string {
	switch p {
	case PolicyRetryPrior:
		return "retry_prior"
	case PolicyRollback:
		return "rollback"
	case PolicyStepBack:
		return "step_back"
	case PolicyStop:
		return "stop"
	case PolicyLogFault:
		return "log_fault"
	default:
		return "none"
	}
}

type failureKey struct {
	Prior model.StateKind
	Kind  model.ErrorKind
}

// activeKinds are the states a live session can fail out of.
var activeKinds = []model.StateKind{
	model.StateConnecting,
	model.StateConnected,
	model.StateStreaming,
	model.StatePaused,
	model.StatePlayingArchive,
}

var softKinds = []model.ErrorKind{
	model.ESnapshotPreloadFailed,
	model.EArchiveSnapshotFailed,
	model.EDescriptionFetchFailed,
	model.EArchiveBoundsFailed,
	model.ESecurityMarkerFailed,
	model.EViewModeSnapshotFailed,
}

var failureTable = buildFailureTable()

func buildFailureTable() map[failureKey]Policy {
	t := map[failureKey]Policy{
		{model.StateConnecting, model.EConnectionFailed}:          PolicyRetryPrior,
		{model.StateConnecting, model.EConnectionRetryExceeded}:   PolicyStop,
		{model.StateConnected, model.ENoStreamingURL}:             PolicyStop,
		{model.StateStreaming, model.EStreamingFailed}:            PolicyRetryPrior,
		{model.StateStreaming, model.EStreamingRetryExceeded}:     PolicyStop,
		{model.StatePlayingArchive, model.EArchivePlaybackFailed}: PolicyStepBack,
		{model.StatePlayingArchive, model.EArchiveRetryExceeded}:  PolicyStop,
	}
	for _, prior := range activeKinds {
		for _, k := range softKinds {
			t[failureKey{prior, k}] = PolicyRollback
		}
		t[failureKey{prior, model.EUnauthorized}] = PolicyStop
		t[failureKey{prior, model.EKeepAliveStopped}] = PolicyStop
		t[failureKey{prior, model.EBackgroundTimeout}] = PolicyStop
	}
	for _, prior := range model.AllStateKinds {
		t[failureKey{prior, model.EStateTransitionFault}] = PolicyLogFault
	}
	return t
}

// PolicyFor resolves a failure of kind recorded while in prior. Pairs without
// an explicit entry roll back when soft and stop otherwise.
func PolicyFor(prior model.StateKind, kind model.ErrorKind) Policy {
	if p, ok := failureTable[failureKey{prior, kind}]; ok {
		return p
	}
	if kind.IsSoft() {
		return PolicyRollback
	}
	return PolicyStop
}
