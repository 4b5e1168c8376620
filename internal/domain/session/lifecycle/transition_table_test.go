// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lifecycle

import (
	"testing"

	"github.com/ManuGH/vssplay/internal/domain/session/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextKinds() []model.StateKind {
	return model.AllStateKinds[1:]
}

func TestDecisionTable_Coverage(t *testing.T) {
	require.Len(t, decisionTable, len(model.AllStateKinds))
	for _, from := range model.AllStateKinds {
		for _, to := range nextKinds() {
			d, ok := DecisionFor(from, to)
			require.True(t, ok, "missing decision for %s -> %s", from, to)
			if !d.Allowed {
				assert.NotEmpty(t, d.Reason, "forbidden %s -> %s needs a reason", from, to)
			}
		}
		_, ok := DecisionFor(from, model.StateNone)
		assert.False(t, ok, "no state may transition into none")
	}
}

func TestDecisionTable_InitialOnlyFromNone(t *testing.T) {
	for _, from := range model.AllStateKinds {
		d, _ := DecisionFor(from, model.StateInitial)
		assert.Equal(t, from == model.StateNone, d.Allowed, "from %s", from)
	}
}

func TestDecisionTable_InvalidatedOnlyFromStopped(t *testing.T) {
	for _, from := range model.AllStateKinds {
		d, _ := DecisionFor(from, model.StateInvalidated)
		assert.Equal(t, from == model.StateStopped, d.Allowed, "from %s", from)
	}
}

func TestDecisionTable_InvalidatedIsAbsorbing(t *testing.T) {
	for _, to := range nextKinds() {
		assert.Equal(t, ForbiddenTerminalAbsorbing, ForbiddenTransitionReason(model.StateInvalidated, to))
	}
}

func TestDecisionTable_NoneOnlyStarts(t *testing.T) {
	for _, to := range nextKinds() {
		if to == model.StateInitial {
			continue
		}
		assert.Equal(t, ForbiddenRequiresInitial, ForbiddenTransitionReason(model.StateNone, to))
	}
	assert.Empty(t, ForbiddenTransitionReason(model.StateNone, model.StateInitial))
}

func TestFailureTable_ExplicitForActiveStates(t *testing.T) {
	for _, prior := range activeKinds {
		for _, k := range model.AllErrorKinds {
			p := PolicyFor(prior, k)
			require.NotEqual(t, PolicyNone, p)
			switch {
			case k.IsSoft():
				assert.Equal(t, PolicyRollback, p, "%s/%s", prior, k)
			case k == model.EStateTransitionFault:
				assert.Equal(t, PolicyLogFault, p, "%s/%s", prior, k)
			case k.IsTerminal():
				assert.Equal(t, PolicyStop, p, "%s/%s", prior, k)
			}
		}
	}
}

func TestFailureTable_RetriesMatchTheirState(t *testing.T) {
	assert.Equal(t, PolicyRetryPrior, PolicyFor(model.StateConnecting, model.EConnectionFailed))
	assert.Equal(t, PolicyRetryPrior, PolicyFor(model.StateStreaming, model.EStreamingFailed))
	assert.Equal(t, PolicyStepBack, PolicyFor(model.StatePlayingArchive, model.EArchivePlaybackFailed))

	// A retryable kind outside its own state is not retried.
	assert.Equal(t, PolicyStop, PolicyFor(model.StatePaused, model.EStreamingFailed))
	assert.Equal(t, PolicyStop, PolicyFor(model.StateConnected, model.EConnectionFailed))
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "step_back", PolicyStepBack.String())
	assert.Equal(t, "none", Policy(99).String())
}
