// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vssplay_session_transitions_total",
		Help: "State transitions by source and destination state",
	}, []string{"from", "to"})

	SessionFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vssplay_session_failures_total",
		Help: "Failed-state entries by error kind",
	}, []string{"kind"})

	SessionBudgetsExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vssplay_session_budgets_exhausted_total",
		Help: "Sessions stopped because a retry budget ran out, by error kind",
	}, []string{"kind"})

	SessionFaultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vssplay_session_transition_faults_total",
		Help: "Illegal transitions recorded by the state machine",
	})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vssplay_sessions_active",
		Help: "Sessions that have not been invalidated",
	})

	PendingRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vssplay_pending_requests",
		Help: "Gateway requests registered and not yet completed",
	})

	ViewModeFetchSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vssplay_view_mode_fetch_seconds",
		Help:    "Round trip of view-mode snapshot fetches",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})

	ArchiveStepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vssplay_archive_steps_total",
		Help: "Archive seeks issued after debouncing, by direction",
	}, []string{"direction"})
)

func RecordTransition(from, to string) {
	SessionTransitionsTotal.WithLabelValues(from, to).Inc()
}

func RecordFailure(kind string) {
	if kind == "" {
		kind = "unknown"
	}
	SessionFailuresTotal.WithLabelValues(kind).Inc()
}
