// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GatewayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vssplay_gateway_requests_total",
		Help: "Gateway calls by operation and outcome",
	}, []string{"op", "outcome"})

	GatewayRequestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vssplay_gateway_request_seconds",
		Help:    "Gateway call latency by operation",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	FrameCacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vssplay_frame_cache_lookups_total",
		Help: "Archive frame cache lookups by result",
	}, []string{"result"})
)
