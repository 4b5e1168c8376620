// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	KeepAliveFlushesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vssplay_keepalive_flushes_total",
		Help: "Heartbeat flushes by result",
	}, []string{"result"})

	KeepAliveDevices = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vssplay_keepalive_devices",
		Help: "Devices in the keep-alive intent map",
	})

	keepAliveStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vssplay_keepalive_status",
		Help: "Keep-alive coordinator status (1 for the active status)",
	}, []string{"status"})
)

var keepAliveStatuses = []string{"running", "interrupted", "stopped"}

func SetKeepAliveStatus(status string) {
	for _, s := range keepAliveStatuses {
		v := 0.0
		if s == status {
			v = 1
		}
		keepAliveStatus.WithLabelValues(s).Set(v)
	}
}
