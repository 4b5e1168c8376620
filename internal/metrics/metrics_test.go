// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, g.Write(m))
	return m.GetGauge().GetValue()
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func TestSetCircuitBreakerState_OneHot(t *testing.T) {
	SetCircuitBreakerState("gateway", "open")
	assert.Equal(t, 1.0, gaugeValue(t, circuitBreakerState.WithLabelValues("gateway", "open")))
	assert.Equal(t, 0.0, gaugeValue(t, circuitBreakerState.WithLabelValues("gateway", "closed")))

	SetCircuitBreakerState("gateway", "closed")
	assert.Equal(t, 0.0, gaugeValue(t, circuitBreakerState.WithLabelValues("gateway", "open")))
}

func TestSetKeepAliveStatus_OneHot(t *testing.T) {
	SetKeepAliveStatus("interrupted")
	assert.Equal(t, 1.0, gaugeValue(t, keepAliveStatus.WithLabelValues("interrupted")))
	assert.Equal(t, 0.0, gaugeValue(t, keepAliveStatus.WithLabelValues("running")))
}

func TestRecordFailure_DefaultsKind(t *testing.T) {
	before := counterValue(t, SessionFailuresTotal.WithLabelValues("unknown"))
	RecordFailure("")
	assert.Equal(t, before+1, counterValue(t, SessionFailuresTotal.WithLabelValues("unknown")))
}

func TestIncBusDropReason(t *testing.T) {
	before := counterValue(t, BusDroppedTotal.WithLabelValues("t", "timeout"))
	IncBusDropReason("t", "timeout")
	assert.Equal(t, before+1, counterValue(t, BusDroppedTotal.WithLabelValues("t", "timeout")))
}
