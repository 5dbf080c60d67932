package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"itmtrace/internal/model"
)

func counterValue(t *testing.T, vec *prometheus.CounterVec, label string) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, vec.WithLabelValues(label).Write(m))
	return m.GetCounter().GetValue()
}

func TestRecorderObservePacket(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.ObservePacket(model.Overflow{})
	r.ObservePacket(model.Instrumentation{Port: 1})
	r.ObservePacket(model.Instrumentation{Port: 2})

	require.Equal(t, float64(2), counterValue(t, r.packetsTotal, "instrumentation"))
	require.Equal(t, float64(1), counterValue(t, r.packetsTotal, "overflow"))
}

func TestRecorderObservePacketCountsResync(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.ObservePacket(model.Sync{})
	r.ObservePacket(model.Sync{})

	m := &dto.Metric{}
	require.NoError(t, r.resyncTotal.Write(m))
	require.Equal(t, float64(2), m.GetCounter().GetValue())
}

func TestRecorderObserveMalformed(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.ObserveMalformed(model.InvalidSync{ZeroCount: 3})

	require.Equal(t, float64(1), counterValue(t, r.malformedTotal, "invalid_sync"))
}

func TestRecorderSetTimestampBase(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.SetTimestampBase(0xABCDEF)

	m := &dto.Metric{}
	require.NoError(t, r.timestampBase.Write(m))
	require.Equal(t, float64(0xABCDEF), m.GetGauge().GetValue())
}

func TestNoopRecorderNeverPanics(t *testing.T) {
	var r *Recorder
	require.NotPanics(t, func() {
		r.ObservePacket(model.Overflow{})
		r.ObserveMalformed(model.InvalidSync{})
		r.SetTimestampBase(1)
	})

	noop := NewNoop()
	require.NotPanics(t, func() {
		noop.ObservePacket(model.Overflow{})
		noop.ObserveMalformed(model.InvalidSync{})
		noop.SetTimestampBase(1)
	})
}
