// Package metrics wires ITM/DWT decode activity to Prometheus counters and
// gauges: packets by type, malformed packets by kind, resync events, and
// the most recently observed global timestamp base.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"itmtrace/internal/model"
)

// Recorder owns the decoder's Prometheus collectors. A nil-receiver-safe
// Recorder is never constructed directly by callers; use NewNoop when no
// metrics sink is wanted.
type Recorder struct {
	packetsTotal   *prometheus.CounterVec
	malformedTotal *prometheus.CounterVec
	resyncTotal    prometheus.Counter
	timestampBase  prometheus.Gauge
	noop           bool
}

// New creates a Recorder and registers its collectors against reg. Pass
// prometheus.DefaultRegisterer to expose them on the default /metrics
// handler.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		packetsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "itm",
			Name:      "packets_total",
			Help:      "Total number of trace packets decoded, by packet type.",
		}, []string{"type"}),
		malformedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "itm",
			Name:      "malformed_packets_total",
			Help:      "Total number of malformed packets encountered, by kind.",
		}, []string{"kind"}),
		resyncTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "itm",
			Name:      "resync_total",
			Help:      "Total number of successful Sync packet resynchronizations.",
		}),
		timestampBase: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "itm",
			Name:      "timestamp_base",
			Help:      "Most recently installed global timestamp base.",
		}),
	}
	reg.MustRegister(r.packetsTotal, r.malformedTotal, r.resyncTotal, r.timestampBase)
	return r
}

// NewNoop returns a Recorder that discards every observation, for callers
// that don't want metrics wired up.
func NewNoop() *Recorder {
	return &Recorder{noop: true}
}

// ObservePacket records a successfully decoded packet.
func (r *Recorder) ObservePacket(pkt model.TracePacket) {
	if r == nil || r.noop {
		return
	}
	r.packetsTotal.WithLabelValues(packetKind(pkt)).Inc()
	if pkt, ok := pkt.(model.Sync); ok {
		_ = pkt
		r.resyncTotal.Inc()
	}
}

// ObserveMalformed records a malformed packet.
func (r *Recorder) ObserveMalformed(m model.MalformedPacket) {
	if r == nil || r.noop {
		return
	}
	r.malformedTotal.WithLabelValues(malformedKind(m)).Inc()
}

// SetTimestampBase updates the last-known global timestamp base gauge.
func (r *Recorder) SetTimestampBase(base uint64) {
	if r == nil || r.noop {
		return
	}
	r.timestampBase.Set(float64(base))
}

func packetKind(pkt model.TracePacket) string {
	switch pkt.(type) {
	case model.Sync:
		return "sync"
	case model.Overflow:
		return "overflow"
	case model.LocalTimestamp1:
		return "local_timestamp1"
	case model.LocalTimestamp2:
		return "local_timestamp2"
	case model.GlobalTimestamp1:
		return "global_timestamp1"
	case model.GlobalTimestamp2:
		return "global_timestamp2"
	case model.Extension:
		return "extension"
	case model.Instrumentation:
		return "instrumentation"
	case model.EventCounterWrap:
		return "event_counter_wrap"
	case model.ExceptionTrace:
		return "exception_trace"
	case model.PCSample:
		return "pc_sample"
	case model.DataTracePC:
		return "data_trace_pc"
	case model.DataTraceAddress:
		return "data_trace_address"
	case model.DataTraceValue:
		return "data_trace_value"
	default:
		return fmt.Sprintf("%T", pkt)
	}
}

func malformedKind(m model.MalformedPacket) string {
	switch m.(type) {
	case model.InvalidHeader:
		return "invalid_header"
	case model.InvalidHardwarePacket:
		return "invalid_hardware_packet"
	case model.InvalidHardwareDisc:
		return "invalid_hardware_disc"
	case model.InvalidExceptionTrace:
		return "invalid_exception_trace"
	case model.InvalidPCSampleSize:
		return "invalid_pc_sample_size"
	case model.InvalidGTS2Size:
		return "invalid_gts2_size"
	case model.InvalidSync:
		return "invalid_sync"
	case model.InvalidSourcePayload:
		return "invalid_source_payload"
	default:
		return fmt.Sprintf("%T", m)
	}
}
