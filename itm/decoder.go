package itm

import (
	"itmtrace/internal/engine"
	"itmtrace/internal/metrics"
	"itmtrace/internal/timestamp"
)

// Options configures a Decoder.
type Options struct {
	// OnlyGTS suppresses local-timestamp batching in PullWithTimestamp:
	// every non-GTS packet is returned as its own single-packet batch
	// keyed on the current global timestamp. Overflow is the exception:
	// it marks the Timestamp diverged but is not returned in any batch.
	// Has no effect on Next.
	OnlyGTS bool

	// KeepReading governs whether the caller should keep polling its
	// byte source past a transient EOF. It is an input-layer concern
	// the Decoder itself never acts on, surfaced here so a single
	// Options value can configure both (spec §6.3).
	KeepReading bool

	// Log receives malformed packets, resync outcomes, and decode
	// errors. Defaults to NoOpLogger.
	Log Logger

	// Metrics, if set, is incremented as packets are decoded. Defaults
	// to a no-op sink.
	Metrics *metrics.Recorder
}

// Decoder is the ITM/DWT packet protocol decoder: push trace bytes in,
// pull packets out, one at a time or batched against a reconstructed
// Timestamp. It is single-threaded and synchronous; a Decoder instance
// must be owned exclusively by its caller (spec §5).
type Decoder struct {
	asm    *engine.Assembler
	corr   *timestamp.Correlator
	log    Logger
	metric *metrics.Recorder
}

// New returns a ready-to-use Decoder.
func New(opts Options) *Decoder {
	asm := engine.New()
	log := opts.Log
	if log == nil {
		log = NewNoOpLogger()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.NewNoop()
	}
	d := &Decoder{
		asm:    asm,
		log:    log,
		metric: m,
	}
	// The correlator pulls through d.Next, so batched decoding is logged
	// and counted the same way as packet-by-packet decoding.
	d.corr = timestamp.New(d, timestamp.Options{OnlyGTS: opts.OnlyGTS})
	return d
}

// Push appends trace bytes to the decoder's internal buffer. It never
// fails; packet boundaries may fall anywhere within or across pushes.
func (d *Decoder) Push(data []byte) {
	d.asm.Push(data)
}

// Next decodes and returns the next packet.
//
//   - (packet, nil, true): a packet was decoded.
//   - (nil, malformed, true): a malformed packet was detected; the
//     decoder has already advanced past it and remains usable.
//   - (nil, nil, false): not enough data is buffered; push more and
//     retry.
func (d *Decoder) Next() (TracePacket, MalformedPacket, bool) {
	pkt, malformed, ok := d.asm.Next()
	if !ok {
		return nil, nil, false
	}
	if malformed != nil {
		d.log.Error(malformed)
		d.metric.ObserveMalformed(malformed)
		return nil, malformed, true
	}
	d.metric.ObservePacket(pkt)
	if _, ok := pkt.(Sync); ok {
		d.log.Info("sync packet: stream realigned")
	}
	return pkt, nil, true
}

// PullWithTimestamp repeatedly drives Next, accumulating packets until a
// local-timestamp batch boundary (or, under Options.OnlyGTS, every
// packet) closes a batch. ok is false once the underlying byte buffer is
// exhausted (spec §4.4).
func (d *Decoder) PullWithTimestamp() (TimestampedTracePackets, bool) {
	batch, ok := d.corr.Pull()
	if ok {
		d.log.Logf(SeverityDebug, "timestamp batch closed: %d packets, %d malformed", len(batch.Packets), len(batch.MalformedPackets))
	}
	if ok && batch.Timestamp.Base != nil {
		d.metric.SetTimestampBase(*batch.Timestamp.Base)
	}
	return batch, ok
}

// TimestampedTracePackets is the Correlator's batch output, re-exported so
// callers of this package never need to import internal/timestamp.
type TimestampedTracePackets = timestamp.TimestampedTracePackets

// Timestamp is the reconstructed local/global timestamp attached to a
// batch.
type Timestamp = timestamp.Timestamp
