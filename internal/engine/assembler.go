// Package engine implements the packet assembler: the stateful engine that
// drives the header classifier, gathers stub-declared payloads, resolves
// Sync alignment, validates source-packet payloads, and emits TracePacket
// or MalformedPacket values from an arbitrarily chunked byte stream.
// (spec §4.3)
package engine

import (
	"itmtrace/internal/bitbuf"
	"itmtrace/internal/header"
	"itmtrace/internal/model"
)

// Assembler is the Packet Assembler component. It owns the bit buffer and
// all decode-in-progress state; it is single-threaded and must not be
// called concurrently (spec §5).
type Assembler struct {
	buf *bitbuf.Buffer

	// syncing is true while realigning on a run of zero bits; zeroCount
	// is the number of zero bits seen so far in the current run.
	syncing   bool
	zeroCount int

	// pending holds a stub whose body could not yet be completed on a
	// prior Next call, parked here rather than re-classifying the
	// header byte on retry (spec §4.3.4 strategy (b)).
	pending model.Stub
}

// New returns an Assembler ready to receive bytes.
func New() *Assembler {
	return &Assembler{buf: bitbuf.New()}
}

// Push appends trace bytes to the assembler's internal buffer. It never
// fails; the caller decides how much to push at once, and packet
// boundaries may fall anywhere within or across pushes (spec §6.1).
func (a *Assembler) Push(data []byte) {
	a.buf.Append(data)
}

// Next decodes the next packet from the buffered bytes.
//
// It returns exactly one of three outcomes, mirroring spec §4.3.1's
// Ok(Some(Packet)) | Ok(None) | Err(MalformedPacket):
//   - (packet, nil, true): a packet was decoded.
//   - (nil, malformed, true): a malformed packet was detected.
//   - (nil, nil, false): not enough data is buffered yet; try again after
//     pushing more bytes.
func (a *Assembler) Next() (model.TracePacket, model.MalformedPacket, bool) {
	if a.syncing {
		return a.stepSync()
	}

	if a.pending != nil {
		return a.completeStub(a.pending)
	}

	if a.buf.LenBits() < 8 {
		return nil, nil, false
	}

	b, _ := a.buf.PopByte()
	result, malformed := header.Classify(b)
	if malformed != nil {
		return nil, malformed, true
	}
	if result.Packet != nil {
		return result.Packet, nil, true
	}
	return a.completeStub(result.Stub)
}

// completeStub attempts to finish decoding the given stub. If the body is
// not yet fully available it parks the stub in a.pending and reports
// Ok(None); the next call to Next retries from here without reclassifying
// the header.
func (a *Assembler) completeStub(stub model.Stub) (model.TracePacket, model.MalformedPacket, bool) {
	switch s := stub.(type) {
	case model.SyncStub:
		a.pending = nil
		a.syncing = true
		a.zeroCount = s.InitialZeroCount
		return a.stepSync()

	case model.InstrumentationStub:
		payload, ok := a.buf.PopBytes(s.ExpectedSize)
		if !ok {
			a.pending = s
			return nil, nil, false
		}
		a.pending = nil
		return model.Instrumentation{Port: s.Port, Payload: payload}, nil, true

	case model.HardwareSourceStub:
		payload, ok := a.buf.PopBytes(s.ExpectedSize)
		if !ok {
			a.pending = s
			return nil, nil, false
		}
		a.pending = nil
		pkt, err := decodeHardwareSource(s.DiscID, payload)
		if err != nil {
			return nil, err, true
		}
		return pkt, nil, true

	case model.LocalTimestampStub:
		payload, ok := a.pullPayload()
		if !ok {
			a.pending = s
			return nil, nil, false
		}
		a.pending = nil
		ts := extractTimestamp(payload, ltsMaxLen)
		return model.LocalTimestamp1{Ts: ts, DataRelation: s.DataRelation}, nil, true

	case model.GlobalTimestamp1Stub:
		payload, ok := a.pullPayload()
		if !ok {
			a.pending = s
			return nil, nil, false
		}
		a.pending = nil
		last := payload[len(payload)-1]
		pkt := model.GlobalTimestamp1{
			Ts:    extractTimestamp(payload, gts1MaxLen),
			Clkch: (last>>5)&1 == 1,
			Wrap:  (last>>6)&1 == 1,
		}
		return pkt, nil, true

	case model.GlobalTimestamp2Stub:
		payload, ok := a.pullPayload()
		if !ok {
			a.pending = s
			return nil, nil, false
		}
		a.pending = nil
		var maxLen int
		switch len(payload) {
		case 4:
			maxLen = gts2MaxLen48
		case 6:
			maxLen = gts2MaxLen64
		default:
			return nil, model.InvalidGTS2Size{Payload: payload}, true
		}
		return model.GlobalTimestamp2{Ts: extractTimestamp(payload, maxLen)}, nil, true

	default:
		panic("engine: unhandled stub variant")
	}
}

// pullPayload consumes a continuation-bit-terminated payload if one is
// fully buffered, without prematurely consuming bytes that belong to a
// packet the caller hasn't finished pushing yet.
func (a *Assembler) pullPayload() ([]byte, bool) {
	n, ok := a.buf.PeekPayloadSpan()
	if !ok {
		return nil, false
	}
	return a.buf.PopBytes(n)
}

// stepSync runs the resynchronization state machine (spec §4.3.3): consume
// zero bits until either the minimum run length is reached and a one bit
// terminates it (emit Sync), or a one bit arrives too early (emit
// InvalidSync), or the buffer runs dry (stay in Syncing, report Ok(None)).
func (a *Assembler) stepSync() (model.TracePacket, model.MalformedPacket, bool) {
	for {
		bit, ok := a.buf.PopBit()
		if !ok {
			return nil, nil, false
		}
		if !bit {
			if a.zeroCount < model.SyncMinZeros {
				a.zeroCount++
			}
			continue
		}
		// bit is 1: terminator if we've seen enough zeros, else an error.
		count := a.zeroCount
		a.syncing = false
		a.zeroCount = 0
		if count >= model.SyncMinZeros {
			return model.Sync{}, nil, true
		}
		return nil, model.InvalidSync{ZeroCount: count}, true
	}
}
