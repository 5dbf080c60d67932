// Package timestamp implements the Timestamp Correlator: a filter over the
// raw TracePacket stream that accumulates local-timestamp deltas and
// global-timestamp base values, emitting batches of packets annotated with
// a reconstructed Timestamp. (spec §4.4)
package timestamp

import "itmtrace/internal/model"

const gts2Shift = 26 // Appendix D4.2.5

// Source is the raw packet stream the Correlator filters. internal/engine's
// Assembler satisfies this without either package importing the other.
type Source interface {
	Next() (model.TracePacket, model.MalformedPacket, bool)
}

// Timestamp is the combined local/global timestamp carried by a batch of
// packets. Base is nil until a GlobalTimestamp1/GlobalTimestamp2 pair has
// been seen; Delta is nil until at least one local timestamp has
// contributed to the current epoch.
type Timestamp struct {
	Base         *uint64
	Delta        *uint64
	DataRelation *model.TimestampDataRelation
	Diverged     bool
}

// clone returns a deep-enough copy so that handing a Timestamp to a batch
// and then mutating the Correlator's live copy don't alias.
func (t Timestamp) clone() Timestamp {
	out := t
	if t.Base != nil {
		b := *t.Base
		out.Base = &b
	}
	if t.Delta != nil {
		d := *t.Delta
		out.Delta = &d
	}
	if t.DataRelation != nil {
		r := *t.DataRelation
		out.DataRelation = &r
	}
	return out
}

// TimestampedTracePackets associates a batch of packets and malformed
// packets with the Timestamp that closed the batch.
type TimestampedTracePackets struct {
	Timestamp        Timestamp
	Packets          []model.TracePacket
	MalformedPackets []model.MalformedPacket
	PacketsConsumed  int
}

// Options configures a Correlator.
type Options struct {
	// OnlyGTS suppresses local-timestamp batching: every non-GTS packet
	// is returned immediately as its own single-packet batch, keyed on
	// whatever Timestamp the global-timestamp stream has established so
	// far. Its Delta stays nil throughout. Overflow is the exception: it
	// sets Diverged and goes into the accumulation buffer, which this
	// mode never drains into a batch.
	OnlyGTS bool
}

// Correlator is the Timestamp Correlator component (spec §4.4). It is not
// safe for concurrent use, matching the single-threaded contract of the
// Source it wraps.
type Correlator struct {
	src     Source
	onlyGTS bool

	packets   []model.TracePacket
	malformed []model.MalformedPacket
	gts1      *uint64
	gts2      *uint64
	ts        Timestamp
	consumed  int
}

// New returns a Correlator pulling from src.
func New(src Source, opts Options) *Correlator {
	return &Correlator{src: src, onlyGTS: opts.OnlyGTS}
}

// Pull repeatedly drives the underlying Source until a batch boundary is
// reached, returning the accumulated batch. ok is false once the Source
// reports Ok(None) (no more data buffered).
func (c *Correlator) Pull() (TimestampedTracePackets, bool) {
	for {
		pkt, malformed, ok := c.src.Next()
		if !ok {
			return TimestampedTracePackets{}, false
		}
		c.consumed++

		if malformed != nil {
			c.malformed = append(c.malformed, malformed)
			c.recalcBase()
			continue
		}

		switch p := pkt.(type) {
		case model.LocalTimestamp1:
			if !c.onlyGTS {
				batch := c.closeBatch(p.Ts, p.DataRelation)
				c.recalcBase()
				return batch, true
			}
			batch := c.emitSingle(pkt)
			c.recalcBase()
			return batch, true

		case model.LocalTimestamp2:
			if !c.onlyGTS {
				batch := c.closeBatch(uint64(p.Ts), model.RelationSync)
				c.recalcBase()
				return batch, true
			}
			batch := c.emitSingle(pkt)
			c.recalcBase()
			return batch, true

		case model.GlobalTimestamp1:
			ts := p.Ts
			c.gts1 = &ts
			if p.Wrap {
				c.gts2 = nil
			}
			if p.Clkch {
				c.gts1 = nil
				c.gts2 = nil
			}
			c.recalcBase()
			continue

		case model.GlobalTimestamp2:
			ts := p.Ts
			c.gts2 = &ts
			c.recalcBase()
			continue

		case model.Overflow:
			c.ts.Diverged = true
			c.packets = append(c.packets, pkt)
			c.recalcBase()
			continue

		default:
			if c.onlyGTS {
				batch := c.emitSingle(pkt)
				c.recalcBase()
				return batch, true
			}
			c.packets = append(c.packets, pkt)
			c.recalcBase()
			continue
		}
	}
}

// closeBatch folds a local timestamp delta into the running Timestamp and
// drains the accumulated packets into a batch (spec §4.4.1).
func (c *Correlator) closeBatch(delta uint64, relation model.TimestampDataRelation) TimestampedTracePackets {
	if c.ts.Delta != nil {
		sum := *c.ts.Delta + delta
		c.ts.Delta = &sum
	} else {
		d := delta
		c.ts.Delta = &d
	}
	c.ts.DataRelation = &relation

	batch := TimestampedTracePackets{
		Timestamp:        c.ts.clone(),
		Packets:          c.packets,
		MalformedPackets: c.malformed,
		PacketsConsumed:  c.consumed,
	}
	c.packets = nil
	c.malformed = nil
	c.consumed = 0
	return batch
}

// emitSingle builds a single-packet batch under OnlyGTS mode, where every
// non-GTS packet is its own batch rather than being accumulated.
func (c *Correlator) emitSingle(pkt model.TracePacket) TimestampedTracePackets {
	return TimestampedTracePackets{
		Timestamp:       c.ts.clone(),
		Packets:         []model.TracePacket{pkt},
		PacketsConsumed: 1,
	}
}

// recalcBase installs a new base once both halves of a global timestamp
// pair have arrived, resetting delta, data relation, and divergence for
// the new epoch (spec §4.4.1).
func (c *Correlator) recalcBase() {
	if c.gts1 == nil || c.gts2 == nil {
		return
	}
	base := (*c.gts2 << gts2Shift) | *c.gts1
	c.ts = Timestamp{Base: &base}
	c.gts1 = nil
	c.gts2 = nil
}
