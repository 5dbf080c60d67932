package timestamp

import (
	"testing"

	"itmtrace/internal/model"
)

// fakeSource replays a fixed sequence of Next() results, mirroring
// engine.Assembler's (packet, malformed, ok) contract without depending
// on internal/engine.
type fakeSource struct {
	packets   []model.TracePacket
	malformed []model.MalformedPacket
	i         int
}

func (f *fakeSource) push(pkt model.TracePacket) {
	f.packets = append(f.packets, pkt)
	f.malformed = append(f.malformed, nil)
}

func (f *fakeSource) pushMalformed(m model.MalformedPacket) {
	f.packets = append(f.packets, nil)
	f.malformed = append(f.malformed, m)
}

func (f *fakeSource) Next() (model.TracePacket, model.MalformedPacket, bool) {
	if f.i >= len(f.packets) {
		return nil, nil, false
	}
	pkt, m := f.packets[f.i], f.malformed[f.i]
	f.i++
	return pkt, m, true
}

func TestPullClosesBatchOnLocalTimestamp1(t *testing.T) {
	src := &fakeSource{}
	src.push(model.Instrumentation{Port: 1, Payload: []byte{1}})
	src.push(model.Instrumentation{Port: 2, Payload: []byte{2}})
	src.push(model.LocalTimestamp1{Ts: 10, DataRelation: model.RelationSync})

	c := New(src, Options{})
	batch, ok := c.Pull()
	if !ok {
		t.Fatalf("Pull() ok = false, want true")
	}
	if len(batch.Packets) != 2 {
		t.Fatalf("batch has %d packets, want 2", len(batch.Packets))
	}
	if batch.Timestamp.Delta == nil || *batch.Timestamp.Delta != 10 {
		t.Errorf("batch.Timestamp.Delta = %v, want 10", batch.Timestamp.Delta)
	}
	if batch.PacketsConsumed != 3 {
		t.Errorf("PacketsConsumed = %d, want 3", batch.PacketsConsumed)
	}

	if _, ok := c.Pull(); ok {
		t.Errorf("second Pull() should report no more data")
	}
}

func TestPullAccumulatesLocalTimestampDeltas(t *testing.T) {
	src := &fakeSource{}
	src.push(model.LocalTimestamp1{Ts: 3, DataRelation: model.RelationSync})
	src.push(model.LocalTimestamp1{Ts: 4, DataRelation: model.RelationSync})

	c := New(src, Options{})
	c.Pull() // first batch, delta = 3
	batch, ok := c.Pull()
	if !ok {
		t.Fatalf("Pull() ok = false, want true")
	}
	if batch.Timestamp.Delta == nil || *batch.Timestamp.Delta != 7 {
		t.Errorf("batch.Timestamp.Delta = %v, want 7", batch.Timestamp.Delta)
	}
}

func TestPullComposesGlobalTimestampBase(t *testing.T) {
	src := &fakeSource{}
	src.push(model.GlobalTimestamp1{Ts: 0x3FFFFFF})
	src.push(model.GlobalTimestamp2{Ts: 0x1})
	src.push(model.LocalTimestamp2{Ts: 1})

	c := New(src, Options{})
	batch, ok := c.Pull()
	if !ok {
		t.Fatalf("Pull() ok = false, want true")
	}
	wantBase := uint64(0x1)<<26 | 0x3FFFFFF
	if batch.Timestamp.Base == nil || *batch.Timestamp.Base != wantBase {
		t.Errorf("batch.Timestamp.Base = %v, want %#x", batch.Timestamp.Base, wantBase)
	}
}

func TestPullWrapInvalidatesPendingGTS2(t *testing.T) {
	src := &fakeSource{}
	src.push(model.GlobalTimestamp2{Ts: 0x1})
	src.push(model.GlobalTimestamp1{Ts: 0x10, Wrap: true})
	src.push(model.LocalTimestamp2{Ts: 1})

	c := New(src, Options{})
	batch, _ := c.Pull()
	if batch.Timestamp.Base != nil {
		t.Errorf("batch.Timestamp.Base = %v, want nil (GTS2 invalidated by wrap)", batch.Timestamp.Base)
	}
}

func TestPullOnlyGTSEmitsEverySinglePacket(t *testing.T) {
	src := &fakeSource{}
	src.push(model.Instrumentation{Port: 1, Payload: []byte{1}})
	src.push(model.LocalTimestamp1{Ts: 5, DataRelation: model.RelationSync})

	c := New(src, Options{OnlyGTS: true})

	batch, ok := c.Pull()
	if !ok {
		t.Fatalf("Pull() ok = false, want true")
	}
	if len(batch.Packets) != 1 {
		t.Fatalf("batch has %d packets, want 1", len(batch.Packets))
	}
	if batch.Timestamp.Delta != nil {
		t.Errorf("OnlyGTS batch.Timestamp.Delta = %v, want nil", batch.Timestamp.Delta)
	}

	batch, ok = c.Pull()
	if !ok {
		t.Fatalf("second Pull() ok = false, want true")
	}
	if len(batch.Packets) != 1 {
		t.Fatalf("second batch has %d packets, want 1", len(batch.Packets))
	}
	if _, ok := batch.Packets[0].(model.LocalTimestamp1); !ok {
		t.Errorf("second batch packet = %T, want LocalTimestamp1 (OnlyGTS doesn't drop it)", batch.Packets[0])
	}
}

func TestPullOverflowAlwaysAccumulates(t *testing.T) {
	src := &fakeSource{}
	src.push(model.Overflow{})
	src.push(model.LocalTimestamp2{Ts: 1})

	c := New(src, Options{OnlyGTS: true})
	batch, ok := c.Pull()
	if !ok {
		t.Fatalf("Pull() ok = false, want true")
	}
	if len(batch.Packets) != 1 {
		t.Fatalf("batch has %d packets, want 1", len(batch.Packets))
	}
	if _, ok := batch.Packets[0].(model.LocalTimestamp2); !ok {
		t.Errorf("batch.Packets[0] = %T, want LocalTimestamp2 (Overflow accumulates internally under OnlyGTS and doesn't close a batch by itself)", batch.Packets[0])
	}
	if !batch.Timestamp.Diverged {
		t.Errorf("batch.Timestamp.Diverged = false, want true after Overflow")
	}
}

func TestPullCollectsMalformedPackets(t *testing.T) {
	src := &fakeSource{}
	src.pushMalformed(model.InvalidSync{ZeroCount: 3})
	src.push(model.LocalTimestamp2{Ts: 1})

	c := New(src, Options{})
	batch, ok := c.Pull()
	if !ok {
		t.Fatalf("Pull() ok = false, want true")
	}
	if len(batch.MalformedPackets) != 1 {
		t.Fatalf("batch has %d malformed packets, want 1", len(batch.MalformedPackets))
	}
}
