package header

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"itmtrace/internal/model"
)

func TestClassifyPackets(t *testing.T) {
	cases := []struct {
		name string
		b    uint8
		want model.TracePacket
	}{
		{"overflow", 0x70, model.Overflow{}},
		{"local timestamp 2, ts=3", 0x30, model.LocalTimestamp2{Ts: 3}},
		{"local timestamp 2, ts=1", 0x10, model.LocalTimestamp2{Ts: 1}},
		{"extension page 2", 0x28, model.Extension{Page: 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, malformed := Classify(tc.b)
			if malformed != nil {
				t.Fatalf("Classify(%#08b) returned malformed: %v", tc.b, malformed)
			}
			if diff := cmp.Diff(tc.want, res.Packet); diff != "" {
				t.Errorf("Classify(%#08b) packet mismatch (-want +got):\n%s", tc.b, diff)
			}
		})
	}
}

func TestClassifyStubs(t *testing.T) {
	cases := []struct {
		name string
		b    uint8
		want model.Stub
	}{
		{"sync", 0x00, model.SyncStub{InitialZeroCount: 8}},
		{"local timestamp 1 sync relation", 0xC0, model.LocalTimestampStub{DataRelation: model.RelationSync}},
		{"local timestamp 1 unknown delay", 0xD0, model.LocalTimestampStub{DataRelation: model.RelationUnknownDelay}},
		{"global timestamp 1", 0x94, model.GlobalTimestamp1Stub{}},
		{"global timestamp 2", 0xB4, model.GlobalTimestamp2Stub{}},
		{"instrumentation port 3, size 1", 0x19, model.InstrumentationStub{Port: 3, ExpectedSize: 1}},
		{"hardware disc 1, size 2", 0x0E, model.HardwareSourceStub{DiscID: 1, ExpectedSize: 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, malformed := Classify(tc.b)
			if malformed != nil {
				t.Fatalf("Classify(%#08b) returned malformed: %v", tc.b, malformed)
			}
			if diff := cmp.Diff(tc.want, res.Stub); diff != "" {
				t.Errorf("Classify(%#08b) stub mismatch (-want +got):\n%s", tc.b, diff)
			}
		})
	}
}

func TestClassifyInvalidSourcePayload(t *testing.T) {
	cases := []struct {
		name string
		b    uint8
	}{
		{"hardware source, disc 0, ss=00", 0x04},
		{"software source, port 16, ss=00", 0x80},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, malformed := Classify(tc.b)
			if malformed == nil {
				t.Fatalf("Classify(%#08b) = %+v, nil, want InvalidSourcePayload", tc.b, res)
			}
			if _, ok := malformed.(model.InvalidSourcePayload); !ok {
				t.Errorf("Classify(%#08b) malformed = %T, want InvalidSourcePayload", tc.b, malformed)
			}
		})
	}
}

func TestClassifyInvalidHardwareDisc(t *testing.T) {
	// hardware source bit set, disc_id = 3 (reserved, outside [0,2] and [8,23])
	b := uint8(3<<3) | 0x04 | 0x01 // a=3, hw=1, ss=01
	_, malformed := Classify(b)
	if malformed == nil {
		t.Fatalf("Classify(%#08b) returned no error, want InvalidHardwareDisc", b)
	}
	disc, ok := malformed.(model.InvalidHardwareDisc)
	if !ok {
		t.Fatalf("Classify(%#08b) malformed = %T, want InvalidHardwareDisc", b, malformed)
	}
	if disc.DiscID != 3 {
		t.Errorf("DiscID = %d, want 3", disc.DiscID)
	}
}

func TestClassifyEveryByteCovered(t *testing.T) {
	for b := 0; b < 256; b++ {
		res, malformed := Classify(uint8(b))
		if malformed == nil && res.Packet == nil && res.Stub == nil {
			t.Errorf("Classify(%#08b) returned no packet, no stub, and no error", b)
		}
	}
}
