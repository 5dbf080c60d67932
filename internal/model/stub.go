package model

// Stub describes a header that classified as the start of a packet whose
// body bytes have not yet all arrived. The assembler completes a Stub by
// pulling more bytes according to the rule named here. (spec §4.2, §4.3.2)
type Stub interface {
	stub()
}

// SyncStub starts the resynchronization state machine; InitialZeroCount
// accounts for the 8 zero bits already consumed as the all-zero header.
type SyncStub struct {
	InitialZeroCount int
}

func (SyncStub) stub() {}

// InstrumentationStub awaits ExpectedSize more bytes of stimulus payload
// for the given port.
type InstrumentationStub struct {
	Port         uint8
	ExpectedSize int
}

func (InstrumentationStub) stub() {}

// HardwareSourceStub awaits ExpectedSize more bytes of a DWT hardware
// source packet payload for the given discriminator.
type HardwareSourceStub struct {
	DiscID       uint8
	ExpectedSize int
}

func (HardwareSourceStub) stub() {}

// LocalTimestampStub awaits a continuation-terminated payload for a
// LocalTimestamp1 packet.
type LocalTimestampStub struct {
	DataRelation TimestampDataRelation
}

func (LocalTimestampStub) stub() {}

// GlobalTimestamp1Stub awaits a continuation-terminated payload for a
// GlobalTimestamp1 packet.
type GlobalTimestamp1Stub struct{}

func (GlobalTimestamp1Stub) stub() {}

// GlobalTimestamp2Stub awaits a continuation-terminated payload for a
// GlobalTimestamp2 packet.
type GlobalTimestamp2Stub struct{}

func (GlobalTimestamp2Stub) stub() {}

// HeaderResult is the outcome of classifying a single header byte: either
// a complete packet, or a stub describing how to complete it. Errors are
// returned separately as a MalformedPacket, not carried in this type.
type HeaderResult struct {
	Packet TracePacket // set when the header alone is a complete packet
	Stub   Stub        // set when more bytes are needed
}
