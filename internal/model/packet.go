// Package model holds the ITM/DWT packet data model shared by the header
// classifier and the packet assembler. It lives apart from the public itm
// package so neither internal/header nor internal/engine has to import
// back up through the public API to see these types.
package model

import "fmt"

// TracePacket is the set of valid ITM/DWT packet types that can be
// decoded. Concrete types below implement it; the interface is sealed via
// the unexported tracePacket method so callers pattern-match with a type
// switch rather than a type hierarchy. (ARMv7-M architecture reference
// manual, Appendix D4.)
type TracePacket interface {
	tracePacket()
}

// Sync is a unique bit pattern used to realign packet boundaries in the
// bitstream. (Appendix D4.2.1)
type Sync struct{}

func (Sync) tracePacket() {}

// Overflow is emitted when a stimulus or hardware source packet could not
// be generated because its output buffer was full, or the local timestamp
// counter overflowed. (Appendix D4.2.3)
type Overflow struct{}

func (Overflow) tracePacket() {}

// TimestampDataRelation indicates how a local timestamp packet relates in
// time to the ITM/DWT data packets around it. (Appendix D4.2.4)
type TimestampDataRelation int

const (
	// Sync: the TS value is the counter value when the associated
	// ITM/DWT packet was generated.
	RelationSync TimestampDataRelation = iota
	// UnknownDelay: the TS value is the counter value when this local
	// timestamp packet was generated; the associated packet's true
	// value lies somewhere between the previous and this timestamp.
	RelationUnknownDelay
	// AssocEventDelay: the associated ITM/DWT packet was delayed
	// relative to other trace output.
	RelationAssocEventDelay
	// UnknownAssocEventDelay is the combination of both delay kinds.
	RelationUnknownAssocEventDelay
)

func (r TimestampDataRelation) String() string {
	switch r {
	case RelationSync:
		return "Sync"
	case RelationUnknownDelay:
		return "UnknownDelay"
	case RelationAssocEventDelay:
		return "AssocEventDelay"
	case RelationUnknownAssocEventDelay:
		return "UnknownAssocEventDelay"
	default:
		return fmt.Sprintf("TimestampDataRelation(%d)", int(r))
	}
}

// LocalTimestamp1 is a delta timestamp measuring the interval since the
// previous local timestamp, plus its relation to the associated ITM/DWT
// data. Ts holds at most 27 bits. (Appendix D4.2.4)
type LocalTimestamp1 struct {
	Ts           uint64
	DataRelation TimestampDataRelation
}

func (LocalTimestamp1) tracePacket() {}

// LocalTimestamp2 is the single-byte derivative of LocalTimestamp1 for
// small (1..=6) values, always synchronous to the associated data.
type LocalTimestamp2 struct {
	Ts uint8
}

func (LocalTimestamp2) tracePacket() {}

// GlobalTimestamp1 carries the lower-order bits [25:0] of the global
// timestamp clock. (Appendix D4.2.5)
type GlobalTimestamp1 struct {
	Ts    uint64
	Wrap  bool // higher-order bits output by the last GTS2 have changed
	Clkch bool // the system asserted a clock-change input since the last GTS
}

func (GlobalTimestamp1) tracePacket() {}

// GlobalTimestamp2 carries the higher-order bits of the global timestamp
// clock: bits [47:26] or [63:26] depending on implementation. Ts holds
// these bits unshifted; the caller (the timestamp correlator) applies the
// 26-bit shift when composing a base.
type GlobalTimestamp2 struct {
	Ts uint64
}

func (GlobalTimestamp2) tracePacket() {}

// Extension carries the stimulus port page number; on ARMv7-M it is the
// only extension packet in use. (Appendix D4.2.6)
type Extension struct {
	Page uint8
}

func (Extension) tracePacket() {}

// Instrumentation carries the payload written to an ITM stimulus port.
// Payload is MSB-first as written by software, 1, 2, or 4 bytes.
type Instrumentation struct {
	Port    uint8
	Payload []byte
}

func (Instrumentation) tracePacket() {}

// EventCounterWrap reports that one or more DWT event counters have
// wrapped. (Appendix C1, pp. 732-734)
type EventCounterWrap struct {
	Cyc, Fold, Lsu, Sleep, Exc, Cpi bool
}

func (EventCounterWrap) tracePacket() {}

// ExceptionAction denotes the action taken by the processor for a given
// exception. (Table D4-6)
type ExceptionAction int

const (
	ActionEntered ExceptionAction = iota
	ActionExited
	ActionReturned
)

func (a ExceptionAction) String() string {
	switch a {
	case ActionEntered:
		return "Entered"
	case ActionExited:
		return "Exited"
	case ActionReturned:
		return "Returned"
	default:
		return fmt.Sprintf("ExceptionAction(%d)", int(a))
	}
}

// Exception identifies one of the named ARMv7-M system exceptions.
// (Table B1-4)
type Exception int

const (
	NonMaskableInt Exception = iota
	HardFault
	MemoryManagement
	BusFault
	UsageFault
	SecureFault
	SVCall
	DebugMonitor
	PendSV
	SysTick
)

func (e Exception) String() string {
	switch e {
	case NonMaskableInt:
		return "NonMaskableInt"
	case HardFault:
		return "HardFault"
	case MemoryManagement:
		return "MemoryManagement"
	case BusFault:
		return "BusFault"
	case UsageFault:
		return "UsageFault"
	case SecureFault:
		return "SecureFault"
	case SVCall:
		return "SVCall"
	case DebugMonitor:
		return "DebugMonitor"
	case PendSV:
		return "PendSV"
	case SysTick:
		return "SysTick"
	default:
		return fmt.Sprintf("Exception(%d)", int(e))
	}
}

// exceptionFromNumber maps an ARMv7-M exception number (Table B1-4) to its
// named Exception constant. ok is false for numbers 0, 1, and the gaps
// within 2..15 that ARMv7-M leaves reserved.
func exceptionFromNumber(n uint8) (Exception, bool) {
	switch n {
	case 2:
		return NonMaskableInt, true
	case 3:
		return HardFault, true
	case 4:
		return MemoryManagement, true
	case 5:
		return BusFault, true
	case 6:
		return UsageFault, true
	case 7:
		return SecureFault, true
	case 11:
		return SVCall, true
	case 12:
		return DebugMonitor, true
	case 14:
		return PendSV, true
	case 15:
		return SysTick, true
	default:
		return 0, false
	}
}

// VectActive is the processor's current exception activation state.
// (Table B1-4) It is either thread mode, a named system exception, or an
// external interrupt identified by IRQ number.
type VectActive struct {
	kind      vectActiveKind
	exception Exception
	irqn      uint8
}

type vectActiveKind int

const (
	vectThreadMode vectActiveKind = iota
	vectException
	vectInterrupt
)

// ThreadMode reports whether the processor is not in an exception.
func (v VectActive) ThreadMode() bool { return v.kind == vectThreadMode }

// AsException returns the named exception and true, if v denotes one.
func (v VectActive) AsException() (Exception, bool) {
	return v.exception, v.kind == vectException
}

// AsInterrupt returns the external IRQ number and true, if v denotes one.
func (v VectActive) AsInterrupt() (uint8, bool) {
	return v.irqn, v.kind == vectInterrupt
}

func (v VectActive) String() string {
	switch v.kind {
	case vectThreadMode:
		return "ThreadMode"
	case vectException:
		return v.exception.String()
	case vectInterrupt:
		return fmt.Sprintf("Interrupt{irqn=%d}", v.irqn)
	default:
		return "VectActive(invalid)"
	}
}

// VectActiveFromExceptionNumber maps an exception number, already narrowed
// to a uint8, to a VectActive. 0 is thread mode; 2..15 are the named
// system exceptions; 16 and above are external interrupts numbered from 0.
// ok is false for reserved numbers (1, and the gaps within 2..15). The
// caller is responsible for rejecting 9-bit exception numbers that don't
// fit a uint8 before calling this (spec §4.3.2).
func VectActiveFromExceptionNumber(n uint8) (VectActive, bool) {
	switch {
	case n == 0:
		return VectActive{kind: vectThreadMode}, true
	case n == 1:
		return VectActive{}, false
	case n <= 15:
		exc, ok := exceptionFromNumber(n)
		if !ok {
			return VectActive{}, false
		}
		return VectActive{kind: vectException, exception: exc}, true
	default:
		return VectActive{kind: vectInterrupt, irqn: n - 16}, true
	}
}

// ExceptionTrace reports the processor entering, exiting, or returning to
// an exception. (Appendix D4.3.2)
type ExceptionTrace struct {
	Exception VectActive
	Action    ExceptionAction
}

func (ExceptionTrace) tracePacket() {}

// PCSample is a periodic program-counter sample. Pc is nil for the
// periodic "processor sleeping" sample. (Appendix D4.3.3)
type PCSample struct {
	Pc *uint32
}

func (PCSample) tracePacket() {}

// DataTracePC reports that a DWT comparator matched a PC value.
// (Appendix D4.3.4)
type DataTracePC struct {
	Comparator uint8
	Pc         uint32
}

func (DataTracePC) tracePacket() {}

// DataTraceAddress reports that a DWT comparator matched an address; Data
// is the low 16 bits of the address, MSB-first as emitted on the wire.
type DataTraceAddress struct {
	Comparator uint8
	Data       []byte
}

func (DataTraceAddress) tracePacket() {}

// MemoryAccessType denotes the type of memory access recorded by a
// DataTraceValue packet.
type MemoryAccessType int

const (
	AccessRead MemoryAccessType = iota
	AccessWrite
)

func (a MemoryAccessType) String() string {
	if a == AccessWrite {
		return "Write"
	}
	return "Read"
}

// DataTraceValue carries the value observed at a DWT comparator match.
// Value is MSB-first as emitted on the wire.
type DataTraceValue struct {
	Comparator uint8
	AccessType MemoryAccessType
	Value      []byte
}

func (DataTraceValue) tracePacket() {}
