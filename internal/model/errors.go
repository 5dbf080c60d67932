package model

import "fmt"

// SyncMinZeros is the minimum run of zero bits that must precede the
// terminating one bit of a Sync packet. (Appendix D4.2.1)
const SyncMinZeros = 47

// MalformedPacket is a header or payload byte that failed to decode. It
// satisfies the error interface; concrete variants below are sealed via
// the unexported malformedPacket method. A MalformedPacket never corrupts
// decoder state beyond the bytes it consumed (spec §7).
type MalformedPacket interface {
	error
	malformedPacket()
}

// InvalidHeader reports a header byte that matches no known bit pattern.
type InvalidHeader struct {
	Byte uint8
}

func (InvalidHeader) malformedPacket() {}
func (e InvalidHeader) Error() string {
	return fmt.Sprintf("header is invalid and cannot be decoded: %#08b", e.Byte)
}

// InvalidHardwarePacket reports a hardware source packet whose
// discriminator ID was recognized but whose payload length doesn't match
// any decodable shape for that ID.
type InvalidHardwarePacket struct {
	DiscID  uint8
	Payload []byte
}

func (InvalidHardwarePacket) malformedPacket() {}
func (e InvalidHardwarePacket) Error() string {
	return fmt.Sprintf("hardware source packet type discriminator ID (%d) or payload length (%d) is invalid", e.DiscID, len(e.Payload))
}

// InvalidHardwareDisc reports a hardware source packet whose
// discriminator ID falls outside the defined ranges ([0,2] and [8,23]).
type InvalidHardwareDisc struct {
	DiscID uint8
	Size   int
}

func (InvalidHardwareDisc) malformedPacket() {}
func (e InvalidHardwareDisc) Error() string {
	return fmt.Sprintf("hardware source packet discriminator ID is invalid: %d", e.DiscID)
}

// InvalidExceptionTrace reports an exception trace packet that refers to
// an undefined action or an exception number with no VectActive mapping.
type InvalidExceptionTrace struct {
	Exception uint16
	Function  uint8
}

func (InvalidExceptionTrace) malformedPacket() {}
func (e InvalidExceptionTrace) Error() string {
	return fmt.Sprintf("IRQ number %d and/or action %d is invalid", e.Exception, e.Function)
}

// InvalidPCSampleSize reports a PCSample packet whose payload length is
// neither 1 (with a zero value byte) nor 4.
type InvalidPCSampleSize struct {
	Payload []byte
}

func (InvalidPCSampleSize) malformedPacket() {}
func (e InvalidPCSampleSize) Error() string {
	return fmt.Sprintf("payload length of PC sample is invalid: %d", len(e.Payload))
}

// InvalidGTS2Size reports a GlobalTimestamp2 packet whose payload does not
// contain a 48-bit or 64-bit timestamp.
type InvalidGTS2Size struct {
	Payload []byte
}

func (InvalidGTS2Size) malformedPacket() {}
func (InvalidGTS2Size) Error() string {
	return "GlobalTimestamp2 packet does not contain a 48-bit or 64-bit timestamp"
}

// InvalidSync reports a Sync packet whose run of zero bits fell short of
// SyncMinZeros before a one bit terminated it.
type InvalidSync struct {
	ZeroCount int
}

func (InvalidSync) malformedPacket() {}
func (e InvalidSync) Error() string {
	return fmt.Sprintf("the number of zeroes in the synchronization packet is less than expected: %d < %d", e.ZeroCount, SyncMinZeros)
}

// InvalidSourcePayload reports a software or hardware source packet
// header whose SS field carries the reserved size encoding 0b00.
type InvalidSourcePayload struct {
	Header uint8
	Size   uint8
}

func (InvalidSourcePayload) malformedPacket() {}
func (InvalidSourcePayload) Error() string {
	return "a source packet (from software or hardware) contains an invalid expected payload size"
}
