// Package bitbuf implements the ordered, bit-addressable byte queue that
// sits under the ITM/DWT packet assembler. Bytes are appended in arrival
// order and consumed in the same order; within a byte, bit 0 is the first
// bit popped (spec §4.1, §6.1).
package bitbuf

// Buffer is an ordered sequence of bits, added in byte-sized groups and
// consumed a byte, a bit, or a continuation-terminated payload at a time.
// It never reorders bits. A Buffer is not safe for concurrent use; per
// spec §5 a decoder (and its Buffer) is owned exclusively by one caller.
type Buffer struct {
	bytes []byte // pending whole bytes, oldest first
	// bitPos is the number of bits already popped from bytes[0] via
	// PopBit. It is always < 8; once it would hit 8, bytes[0] is
	// dropped and bitPos resets to 0. This is the "pending bit shift"
	// optimization spec §9 calls out as an acceptable alternative to a
	// fully bit-granular buffer.
	bitPos int
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{}
}

// Append enqueues data at the tail of the buffer. It never fails.
func (b *Buffer) Append(data []byte) {
	if len(data) == 0 {
		return
	}
	b.bytes = append(b.bytes, data...)
}

// LenBits reports the number of bits currently buffered.
func (b *Buffer) LenBits() int {
	if len(b.bytes) == 0 {
		return 0
	}
	return len(b.bytes)*8 - b.bitPos
}

// compact drops fully-consumed leading bytes so the backing array doesn't
// grow without bound across many small PopBit calls.
func (b *Buffer) compact() {
	if b.bitPos == 0 {
		return
	}
	// Only ever called right after bitPos reaches 8.
	b.bytes = b.bytes[1:]
	b.bitPos = 0
	if len(b.bytes) == 0 {
		// Let append start from a fresh slice rather than holding on
		// to an arbitrarily-grown backing array forever.
		b.bytes = nil
	}
}

// PopBit removes and returns the next bit, LSB of the current byte first.
// ok is false if the buffer is empty.
func (b *Buffer) PopBit() (bit bool, ok bool) {
	if len(b.bytes) == 0 {
		return false, false
	}
	bit = (b.bytes[0]>>uint(b.bitPos))&1 != 0
	b.bitPos++
	if b.bitPos == 8 {
		b.compact()
	}
	return bit, true
}

// PopByte removes the next 8 bits and returns them as a byte, with the
// first bit popped landing in bit 0. PopByte is defined only when at
// least 8 bits are buffered; ok is false otherwise, and nothing is
// consumed.
func (b *Buffer) PopByte() (value uint8, ok bool) {
	if b.LenBits() < 8 {
		return 0, false
	}
	if b.bitPos == 0 {
		// Fast path: byte-aligned, no bit-by-bit reassembly needed.
		value = b.bytes[0]
		b.bytes = b.bytes[1:]
		return value, true
	}
	for i := 0; i < 8; i++ {
		bit, _ := b.PopBit()
		if bit {
			value |= 1 << uint(i)
		}
	}
	return value, true
}

// PopBytes removes and returns the next n bytes, or returns ok=false and
// leaves the buffer untouched if fewer than n bytes are available.
func (b *Buffer) PopBytes(n int) (payload []byte, ok bool) {
	if b.LenBits() < n*8 {
		return nil, false
	}
	payload = make([]byte, n)
	for i := 0; i < n; i++ {
		payload[i], _ = b.PopByte()
	}
	return payload, true
}

// PeekPayloadSpan reports how many leading bytes, without consuming them,
// form a continuation-bit-terminated payload: zero or more bytes with bit
// 7 set, followed by one byte with bit 7 clear. It returns ok=false if the
// buffer runs out before a terminating byte is seen.
func (b *Buffer) PeekPayloadSpan() (n int, ok bool) {
	available := b.LenBits() / 8
	for i := 0; i < available; i++ {
		byt, byteOK := b.peekByteAt(i)
		if !byteOK {
			return 0, false
		}
		if byt&0x80 == 0 {
			return i + 1, true
		}
	}
	return 0, false
}

// peekByteAt returns the i-th buffered byte (0-indexed from the front)
// without consuming anything.
func (b *Buffer) peekByteAt(i int) (uint8, bool) {
	if b.bitPos == 0 {
		if i >= len(b.bytes) {
			return 0, false
		}
		return b.bytes[i], true
	}
	// Reassemble across the bitPos shift: byte i spans bytes[i] and
	// bytes[i+1] of the backing array.
	if i+1 >= len(b.bytes) {
		return 0, false
	}
	lo := b.bytes[i] >> uint(b.bitPos)
	hi := b.bytes[i+1] << uint(8-b.bitPos)
	return lo | hi, true
}
