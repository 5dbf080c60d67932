// Package header implements the ITM/DWT header classifier: a pure
// function from a single header byte to either a complete packet or a
// stub describing how to complete it. (spec §4.2)
package header

import "itmtrace/internal/model"

// payloadLen translates the 2-bit SS size field of a source packet header
// (Appendix D4.2.8, Table D4-4) to the number of payload bytes that
// follow the header. ok is false for the reserved encoding 0b00.
func payloadLen(ss uint8) (n int, ok bool) {
	switch ss {
	case 0b01:
		return 1, true
	case 0b10:
		return 2, true
	case 0b11:
		return 4, true
	default:
		return 0, false
	}
}

func isValidHardwareDisc(discID uint8) bool {
	return discID <= 2 || (discID >= 8 && discID <= 23)
}

// Classify decodes the leading byte of a packet into a complete packet or
// a stub describing what bytes to read next. It is a total, pure function
// of one byte: the same byte always classifies the same way. (spec §4.2,
// §8.1 "header pure function")
func Classify(b uint8) (model.HeaderResult, model.MalformedPacket) {
	switch {
	case b == 0x00:
		// 0000_0000
		return model.HeaderResult{Stub: model.SyncStub{InitialZeroCount: 8}}, nil

	case b == 0x70:
		// 0111_0000
		return model.HeaderResult{Packet: model.Overflow{}}, nil

	case b&0xCF == 0xC0:
		// 11rr_0000
		r := (b >> 4) & 0x3
		return model.HeaderResult{Stub: model.LocalTimestampStub{DataRelation: localTimestampRelation(r)}}, nil

	case b&0x8F == 0x00:
		// 0ttt_0000, t != 0 (0x00 handled above), t != 7 (0x70 handled above)
		t := (b >> 4) & 0x7
		return model.HeaderResult{Packet: model.LocalTimestamp2{Ts: t}}, nil

	case b == 0x94:
		// 1001_0100
		return model.HeaderResult{Stub: model.GlobalTimestamp1Stub{}}, nil

	case b == 0xB4:
		// 1011_0100
		return model.HeaderResult{Stub: model.GlobalTimestamp2Stub{}}, nil

	case b&0x8F == 0x08:
		// 0ppp_1000
		p := (b >> 4) & 0x7
		return model.HeaderResult{Packet: model.Extension{Page: p}}, nil

	default:
		a := (b >> 3) & 0x1F
		isHardware := (b>>2)&1 != 0
		ss := b & 0x3

		if isHardware {
			// aaaaa_1_ss
			if !isValidHardwareDisc(a) {
				return model.HeaderResult{}, model.InvalidHardwareDisc{DiscID: a, Size: int(ss)}
			}
			n, ok := payloadLen(ss)
			if !ok {
				return model.HeaderResult{}, model.InvalidSourcePayload{Header: b, Size: ss}
			}
			return model.HeaderResult{Stub: model.HardwareSourceStub{DiscID: a, ExpectedSize: n}}, nil
		}

		// aaaaa_0_ss
		n, ok := payloadLen(ss)
		if !ok {
			return model.HeaderResult{}, model.InvalidSourcePayload{Header: b, Size: ss}
		}
		return model.HeaderResult{Stub: model.InstrumentationStub{Port: a, ExpectedSize: n}}, nil
	}
}

func localTimestampRelation(r uint8) model.TimestampDataRelation {
	switch r {
	case 0b00:
		return model.RelationSync
	case 0b01:
		return model.RelationUnknownDelay
	case 0b10:
		return model.RelationAssocEventDelay
	default: // 0b11
		return model.RelationUnknownAssocEventDelay
	}
}
