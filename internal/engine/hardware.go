package engine

import (
	"encoding/binary"

	"itmtrace/internal/model"
)

// decodeHardwareSource interprets a fully-drained DWT hardware source
// payload according to its discriminator ID (spec §4.3.2). disc_id was
// already validated as a known discriminator range by the header
// classifier; only the payload shape remains to be checked here.
func decodeHardwareSource(discID uint8, payload []byte) (model.TracePacket, model.MalformedPacket) {
	switch {
	case discID == 0:
		return decodeEventCounterWrap(payload)
	case discID == 1:
		return decodeExceptionTrace(payload)
	case discID == 2:
		return decodePCSample(payload)
	default:
		return decodeDataTrace(discID, payload)
	}
}

func decodeEventCounterWrap(payload []byte) (model.TracePacket, model.MalformedPacket) {
	if len(payload) != 1 {
		return nil, model.InvalidHardwarePacket{DiscID: 0, Payload: payload}
	}
	b := payload[0]
	return model.EventCounterWrap{
		Cyc:   b&(1<<5) != 0,
		Fold:  b&(1<<4) != 0,
		Lsu:   b&(1<<3) != 0,
		Sleep: b&(1<<2) != 0,
		Exc:   b&(1<<1) != 0,
		Cpi:   b&(1<<0) != 0,
	}, nil
}

func decodeExceptionTrace(payload []byte) (model.TracePacket, model.MalformedPacket) {
	if len(payload) != 2 {
		return nil, model.InvalidHardwarePacket{DiscID: 1, Payload: payload}
	}
	function := (payload[1] >> 4) & 0b11
	exceptionNumber := (uint16(payload[1]&1) << 8) | uint16(payload[0])

	if exceptionNumber > 0xFF {
		return nil, model.InvalidExceptionTrace{Exception: exceptionNumber, Function: function}
	}
	vec, ok := model.VectActiveFromExceptionNumber(uint8(exceptionNumber))
	if !ok {
		return nil, model.InvalidExceptionTrace{Exception: exceptionNumber, Function: function}
	}

	var action model.ExceptionAction
	switch function {
	case 0b01:
		action = model.ActionEntered
	case 0b10:
		action = model.ActionExited
	case 0b11:
		action = model.ActionReturned
	default:
		return nil, model.InvalidExceptionTrace{Exception: exceptionNumber, Function: function}
	}

	return model.ExceptionTrace{Exception: vec, Action: action}, nil
}

func decodePCSample(payload []byte) (model.TracePacket, model.MalformedPacket) {
	switch {
	case len(payload) == 1 && payload[0] == 0:
		return model.PCSample{Pc: nil}, nil
	case len(payload) == 4:
		pc := binary.LittleEndian.Uint32(payload)
		return model.PCSample{Pc: &pc}, nil
	default:
		return nil, model.InvalidPCSampleSize{Payload: payload}
	}
}

// decodeDataTrace handles disc_id in [8,23]: DWT comparator-matched PC,
// address, and value packets. The discriminator's low 5 bits decompose as
// t (type, bits [4:3]), c (comparator, bits [2:1]), d (direction, bit 0).
func decodeDataTrace(discID uint8, payload []byte) (model.TracePacket, model.MalformedPacket) {
	t := (discID >> 3) & 0x3
	c := (discID >> 1) & 0x3
	d := discID & 0x1

	switch {
	case t == 0b01 && d == 0 && len(payload) == 4:
		return model.DataTracePC{Comparator: c, Pc: binary.LittleEndian.Uint32(payload)}, nil
	case t == 0b01 && d == 1 && len(payload) == 2:
		return model.DataTraceAddress{Comparator: c, Data: payload}, nil
	case t == 0b10:
		accessType := model.AccessRead
		if d == 1 {
			accessType = model.AccessWrite
		}
		return model.DataTraceValue{Comparator: c, AccessType: accessType, Value: payload}, nil
	default:
		return nil, model.InvalidHardwarePacket{DiscID: discID, Payload: payload}
	}
}
