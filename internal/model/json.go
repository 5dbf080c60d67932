package model

import (
	"encoding/json"
	"reflect"
)

// JSON encoding for the TracePacket and MalformedPacket sum types. Each
// variant marshals to an object carrying its own "type" discriminator plus
// its fields; UnmarshalTracePacket/UnmarshalMalformedPacket dispatch back
// to the right Go type on decode. This lives on the sealed types
// themselves rather than behind a wrapper, since both interfaces are
// otherwise impossible for encoding/json to marshal polymorphically.

type jsonEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func marshalVariant(typeName string, data interface{}) ([]byte, error) {
	// Convert to an unnamed struct with the same fields so json.Marshal
	// does not call the variant's own MarshalJSON again.
	v := reflect.ValueOf(data)
	fields := make([]reflect.StructField, v.NumField())
	for i := range fields {
		fields[i] = v.Type().Field(i)
	}
	raw, err := json.Marshal(v.Convert(reflect.StructOf(fields)).Interface())
	if err != nil {
		return nil, err
	}
	if string(raw) == "{}" {
		return json.Marshal(jsonEnvelope{Type: typeName})
	}
	return json.Marshal(jsonEnvelope{Type: typeName, Data: raw})
}

func (p Sync) MarshalJSON() ([]byte, error)     { return marshalVariant("Sync", p) }
func (p Overflow) MarshalJSON() ([]byte, error) { return marshalVariant("Overflow", p) }
func (p LocalTimestamp1) MarshalJSON() ([]byte, error) {
	return marshalVariant("LocalTimestamp1", p)
}
func (p LocalTimestamp2) MarshalJSON() ([]byte, error) {
	return marshalVariant("LocalTimestamp2", p)
}
func (p GlobalTimestamp1) MarshalJSON() ([]byte, error) {
	return marshalVariant("GlobalTimestamp1", p)
}
func (p GlobalTimestamp2) MarshalJSON() ([]byte, error) {
	return marshalVariant("GlobalTimestamp2", p)
}
func (p Extension) MarshalJSON() ([]byte, error) { return marshalVariant("Extension", p) }
func (p Instrumentation) MarshalJSON() ([]byte, error) {
	return marshalVariant("Instrumentation", p)
}
func (p EventCounterWrap) MarshalJSON() ([]byte, error) {
	return marshalVariant("EventCounterWrap", p)
}
type jsonExceptionTrace struct {
	ThreadMode bool            `json:"thread_mode,omitempty"`
	Exception  string          `json:"exception,omitempty"`
	Irqn       *uint8          `json:"irqn,omitempty"`
	Action     ExceptionAction `json:"action"`
}

func (p ExceptionTrace) MarshalJSON() ([]byte, error) {
	out := jsonExceptionTrace{Action: p.Action}
	switch {
	case p.Exception.ThreadMode():
		out.ThreadMode = true
	case func() bool { _, ok := p.Exception.AsException(); return ok }():
		out.Exception = p.Exception.String()
	default:
		irqn, _ := p.Exception.AsInterrupt()
		out.Irqn = &irqn
	}
	return marshalVariant("ExceptionTrace", out)
}

func exceptionFromName(name string) (Exception, bool) {
	for e := NonMaskableInt; e <= SysTick; e++ {
		if e.String() == name {
			return e, true
		}
	}
	return 0, false
}

func unmarshalExceptionTrace(data []byte) (ExceptionTrace, error) {
	var j jsonExceptionTrace
	if len(data) > 0 {
		if err := json.Unmarshal(data, &j); err != nil {
			return ExceptionTrace{}, err
		}
	}
	var vec VectActive
	switch {
	case j.ThreadMode:
		vec, _ = VectActiveFromExceptionNumber(0)
	case j.Irqn != nil:
		vec = VectActive{kind: vectInterrupt, irqn: *j.Irqn}
	default:
		exc, _ := exceptionFromName(j.Exception)
		vec = VectActive{kind: vectException, exception: exc}
	}
	return ExceptionTrace{Exception: vec, Action: j.Action}, nil
}
func (p PCSample) MarshalJSON() ([]byte, error) { return marshalVariant("PCSample", p) }
func (p DataTracePC) MarshalJSON() ([]byte, error) {
	return marshalVariant("DataTracePC", p)
}
func (p DataTraceAddress) MarshalJSON() ([]byte, error) {
	return marshalVariant("DataTraceAddress", p)
}
func (p DataTraceValue) MarshalJSON() ([]byte, error) {
	return marshalVariant("DataTraceValue", p)
}

func (e InvalidHeader) MarshalJSON() ([]byte, error) { return marshalVariant("InvalidHeader", e) }
func (e InvalidHardwarePacket) MarshalJSON() ([]byte, error) {
	return marshalVariant("InvalidHardwarePacket", e)
}
func (e InvalidHardwareDisc) MarshalJSON() ([]byte, error) {
	return marshalVariant("InvalidHardwareDisc", e)
}
func (e InvalidExceptionTrace) MarshalJSON() ([]byte, error) {
	return marshalVariant("InvalidExceptionTrace", e)
}
func (e InvalidPCSampleSize) MarshalJSON() ([]byte, error) {
	return marshalVariant("InvalidPCSampleSize", e)
}
func (e InvalidGTS2Size) MarshalJSON() ([]byte, error) {
	return marshalVariant("InvalidGTS2Size", e)
}
func (e InvalidSync) MarshalJSON() ([]byte, error) { return marshalVariant("InvalidSync", e) }
func (e InvalidSourcePayload) MarshalJSON() ([]byte, error) {
	return marshalVariant("InvalidSourcePayload", e)
}

// UnmarshalTracePacket decodes a TracePacket previously produced by one of
// the MarshalJSON methods above.
func UnmarshalTracePacket(raw []byte) (TracePacket, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	decode := func(v interface{}) error {
		if len(env.Data) == 0 {
			return nil
		}
		return json.Unmarshal(env.Data, v)
	}
	switch env.Type {
	case "Sync":
		return Sync{}, nil
	case "Overflow":
		return Overflow{}, nil
	case "LocalTimestamp1":
		var p LocalTimestamp1
		return p, decode(&p)
	case "LocalTimestamp2":
		var p LocalTimestamp2
		return p, decode(&p)
	case "GlobalTimestamp1":
		var p GlobalTimestamp1
		return p, decode(&p)
	case "GlobalTimestamp2":
		var p GlobalTimestamp2
		return p, decode(&p)
	case "Extension":
		var p Extension
		return p, decode(&p)
	case "Instrumentation":
		var p Instrumentation
		return p, decode(&p)
	case "EventCounterWrap":
		var p EventCounterWrap
		return p, decode(&p)
	case "ExceptionTrace":
		return unmarshalExceptionTrace(env.Data)
	case "PCSample":
		var p PCSample
		return p, decode(&p)
	case "DataTracePC":
		var p DataTracePC
		return p, decode(&p)
	case "DataTraceAddress":
		var p DataTraceAddress
		return p, decode(&p)
	case "DataTraceValue":
		var p DataTraceValue
		return p, decode(&p)
	default:
		return nil, &json.UnsupportedTypeError{}
	}
}

// UnmarshalMalformedPacket decodes a MalformedPacket previously produced
// by one of the MarshalJSON methods above.
func UnmarshalMalformedPacket(raw []byte) (MalformedPacket, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	decode := func(v interface{}) error {
		if len(env.Data) == 0 {
			return nil
		}
		return json.Unmarshal(env.Data, v)
	}
	switch env.Type {
	case "InvalidHeader":
		var e InvalidHeader
		return e, decode(&e)
	case "InvalidHardwarePacket":
		var e InvalidHardwarePacket
		return e, decode(&e)
	case "InvalidHardwareDisc":
		var e InvalidHardwareDisc
		return e, decode(&e)
	case "InvalidExceptionTrace":
		var e InvalidExceptionTrace
		return e, decode(&e)
	case "InvalidPCSampleSize":
		var e InvalidPCSampleSize
		return e, decode(&e)
	case "InvalidGTS2Size":
		var e InvalidGTS2Size
		return e, decode(&e)
	case "InvalidSync":
		var e InvalidSync
		return e, decode(&e)
	case "InvalidSourcePayload":
		var e InvalidSourcePayload
		return e, decode(&e)
	default:
		return nil, &json.UnsupportedTypeError{}
	}
}
