package livelog

import (
	"time"
)

// Kind identifies the concrete type stored in a Field.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindInt64
	KindUint64
	KindFloat64
	KindBool
	KindDuration
	KindTime
	KindError
	KindBytes
	KindAny
)

// Field is a typed key/value pair. Records, metadata rendering and fluent
// events all carry their values as Fields.
type Field struct {
	K       string
	Kind    Kind
	Str     string
	Int64   int64
	Uint64  uint64
	Float64 float64
	Bool    bool
	Dur     time.Duration
	Time    time.Time
	Err     error
	Bytes   []byte
	Any     any
}

// Helpers for ergonomics.

func Str(k, v string) Field             { return Field{K: k, Kind: KindString, Str: v} }
func Int(k string, v int) Field         { return Field{K: k, Kind: KindInt64, Int64: int64(v)} }
func Int64(k string, v int64) Field     { return Field{K: k, Kind: KindInt64, Int64: v} }
func Uint64(k string, v uint64) Field   { return Field{K: k, Kind: KindUint64, Uint64: v} }
func Float64(k string, v float64) Field { return Field{K: k, Kind: KindFloat64, Float64: v} }
func Bool(k string, v bool) Field       { return Field{K: k, Kind: KindBool, Bool: v} }
func Dur(k string, v time.Duration) Field {
	return Field{K: k, Kind: KindDuration, Dur: v}
}
func Time(k string, v time.Time) Field { return Field{K: k, Kind: KindTime, Time: v} }
func Err(k string, e error) Field      { return Field{K: k, Kind: KindError, Err: e} }
func Bytes(k string, b []byte) Field   { return Field{K: k, Kind: KindBytes, Bytes: b} }
func Any(k string, v any) Field        { return Field{K: k, Kind: KindAny, Any: v} }

// FieldOf picks the narrowest Kind for v.
func FieldOf(k string, v any) Field {
	switch vv := v.(type) {
	case string:
		return Str(k, vv)
	case bool:
		return Bool(k, vv)
	case int:
		return Int64(k, int64(vv))
	case int8:
		return Int64(k, int64(vv))
	case int16:
		return Int64(k, int64(vv))
	case int32:
		return Int64(k, int64(vv))
	case int64:
		return Int64(k, vv)
	case uint:
		return Uint64(k, uint64(vv))
	case uint8:
		return Uint64(k, uint64(vv))
	case uint16:
		return Uint64(k, uint64(vv))
	case uint32:
		return Uint64(k, uint64(vv))
	case uint64:
		return Uint64(k, vv)
	case float32:
		return Float64(k, float64(vv))
	case float64:
		return Float64(k, vv)
	case time.Duration:
		return Dur(k, vv)
	case time.Time:
		return Time(k, vv)
	case []byte:
		return Bytes(k, vv)
	case Field:
		vv.K = k
		return vv
	case error:
		return Err(k, vv)
	default:
		return Any(k, v)
	}
}

// Value returns the field's payload as a plain Go value.
func (f Field) Value() any {
	switch f.Kind {
	case KindString:
		return f.Str
	case KindInt64:
		return f.Int64
	case KindUint64:
		return f.Uint64
	case KindFloat64:
		return f.Float64
	case KindBool:
		return f.Bool
	case KindDuration:
		return f.Dur
	case KindTime:
		return f.Time
	case KindError:
		return f.Err
	case KindBytes:
		return f.Bytes
	default:
		return f.Any
	}
}

func copyFields(dst, src []Field) []Field {
	if len(src) == 0 {
		return dst
	}
	return append(dst, src...)
}
