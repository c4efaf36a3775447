package cblbridge

import (
	"fmt"
	"strings"
)

// ValueKind identifies the variant held by a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindBool
	KindInt32
	KindInt64
	KindDouble
	KindBytes
	KindRef
	KindArray
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindDouble:
		return "double"
	case KindBytes:
		return "bytes"
	case KindRef:
		return "ref"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is the tagged union carried across the thread boundary. A Value is
// immutable after construction; byte and array contents must not be mutated
// by the receiver.
type Value struct {
	kind  ValueKind
	b     bool
	i     int64
	f     float64
	bytes []byte
	ref   any
	arr   []Value
}

// Null returns the null Value. The zero Value is also null.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int32 returns a 32-bit integer Value.
func Int32(i int32) Value { return Value{kind: KindInt32, i: int64(i)} }

// Int64 returns a 64-bit integer Value.
func Int64(i int64) Value { return Value{kind: KindInt64, i: i} }

// Double returns a 64-bit float Value.
func Double(f float64) Value { return Value{kind: KindDouble, f: f} }

// Bytes returns a length-prefixed byte sequence Value. The slice is not
// copied; the caller must not mutate it after hand-off.
func Bytes(b []byte) Value { return Value{kind: KindBytes, bytes: b} }

// String returns a byte sequence Value holding s.
func String(s string) Value { return Value{kind: KindBytes, bytes: []byte(s)} }

// Ref returns an opaque identity reference Value. Equality of refs is
// identity equality of the wrapped value.
func Ref(v any) Value { return Value{kind: KindRef, ref: v} }

// Array returns an ordered array Value.
func Array(vs ...Value) Value { return Value{kind: KindArray, arr: vs} }

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether v is the null Value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload. ok is false if v is not a bool.
func (v Value) AsBool() (value, ok bool) {
	return v.b, v.kind == KindBool
}

// AsInt32 returns the 32-bit integer payload.
func (v Value) AsInt32() (int32, bool) {
	return int32(v.i), v.kind == KindInt32
}

// AsInt64 returns the 64-bit integer payload. Int32 values widen.
func (v Value) AsInt64() (int64, bool) {
	return v.i, v.kind == KindInt64 || v.kind == KindInt32
}

// AsDouble returns the float payload.
func (v Value) AsDouble() (float64, bool) {
	return v.f, v.kind == KindDouble
}

// AsBytes returns the byte payload.
func (v Value) AsBytes() ([]byte, bool) {
	return v.bytes, v.kind == KindBytes
}

// AsString returns the byte payload as a string.
func (v Value) AsString() (string, bool) {
	return string(v.bytes), v.kind == KindBytes
}

// AsRef returns the opaque reference payload.
func (v Value) AsRef() (any, bool) {
	return v.ref, v.kind == KindRef
}

// AsArray returns the array payload.
func (v Value) AsArray() ([]Value, bool) {
	return v.arr, v.kind == KindArray
}

// String renders a debug representation of the Value.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindInt32, KindInt64:
		return fmt.Sprintf("%d", v.i)
	case KindDouble:
		return fmt.Sprintf("%g", v.f)
	case KindBytes:
		if len(v.bytes) > 32 {
			return fmt.Sprintf("bytes[%d]", len(v.bytes))
		}
		return fmt.Sprintf("%q", v.bytes)
	case KindRef:
		return fmt.Sprintf("ref(%T)", v.ref)
	case KindArray:
		var b strings.Builder
		b.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(e.String())
		}
		b.WriteByte(']')
		return b.String()
	default:
		return v.kind.String()
	}
}
