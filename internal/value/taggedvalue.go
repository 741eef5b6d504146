// Package value implements the ABI-stable runtime value representation
// (§3.2): the 16-byte TaggedValue, and the small-string/small-list inline
// encodings. This package provides the Go-side mirror of that layout used
// by internal/refimpl to property-test the round-trip laws (§8).
package value

import "math"

// Tag identifies which variant a TaggedValue currently holds (§3.2).
type Tag uint32

const (
	TagInt Tag = iota
	TagFloat
	TagBool
	TagString
	TagList
	TagDict
	TagStruct
	TagError
	TagClosure
	TagNil
)

func (t Tag) String() string {
	switch t {
	case TagInt:
		return "Int"
	case TagFloat:
		return "Float"
	case TagBool:
		return "Bool"
	case TagString:
		return "String"
	case TagList:
		return "List"
	case TagDict:
		return "Dict"
	case TagStruct:
		return "Struct"
	case TagError:
		return "Error"
	case TagClosure:
		return "Closure"
	case TagNil:
		return "Nil"
	default:
		return "Unknown"
	}
}

// SmallStringInlineCapacity and SmallListInlineCapacity are fixed by the
// ABI (§9 "should not be changed independently"); they fit exactly inside
// the 24-byte string header and 136-byte list header respectively.
const (
	SmallStringInlineCapacity = 22
	SmallListInlineCapacity   = 7
)

// TaggedValue mirrors the 16-byte runtime struct: tag (4 bytes), padding
// (4 bytes, always zero), payload (8 bytes). Go's struct layout for this
// exact shape matches the ABI on every platform Go supports.
type TaggedValue struct {
	Tag     Tag
	_       uint32 // padding, always zero
	Payload int64
}

// BoxInt constructs a TaggedValue holding an Int (§4.2 box).
func BoxInt(v int64) TaggedValue { return TaggedValue{Tag: TagInt, Payload: v} }

// BoxFloat bit-reinterprets the f64 payload to i64, as the spec requires.
func BoxFloat(v float64) TaggedValue {
	return TaggedValue{Tag: TagFloat, Payload: int64(math.Float64bits(v))}
}

// BoxBool stores 0/1 in the payload.
func BoxBool(v bool) TaggedValue {
	if v {
		return TaggedValue{Tag: TagBool, Payload: 1}
	}
	return TaggedValue{Tag: TagBool, Payload: 0}
}

// BoxPointer stores a pointer-shaped payload (String/List/Dict/Struct/
// Error/Closure all route through this after the runtime allocates their
// backing storage).
func BoxPointer(tag Tag, ptr uintptr) TaggedValue {
	return TaggedValue{Tag: tag, Payload: int64(ptr)}
}

// Nil constructs the tag=Nil sentinel used for nil_optional (§4.2).
func Nil() TaggedValue { return TaggedValue{Tag: TagNil} }

// UnboxInt/UnboxFloat/UnboxBool extract the payload per the expected
// ValueType (§4.2 unbox); callers are responsible for checking Tag first,
// matching the spec's "reinterprets per expected" contract.
func UnboxInt(v TaggedValue) int64      { return v.Payload }
func UnboxFloat(v TaggedValue) float64  { return math.Float64frombits(uint64(v.Payload)) }
func UnboxBool(v TaggedValue) bool      { return v.Payload != 0 }
func UnboxPointer(v TaggedValue) uintptr { return uintptr(v.Payload) }

// ZeroValue produces the bitwise-zero TaggedValue for a given tag (§4.2
// zero_value); pointer-shaped tags zero to a null payload.
func ZeroValue(tag Tag) TaggedValue { return TaggedValue{Tag: tag} }

// Equal compares tag and payload only, ignoring the always-zero padding
// field; this is the struct-equality relation whose reflexivity,
// symmetry, and transitivity §8 requires as testable properties.
func Equal(a, b TaggedValue) bool { return a.Tag == b.Tag && a.Payload == b.Payload }

// SmallString mirrors the 24-byte string header (§3.2).
type SmallString struct {
	Inline bool
	Len    uint8
	Data   [SmallStringInlineCapacity]byte // inline text, or first 8 bytes = heap pointer
}

// EncodeString chooses inline vs heap representation purely by length,
// matching the spec's compile-time choice for string literals (§4.4) and
// the boundary behavior at exactly 22/23 bytes (§8).
func EncodeString(s string) SmallString {
	if len(s) <= SmallStringInlineCapacity {
		var ss SmallString
		ss.Inline = true
		ss.Len = uint8(len(s))
		copy(ss.Data[:], s)
		return ss
	}
	return SmallString{Inline: false, Len: 0}
}

// IsInlineString reports whether a string of the given byte length uses
// the inline encoding.
func IsInlineString(byteLen int) bool { return byteLen <= SmallStringInlineCapacity }

// IsInlineList reports whether a list of the given element count uses the
// inline encoding (§8 boundary: 7 inline, 8 heap).
func IsInlineList(count int) bool { return count <= SmallListInlineCapacity }

// SmallList mirrors the 136-byte list header (§3.2): tag + len + padding +
// 7 inline TaggedValue slots, or (when heap) a length/pointer pair packed
// into the same region.
type SmallList struct {
	Inline bool
	Len    uint8
	Data   [SmallListInlineCapacity]TaggedValue
}

func EncodeInlineList(elems []TaggedValue) SmallList {
	var sl SmallList
	sl.Inline = true
	sl.Len = uint8(len(elems))
	copy(sl.Data[:], elems)
	return sl
}
