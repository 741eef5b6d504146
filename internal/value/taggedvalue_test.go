package value_test

import (
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"

	"github.com/teacompiler/teac/internal/value"
)

func TestBoxUnboxRoundTrip(t *testing.T) {
	assert.Equal(t, int64(42), value.UnboxInt(value.BoxInt(42)))
	assert.Equal(t, 3.5, value.UnboxFloat(value.BoxFloat(3.5)))
	assert.Equal(t, true, value.UnboxBool(value.BoxBool(true)))
	assert.Equal(t, false, value.UnboxBool(value.BoxBool(false)))
}

func TestZeroValueIsBitwiseZero(t *testing.T) {
	zv := value.ZeroValue(value.TagInt)
	assert.Equal(t, int64(0), zv.Payload)
	assert.Equal(t, value.TagInt, zv.Tag)
}

func TestStringInlineBoundary(t *testing.T) {
	assert.True(t, value.IsInlineString(22))
	assert.False(t, value.IsInlineString(23))
}

func TestListInlineBoundary(t *testing.T) {
	assert.True(t, value.IsInlineList(7))
	assert.False(t, value.IsInlineList(8))
}

func TestEncodeStringInline(t *testing.T) {
	s := strings.Repeat("a", 22)
	enc := value.EncodeString(s)
	assert.True(t, enc.Inline)
	assert.Equal(t, uint8(22), enc.Len)
}

func TestEncodeStringHeap(t *testing.T) {
	s := strings.Repeat("a", 23)
	enc := value.EncodeString(s)
	assert.False(t, enc.Inline)
}

func TestTaggedValueSize(t *testing.T) {
	var tv value.TaggedValue
	assert.Equal(t, 16, int(unsafeSizeof(tv)))
}

func unsafeSizeof(v value.TaggedValue) uintptr {
	type mirror struct {
		Tag     uint32
		_       uint32
		Payload int64
	}
	return unsafe.Sizeof(v)
}
