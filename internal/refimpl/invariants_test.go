package refimpl

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teacompiler/teac/internal/value"
)

var intSamples = []int64{0, 1, -1, 42, math.MaxInt64, math.MinInt64}
var floatSamples = []float64{0, 1.5, -1.5, 3.14159, math.Inf(1), math.Inf(-1), math.NaN()}
var boolSamples = []bool{true, false}

// TestBoxUnboxRoundTrip exercises invariant 2: unbox(box(v)) == v for
// every scalar tag, generated in Go and checked through the C-shaped
// callback boundary in harness.go.
func TestBoxUnboxRoundTrip(t *testing.T) {
	for _, v := range intSamples {
		v := v
		ok := Run(func() bool {
			return value.UnboxInt(value.BoxInt(v)) == v
		})
		assert.True(t, ok, "int round trip failed for %d", v)
	}

	for _, v := range floatSamples {
		v := v
		ok := Run(func() bool {
			got := value.UnboxFloat(value.BoxFloat(v))
			if math.IsNaN(v) {
				return math.IsNaN(got)
			}
			return got == v
		})
		assert.True(t, ok, "float round trip failed for %v", v)
	}

	for _, v := range boolSamples {
		v := v
		ok := Run(func() bool {
			return value.UnboxBool(value.BoxBool(v)) == v
		})
		assert.True(t, ok, "bool round trip failed for %v", v)
	}
}

// TestStructEqualityReflexiveSymmetricTransitive exercises invariant 3
// over value.Equal.
func TestStructEqualityReflexiveSymmetricTransitive(t *testing.T) {
	samples := []value.TaggedValue{
		value.BoxInt(0), value.BoxInt(42), value.BoxInt(-7),
		value.BoxFloat(1.5), value.BoxBool(true), value.BoxBool(false),
		value.Nil(), value.BoxPointer(value.TagString, 0x1000),
	}

	for _, a := range samples {
		a := a
		assert.True(t, Run(func() bool { return value.Equal(a, a) }), "reflexivity failed for %+v", a)
	}

	for _, a := range samples {
		for _, b := range samples {
			a, b := a, b
			sym := Run(func() bool { return value.Equal(a, b) == value.Equal(b, a) })
			assert.True(t, sym, "symmetry failed for %+v, %+v", a, b)
		}
	}

	for _, a := range samples {
		for _, b := range samples {
			for _, c := range samples {
				a, b, c := a, b, c
				ok := Run(func() bool {
					if value.Equal(a, b) && value.Equal(b, c) {
						return value.Equal(a, c)
					}
					return true
				})
				assert.True(t, ok, "transitivity failed for %+v, %+v, %+v", a, b, c)
			}
		}
	}
}
