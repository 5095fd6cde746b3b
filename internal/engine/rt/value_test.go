package rt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToIntegerToUint32ToInt32(t *testing.T) {
	assert.Equal(t, float64(0), ToInteger(math.NaN()))
	assert.Equal(t, math.Inf(1), ToInteger(math.Inf(1)))
	assert.Equal(t, float64(3), ToInteger(3.9))
	assert.Equal(t, float64(-3), ToInteger(-3.9))

	assert.Equal(t, uint32(0), ToUint32(math.NaN()))
	assert.Equal(t, uint32(4294967295), ToUint32(-1))
	assert.Equal(t, uint32(1), ToUint32(4294967297))

	assert.Equal(t, int32(-1), ToInt32(4294967295))
	assert.Equal(t, int32(1), ToInt32(1))
}

func TestToUint32Exact(t *testing.T) {
	n, jsErr := ToUint32Exact(42)
	require.Nil(t, jsErr)
	assert.Equal(t, uint32(42), n)

	n, jsErr = ToUint32Exact(4294967295)
	require.Nil(t, jsErr)
	assert.Equal(t, uint32(4294967295), n)

	_, jsErr = ToUint32Exact(1.5)
	require.NotNil(t, jsErr)
	assert.Equal(t, KindRange, jsErr.Kind)

	_, jsErr = ToUint32Exact(-1)
	require.NotNil(t, jsErr)
	assert.Equal(t, KindRange, jsErr.Kind)

	_, jsErr = ToUint32Exact(4294967296)
	require.NotNil(t, jsErr)
	assert.Equal(t, KindRange, jsErr.Kind)

	_, jsErr = ToUint32Exact(math.NaN())
	require.NotNil(t, jsErr)
	assert.Equal(t, KindRange, jsErr.Kind)
}

func TestParseAndFormatNumber(t *testing.T) {
	assert.Equal(t, float64(0), ParseNumber(""))
	assert.Equal(t, float64(0), ParseNumber("   "))
	assert.True(t, math.IsNaN(ParseNumber("abc")))
	assert.Equal(t, 42.5, ParseNumber("  42.5  "))

	assert.Equal(t, "NaN", FormatNumber(math.NaN()))
	assert.Equal(t, "Infinity", FormatNumber(math.Inf(1)))
	assert.Equal(t, "-Infinity", FormatNumber(math.Inf(-1)))
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "0", FormatNumber(math.Copysign(0, -1)))
	assert.Equal(t, "3.5", FormatNumber(3.5))
}

func TestStrictEqualsAndSameValue(t *testing.T) {
	assert.True(t, StrictEquals(Number(1), Number(1)))
	assert.False(t, StrictEquals(Number(1), Number(2)))
	assert.False(t, StrictEquals(Number(math.NaN()), Number(math.NaN())))
	assert.True(t, StrictEquals(Number(0), Number(math.Copysign(0, -1))))
	assert.False(t, StrictEquals(Undefined, Null))
	assert.True(t, StrictEquals(Undefined, Undefined))

	assert.True(t, SameValue(Number(math.NaN()), Number(math.NaN())))
	assert.False(t, SameValue(Number(0), Number(math.Copysign(0, -1))))
}

func TestCompareNumbers(t *testing.T) {
	assert.Equal(t, CompareLess, CompareNumbers(1, 2))
	assert.Equal(t, CompareGreaterOrEqual, CompareNumbers(2, 1))
	assert.Equal(t, CompareGreaterOrEqual, CompareNumbers(1, 1))
	assert.Equal(t, CompareUndefined, CompareNumbers(math.NaN(), 1))
}

func TestValueToBoolean(t *testing.T) {
	assert.False(t, Undefined.ToBoolean())
	assert.False(t, Null.ToBoolean())
	assert.False(t, Bool(false).ToBoolean())
	assert.True(t, Bool(true).ToBoolean())
	assert.False(t, Number(0).ToBoolean())
	assert.False(t, Number(math.NaN()).ToBoolean())
	assert.True(t, Number(1).ToBoolean())
}

func TestValueAccessors(t *testing.T) {
	v := Number(3.25)
	assert.Equal(t, TypeNumber, v.Ty())
	assert.True(t, v.IsNumber())
	assert.Equal(t, 3.25, v.NumberValue())

	b := Bool(true)
	assert.True(t, b.IsBoolean())
	assert.True(t, b.BoolValue())

	assert.True(t, Undefined.IsUndefined())
	assert.True(t, Null.IsNullOrUndefined())
	assert.True(t, Undefined.IsNullOrUndefined())
}
