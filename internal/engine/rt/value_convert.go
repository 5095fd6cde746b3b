package rt

import (
	"math"
	"strconv"
	"strings"
)

// ToBoolean implements ECMA-262 §9.2 ToBoolean for values that need no
// heap access: undefined, null, false, +0, -0 and NaN convert to false.
// Every String value converts to true here, the empty string included;
// JsEnv.ToBoolean handles the empty-string case.
func (v Value) ToBoolean() bool {
	switch v.ty {
	case TypeUndefined, TypeNull:
		return false
	case TypeBoolean:
		return v.num != 0
	case TypeNumber:
		if v.isNaN() {
			return false
		}
		return v.num != 0
	case TypeString:
		// String emptiness is owned by JsString; callers with access to
		// an Env should prefer Env.ToBoolean, which can inspect the
		// string's length. A bare Value has no way to read heap memory.
		return true
	default:
		return true
	}
}

// ToInteger implements ECMA-262 §9.4: NaN becomes 0, infinities are
// preserved, and finite numbers are truncated toward zero.
func ToInteger(n float64) float64 {
	if math.IsNaN(n) {
		return 0
	}
	if math.IsInf(n, 0) {
		return n
	}
	return math.Trunc(n)
}

// ToUint32 implements ECMA-262 §9.7: ToInteger modulo 2^32, expressed as
// an unsigned 32-bit value.
func ToUint32(n float64) uint32 {
	i := ToInteger(n)
	if math.IsInf(i, 0) || math.IsNaN(i) {
		return 0
	}
	m := math.Mod(i, 4294967296)
	if m < 0 {
		m += 4294967296
	}
	return uint32(m)
}

// ToInt32 implements ECMA-262 §9.5: like ToUint32 but reinterpreted as
// signed two's complement.
func ToInt32(n float64) int32 {
	return int32(ToUint32(n))
}

// ToUint32Exact implements spec.md §4.4's to_uint32_exact: unlike
// ToUint32, which always succeeds via modular wraparound, this rejects
// any n that is not already a non-negative integer representable in
// 32 bits, raising RangeError instead of silently truncating — the
// check array-length assignment and other exact-index operations need.
func ToUint32Exact(n float64) (uint32, *JsError) {
	if math.IsNaN(n) || math.IsInf(n, 0) || math.Trunc(n) != n {
		return 0, NewRangeError("value is not an integer: %v", n)
	}
	if n < 0 || n > 4294967295 {
		return 0, NewRangeError("value out of uint32 range: %v", n)
	}
	return uint32(n), nil
}

// ParseNumber implements the numeric half of ECMA-262 §9.3 ToNumber for
// string inputs: a plain strconv parse, trimmed, with empty/whitespace-
// only strings converting to +0 per spec.
func ParseNumber(s string) float64 {
	trimmed := trimJSWhitespace(s)
	if trimmed == "" {
		return 0
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func trimJSWhitespace(s string) string {
	start, end := 0, len(s)
	isSpace := func(b byte) bool {
		switch b {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			return true
		default:
			return false
		}
	}
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

// FormatNumber implements the numeric half of ECMA-262 §9.8 ToString
// for the Number type: NaN/Infinity literals, -0 prints as "0", and
// finite numbers use the shortest round-tripping decimal form.
func FormatNumber(n float64) string {
	if math.IsNaN(n) {
		return "NaN"
	}
	if math.IsInf(n, 1) {
		return "Infinity"
	}
	if math.IsInf(n, -1) {
		return "-Infinity"
	}
	if n == 0 {
		return "0"
	}
	if abs := math.Abs(n); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	// Exponential form; Go pads the exponent to two digits ("1e-07"),
	// ECMA-262 does not.
	mant, exp, _ := strings.Cut(strconv.FormatFloat(n, 'e', -1, 64), "e")
	return mant + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
}

// StrictEquals implements ECMA-262 §11.9.6 (===): values of different
// types are never equal, NaN is never equal to anything including
// itself, and +0 equals -0.
func StrictEquals(a, b Value) bool {
	if a.ty != b.ty {
		return false
	}
	switch a.ty {
	case TypeUndefined, TypeNull:
		return true
	case TypeBoolean:
		return a.num == b.num
	case TypeNumber:
		return a.num == b.num // Go's == already gives NaN!=NaN and +0==-0
	case TypeString:
		return a.addr == b.addr // interned/compared by caller at the string layer
	default:
		return a.addr == b.addr
	}
}

// SameValue implements ECMA-262 §9.12: like StrictEquals except NaN is
// equal to itself and +0 is distinct from -0.
func SameValue(a, b Value) bool {
	if a.ty != b.ty {
		return false
	}
	if a.ty == TypeNumber {
		if math.IsNaN(a.num) && math.IsNaN(b.num) {
			return true
		}
		if a.num == 0 && b.num == 0 {
			return math.Signbit(a.num) == math.Signbit(b.num)
		}
		return a.num == b.num
	}
	return StrictEquals(a, b)
}

// CompareResult is the outcome of the abstract relational comparison
// (ECMA-262 §11.8.5), which is not a total order: an undefined result
// occurs whenever either operand's ToNumber is NaN.
type CompareResult int

const (
	CompareLess CompareResult = iota
	CompareGreaterOrEqual
	CompareUndefined
)

// CompareNumbers implements the numeric half of the abstract relational
// comparison once both operands have already been reduced to numbers.
func CompareNumbers(a, b float64) CompareResult {
	if math.IsNaN(a) || math.IsNaN(b) {
		return CompareUndefined
	}
	if a < b {
		return CompareLess
	}
	return CompareGreaterOrEqual
}
