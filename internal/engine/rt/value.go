// Package rt implements the JS-level value, object, property-table,
// scope and error model described by the engine's embedding contract.
// It is the sole client of internal/engine/gc: nothing in gc knows
// about any type defined here, and nothing here reaches into gc's
// internals except through the Walker it registers (walker_impl.go).
package rt

import (
	"math"

	"github.com/rjsgo/rjsgo/internal/engine/gc"
)

// Type identifies the kind of value a Value holds.
type Type uint8

const (
	TypeUndefined Type = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeObject
	TypeIterator
	TypeScope
)

func (t Type) String() string {
	switch t {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	case TypeIterator:
		return "iterator"
	case TypeScope:
		return "scope"
	default:
		return "unknown"
	}
}

// Value is the engine's tagged value record. Go has no native union, so
// the two conceptual payload words (a float64 for numbers/booleans and
// an Address for anything heap-allocated) are kept as separate fields;
// the type remains a flat, fixed-size, two-field-plus-tag record
// matching the ECMAScript value taxonomy (ECMA-262 §8).
type Value struct {
	ty   Type
	num  float64
	addr gc.Address
}

// Undefined is the undefined value.
var Undefined = Value{ty: TypeUndefined}

// Null is the null value.
var Null = Value{ty: TypeNull}

// Bool creates a boolean value.
func Bool(b bool) Value {
	if b {
		return Value{ty: TypeBoolean, num: 1}
	}
	return Value{ty: TypeBoolean, num: 0}
}

// Number creates a number value. NaN is preserved as-is; callers relying
// on SameValue's NaN-equals-NaN semantics should use SameValue rather
// than StrictEquals.
func Number(n float64) Value { return Value{ty: TypeNumber, num: n} }

func objectValue(ty Type, addr gc.Address) Value { return Value{ty: ty, addr: addr} }

// StringValue creates a string value from the address of a heap-
// allocated JsString.
func StringValue(addr gc.Address) Value { return objectValue(TypeString, addr) }

// ObjectValue creates an object value from the address of a heap-
// allocated JsObject.
func ObjectValue(addr gc.Address) Value { return objectValue(TypeObject, addr) }

// IteratorValue creates an iterator value.
func IteratorValue(addr gc.Address) Value { return objectValue(TypeIterator, addr) }

// ScopeValue creates a scope value, used only internally by the scope
// chain representation.
func ScopeValue(addr gc.Address) Value { return objectValue(TypeScope, addr) }

// Ty returns the value's type tag.
func (v Value) Ty() Type { return v.ty }

// IsUndefined, IsNull and IsObject report on v's type tag.
func (v Value) IsUndefined() bool { return v.ty == TypeUndefined }
func (v Value) IsNull() bool      { return v.ty == TypeNull }
func (v Value) IsNullOrUndefined() bool {
	return v.ty == TypeNull || v.ty == TypeUndefined
}
func (v Value) IsObject() bool { return v.ty == TypeObject }
func (v Value) IsString() bool { return v.ty == TypeString }
func (v Value) IsNumber() bool { return v.ty == TypeNumber }
func (v Value) IsBoolean() bool { return v.ty == TypeBoolean }

// BoolValue returns the raw boolean payload; the caller must already
// know v.Ty() == TypeBoolean.
func (v Value) BoolValue() bool { return v.num != 0 }

// NumberValue returns the raw number payload; the caller must already
// know v.Ty() == TypeNumber.
func (v Value) NumberValue() float64 { return v.num }

// Addr returns the raw heap address payload for String/Object/Iterator/
// Scope values; the caller must already know v.Ty() is one of those.
func (v Value) Addr() gc.Address { return v.addr }

// isNaN reports whether a number value holds NaN, handled specially by
// both ToBoolean and the relational comparisons.
func (v Value) isNaN() bool { return v.ty == TypeNumber && math.IsNaN(v.num) }
