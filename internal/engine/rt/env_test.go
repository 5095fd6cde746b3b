package rt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnv(t *testing.T) *JsEnv {
	t.Helper()
	h := newTestHeap(t)
	env, err := NewEnv(h, NewWalkerImpl(), nil, nil)
	require.NoError(t, err)
	return env
}

func TestNewEnvPrototypeChain(t *testing.T) {
	env := newTestEnv(t)
	space := env.Heap().Space()

	global := Object{addr: env.GlobalObject().Addr()}
	assert.Equal(t, env.ObjectPrototype().Addr(), global.Prototype(space).Addr())

	arrayProto := Object{addr: env.ArrayPrototype().Addr()}
	assert.Equal(t, env.ObjectPrototype().Addr(), arrayProto.Prototype(space).Addr())

	objectProto := Object{addr: env.ObjectPrototype().Addr()}
	assert.True(t, objectProto.Prototype(space).IsNull())
}

func TestEnvSetGetDeleteProperty(t *testing.T) {
	env := newTestEnv(t)
	obj, err := NewObject(env.Heap(), env.ObjectPrototype(), ClassObject)
	require.NoError(t, err)
	v := ObjectValue(obj.Addr())

	jsErr := env.SetProperty(v, 1, Number(42), false)
	require.Nil(t, jsErr)

	got, jsErr := env.GetProperty(v, 1)
	require.Nil(t, jsErr)
	assert.Equal(t, float64(42), got.NumberValue())

	deleted, jsErr := env.DeleteProperty(v, 1)
	require.Nil(t, jsErr)
	assert.True(t, deleted)

	got, jsErr = env.GetProperty(v, 1)
	require.Nil(t, jsErr)
	assert.True(t, got.IsUndefined())
}

func TestEnvGetPropertyWalksPrototypeChain(t *testing.T) {
	env := newTestEnv(t)
	parent, err := NewObject(env.Heap(), env.ObjectPrototype(), ClassObject)
	require.NoError(t, err)
	require.NoError(t, parent.DefineOwnProperty(env.Heap(), 5, Property{
		Value: Number(7), Writable: true, Enumerable: true, Configurable: true,
	}))

	child, err := NewObject(env.Heap(), ObjectValue(parent.Addr()), ClassObject)
	require.NoError(t, err)

	got, jsErr := env.GetProperty(ObjectValue(child.Addr()), 5)
	require.Nil(t, jsErr)
	assert.Equal(t, float64(7), got.NumberValue())
}

func TestEnvGetSetPropertyOnNonObjectIsTypeError(t *testing.T) {
	env := newTestEnv(t)
	_, jsErr := env.GetProperty(Number(1), 1)
	require.NotNil(t, jsErr)
	assert.Equal(t, KindType, jsErr.Kind)

	jsErr = env.SetProperty(Number(1), 1, Number(1), false)
	require.NotNil(t, jsErr)
	assert.Equal(t, KindType, jsErr.Kind)
}

func TestEnvHostFunctionCall(t *testing.T) {
	env := newTestEnv(t)
	fn, err := env.NewHostFunction(func(env *JsEnv, this Value, args []Value) (Value, *JsError) {
		if len(args) == 0 {
			return Undefined, nil
		}
		return Number(args[0].NumberValue() * 2), nil
	})
	require.NoError(t, err)

	result, jsErr := env.Call(fn, Undefined, []Value{Number(21)})
	require.Nil(t, jsErr)
	assert.Equal(t, float64(42), result.NumberValue())
}

func TestEnvCallNonCallableIsTypeError(t *testing.T) {
	env := newTestEnv(t)
	obj, err := NewObject(env.Heap(), env.ObjectPrototype(), ClassObject)
	require.NoError(t, err)

	_, jsErr := env.Call(ObjectValue(obj.Addr()), Undefined, nil)
	require.NotNil(t, jsErr)
	assert.Equal(t, KindType, jsErr.Kind)

	_, jsErr = env.Call(Number(1), Undefined, nil)
	require.NotNil(t, jsErr)
	assert.Equal(t, KindType, jsErr.Kind)
}

func TestEnvAccessorProperty(t *testing.T) {
	env := newTestEnv(t)
	obj, err := NewObject(env.Heap(), env.ObjectPrototype(), ClassObject)
	require.NoError(t, err)

	backing := Number(0)
	getter, err := env.NewHostFunction(func(env *JsEnv, this Value, args []Value) (Value, *JsError) {
		return backing, nil
	})
	require.NoError(t, err)
	setter, err := env.NewHostFunction(func(env *JsEnv, this Value, args []Value) (Value, *JsError) {
		backing = args[0]
		return Undefined, nil
	})
	require.NoError(t, err)

	require.NoError(t, obj.DefineOwnProperty(env.Heap(), 9, Property{
		IsAccessor: true, Getter: getter, Setter: setter,
		Enumerable: true, Configurable: true,
	}))

	v := ObjectValue(obj.Addr())
	jsErr := env.SetProperty(v, 9, Number(99), false)
	require.Nil(t, jsErr)

	got, jsErr := env.GetProperty(v, 9)
	require.Nil(t, jsErr)
	assert.Equal(t, float64(99), got.NumberValue())
}

func TestEnvSetPropertyNonWritableSilentlyNoOpsInSloppyMode(t *testing.T) {
	env := newTestEnv(t)
	obj, err := NewObject(env.Heap(), env.ObjectPrototype(), ClassObject)
	require.NoError(t, err)
	require.NoError(t, obj.DefineOwnProperty(env.Heap(), 1, Property{
		Value: Number(1), Writable: false, Enumerable: true, Configurable: false,
	}))

	v := ObjectValue(obj.Addr())
	jsErr := env.SetProperty(v, 1, Number(2), false)
	require.Nil(t, jsErr)

	got, jsErr := env.GetProperty(v, 1)
	require.Nil(t, jsErr)
	assert.Equal(t, float64(1), got.NumberValue(), "non-writable property must keep its original value")
}

func TestEnvSetPropertyNonWritableRaisesCannotWriteInStrictMode(t *testing.T) {
	env := newTestEnv(t)
	obj, err := NewObject(env.Heap(), env.ObjectPrototype(), ClassObject)
	require.NoError(t, err)
	require.NoError(t, obj.DefineOwnProperty(env.Heap(), 1, Property{
		Value: Number(1), Writable: false, Enumerable: true, Configurable: false,
	}))

	v := ObjectValue(obj.Addr())
	jsErr := env.SetProperty(v, 1, Number(2), true)
	require.NotNil(t, jsErr)
	assert.Equal(t, KindType, jsErr.Kind)
	assert.Contains(t, jsErr.Message, "TypeCannotWrite")

	got, jsErr := env.GetProperty(v, 1)
	require.Nil(t, jsErr)
	assert.Equal(t, float64(1), got.NumberValue())
}

func TestEnvSetPropertyPreservesAttributesOnWrite(t *testing.T) {
	env := newTestEnv(t)
	obj, err := NewObject(env.Heap(), env.ObjectPrototype(), ClassObject)
	require.NoError(t, err)
	require.NoError(t, obj.DefineOwnProperty(env.Heap(), 1, Property{
		Value: Number(1), Writable: true, Enumerable: false, Configurable: false,
	}))

	v := ObjectValue(obj.Addr())
	require.Nil(t, env.SetProperty(v, 1, Number(2), false))

	p, ok := obj.GetOwnProperty(env.Heap().Space(), 1)
	require.True(t, ok)
	assert.Equal(t, float64(2), p.Value.NumberValue())
	assert.False(t, p.Enumerable)
	assert.False(t, p.Configurable)
}

func TestEnvSetPropertyGetterOnlyRejectsWriteInStrictMode(t *testing.T) {
	env := newTestEnv(t)
	obj, err := NewObject(env.Heap(), env.ObjectPrototype(), ClassObject)
	require.NoError(t, err)
	getter, err := env.NewHostFunction(func(env *JsEnv, this Value, args []Value) (Value, *JsError) {
		return Number(42), nil
	})
	require.NoError(t, err)
	require.NoError(t, obj.DefineOwnProperty(env.Heap(), 2, Property{
		IsAccessor: true, Getter: getter, Enumerable: true, Configurable: true,
	}))

	v := ObjectValue(obj.Addr())
	jsErr := env.SetProperty(v, 2, Number(1), true)
	require.NotNil(t, jsErr)
	assert.Equal(t, KindType, jsErr.Kind)
	assert.Contains(t, jsErr.Message, "PropertyHasGetterOnly")

	jsErr = env.SetProperty(v, 2, Number(1), false)
	require.Nil(t, jsErr, "sloppy mode silently ignores a getter-only write")
}

func TestEnvSetPropertyNotExtensibleRejectsNewPropertyInStrictMode(t *testing.T) {
	env := newTestEnv(t)
	obj, err := NewObject(env.Heap(), env.ObjectPrototype(), ClassObject)
	require.NoError(t, err)
	obj.PreventExtensions(env.Heap().Space())

	v := ObjectValue(obj.Addr())
	jsErr := env.SetProperty(v, 3, Number(1), true)
	require.NotNil(t, jsErr)
	assert.Equal(t, KindType, jsErr.Kind)
	assert.Contains(t, jsErr.Message, "TypeNotExtensible")

	_, ok := obj.GetOwnProperty(env.Heap().Space(), 3)
	assert.False(t, ok)
}

func TestEnvSetPropertyInheritedNonWritableBlocksShadowing(t *testing.T) {
	env := newTestEnv(t)
	parent, err := NewObject(env.Heap(), env.ObjectPrototype(), ClassObject)
	require.NoError(t, err)
	require.NoError(t, parent.DefineOwnProperty(env.Heap(), 4, Property{
		Value: Number(1), Writable: false, Enumerable: true, Configurable: false,
	}))
	child, err := NewObject(env.Heap(), ObjectValue(parent.Addr()), ClassObject)
	require.NoError(t, err)

	v := ObjectValue(child.Addr())
	jsErr := env.SetProperty(v, 4, Number(2), true)
	require.NotNil(t, jsErr)
	assert.Contains(t, jsErr.Message, "TypeCannotWrite")

	_, ok := child.GetOwnProperty(env.Heap().Space(), 4)
	assert.False(t, ok, "the non-writable inherited property must not be shadowed")
}

func TestEnvToPrimitiveNonObjectPassesThrough(t *testing.T) {
	env := newTestEnv(t)
	v, jsErr := env.ToPrimitive(Number(5), HintNumber)
	require.Nil(t, jsErr)
	assert.Equal(t, float64(5), v.NumberValue())
}

func TestEnvToPrimitiveWithoutMethodNamesIsInternalError(t *testing.T) {
	env := newTestEnv(t)
	obj, err := NewObject(env.Heap(), env.ObjectPrototype(), ClassObject)
	require.NoError(t, err)

	_, jsErr := env.ToPrimitive(ObjectValue(obj.Addr()), HintNumber)
	require.NotNil(t, jsErr)
	assert.Equal(t, KindInternal, jsErr.Kind)
}

func TestEnvToPrimitivePrefersValueOfForNumberHint(t *testing.T) {
	env := newTestEnv(t)
	env.SetPrimitiveMethodNames(1, 2)
	obj, err := NewObject(env.Heap(), env.ObjectPrototype(), ClassObject)
	require.NoError(t, err)

	valueOf, err := env.NewHostFunction(func(env *JsEnv, this Value, args []Value) (Value, *JsError) {
		return Number(7), nil
	})
	require.NoError(t, err)
	toString, err := env.NewHostFunction(func(env *JsEnv, this Value, args []Value) (Value, *JsError) {
		return Number(8), nil
	})
	require.NoError(t, err)
	require.NoError(t, obj.DefineOwnProperty(env.Heap(), 2, Property{
		Value: valueOf, Writable: true, Enumerable: true, Configurable: true,
	}))
	require.NoError(t, obj.DefineOwnProperty(env.Heap(), 1, Property{
		Value: toString, Writable: true, Enumerable: true, Configurable: true,
	}))

	v, jsErr := env.ToPrimitive(ObjectValue(obj.Addr()), HintNumber)
	require.Nil(t, jsErr)
	assert.Equal(t, float64(7), v.NumberValue())
}

func TestEnvToPrimitiveFallsBackWhenFirstMethodReturnsObject(t *testing.T) {
	env := newTestEnv(t)
	env.SetPrimitiveMethodNames(1, 2)
	obj, err := NewObject(env.Heap(), env.ObjectPrototype(), ClassObject)
	require.NoError(t, err)

	valueOf, err := env.NewHostFunction(func(env *JsEnv, this Value, args []Value) (Value, *JsError) {
		return this, nil
	})
	require.NoError(t, err)
	toString, err := env.NewHostFunction(func(env *JsEnv, this Value, args []Value) (Value, *JsError) {
		return Number(9), nil
	})
	require.NoError(t, err)
	require.NoError(t, obj.DefineOwnProperty(env.Heap(), 2, Property{
		Value: valueOf, Writable: true, Enumerable: true, Configurable: true,
	}))
	require.NoError(t, obj.DefineOwnProperty(env.Heap(), 1, Property{
		Value: toString, Writable: true, Enumerable: true, Configurable: true,
	}))

	v, jsErr := env.ToPrimitive(ObjectValue(obj.Addr()), HintNumber)
	require.Nil(t, jsErr)
	assert.Equal(t, float64(9), v.NumberValue())
}

func TestEnvToPrimitiveRaisesTypeErrorWhenNoPrimitiveResult(t *testing.T) {
	env := newTestEnv(t)
	env.SetPrimitiveMethodNames(1, 2)
	obj, err := NewObject(env.Heap(), env.ObjectPrototype(), ClassObject)
	require.NoError(t, err)

	_, jsErr := env.ToPrimitive(ObjectValue(obj.Addr()), HintNumber)
	require.NotNil(t, jsErr)
	assert.Equal(t, KindType, jsErr.Kind)
}

func TestEnvDefaultValuePicksStringHintForDate(t *testing.T) {
	env := newTestEnv(t)
	env.SetPrimitiveMethodNames(1, 2)
	obj, err := NewObject(env.Heap(), env.ObjectPrototype(), ClassDate)
	require.NoError(t, err)

	toString, err := env.NewHostFunction(func(env *JsEnv, this Value, args []Value) (Value, *JsError) {
		return Number(1), nil
	})
	require.NoError(t, err)
	valueOf, err := env.NewHostFunction(func(env *JsEnv, this Value, args []Value) (Value, *JsError) {
		return Number(2), nil
	})
	require.NoError(t, err)
	require.NoError(t, obj.DefineOwnProperty(env.Heap(), 1, Property{
		Value: toString, Writable: true, Enumerable: true, Configurable: true,
	}))
	require.NoError(t, obj.DefineOwnProperty(env.Heap(), 2, Property{
		Value: valueOf, Writable: true, Enumerable: true, Configurable: true,
	}))

	v, jsErr := env.DefaultValue(ObjectValue(obj.Addr()))
	require.Nil(t, jsErr)
	assert.Equal(t, float64(1), v.NumberValue(), "a Date's default hint is String, so toString runs first")
}

func TestEnvToStringPrimitives(t *testing.T) {
	env := newTestEnv(t)

	s, jsErr := env.ToString(Number(3.5))
	require.Nil(t, jsErr)
	assert.Equal(t, "3.5", s.Go(env.Heap().Space()))

	s, jsErr = env.ToString(Bool(true))
	require.Nil(t, jsErr)
	assert.Equal(t, "true", s.Go(env.Heap().Space()))

	s, jsErr = env.ToString(Undefined)
	require.Nil(t, jsErr)
	assert.Equal(t, "undefined", s.Go(env.Heap().Space()))

	s, jsErr = env.ToString(Null)
	require.Nil(t, jsErr)
	assert.Equal(t, "null", s.Go(env.Heap().Space()))
}

func TestEnvToObjectWrapsPrimitiveAndRejectsNullish(t *testing.T) {
	env := newTestEnv(t)

	v, jsErr := env.ToObject(Number(5))
	require.Nil(t, jsErr)
	require.True(t, v.IsObject())
	boxed, ok := (Object{addr: v.Addr()}).PrimitiveValueOf(env.Heap().Space())
	require.True(t, ok)
	assert.Equal(t, float64(5), boxed.NumberValue())

	obj, err := NewObject(env.Heap(), env.ObjectPrototype(), ClassObject)
	require.NoError(t, err)
	passedThrough, jsErr := env.ToObject(ObjectValue(obj.Addr()))
	require.Nil(t, jsErr)
	assert.Equal(t, obj.Addr(), passedThrough.Addr())

	_, jsErr = env.ToObject(Undefined)
	require.NotNil(t, jsErr)
	assert.Equal(t, KindType, jsErr.Kind)

	_, jsErr = env.ToObject(Null)
	require.NotNil(t, jsErr)
	assert.Equal(t, KindType, jsErr.Kind)
}

func TestEnvCompareLtAndCompareGt(t *testing.T) {
	env := newTestEnv(t)

	res, jsErr := env.CompareLt(Number(1), Number(2))
	require.Nil(t, jsErr)
	assert.Equal(t, CompareLess, res)

	res, jsErr = env.CompareGt(Number(2), Number(1))
	require.Nil(t, jsErr)
	assert.Equal(t, CompareLess, res, "CompareGt(2,1) holds, reported as CompareLess of the swapped operands")

	res, jsErr = env.CompareLt(Number(math.NaN()), Number(1))
	require.Nil(t, jsErr)
	assert.Equal(t, CompareUndefined, res)
}

func TestEnvRunWithoutCompilerIsInternalError(t *testing.T) {
	env := newTestEnv(t)
	_, jsErr := env.Eval("1+1")
	require.NotNil(t, jsErr)
	assert.Equal(t, KindInternal, jsErr.Kind)
	assert.False(t, jsErr.Kind.Catchable())
}

func TestEnvToBooleanAndStrictEqualsHeapAware(t *testing.T) {
	env := newTestEnv(t)
	empty, err := NewString(env.Heap(), "")
	require.NoError(t, err)
	nonEmpty, err := NewString(env.Heap(), "x")
	require.NoError(t, err)

	assert.False(t, env.ToBoolean(StringValue(empty.Addr())))
	assert.True(t, env.ToBoolean(StringValue(nonEmpty.Addr())))

	a, err := NewString(env.Heap(), "same")
	require.NoError(t, err)
	b, err := NewString(env.Heap(), "same")
	require.NoError(t, err)
	assert.True(t, env.StrictEquals(StringValue(a.Addr()), StringValue(b.Addr())))
	assert.False(t, env.StrictEquals(StringValue(a.Addr()), StringValue(nonEmpty.Addr())))
}
