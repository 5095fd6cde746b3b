package rt

import (
	"context"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rjsgo/rjsgo/internal/engine/gc"
	"github.com/rjsgo/rjsgo/pkg/utils"
)

// HostFunc is the signature every native function exposed to script
// code implements: the receiver, the call arguments, and a Result-
// shaped return matching the rest of the engine's error model.
type HostFunc func(env *JsEnv, this Value, args []Value) (Value, *JsError)

// Program is produced by a Compiler from source text. Running one is
// the only way script code reaches the engine: internal/engine/rt never
// parses source itself (lexing, parsing and bytecode generation are
// explicitly out of this repository's scope).
type Program interface {
	Run(env *JsEnv, this Value, scope Scope) (Value, *JsError)
}

// Compiler turns source text into a runnable Program. No implementation
// ships in this repository; a host embeds one, or leaves it unset and
// gets a clear "no compiler configured" error from Run/Eval rather than
// a nil-pointer panic.
type Compiler interface {
	CompileFile(path string, strict bool) (Program, error)
	CompileString(name, src string, strict bool) (Program, error)
}

// JsEnv is the embedding entry point (spec §6): one heap, one global
// object, the fixed intrinsic prototypes every object's chain
// eventually reaches, and whatever Compiler and host functions the
// embedder has wired in.
type JsEnv struct {
	heap   *gc.Heap
	walker *WalkerImpl
	logger utils.Logger
	tracer trace.Tracer

	compiler Compiler

	global        gc.Root[Object]
	objectProto   gc.Root[Object]
	arrayProto    gc.Root[Object]
	functionProto gc.Root[Object]
	errorProto    gc.Root[Object]

	hostFuncs map[gc.Address]HostFunc

	// toStringName and valueOfName are the interned property names
	// ToPrimitive dispatches "toString"/"valueOf" calls to. Name
	// interning belongs to the embedder's compiler front-end (see
	// Compiler), not this package, so ToPrimitive has no way to learn
	// these names on its own; SetPrimitiveMethodNames wires them in.
	toStringName    uint32
	valueOfName     uint32
	methodNamesSet  bool
}

// NewEnv constructs a JsEnv over heap, allocating the global object and
// the fixed intrinsic prototype chain. logger and tracer may be nil
// (defaulting to a no-op logger and a no-op otel tracer respectively).
func NewEnv(heap *gc.Heap, walker *WalkerImpl, logger utils.Logger, tracer trace.Tracer) (*JsEnv, error) {
	if logger == nil {
		logger = utils.NullLogger{}
	}
	if tracer == nil {
		tracer = trace.NewNoopTracerProvider().Tracer("rjsgo/rt")
	}

	env := &JsEnv{
		heap:      heap,
		walker:    walker,
		logger:    logger,
		tracer:    tracer,
		hostFuncs: make(map[gc.Address]HostFunc),
	}

	objectProto, err := NewObject(heap, Null, ClassObject)
	if err != nil {
		return nil, err
	}
	env.objectProto = gc.NewRootAddr[Object](heap, objectProto.Addr())

	arrayProto, err := NewObject(heap, ObjectValue(objectProto.Addr()), ClassObject)
	if err != nil {
		return nil, err
	}
	env.arrayProto = gc.NewRootAddr[Object](heap, arrayProto.Addr())

	functionProto, err := NewObject(heap, ObjectValue(objectProto.Addr()), ClassObject)
	if err != nil {
		return nil, err
	}
	env.functionProto = gc.NewRootAddr[Object](heap, functionProto.Addr())

	errorProto, err := NewObject(heap, ObjectValue(objectProto.Addr()), ClassObject)
	if err != nil {
		return nil, err
	}
	env.errorProto = gc.NewRootAddr[Object](heap, errorProto.Addr())

	global, err := NewObject(heap, ObjectValue(objectProto.Addr()), ClassObject)
	if err != nil {
		return nil, err
	}
	env.global = gc.NewRootAddr[Object](heap, global.Addr())

	return env, nil
}

// Heap returns the heap backing this environment, for callers (such as
// the diagnostics recorder) that need direct access to Stats/Collect.
func (env *JsEnv) Heap() *gc.Heap { return env.heap }

// SetCompiler installs the Compiler Run/RunStrict/Eval delegate to.
func (env *JsEnv) SetCompiler(c Compiler) { env.compiler = c }

// SetPrimitiveMethodNames installs the interned names of "toString"
// and "valueOf", the two methods ToPrimitive (ECMA-262 §8.12.8
// [[DefaultValue]]) looks up and calls on an object. Until this is
// called, ToPrimitive/ToString/CompareLt/CompareGt on an object value
// fail with an internal error rather than guessing at a name.
func (env *JsEnv) SetPrimitiveMethodNames(toStringName, valueOfName uint32) {
	env.toStringName = toStringName
	env.valueOfName = valueOfName
	env.methodNamesSet = true
}

// GlobalObject returns the environment's global object as a Value.
func (env *JsEnv) GlobalObject() Value { return ObjectValue(env.global.Addr()) }

func (env *JsEnv) ObjectPrototype() Value   { return ObjectValue(env.objectProto.Addr()) }
func (env *JsEnv) ArrayPrototype() Value    { return ObjectValue(env.arrayProto.Addr()) }
func (env *JsEnv) FunctionPrototype() Value { return ObjectValue(env.functionProto.Addr()) }
func (env *JsEnv) ErrorPrototype() Value    { return ObjectValue(env.errorProto.Addr()) }

// NewLocalScope opens a scope for handles local to one call or
// evaluation; callers should Close it (typically via defer) once done.
func (env *JsEnv) NewLocalScope() *gc.LocalScope { return env.heap.NewLocalScope() }

// ToBoolean implements ECMA-262 §9.2 ToBoolean for a heap-aware
// context: unlike Value.ToBoolean, this can resolve the empty-string
// case since it has access to the heap's current space.
func (env *JsEnv) ToBoolean(v Value) bool {
	if v.Ty() == TypeString {
		return FromStringAddr(v.Addr()).Length(env.heap.Space()) != 0
	}
	return v.ToBoolean()
}

// StrictEquals implements ECMA-262 §11.9.6 (===) with heap-aware string
// comparison: two distinct String values are strictly equal when their
// code unit sequences match, not merely when their addresses match.
func (env *JsEnv) StrictEquals(a, b Value) bool {
	if a.Ty() == TypeString && b.Ty() == TypeString {
		space := env.heap.Space()
		return FromStringAddr(a.Addr()).Equals(space, FromStringAddr(b.Addr()))
	}
	return StrictEquals(a, b)
}

// ToPrimitiveHint selects which of toString/valueOf ToPrimitive tries
// first (ECMA-262 §8.12.8's PreferredType argument).
type ToPrimitiveHint int

const (
	// HintDefault lets ToPrimitive pick: String for a Date instance,
	// Number for everything else (spec.md §4.3's default_value rule).
	HintDefault ToPrimitiveHint = iota
	HintNumber
	HintString
)

// ToPrimitive implements ECMA-262 §8.12.8 [[DefaultValue]]: a
// non-object value is already primitive and is returned unchanged. An
// object tries valueOf then toString (Number hint) or the reverse
// order (String hint), calling whichever of the two is callable and
// accepting the first result that is not itself an object; if neither
// method exists, isn't callable, or returns an object, the conversion
// fails with a TypeError, matching ECMA-262's "cannot convert object
// to primitive value".
func (env *JsEnv) ToPrimitive(v Value, hint ToPrimitiveHint) (Value, *JsError) {
	if v.Ty() != TypeObject {
		return v, nil
	}
	if !env.methodNamesSet {
		return Undefined, NewInternalError("ToPrimitive: SetPrimitiveMethodNames was never called")
	}
	if hint == HintDefault {
		if (Object{addr: v.Addr()}).Class(env.heap.Space()) == ClassDate {
			hint = HintString
		} else {
			hint = HintNumber
		}
	}
	names := [2]uint32{env.valueOfName, env.toStringName}
	if hint == HintString {
		names = [2]uint32{env.toStringName, env.valueOfName}
	}
	for _, name := range names {
		fn, jsErr := env.GetProperty(v, name)
		if jsErr != nil {
			return Undefined, jsErr
		}
		if fn.Ty() != TypeObject {
			continue
		}
		method := Object{addr: fn.Addr()}
		if !method.IsCallable(env.heap.Space()) {
			continue
		}
		result, jsErr := env.Call(fn, v, nil)
		if jsErr != nil {
			return Undefined, jsErr
		}
		if result.Ty() != TypeObject {
			return result, nil
		}
	}
	return Undefined, NewTypeError("cannot convert object to primitive value")
}

// DefaultValue implements spec.md §4.3's object-module operation of
// the same name: ToPrimitive with no explicit hint.
func (env *JsEnv) DefaultValue(v Value) (Value, *JsError) {
	return env.ToPrimitive(v, HintDefault)
}

// ToString implements ECMA-262 §9.8: an object is first reduced via
// ToPrimitive with a String hint (which never yields another object),
// then the resulting primitive converts directly — numbers through
// FormatNumber, booleans/undefined/null through their literal
// spelling, and an already-String value is returned as-is.
func (env *JsEnv) ToString(v Value) (JsString, *JsError) {
	if v.Ty() == TypeObject {
		prim, jsErr := env.ToPrimitive(v, HintString)
		if jsErr != nil {
			return JsString{}, jsErr
		}
		v = prim
	}
	switch v.Ty() {
	case TypeString:
		return FromStringAddr(v.Addr()), nil
	case TypeUndefined:
		return env.internString("undefined")
	case TypeNull:
		return env.internString("null")
	case TypeBoolean:
		if v.BoolValue() {
			return env.internString("true")
		}
		return env.internString("false")
	case TypeNumber:
		return env.internString(FormatNumber(v.NumberValue()))
	default:
		return JsString{}, NewInternalError("ToString: unexpected value type %v", v.Ty())
	}
}

func (env *JsEnv) internString(s string) (JsString, *JsError) {
	js, err := NewString(env.heap, s)
	if err != nil {
		return JsString{}, NewInternalError("%v", err)
	}
	return js, nil
}

// ToObject implements ECMA-262 §9.9: an object passes through
// unchanged; null/undefined have no object form and raise a
// TypeError; a boolean/number/string primitive is boxed in a fresh
// plain object (this engine has no dedicated Boolean/Number/String
// wrapper prototypes or constructors, so the box uses ObjectPrototype
// and Object.PrimitiveValueOf recovers the wrapped value).
func (env *JsEnv) ToObject(v Value) (Value, *JsError) {
	switch v.Ty() {
	case TypeObject:
		return v, nil
	case TypeUndefined, TypeNull:
		return Undefined, NewTypeError("cannot convert %s to an object", v.Ty())
	}
	obj, err := NewObject(env.heap, env.ObjectPrototype(), ClassObject)
	if err != nil {
		return Undefined, NewInternalError("%v", err)
	}
	if err := obj.DefineOwnProperty(env.heap, primitiveValueSlot, Property{
		Value: v, Writable: false, Enumerable: false, Configurable: false,
	}); err != nil {
		return Undefined, NewInternalError("%v", err)
	}
	return ObjectValue(obj.Addr()), nil
}

// CompareLt and CompareGt implement ECMA-262 §11.8.5's abstract
// relational comparison for `<` and `>`: both operands are reduced to
// primitives with a Number hint (spec.md §4.4), then compared
// numerically via CompareNumbers. CompareGt(a, b) is computed as
// CompareLt(b, a): its CompareLess result means b<a, i.e. a>b.
//
// Full ECMA-262 special-cases two String-typed primitives to a
// lexicographic comparison instead of a numeric one; spec.md's own
// description of compare_lt/compare_gt calls only for the
// Number-hint-then-numeric path, so that's what's implemented here
// (see DESIGN.md).
func (env *JsEnv) CompareLt(a, b Value) (CompareResult, *JsError) {
	pa, jsErr := env.ToPrimitive(a, HintNumber)
	if jsErr != nil {
		return CompareUndefined, jsErr
	}
	pb, jsErr := env.ToPrimitive(b, HintNumber)
	if jsErr != nil {
		return CompareUndefined, jsErr
	}
	return CompareNumbers(env.primitiveToNumber(pa), env.primitiveToNumber(pb)), nil
}

func (env *JsEnv) CompareGt(a, b Value) (CompareResult, *JsError) {
	return env.CompareLt(b, a)
}

// primitiveToNumber implements ECMA-262 §9.3 ToNumber for a value that
// ToPrimitive has already reduced to a non-object, the step CompareLt/
// CompareGt need after their Number-hint conversion.
func (env *JsEnv) primitiveToNumber(v Value) float64 {
	switch v.Ty() {
	case TypeNumber:
		return v.NumberValue()
	case TypeBoolean:
		if v.BoolValue() {
			return 1
		}
		return 0
	case TypeString:
		return ParseNumber(FromStringAddr(v.Addr()).Go(env.heap.Space()))
	case TypeNull:
		return 0
	default: // TypeUndefined
		return math.NaN()
	}
}

// NewHostFunction allocates a callable Function object backed by fn.
func (env *JsEnv) NewHostFunction(fn HostFunc) (Value, error) {
	obj, err := NewObject(env.heap, env.FunctionPrototype(), ClassFunction)
	if err != nil {
		return Undefined, err
	}
	obj.SetCallable(env.heap.Space(), true)
	env.hostFuncs[obj.Addr()] = fn
	return ObjectValue(obj.Addr()), nil
}

// Call implements the callable half of the embedding contract: invoking
// a Function value with a receiver and argument list. It is the entry
// point both host code and a future interpreter use to invoke any
// callable, native or script-defined.
func (env *JsEnv) Call(fn Value, this Value, args []Value) (Value, *JsError) {
	_, span := env.tracer.Start(context.Background(), "rt.Call")
	defer span.End()

	if fn.Ty() != TypeObject {
		return Undefined, NewTypeError("value is not a function")
	}
	obj := Object{addr: fn.Addr()}
	if !obj.IsCallable(env.heap.Space()) {
		return Undefined, NewTypeError("value is not callable")
	}
	native, ok := env.hostFuncs[obj.Addr()]
	if !ok {
		return Undefined, NewInternalError("callable object at %v has no attached implementation", obj.Addr())
	}
	span.SetAttributes(attribute.Int("rt.call.argc", len(args)))
	return native(env, this, args)
}

// GetProperty implements the read half of ECMA-262 §8.7.1
// [[Get]]/[[GetOwnProperty]] with prototype-chain walking: the own-
// property search climbs Prototype links until it finds the name or
// reaches the end of the chain (Prototype()==Null).
func (env *JsEnv) GetProperty(v Value, name uint32) (Value, *JsError) {
	if v.Ty() != TypeObject {
		return Undefined, NewTypeError("cannot read property of a non-object value")
	}
	space := env.heap.Space()
	addr := v.Addr()
	for {
		obj := Object{addr: addr}
		if p, ok := obj.GetOwnProperty(space, name); ok {
			if p.IsAccessor {
				if p.Getter.IsUndefined() {
					return Undefined, nil
				}
				return env.Call(p.Getter, v, nil)
			}
			return p.Value, nil
		}
		proto := obj.Prototype(space)
		if !proto.IsObject() {
			return Undefined, nil
		}
		addr = proto.Addr()
	}
}

// SetProperty implements ECMA-262 §8.12.5 [[Put]]: an own or inherited
// accessor property's setter is invoked (or, lacking a setter, rejected
// in strict mode per PropertyHasGetterOnly); an own data property's
// value is overwritten in place, preserving its existing Writable/
// Enumerable/Configurable attributes, unless it is non-writable (then
// strict mode raises CannotWrite, non-strict mode silently no-ops); an
// inherited non-writable data property blocks creating a shadowing own
// property the same way. Only once none of those apply is a new own
// data property created — and only if v is still extensible, otherwise
// strict mode raises NotExtensible. strict selects whether any of these
// rejections throw (true) or silently no-op (false), matching the
// script-visible difference between sloppy and strict-mode assignment.
func (env *JsEnv) SetProperty(v Value, name uint32, val Value, strict bool) *JsError {
	if v.Ty() != TypeObject {
		return NewTypeError("cannot set property of a non-object value")
	}
	space := env.heap.Space()
	target := Object{addr: v.Addr()}

	if p, ok := target.GetOwnProperty(space, name); ok {
		if p.IsAccessor {
			if p.Setter.IsUndefined() {
				if strict {
					return NewPropertyHasGetterOnlyError("property has no setter")
				}
				return nil
			}
			_, err := env.Call(p.Setter, v, []Value{val})
			return err
		}
		if !p.Writable {
			if strict {
				return NewCannotWriteError("property is not writable")
			}
			return nil
		}
		p.Value = val
		if err := target.DefineOwnProperty(env.heap, name, p); err != nil {
			return NewInternalError("defining property: %v", err)
		}
		return nil
	}

	// No own property: walk the prototype chain for CanPut (ECMA-262
	// §8.12.5 step 2's delegation to [[CanPut]]). An inherited accessor
	// is invoked exactly as an own one would be; an inherited,
	// non-writable data property blocks the write the same way an own
	// one does. A writable inherited data property, or no inherited
	// property at all, falls through to creating a new own property.
	for proto := target.Prototype(space); proto.IsObject(); {
		ancestor := Object{addr: proto.Addr()}
		p, ok := ancestor.GetOwnProperty(space, name)
		if !ok {
			proto = ancestor.Prototype(space)
			continue
		}
		if p.IsAccessor {
			if p.Setter.IsUndefined() {
				if strict {
					return NewPropertyHasGetterOnlyError("property has no setter")
				}
				return nil
			}
			_, err := env.Call(p.Setter, v, []Value{val})
			return err
		}
		if !p.Writable {
			if strict {
				return NewCannotWriteError("inherited property is not writable")
			}
			return nil
		}
		break
	}

	if !target.IsExtensible(space) {
		if strict {
			return NewNotExtensibleError("object is not extensible")
		}
		return nil
	}

	p := Property{Value: val, Writable: true, Enumerable: true, Configurable: true}
	if err := target.DefineOwnProperty(env.heap, name, p); err != nil {
		return NewInternalError("defining property: %v", err)
	}
	return nil
}

// DeleteProperty implements ECMA-262 §8.12.7 [[Delete]] on v's own
// properties (deleting an inherited property is a no-op that reports
// success, matching the spec).
func (env *JsEnv) DeleteProperty(v Value, name uint32) (bool, *JsError) {
	if v.Ty() != TypeObject {
		return false, NewTypeError("cannot delete property of a non-object value")
	}
	obj := Object{addr: v.Addr()}
	deleted, _ := obj.Delete(env.heap.Space(), name)
	return deleted, nil
}

func (env *JsEnv) requireCompiler() (Compiler, *JsError) {
	if env.compiler == nil {
		return nil, NewInternalError("no compiler configured")
	}
	return env.compiler, nil
}

func (env *JsEnv) runProgram(spanName string, compile func() (Program, error)) (Value, *JsError) {
	_, span := env.tracer.Start(context.Background(), spanName)
	defer span.End()

	before := env.heap.Stats()

	prog, err := compile()
	if err != nil {
		return Undefined, NewSyntaxError("%v", err)
	}

	scope, err := NewThickScope(env.heap, Undefined, env.GlobalObject(), Undefined)
	if err != nil {
		return Undefined, NewInternalError("%v", err)
	}

	result, jsErr := prog.Run(env, env.GlobalObject(), scope)

	after := env.heap.Stats()
	span.SetAttributes(
		attribute.Int("gc.collections", after.Collections-before.Collections),
		attribute.Int("gc.bytes_capacity", after.BytesCapacity),
	)
	return result, jsErr
}

// Run implements the embedding API's `run(file)`: compile and execute
// file in non-strict mode.
func (env *JsEnv) Run(path string) (Value, *JsError) {
	return env.RunStrict(path, false)
}

// RunStrict implements `run_strict(file, strict)`.
func (env *JsEnv) RunStrict(path string, strict bool) (Value, *JsError) {
	compiler, jsErr := env.requireCompiler()
	if jsErr != nil {
		return Undefined, jsErr
	}
	return env.runProgram("rt.Run", func() (Program, error) {
		return compiler.CompileFile(path, strict)
	})
}

// Eval implements `eval(source)`.
func (env *JsEnv) Eval(source string) (Value, *JsError) {
	compiler, jsErr := env.requireCompiler()
	if jsErr != nil {
		return Undefined, jsErr
	}
	return env.runProgram("rt.Eval", func() (Program, error) {
		return compiler.CompileString("<eval>", source, false)
	})
}
