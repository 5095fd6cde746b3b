package rt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectPrototypeAndClass(t *testing.T) {
	h := newTestHeap(t)
	proto, err := NewObject(h, Null, ClassObject)
	require.NoError(t, err)

	obj, err := NewObject(h, ObjectValue(proto.Addr()), ClassFunction)
	require.NoError(t, err)

	space := h.Space()
	assert.Equal(t, ClassFunction, obj.Class(space))
	assert.Equal(t, proto.Addr(), obj.Prototype(space).Addr())
	assert.False(t, obj.IsCallable(space))

	obj.SetCallable(space, true)
	assert.True(t, obj.IsCallable(space))
}

func TestObjectDefineGetDeleteProperty(t *testing.T) {
	h := newTestHeap(t)
	obj, err := NewObject(h, Null, ClassObject)
	require.NoError(t, err)

	p := Property{Value: Number(42), Writable: true, Enumerable: true, Configurable: true}
	require.NoError(t, obj.DefineOwnProperty(h, 1, p))

	space := h.Space()
	got, ok := obj.GetOwnProperty(space, 1)
	require.True(t, ok)
	assert.Equal(t, float64(42), got.Value.NumberValue())

	_, ok = obj.GetOwnProperty(space, 999)
	assert.False(t, ok)

	deleted, existed := obj.Delete(space, 1)
	assert.True(t, deleted)
	assert.True(t, existed)
	_, ok = obj.GetOwnProperty(space, 1)
	assert.False(t, ok)
}

func TestObjectDeleteNonConfigurable(t *testing.T) {
	h := newTestHeap(t)
	obj, err := NewObject(h, Null, ClassObject)
	require.NoError(t, err)

	p := Property{Value: Number(1), Writable: true, Enumerable: true, Configurable: false}
	require.NoError(t, obj.DefineOwnProperty(h, 1, p))

	deleted, existed := obj.Delete(h.Space(), 1)
	assert.False(t, deleted)
	assert.True(t, existed)
	_, ok := obj.GetOwnProperty(h.Space(), 1)
	assert.True(t, ok)
}

func TestObjectDeleteOnEmptyObject(t *testing.T) {
	h := newTestHeap(t)
	obj, err := NewObject(h, Null, ClassObject)
	require.NoError(t, err)

	deleted, existed := obj.Delete(h.Space(), 1)
	assert.True(t, deleted)
	assert.False(t, existed)
}

func TestObjectOwnKeys(t *testing.T) {
	h := newTestHeap(t)
	obj, err := NewObject(h, Null, ClassObject)
	require.NoError(t, err)

	for _, n := range []uint32{1, 2, 3} {
		p := Property{Value: Number(float64(n)), Writable: true, Enumerable: true, Configurable: true}
		require.NoError(t, obj.DefineOwnProperty(h, n, p))
	}
	assert.ElementsMatch(t, []uint32{1, 2, 3}, obj.OwnKeys(h.Space()))
}

func TestNewArrayObjectElements(t *testing.T) {
	h := newTestHeap(t)
	obj, err := NewArrayObject(h, Null, 2)
	require.NoError(t, err)

	assert.Equal(t, ClassArray, obj.Class(h.Space()))
	assert.Equal(t, uint32(0), obj.ArrayLength(h.Space()))

	require.NoError(t, obj.SetElement(h, 0, Number(10)))
	require.NoError(t, obj.SetElement(h, 5, Number(20)))

	space := h.Space()
	assert.Equal(t, uint32(6), obj.ArrayLength(space))
	assert.Equal(t, float64(10), obj.GetElement(space, 0).NumberValue())
	assert.Equal(t, float64(20), obj.GetElement(space, 5).NumberValue())
	assert.True(t, obj.GetElement(space, 3).IsUndefined())
}

func TestNewArrayObjectSurvivesCollectionViaRoot(t *testing.T) {
	h := newTestHeap(t)
	obj, err := NewArrayObject(h, Null, 2)
	require.NoError(t, err)
	root := h.NewLocalScope()
	defer root.Close()
	pinned := root.NewLocal(obj.Addr())

	require.NoError(t, obj.SetElement(h, 0, Number(7)))

	// Force enough allocation pressure to guarantee at least one
	// collection before reading back through the pinned handle.
	for i := 0; i < 2000; i++ {
		if _, err := NewObject(h, Null, ClassObject); err != nil {
			break
		}
	}

	after := Object{addr: *pinned}
	assert.Equal(t, float64(7), after.GetElement(h.Space(), 0).NumberValue())
}
