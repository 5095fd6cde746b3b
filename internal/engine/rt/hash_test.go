package rt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dataProp(v Value) Property {
	return Property{Value: v, Writable: true, Enumerable: true, Configurable: true}
}

func TestHashAddGetRemove(t *testing.T) {
	h := newTestHeap(t)
	ht, err := NewHash(h, 4)
	require.NoError(t, err)

	require.NoError(t, ht.Add(h, 1, dataProp(Number(1))))
	require.NoError(t, ht.Add(h, 2, dataProp(Number(2))))

	space := h.Space()
	p, ok := ht.Get(space, 1)
	require.True(t, ok)
	assert.Equal(t, float64(1), p.Value.NumberValue())

	_, ok = ht.Get(space, 99)
	assert.False(t, ok)

	assert.True(t, ht.Remove(space, 1))
	_, ok = ht.Get(space, 1)
	assert.False(t, ok)
	assert.Equal(t, 1, ht.Count())
}

func TestHashOverwriteExisting(t *testing.T) {
	h := newTestHeap(t)
	ht, err := NewHash(h, 4)
	require.NoError(t, err)

	require.NoError(t, ht.Add(h, 5, dataProp(Number(1))))
	require.NoError(t, ht.Add(h, 5, dataProp(Number(2))))

	p, ok := ht.Get(h.Space(), 5)
	require.True(t, ok)
	assert.Equal(t, float64(2), p.Value.NumberValue())
	assert.Equal(t, 1, ht.Count())
}

// TestHashChainCollisionAndRemoval forces several names into the same
// home bucket of a small table, exercising the chain-append branch of
// Add and removal of a mid-chain entry.
func TestHashChainCollisionAndRemoval(t *testing.T) {
	h := newTestHeap(t)
	ht, err := NewHash(h, 4)
	require.NoError(t, err)
	cap := ht.Capacity()

	// Three distinct names that collide on the same home bucket.
	var names []uint32
	for n := uint32(1); len(names) < 3; n++ {
		if int(n)%cap == 1 {
			names = append(names, n)
		}
	}

	for i, n := range names {
		require.NoError(t, ht.Add(h, n, dataProp(Number(float64(i)))))
	}
	space := h.Space()
	for i, n := range names {
		p, ok := ht.Get(space, n)
		require.True(t, ok, "name %d should be found", n)
		assert.Equal(t, float64(i), p.Value.NumberValue())
	}

	// Remove the middle one and confirm the other two still resolve.
	assert.True(t, ht.Remove(space, names[1]))
	_, ok := ht.Get(space, names[1])
	assert.False(t, ok)
	_, ok = ht.Get(space, names[0])
	assert.True(t, ok)
	_, ok = ht.Get(space, names[2])
	assert.True(t, ok)
}

func TestHashGrowPreservesReferenceValues(t *testing.T) {
	h := newTestHeap(t)
	ht, err := NewHash(h, 2)
	require.NoError(t, err)

	str, err := NewString(h, "hello")
	require.NoError(t, err)
	require.NoError(t, ht.Add(h, 1, dataProp(StringValue(str.Addr()))))

	// Force several more insertions past the load factor to trigger grow().
	for i := uint32(2); i < 20; i++ {
		require.NoError(t, ht.Add(h, i, dataProp(Number(float64(i)))))
	}

	space := h.Space()
	p, ok := ht.Get(space, 1)
	require.True(t, ok)
	require.Equal(t, TypeString, p.Value.Ty())
	assert.Equal(t, "hello", FromStringAddr(p.Value.Addr()).Go(space))

	for i := uint32(2); i < 20; i++ {
		p, ok := ht.Get(space, i)
		require.True(t, ok)
		assert.Equal(t, float64(i), p.Value.NumberValue())
	}
}

func TestHashKeys(t *testing.T) {
	h := newTestHeap(t)
	ht, err := NewHash(h, 4)
	require.NoError(t, err)
	require.NoError(t, ht.Add(h, 10, dataProp(Number(1))))
	require.NoError(t, ht.Add(h, 20, dataProp(Number(2))))

	keys := ht.Keys(h.Space())
	assert.ElementsMatch(t, []uint32{10, 20}, keys)
}

func TestHashAccessorProperty(t *testing.T) {
	h := newTestHeap(t)
	ht, err := NewHash(h, 4)
	require.NoError(t, err)

	getter, err := NewObject(h, Null, ClassFunction)
	require.NoError(t, err)
	p := Property{
		IsAccessor:   true,
		Getter:       ObjectValue(getter.Addr()),
		Setter:       Undefined,
		Enumerable:   true,
		Configurable: true,
	}
	require.NoError(t, ht.Add(h, 7, p))

	got, ok := ht.Get(h.Space(), 7)
	require.True(t, ok)
	assert.True(t, got.IsAccessor)
	assert.Equal(t, getter.Addr(), got.Getter.Addr())
	assert.True(t, got.Setter.IsUndefined())
}
