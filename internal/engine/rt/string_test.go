package rt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringRoundTrip(t *testing.T) {
	h := newTestHeap(t)
	s, err := NewString(h, "hello")
	require.NoError(t, err)

	space := h.Space()
	assert.Equal(t, 5, s.Length(space))
	assert.Equal(t, "hello", s.Go(space))
	assert.Equal(t, uint16('h'), s.CharCodeAt(space, 0))
	assert.Equal(t, uint16('o'), s.CharCodeAt(space, 4))
}

func TestStringSurrogatePair(t *testing.T) {
	h := newTestHeap(t)
	// U+1F600 GRINNING FACE requires a UTF-16 surrogate pair.
	s, err := NewString(h, "\U0001F600")
	require.NoError(t, err)

	space := h.Space()
	assert.Equal(t, 2, s.Length(space))
	assert.Equal(t, "\U0001F600", s.Go(space))
}

func TestStringEquals(t *testing.T) {
	h := newTestHeap(t)
	a, err := NewString(h, "same")
	require.NoError(t, err)
	b, err := NewString(h, "same")
	require.NoError(t, err)
	c, err := NewString(h, "different")
	require.NoError(t, err)

	space := h.Space()
	assert.True(t, a.Equals(space, b))
	assert.False(t, a.Equals(space, c))
	assert.True(t, a.Equals(space, a))
}

func TestStringEmpty(t *testing.T) {
	h := newTestHeap(t)
	s, err := NewString(h, "")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Length(h.Space()))
	assert.Equal(t, "", s.Go(h.Space()))
}
