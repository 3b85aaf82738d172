package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowBoundAndInsertionOrder(t *testing.T) {
	s := NewStore(3)

	s.Push("VER", 1)
	assert.Equal(t, []float64{1}, s.Values("VER"))
	assert.False(t, s.IsFull("VER"))

	s.Push("VER", 2)
	s.Push("VER", 3)
	require.True(t, s.IsFull("VER"))
	assert.Equal(t, []float64{1, 2, 3}, s.Values("VER"))

	// Oldest evicted first, length never exceeds capacity.
	s.Push("VER", 4)
	s.Push("VER", 5)
	assert.Equal(t, []float64{3, 4, 5}, s.Values("VER"))
	assert.Equal(t, 3, s.Get("VER").Len())
}

func TestUnseenSubject(t *testing.T) {
	s := NewStore(2)
	assert.Nil(t, s.Values("HAM"))
	assert.Nil(t, s.Get("HAM"))
	assert.False(t, s.IsFull("HAM"))

	// First push implicitly creates the window.
	s.Push("HAM", 7)
	assert.Equal(t, []float64{7}, s.Values("HAM"))
}

func TestStationary(t *testing.T) {
	s := NewStore(4)
	for _, v := range []float64{100, 100.4, 99.7, 100.2} {
		s.Push("STR", v)
	}
	assert.True(t, s.Get("STR").Stationary(1.0))
	assert.False(t, s.Get("STR").Stationary(0.2))

	// Comparison is against the first sample, so a slow drift past the
	// tolerance breaks it.
	s.Push("STR", 101.5)
	assert.False(t, s.Get("STR").Stationary(1.0))
}

func TestStalled(t *testing.T) {
	s := NewStore(2)
	s.Push("VER", 500)
	assert.False(t, s.Get("VER").Stalled(1.0), "one sample says nothing")

	s.Push("VER", 580)
	assert.False(t, s.Get("VER").Stalled(1.0))

	s.Push("VER", 580.3)
	assert.True(t, s.Get("VER").Stalled(1.0))
}
