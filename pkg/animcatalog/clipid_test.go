package animcatalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClipIDAllocatorCountsDown(t *testing.T) {
	a := NewClipIDAllocator()
	id, ok := a.Next()
	require.True(t, ok)
	assert.Equal(t, MaxClipID, id)

	id, ok = a.Next()
	require.True(t, ok)
	assert.Equal(t, MaxClipID-1, id)
}

func TestClipIDAllocatorRegisterSkips(t *testing.T) {
	a := NewClipIDAllocator()
	a.Register(MaxClipID)
	a.Register(MaxClipID - 1)
	id, ok := a.Next()
	require.True(t, ok)
	assert.Equal(t, MaxClipID-2, id)
}

func TestClipIDAllocatorReset(t *testing.T) {
	a := NewClipIDAllocator()
	a.Next()
	a.Reset()
	id, ok := a.Next()
	require.True(t, ok)
	assert.Equal(t, MaxClipID, id)
}

func TestClipIDAllocatorExhausted(t *testing.T) {
	a := NewClipIDAllocator()
	for i := 0; i <= MaxClipID; i++ {
		_, ok := a.Next()
		require.Truef(t, ok, "unexpected exhaustion at i=%d", i)
	}
	_, ok := a.Next()
	assert.False(t, ok, "expected exhaustion after allocating every id")
}
