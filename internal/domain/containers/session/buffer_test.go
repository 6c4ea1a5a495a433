package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferReadAllDrains(t *testing.T) {
	b := NewBuffer(16)
	_, _ = b.Write([]byte("hello"))

	assert.Equal(t, 5, b.Len())
	assert.Equal(t, []byte("hello"), b.ReadAll())
	assert.Equal(t, []byte{}, b.ReadAll())
	assert.Equal(t, 0, b.Len())
}

func TestBufferOverwritesOldest(t *testing.T) {
	b := NewBuffer(8)
	_, _ = b.Write([]byte("abcdefghij"))

	// One slot stays free to tell full from empty
	assert.Equal(t, []byte("defghij"), b.ReadAll())
}

func TestBufferWrapAround(t *testing.T) {
	b := NewBuffer(8)
	_, _ = b.Write([]byte("abcde"))
	_ = b.ReadAll()
	_, _ = b.Write([]byte("fghij"))

	assert.Equal(t, []byte("fghij"), b.ReadAll())
}
