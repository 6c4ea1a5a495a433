package session

import "sync"

// Buffer is a thread-safe circular buffer for terminal output
type Buffer struct {
	data []byte
	size int
	head int
	tail int
	mu   sync.Mutex
}

// NewBuffer creates a new circular buffer
func NewBuffer(size int) *Buffer {
	return &Buffer{
		data: make([]byte, size),
		size: size,
	}
}

// Write writes data to the buffer, overwriting the oldest bytes when full
func (b *Buffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range p {
		b.data[b.tail] = c
		b.tail = (b.tail + 1) % b.size

		if b.tail == b.head {
			b.head = (b.head + 1) % b.size
		}
	}

	return len(p), nil
}

// ReadAll drains all buffered data
func (b *Buffer) ReadAll() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.head == b.tail {
		return []byte{}
	}

	var result []byte
	if b.tail > b.head {
		result = make([]byte, b.tail-b.head)
		copy(result, b.data[b.head:b.tail])
	} else {
		first := b.data[b.head:]
		second := b.data[:b.tail]
		result = make([]byte, len(first)+len(second))
		copy(result, first)
		copy(result[len(first):], second)
	}

	b.head = b.tail
	return result
}

// Len returns the number of buffered bytes
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return (b.tail - b.head + b.size) % b.size
}
