package ui

import (
	"io"
	"sync"
)

// PCMBuffer is a fixed-size FIFO of interleaved PCM bytes implementing
// io.Reader. The emulation goroutine writes whole frames of audio, oto's
// player pulls from it. Read blocks while the buffer is empty. Write never
// blocks: when the buffer is full the oldest bytes are discarded.
type PCMBuffer struct {
	mu   sync.Mutex
	cond *sync.Cond

	data    []byte
	head    int // index of the oldest byte
	size    int // bytes held
	dropped int // bytes discarded on overflow since creation
	closed  bool
}

// NewPCMBuffer creates a buffer holding at most capacity bytes.
func NewPCMBuffer(capacity int) *PCMBuffer {
	b := &PCMBuffer{data: make([]byte, capacity)}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Write appends p and returns how many older bytes had to be discarded to
// make room. After Close it does nothing.
func (b *PCMBuffer) Write(p []byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || len(p) == 0 {
		return 0
	}

	capacity := len(b.data)
	lost := 0

	// only the newest capacity bytes can survive
	if len(p) > capacity {
		lost = len(p) - capacity
		p = p[lost:]
	}

	if over := b.size + len(p) - capacity; over > 0 {
		b.head = (b.head + over) % capacity
		b.size -= over
		lost += over
	}

	tail := (b.head + b.size) % capacity
	n := copy(b.data[tail:], p)
	copy(b.data, p[n:])
	b.size += len(p)
	b.dropped += lost

	b.cond.Signal()
	return lost
}

// Read implements io.Reader. It returns io.EOF once the buffer is closed
// and drained.
func (b *PCMBuffer) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.size == 0 {
		if b.closed {
			return 0, io.EOF
		}
		b.cond.Wait()
	}

	want := min(len(p), b.size)
	n := copy(p[:want], b.data[b.head:])
	if n < want {
		n += copy(p[n:want], b.data)
	}
	b.head = (b.head + n) % len(b.data)
	b.size -= n
	return n, nil
}

// Buffered returns the number of bytes waiting to be read.
func (b *PCMBuffer) Buffered() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Dropped returns the total number of bytes discarded on overflow.
func (b *PCMBuffer) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Clear discards everything buffered.
func (b *PCMBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head = 0
	b.size = 0
}

// Close wakes any blocked reader. Reads drain what is left, then return
// io.EOF.
func (b *PCMBuffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.cond.Broadcast()
}
