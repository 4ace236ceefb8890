package sensor

import "sync"

// LatestFrame holds the most recent value published by a producer.
// Older values are overwritten, and readers never block.
type LatestFrame[T any] struct {
	mu     sync.RWMutex
	value  T
	seq    uint64
	read   uint64
	closed bool
}

// Set publishes a new value. It returns ErrClosed once the holder is closed.
func (h *LatestFrame[T]) Set(v T) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrClosed
	}

	h.value = v
	h.seq++
	return nil
}

// Acquire returns the latest value if one was published since the previous
// Acquire. It returns false when nothing new is available.
func (h *LatestFrame[T]) Acquire() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var zero T
	if h.closed || h.seq == h.read {
		return zero, false
	}

	h.read = h.seq
	return h.value, true
}

// Close drops the held value. Later Set and Acquire calls are no-ops.
func (h *LatestFrame[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	var zero T
	h.value = zero
	h.closed = true
}
