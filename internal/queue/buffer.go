package queue

import "sync"

// Buffer is a thread-safe FIFO ring that doubles its capacity when full.
// Push never blocks; Pop blocks until an item arrives or the buffer closes.
type Buffer[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	ring   []T
	head   int
	count  int
	closed bool
}

// NewBuffer creates a buffer with the given initial capacity.
func NewBuffer[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	b := &Buffer[T]{ring: make([]T, capacity)}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Push appends an item. Returns false if the buffer is closed.
func (b *Buffer[T]) Push(item T) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}

	if b.count == len(b.ring) {
		b.grow()
	}

	b.ring[(b.head+b.count)%len(b.ring)] = item
	b.count++
	b.cond.Signal()
	return true
}

// Pop removes and returns the oldest item, blocking until one is available.
// Returns false once the buffer is closed and drained.
func (b *Buffer[T]) Pop() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.count == 0 && !b.closed {
		b.cond.Wait()
	}
	return b.popLocked()
}

// TryPop removes and returns the oldest item without blocking.
func (b *Buffer[T]) TryPop() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		var zero T
		return zero, false
	}
	return b.popLocked()
}

func (b *Buffer[T]) popLocked() (T, bool) {
	var zero T
	if b.count == 0 {
		return zero, false
	}

	item := b.ring[b.head]
	b.ring[b.head] = zero
	b.head = (b.head + 1) % len(b.ring)
	b.count--
	return item, true
}

// Len returns the number of buffered items.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Close stops accepting items and wakes all blocked consumers. Buffered
// items remain poppable.
func (b *Buffer[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.cond.Broadcast()
}

// grow doubles capacity, unrolling the ring so head lands at zero.
func (b *Buffer[T]) grow() {
	next := make([]T, len(b.ring)*2)
	for i := 0; i < b.count; i++ {
		next[i] = b.ring[(b.head+i)%len(b.ring)]
	}
	b.ring = next
	b.head = 0
}
