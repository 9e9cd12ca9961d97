package state

// Ring is a fixed-capacity circular buffer. Append is O(1) and overwrites
// the oldest element once full; no resizing.
type Ring[T any] struct {
	data     []T
	capacity int
	index    int // next write position
	size     int
}

// NewRing creates a buffer with the given fixed capacity.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring[T]{
		data:     make([]T, capacity),
		capacity: capacity,
	}
}

// Append adds v, evicting the oldest element when full.
func (r *Ring[T]) Append(v T) {
	r.data[r.index] = v
	r.index = (r.index + 1) % r.capacity
	if r.size < r.capacity {
		r.size++
	}
}

// All returns elements in insertion order, oldest first.
func (r *Ring[T]) All() []T {
	out := make([]T, r.size)
	start := 0
	if r.size == r.capacity {
		start = r.index
	}
	for i := 0; i < r.size; i++ {
		out[i] = r.data[(start+i)%r.capacity]
	}
	return out
}

// Latest returns up to n newest elements, newest first.
func (r *Ring[T]) Latest(n int) []T {
	if n <= 0 || r.size == 0 {
		return []T{}
	}
	if n > r.size {
		n = r.size
	}
	out := make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = r.data[(r.index-1-i+r.capacity)%r.capacity]
	}
	return out
}

// ForEachNewest visits elements newest first until fn returns false.
func (r *Ring[T]) ForEachNewest(fn func(v T) bool) {
	for i := 0; i < r.size; i++ {
		if !fn(r.data[(r.index-1-i+r.capacity)%r.capacity]) {
			return
		}
	}
}

// Len returns the current number of elements.
func (r *Ring[T]) Len() int { return r.size }

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int { return r.capacity }

// Clear resets the buffer.
func (r *Ring[T]) Clear() {
	r.index = 0
	r.size = 0
}
