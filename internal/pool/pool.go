package pool

// Resettable is implemented by values that can be cleared for reuse.
type Resettable interface {
	Reset()
}

// Pool is a bounded free list of reusable values. Unlike sync.Pool it never
// drops retained values on GC, so steady-state encoding allocates nothing.
type Pool[T Resettable] struct {
	items   chan T
	newItem func() T
}

// New creates a Pool retaining at most capacity values. newItem is called by
// Get when the pool is empty.
func New[T Resettable](capacity int, newItem func() T) *Pool[T] {
	return &Pool[T]{
		items:   make(chan T, capacity),
		newItem: newItem,
	}
}

// Get returns a pooled value, or a fresh one if none is available.
func (p *Pool[T]) Get() T {
	select {
	case item := <-p.items:
		return item
	default:
		return p.newItem()
	}
}

// Put resets item and keeps it for reuse. It is discarded when the pool is full.
func (p *Pool[T]) Put(item T) {
	item.Reset()

	select {
	case p.items <- item:
	default:
	}
}

// Len returns the number of values currently retained.
func (p *Pool[T]) Len() int {
	return len(p.items)
}
