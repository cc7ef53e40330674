package reactive

import (
	"sync"
	"sync/atomic"
)

// subscription is one registered callback on a Cell.
type subscription[T any] struct {
	id      uint64
	fn      func(T)
	removed atomic.Bool
}

// Cell is a single mutable value with ordered subscribers.
//
// Subscribers are notified synchronously, in subscription order, before Set
// returns. A subscriber removed while a notification is being delivered does
// not receive the rest of that notification.
type Cell[T any] struct {
	id uint64

	value T
	mu    sync.RWMutex

	subs  []*subscription[T]
	subMu sync.Mutex
}

// NewCell creates a cell holding initial.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{
		id:    nextID(),
		value: initial,
	}
}

// ID returns the unique identifier of the cell.
func (c *Cell[T]) ID() uint64 {
	return c.id
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set stores v and notifies every subscriber with it.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	c.value = v
	c.mu.Unlock()

	c.notify(v)
}

// Update stores fn(current) and notifies subscribers.
func (c *Cell[T]) Update(fn func(T) T) {
	c.mu.Lock()
	v := fn(c.value)
	c.value = v
	c.mu.Unlock()

	c.notify(v)
}

// Subscribe registers fn to be called with every value passed to Set.
// The returned function removes the subscription; calling it more than once
// is a no-op.
func (c *Cell[T]) Subscribe(fn func(T)) func() {
	sub := &subscription[T]{id: nextID(), fn: fn}

	c.subMu.Lock()
	c.subs = append(c.subs, sub)
	c.subMu.Unlock()

	return func() { c.unsubscribe(sub) }
}

// Subscribers returns the number of active subscriptions.
func (c *Cell[T]) Subscribers() int {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	return len(c.subs)
}

func (c *Cell[T]) unsubscribe(sub *subscription[T]) {
	if sub.removed.Swap(true) {
		return
	}

	c.subMu.Lock()
	defer c.subMu.Unlock()

	for i, existing := range c.subs {
		if existing.id == sub.id {
			// Order matters here, so no swap-remove.
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return
		}
	}
}

// notify delivers v to a snapshot of the subscribers so callbacks may
// subscribe or unsubscribe without holding the lock.
func (c *Cell[T]) notify(v T) {
	c.subMu.Lock()
	subs := make([]*subscription[T], len(c.subs))
	copy(subs, c.subs)
	c.subMu.Unlock()

	for _, sub := range subs {
		if sub.removed.Load() {
			continue
		}
		sub.fn(v)
	}
}
