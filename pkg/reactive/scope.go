package reactive

import (
	"sync"
	"sync/atomic"
)

// Scope owns a set of teardown functions and releases them together.
//
// Partial release is not supported: Dispose runs every registered function,
// most recent first, exactly once.
type Scope struct {
	id uint64

	cleanups   []func()
	cleanupsMu sync.Mutex

	disposed atomic.Bool
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{id: nextID()}
}

// ID returns the unique identifier for this scope.
func (s *Scope) ID() uint64 {
	return s.id
}

// OnDispose registers fn to run when the scope is disposed.
// If the scope is already disposed, fn runs immediately.
func (s *Scope) OnDispose(fn func()) {
	if fn == nil {
		return
	}
	if s.disposed.Load() {
		fn()
		return
	}

	s.cleanupsMu.Lock()
	defer s.cleanupsMu.Unlock()
	s.cleanups = append(s.cleanups, fn)
}

// Len returns the number of teardown functions still held.
func (s *Scope) Len() int {
	s.cleanupsMu.Lock()
	defer s.cleanupsMu.Unlock()
	return len(s.cleanups)
}

// IsDisposed reports whether Dispose has been called.
func (s *Scope) IsDisposed() bool {
	return s.disposed.Load()
}

// Dispose runs all teardown functions in reverse registration order.
// Subsequent calls are no-ops.
func (s *Scope) Dispose() {
	if s.disposed.Swap(true) {
		return
	}

	s.cleanupsMu.Lock()
	cleanups := s.cleanups
	s.cleanups = nil
	s.cleanupsMu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}
