package form

import (
	"sync"

	"github.com/vango-dev/formstate/pkg/reactive"
)

// tracker records the cells a single validator run reads.
type tracker struct {
	form *Form

	mu      sync.Mutex
	touched []*reactive.Cell[any]
	all     bool
	closed  bool
}

func newTracker(f *Form) *tracker {
	return &tracker{form: f}
}

func (t *tracker) touch(c *reactive.Cell[any]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.touched = append(t.touched, c)
}

func (t *tracker) wantAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.all = true
}

// close stops recording and returns what the run read.
func (t *tracker) close() ([]*reactive.Cell[any], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return t.touched, t.all
}

func (t *tracker) get(key string) (any, error) {
	c, ok := t.form.Control(key)
	if !ok {
		return nil, errControlNotRegistered(key)
	}
	t.touch(c.cell)
	return c.cell.Get(), nil
}

// Deps is handed to a control validator. Every control read through it
// becomes a dependency: later writes to that control re-run the validator.
//
// Reads after the validator has returned (for example from an AsyncFunc) still
// return current values but no longer add dependencies.
type Deps struct {
	t *tracker
}

// Get returns the current value of the control registered under key.
// It returns an error matching ErrControlNotRegistered if there is none.
func (d *Deps) Get(key string) (any, error) {
	return d.t.get(key)
}

// MustGet is like Get but aborts the validator run when key is not
// registered. The run fails with ErrControlNotRegistered.
func (d *Deps) MustGet(key string) any {
	v, err := d.t.get(key)
	if err != nil {
		panic(depsPanic{err: err})
	}
	return v
}

// GlobalDeps is handed to a global validator.
type GlobalDeps struct {
	t *tracker
}

// Get returns the value of one control, as Deps.Get.
func (d *GlobalDeps) Get(key string) (any, error) {
	return d.t.get(key)
}

// Values returns the current values of the named controls and depends on each
// of them. Keys with no control map to nil and are not tracked.
func (d *GlobalDeps) Values(keys ...string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		c, ok := d.t.form.Control(key)
		if !ok {
			out[key] = nil
			continue
		}
		d.t.touch(c.cell)
		out[key] = c.cell.Get()
	}
	return out
}

// All returns the values of every registered control and depends on all
// controls, including the ones registered later.
func (d *GlobalDeps) All() map[string]any {
	d.t.wantAll()
	return d.t.form.ReadAll()
}
