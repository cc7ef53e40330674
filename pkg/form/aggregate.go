package form

import (
	"github.com/vango-dev/formstate/pkg/reactive"
)

// Reduce folds one status into prev. It never mutates prev: when something
// changes it returns a new map and true, otherwise prev and false.
//
// A valid status removes the key. A pending status is always stored. An
// invalid status is stored unless prev already holds an invalid status with
// the same messages.
func Reduce(prev Errors, key string, st Status) (Errors, bool) {
	old, ok := prev[key]
	switch st.Kind {
	case KindValid:
		if !ok {
			return prev, false
		}
		return prev.without(key), true
	case KindPending:
		return prev.with(key, st), true
	default:
		if ok && old.Kind == KindInvalid && equalMessages(old.Messages, st.Messages) {
			return prev, false
		}
		return prev.with(key, st), true
	}
}

type statusSource interface {
	statusCell() *reactive.Cell[Status]
	activate()
}

// Observer folds the statuses of a set of controls, or of global validators,
// into an Errors map and reports it whenever it changes.
type Observer struct {
	form   *Form
	fn     func(Errors)
	global bool

	// selected is nil when every member is observed.
	selected map[string]struct{}
	attached map[string]func()

	scope   *reactive.Scope
	current Errors
	emitted Errors
	ready   bool
}

// ObserveErrors calls fn with the errors of the controls named by keys, or of
// every control when no keys are given. fn runs once with the initial
// snapshot, then each time the map changes. Controls registered later are
// picked up as they appear.
func (f *Form) ObserveErrors(fn func(Errors), keys ...string) *Observer {
	return f.observe(fn, false, keys)
}

// ObserveGlobalErrors is like ObserveErrors for global validators. A removed
// validator drops out of the map.
func (f *Form) ObserveGlobalErrors(fn func(Errors), keys ...string) *Observer {
	return f.observe(fn, true, keys)
}

// ObserveValidity calls fn with the collapsed validity of the controls named
// by keys, or of every control, each time it changes.
func (f *Form) ObserveValidity(fn func(Validity), keys ...string) *Observer {
	var (
		last  Validity
		first = true
	)
	return f.ObserveErrors(func(e Errors) {
		v := e.Validity()
		if !first && v == last {
			return
		}
		first = false
		last = v
		fn(v)
	}, keys...)
}

func (f *Form) observe(fn func(Errors), global bool, keys []string) *Observer {
	o := &Observer{
		form:     f,
		fn:       fn,
		global:   global,
		attached: make(map[string]func()),
		scope:    reactive.NewScope(),
		current:  Errors{},
	}
	if len(keys) > 0 {
		o.selected = make(map[string]struct{}, len(keys))
		for _, k := range keys {
			o.selected[k] = struct{}{}
		}
	}

	members := f.members
	if global {
		members = f.validatorMember
	}
	o.scope.OnDispose(members.Subscribe(o.sync))
	o.scope.OnDispose(func() {
		for k, stop := range o.attached {
			stop()
			delete(o.attached, k)
		}
	})

	o.sync(members.Get())
	o.ready = true
	o.emitted = o.current
	fn(o.current)
	return o
}

func (o *Observer) lookup(key string) (statusSource, bool) {
	if o.global {
		v, ok := o.form.validator(key)
		if !ok {
			return nil, false
		}
		return v, true
	}
	c, ok := o.form.Control(key)
	if !ok {
		return nil, false
	}
	return c, true
}

// sync attaches new members and detaches members that went away.
func (o *Observer) sync(members []string) {
	if o.scope.IsDisposed() {
		return
	}

	present := make(map[string]struct{}, len(members))
	for _, key := range members {
		present[key] = struct{}{}
	}
	for key, stop := range o.attached {
		if _, ok := present[key]; ok {
			continue
		}
		stop()
		delete(o.attached, key)
		if _, ok := o.current[key]; ok {
			o.current = o.current.without(key)
			o.emit()
		}
	}

	for _, key := range members {
		if _, ok := o.attached[key]; ok {
			continue
		}
		if o.selected != nil {
			if _, ok := o.selected[key]; !ok {
				continue
			}
		}
		o.attach(key)
	}
}

func (o *Observer) attach(key string) {
	src, ok := o.lookup(key)
	if !ok {
		return
	}
	cell := src.statusCell()
	o.attached[key] = cell.Subscribe(func(st Status) {
		o.update(key, st)
	})
	src.activate()
	o.update(key, cell.Get())
}

func (o *Observer) update(key string, st Status) {
	if o.scope.IsDisposed() {
		return
	}
	next, changed := Reduce(o.current, key, st)
	if !changed {
		return
	}
	o.current = next
	o.emit()
}

func (o *Observer) emit() {
	if !o.ready || o.current.Equal(o.emitted) {
		return
	}
	o.emitted = o.current
	o.fn(o.current)
}

// Current returns the latest folded map.
func (o *Observer) Current() Errors {
	return o.current
}

// Close releases every subscription of the observer. fn is not called again.
func (o *Observer) Close() {
	o.scope.Dispose()
}
