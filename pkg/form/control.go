package form

import (
	"github.com/vango-dev/formstate/pkg/reactive"
)

// Validator checks a control's value. Reads through deps make other controls
// dependencies of this one.
type Validator func(value any, deps *Deps) Result

// Typed adapts a validator for values of type T. A value of another type is
// passed as the zero T.
func Typed[T any](fn func(value T, deps *Deps) Result) Validator {
	return func(value any, deps *Deps) Result {
		v, _ := value.(T)
		return fn(v, deps)
	}
}

func noopValidator(any, *Deps) Result { return OK() }

// Control is a named value cell plus its validation status.
//
// The status the form aggregates merges two streams: the validator's results
// and the manual error channel. Whichever emitted last wins.
type Control struct {
	key  string
	cell *reactive.Cell[any]

	validation *reactive.Cell[Status]
	manual     *reactive.Cell[Status]
	status     *reactive.Cell[Status]

	runner *runner
	active bool
}

func newControl(f *Form, key string, initial any, validator Validator) *Control {
	if validator == nil {
		validator = noopValidator
	}

	c := &Control{
		key:        key,
		cell:       reactive.NewCell(initial),
		validation: reactive.NewCell(Valid()),
		manual:     reactive.NewCell(Valid()),
		status:     reactive.NewCell(Valid()),
	}
	c.runner = newRunner(f, key, sourceControl, c.validation, func(t *tracker) Result {
		return validator(c.cell.Get(), &Deps{t: t})
	})

	merge := func(st Status) { c.status.Set(st) }
	c.runner.scope.OnDispose(c.validation.Subscribe(merge))
	c.runner.scope.OnDispose(c.manual.Subscribe(merge))

	return c
}

// Key returns the control's key.
func (c *Control) Key() string {
	return c.key
}

// Read returns the current value.
func (c *Control) Read() any {
	return c.cell.Get()
}

// Write stores v. Subscribers and dependent validators run before Write
// returns. Writing the current value again still counts as a change.
func (c *Control) Write(v any) {
	c.cell.Set(v)
}

// Subscribe calls fn with every value written after the call. The returned
// function stops the subscription. Subscriptions belong to the caller and
// outlive Form.Close.
func (c *Control) Subscribe(fn func(any)) func() {
	return c.cell.Subscribe(fn)
}

// activate starts validation the first time the status is observed.
func (c *Control) activate() {
	if c.active {
		return
	}
	c.active = true
	c.runner.link(c.cell)
	c.runner.run()

	// A manual error pushed before activation is still the latest one.
	if manual := c.manual.Get(); !manual.IsValid() {
		c.status.Set(manual)
	}
}

// Status returns the current merged status, starting validation if needed.
func (c *Control) Status() Status {
	c.activate()
	return c.status.Get()
}

// SubscribeStatus calls fn with every merged status emitted after the call,
// starting validation if needed.
func (c *Control) SubscribeStatus(fn func(Status)) func() {
	stop := c.status.Subscribe(fn)
	c.activate()
	return stop
}

// Validate returns the current status together with the error of the latest
// run, if that run failed.
func (c *Control) Validate() (Status, error) {
	st := c.Status()
	return st, c.runner.err
}

// Err returns the error of the latest validation run, or nil.
func (c *Control) Err() error {
	return c.runner.err
}

// Dependencies returns how many controls, including itself, this control's
// validator is subscribed to.
func (c *Control) Dependencies() int {
	return c.runner.dependencies()
}

// SetManualError pushes st on the manual error channel.
func (c *Control) SetManualError(st Status) {
	c.manual.Set(st)
}

// ManualError returns the last status pushed on the manual error channel.
func (c *Control) ManualError() Status {
	return c.manual.Get()
}

func (c *Control) statusCell() *reactive.Cell[Status] { return c.status }

// Field is a typed view of a Control.
type Field[T any] struct {
	*Control
}

// NewField registers (or returns) the control under key with a typed
// validator. validator may be nil.
func NewField[T any](f *Form, key string, initial T, validator func(value T, deps *Deps) Result) *Field[T] {
	var v Validator
	if validator != nil {
		v = Typed(validator)
	}
	return &Field[T]{Control: f.Register(key, initial, v)}
}

// Get returns the current value, or the zero T if the control holds another
// type.
func (f *Field[T]) Get() T {
	v, _ := f.Read().(T)
	return v
}

// Set writes v.
func (f *Field[T]) Set(v T) {
	f.Write(v)
}

// OnChange calls fn with every value written after the call.
func (f *Field[T]) OnChange(fn func(T)) func() {
	return f.Subscribe(func(v any) {
		t, _ := v.(T)
		fn(t)
	})
}
