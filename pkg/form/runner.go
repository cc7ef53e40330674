package form

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	ferrors "github.com/vango-dev/formstate/internal/errors"
	"github.com/vango-dev/formstate/pkg/reactive"
)

const (
	sourceControl   = "control"
	sourceValidator = "validator"
)

// runner executes one validator, tracks what it reads and turns its results
// into statuses on out.
//
// All fields are owned by the form's execution context. Asynchronous work
// only re-enters through the form's dispatcher.
type runner struct {
	form   *Form
	key    string
	source string

	// call invokes the validator with a fresh tracker.
	call func(t *tracker) Result

	out   *reactive.Cell[Status]
	scope *reactive.Scope

	// linked holds the IDs of cells already subscribed. Edges are never
	// removed while the scope lives.
	linked  map[uint64]struct{}
	allMode bool

	// gen increments on every run; only results tagged with the current
	// generation reach out.
	gen    uint64
	cancel context.CancelFunc

	err error
}

func newRunner(f *Form, key, source string, out *reactive.Cell[Status], call func(*tracker) Result) *runner {
	r := &runner{
		form:   f,
		key:    key,
		source: source,
		call:   call,
		out:    out,
		scope:  reactive.NewScope(),
		linked: make(map[uint64]struct{}),
	}
	r.scope.OnDispose(func() {
		r.gen++
		if r.cancel != nil {
			r.cancel()
			r.cancel = nil
		}
	})
	return r
}

// link subscribes to c unless it is already a dependency.
func (r *runner) link(c *reactive.Cell[any]) {
	if _, ok := r.linked[c.ID()]; ok {
		return
	}
	r.linked[c.ID()] = struct{}{}
	r.scope.OnDispose(c.Subscribe(func(any) { r.run() }))
}

// linkAll subscribes to every registered control and keeps doing so as the
// membership grows. Linking a new member does not trigger a run.
func (r *runner) linkAll() {
	if r.allMode {
		return
	}
	r.allMode = true
	r.scope.OnDispose(r.form.members.Subscribe(func([]string) {
		r.linkMembers()
	}))
	r.linkMembers()
}

func (r *runner) linkMembers() {
	if r.scope.IsDisposed() {
		return
	}
	for _, c := range r.form.controlsSnapshot() {
		r.link(c.cell)
	}
}

// dependencies returns the number of cells this runner is subscribed to.
func (r *runner) dependencies() int {
	return len(r.linked)
}

// invoke calls the validator, converting a MustGet abort into an error.
func (r *runner) invoke(t *tracker) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			dp, ok := p.(depsPanic)
			if !ok {
				panic(p)
			}
			err = dp.err
		}
	}()
	return r.call(t), nil
}

// run executes the validator once and publishes its outcome.
func (r *runner) run() {
	if r.scope.IsDisposed() {
		return
	}

	r.gen++
	gen := r.gen
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}

	r.form.logger.Debug("validator run",
		"key", r.key,
		"source", r.source,
		"generation", gen)

	t := newTracker(r.form)
	res, err := r.invoke(t)
	touched, all := t.close()

	// Reads made before a failure still count as dependencies.
	for _, c := range touched {
		r.link(c)
	}
	if all {
		r.linkAll()
	}

	if gen != r.gen {
		// A write made inside the validator already started a newer run.
		r.form.metrics.supersede(r.source)
		return
	}
	if err != nil {
		r.fail(err)
		return
	}
	r.apply(gen, res)
}

func (r *runner) apply(gen uint64, res Result) {
	switch res.kind {
	case resultAsync:
		r.startAsync(gen, res.async)
	case resultFail:
		r.fail(r.failure(res.err))
	default:
		st, _ := res.Status()
		r.err = nil
		r.emit(st)
	}
}

func (r *runner) emit(st Status) {
	r.form.metrics.status(r.source, st)
	r.out.Set(st)
}

// failure wraps an error passed to Fail unless it already carries a code.
func (r *runner) failure(err error) error {
	if ferrors.CodeOf(err) != "" {
		return err
	}
	return ferrors.New(ferrors.CodeValidatorFailed).WithKey(r.key).Wrap(err)
}

func (r *runner) fail(err error) {
	r.err = err
	r.form.metrics.runError(r.source, ferrors.CodeOf(err))
	r.form.reportError(err)
}

func (r *runner) startAsync(gen uint64, work AsyncFunc) {
	ctx, cancel := context.WithCancel(r.form.ctx)
	r.cancel = cancel
	r.err = nil

	r.emit(Pending())
	if gen != r.gen {
		// Something reacting to the pending status started a newer run,
		// which already cancelled ctx.
		r.form.metrics.supersede(r.source)
		return
	}

	ctx, span := r.form.tracer.Start(ctx, "formstate.validate",
		trace.WithAttributes(
			attribute.String("formstate.key", r.key),
			attribute.String("formstate.source", r.source),
			attribute.Int64("formstate.generation", int64(gen)),
		))

	r.form.metrics.asyncStarted()
	budget := r.form.budget
	dispatcher := r.form.dispatcher
	start := time.Now()

	go func() {
		var (
			settled Result
			err     error
		)
		if budget != nil {
			err = budget.Wait(ctx)
		}
		if err == nil {
			settled, err = work(ctx)
		}
		dispatcher.Dispatch(func() {
			r.settle(gen, settled, err, span, time.Since(start))
		})
	}()
}

// settle applies an asynchronous outcome if it still belongs to the latest run.
func (r *runner) settle(gen uint64, settled Result, err error, span trace.Span, elapsed time.Duration) {
	defer span.End()
	r.form.metrics.asyncSettled(r.source, elapsed)

	if gen != r.gen || r.scope.IsDisposed() {
		span.SetAttributes(attribute.Bool("formstate.superseded", true))
		r.form.metrics.supersede(r.source)
		r.form.logger.Debug("discarded stale validation result",
			"key", r.key,
			"source", r.source,
			"generation", gen)
		return
	}

	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}

	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.fail(ferrors.New(ferrors.CodeAsyncFailed).WithKey(r.key).Wrap(err))
	case settled.kind == resultAsync:
		span.SetStatus(codes.Error, "nested async result")
		r.fail(ferrors.New(ferrors.CodeAsyncFailed).
			WithKey(r.key).
			WithDetail("An asynchronous validator settled with another asynchronous result."))
	case settled.kind == resultFail:
		span.RecordError(settled.err)
		span.SetStatus(codes.Error, "validator failed")
		r.fail(r.failure(settled.err))
	default:
		st, _ := settled.Status()
		span.SetAttributes(attribute.String("formstate.status", st.Kind.String()))
		r.err = nil
		r.emit(st)
	}
}

func (r *runner) dispose() {
	r.scope.Dispose()
}
