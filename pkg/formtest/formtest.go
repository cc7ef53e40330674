package formtest

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/formstate/pkg/form"
)

// DefaultTimeout bounds Settle and Next.
const DefaultTimeout = 2 * time.Second

// Builder allows fluent construction of test forms.
type Builder struct {
	t          testing.TB
	opts       []form.Option
	fields     []field
	validators []validator
}

type field struct {
	key       string
	initial   any
	validator form.Validator
}

type validator struct {
	key string
	fn  form.GlobalValidator
}

// New creates a builder. Logs are discarded unless WithLogger is used.
//
// Example:
//
//	h := formtest.New(t).WithField("name", "", nil).Build()
func New(t testing.TB) *Builder {
	return &Builder{
		t:    t,
		opts: []form.Option{form.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))},
	}
}

// WithOption adds a form option.
func (b *Builder) WithOption(opt form.Option) *Builder {
	b.opts = append(b.opts, opt)
	return b
}

// WithLogger sends form logs to logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	return b.WithOption(form.WithLogger(logger))
}

// WithField registers a control when the form is built.
func (b *Builder) WithField(key string, initial any, v form.Validator) *Builder {
	b.fields = append(b.fields, field{key: key, initial: initial, validator: v})
	return b
}

// WithValidator registers a global validator when the form is built.
func (b *Builder) WithValidator(key string, fn form.GlobalValidator) *Builder {
	b.validators = append(b.validators, validator{key: key, fn: fn})
	return b
}

// Build creates the form and starts observing it. The form is closed when
// the test ends.
func (b *Builder) Build() *Harness {
	b.t.Helper()

	h := &Harness{t: b.t}
	opts := append(b.opts, form.WithErrorHandler(func(err error) {
		h.runErrors = append(h.runErrors, err)
	}))
	h.Form = form.New(opts...)

	for _, f := range b.fields {
		h.Form.Register(f.key, f.initial, f.validator)
	}
	for _, v := range b.validators {
		if _, err := h.Form.RegisterValidator(v.key, v.fn); err != nil {
			b.t.Fatalf("formtest: register validator %q: %v", v.key, err)
		}
	}

	h.controls = h.Form.ObserveErrors(func(e form.Errors) { h.errors = e })
	h.global = h.Form.ObserveGlobalErrors(func(e form.Errors) { h.globalErrors = e })

	b.t.Cleanup(func() {
		h.controls.Close()
		h.global.Close()
		h.Form.Close()
	})
	return h
}

// Harness is a form under test.
type Harness struct {
	*form.Form

	t            testing.TB
	controls     *form.Observer
	global       *form.Observer
	errors       form.Errors
	globalErrors form.Errors
	runErrors    []error
}

// Write writes v to the control under key, failing the test if it is not
// registered.
func (h *Harness) Write(key string, v any) {
	h.t.Helper()
	if err := h.Form.SetFieldValue(key, v); err != nil {
		h.t.Fatalf("formtest: %v", err)
	}
}

// Status returns the status of the control under key.
func (h *Harness) Status(key string) form.Status {
	h.t.Helper()
	c, ok := h.Form.Control(key)
	if !ok {
		h.t.Fatalf("formtest: no control %q", key)
	}
	return c.Status()
}

// Errors returns the latest control errors.
func (h *Harness) Errors() form.Errors { return h.errors }

// GlobalErrors returns the latest global validator errors.
func (h *Harness) GlobalErrors() form.Errors { return h.globalErrors }

// RunErrors returns the errors of failed validation runs so far.
func (h *Harness) RunErrors() []error { return h.runErrors }

// Next runs one job of the form's loop, waiting up to DefaultTimeout.
func (h *Harness) Next() {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()
	if err := h.Form.Loop().Next(ctx); err != nil {
		h.t.Fatalf("formtest: waiting for the loop: %v", err)
	}
}

// Settle runs loop jobs until no control or validator is pending.
func (h *Harness) Settle() {
	h.t.Helper()
	for h.pending() {
		h.Next()
	}
	h.Form.Loop().Drain()
}

func (h *Harness) pending() bool {
	for _, st := range h.errors {
		if st.IsPending() {
			return true
		}
	}
	for _, st := range h.globalErrors {
		if st.IsPending() {
			return true
		}
	}
	return false
}

// ExpectErrors asserts that got equals want.
//
// Example:
//
//	formtest.ExpectErrors(t, h.Errors(), form.Errors{"email": form.Invalid("required")})
func ExpectErrors(t testing.TB, got, want form.Errors) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("errors mismatch (-want +got):\n%s", cmp.Diff(render(want), render(got)))
	}
}

// ExpectValid asserts that errs is empty.
func ExpectValid(t testing.TB, errs form.Errors) {
	t.Helper()
	if len(errs) != 0 {
		t.Errorf("expected no errors, got %v", render(errs))
	}
}

// ExpectStatus asserts the status of one key in errs. A valid want means the
// key is absent.
func ExpectStatus(t testing.TB, errs form.Errors, key string, want form.Status) {
	t.Helper()
	got, ok := errs[key]
	if !ok {
		got = form.Valid()
	}
	if !got.Equal(want) {
		t.Errorf("%s: got %v, want %v", key, got, want)
	}
}

// render turns errs into comparable strings for diffs.
func render(errs form.Errors) map[string]string {
	out := make(map[string]string, len(errs))
	for k, st := range errs {
		out[k] = st.String()
	}
	return out
}

// ExpectRunError asserts that some failed run reported an error containing
// substr.
func ExpectRunError(t testing.TB, h *Harness, substr string) {
	t.Helper()
	for _, err := range h.runErrors {
		if strings.Contains(err.Error(), substr) {
			return
		}
	}
	t.Errorf("no run error contains %q; got %v", substr, h.runErrors)
}
