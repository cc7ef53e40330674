package formtest

import (
	"context"
	"testing"

	"github.com/vango-dev/formstate/pkg/form"
)

func nonEmpty(v any, _ *form.Deps) form.Result {
	s, _ := v.(string)
	if s == "" {
		return form.Messages("required")
	}
	return form.OK()
}

func TestHarness(t *testing.T) {
	h := New(t).
		WithField("name", "", nonEmpty).
		WithField("nick", "x", nil).
		WithValidator("pair", func(d *form.GlobalDeps) form.Result {
			v := d.Values("name", "nick")
			return form.Bool(v["name"] != v["nick"])
		}).
		Build()

	ExpectErrors(t, h.Errors(), form.Errors{"name": form.Invalid("required")})
	ExpectValid(t, h.GlobalErrors())

	h.Write("name", "x")
	ExpectValid(t, h.Errors())
	ExpectStatus(t, h.GlobalErrors(), "pair", form.Invalid())
	ExpectStatus(t, h.Errors(), "name", form.Valid())

	if st := h.Status("nick"); !st.IsValid() {
		t.Errorf("Status(nick) = %v", st)
	}
}

func TestSettleWaitsForAsync(t *testing.T) {
	release := make(chan struct{})
	h := New(t).
		WithField("user", "ada", func(any, *form.Deps) form.Result {
			return form.Async(func(ctx context.Context) (form.Result, error) {
				<-release
				return form.Messages("taken"), nil
			})
		}).
		Build()

	ExpectStatus(t, h.Errors(), "user", form.Pending())
	close(release)
	h.Settle()
	ExpectErrors(t, h.Errors(), form.Errors{"user": form.Invalid("taken")})
}

func TestRunErrorsCaptured(t *testing.T) {
	h := New(t).
		WithField("a", "", func(_ any, d *form.Deps) form.Result {
			d.MustGet("missing")
			return form.OK()
		}).
		Build()

	ExpectRunError(t, h, "missing")
	if len(h.RunErrors()) != 1 {
		t.Errorf("RunErrors() = %v", h.RunErrors())
	}
}
