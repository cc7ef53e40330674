package form

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegisterValidatorDuplicate(t *testing.T) {
	f, _ := newTestForm()
	first := 0
	if _, err := f.RegisterValidator("match", func(*GlobalDeps) Result {
		first++
		return OK()
	}); err != nil {
		t.Fatalf("RegisterValidator() error = %v", err)
	}

	_, err := f.RegisterValidator("match", func(*GlobalDeps) Result { return Bool(false) })
	if !errors.Is(err, ErrDuplicateValidator) {
		t.Fatalf("second RegisterValidator() error = %v, want ErrDuplicateValidator", err)
	}
	if st, _ := f.ValidatorStatus("match"); !st.IsValid() {
		t.Errorf("existing validator changed: %v", st)
	}
	if first != 1 {
		t.Errorf("first validator ran %d times, want 1", first)
	}
}

func TestGlobalValidatorPrimesAndTracksValues(t *testing.T) {
	f, _ := newTestForm()
	pw := f.Register("password", "secret", nil)
	confirm := f.Register("confirm", "", nil)

	runs := 0
	_, err := f.RegisterValidator("passwords", func(deps *GlobalDeps) Result {
		runs++
		v := deps.Values("password", "confirm")
		if v["password"] != v["confirm"] {
			return Messages("passwords differ")
		}
		return OK()
	})
	if err != nil {
		t.Fatal(err)
	}
	if runs != 1 {
		t.Fatalf("runs after registration = %d, want 1", runs)
	}

	rec := &recorder{}
	obs := f.ObserveGlobalErrors(rec.observe)
	defer obs.Close()

	if got := rec.last(); !got.Equal(Errors{"passwords": Invalid("passwords differ")}) {
		t.Errorf("initial = %v", got)
	}

	confirm.Write("secret")
	if got := rec.last(); len(got) != 0 {
		t.Errorf("after confirm = %v, want {}", got)
	}

	pw.Write("changed")
	if got := rec.last(); len(got) != 1 {
		t.Errorf("after password change = %v, want one entry", got)
	}
	if runs != 3 {
		t.Errorf("runs = %d, want 3", runs)
	}
}

func TestGlobalValuesUnknownKey(t *testing.T) {
	f, sink := newTestForm()
	var got map[string]any
	if _, err := f.RegisterValidator("v", func(deps *GlobalDeps) Result {
		got = deps.Values("missing")
		return OK()
	}); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(map[string]any{"missing": nil}, got); diff != "" {
		t.Errorf("Values() (-want +got):\n%s", diff)
	}
	if len(sink.errs) != 0 {
		t.Errorf("Values() on a missing key must not fail the run: %v", sink.errs)
	}
}

func TestGlobalValidatorAllMode(t *testing.T) {
	f, _ := newTestForm()
	f.Register("a", 1, nil)

	runs := 0
	var seen map[string]any
	if _, err := f.RegisterValidator("all", func(deps *GlobalDeps) Result {
		runs++
		seen = deps.All()
		return OK()
	}); err != nil {
		t.Fatal(err)
	}

	c := f.Register("c", 3, nil)
	if runs != 1 {
		t.Errorf("registering a control triggered a run: runs = %d", runs)
	}

	c.Write(4)
	if runs != 2 {
		t.Fatalf("write to a late member: runs = %d, want 2", runs)
	}
	if diff := cmp.Diff(map[string]any{"a": 1, "c": 4}, seen); diff != "" {
		t.Errorf("All() (-want +got):\n%s", diff)
	}
}

func TestValidatorTeardown(t *testing.T) {
	f, _ := newTestForm()
	a := f.Register("a", "", nil)

	runs := 0
	teardown, err := f.RegisterValidator("v", func(deps *GlobalDeps) Result {
		runs++
		deps.Get("a")
		return Bool(false)
	})
	if err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	obs := f.ObserveGlobalErrors(rec.observe)
	defer obs.Close()
	if got := rec.last(); len(got) != 1 {
		t.Fatalf("initial = %v, want one entry", got)
	}

	teardown()
	teardown()

	if keys := f.ValidatorKeys(); len(keys) != 0 {
		t.Errorf("ValidatorKeys() = %v, want none", keys)
	}
	if got := rec.last(); len(got) != 0 {
		t.Errorf("after teardown = %v, want {}", got)
	}

	a.Write("x")
	if runs != 1 {
		t.Errorf("torn down validator ran: runs = %d", runs)
	}

	if _, err := f.RegisterValidator("v", func(*GlobalDeps) Result { return OK() }); err != nil {
		t.Errorf("re-register after teardown: %v", err)
	}
}

func TestGlobalValidatorUnknownGetFails(t *testing.T) {
	f, sink := newTestForm()
	if _, err := f.RegisterValidator("v", func(deps *GlobalDeps) Result {
		if _, err := deps.Get("nope"); err != nil {
			return Fail(err)
		}
		return OK()
	}); err != nil {
		t.Fatal(err)
	}

	if !errors.Is(f.ValidatorErr("v"), ErrControlNotRegistered) {
		t.Errorf("ValidatorErr() = %v", f.ValidatorErr("v"))
	}
	if len(sink.errs) != 1 {
		t.Errorf("handler called %d times, want 1", len(sink.errs))
	}
}
