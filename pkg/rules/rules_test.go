package rules

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/formstate/pkg/form"
)

func check(r Rule, value any) error {
	return r.Check(value, nil)
}

func TestRequired(t *testing.T) {
	r := Required("")

	for _, v := range []any{"", "   ", nil, []byte{}} {
		if err := check(r, v); err == nil {
			t.Errorf("Required(%#v) passed, want violation", v)
		}
	}
	for _, v := range []any{"hello", 0, false} {
		if err := check(r, v); err != nil {
			t.Errorf("Required(%#v) = %v, want nil", v, err)
		}
	}
}

func TestLength(t *testing.T) {
	tests := []struct {
		rule  Rule
		value any
		ok    bool
	}{
		{MinLength(3, ""), "ab", false},
		{MinLength(3, ""), "abc", true},
		{MinLength(3, ""), "", true},
		{MinLength(2, ""), "日本", true},
		{MaxLength(5, ""), "abcde", true},
		{MaxLength(5, ""), "abcdef", false},
	}
	for _, tt := range tests {
		if err := check(tt.rule, tt.value); (err == nil) != tt.ok {
			t.Errorf("check(%q) = %v, want ok=%v", tt.value, err, tt.ok)
		}
	}
}

func TestFormats(t *testing.T) {
	tests := []struct {
		name  string
		rule  Rule
		value string
		ok    bool
	}{
		{"email ok", Email(""), "ada@example.com", true},
		{"email bad", Email(""), "ada@", false},
		{"url ok", URL(""), "https://example.com/x", true},
		{"url relative", URL(""), "/x", false},
		{"uuid ok", UUID(""), "123e4567-e89b-12d3-a456-426614174000", true},
		{"uuid bad", UUID(""), "123e4567", false},
		{"alpha", Alpha(""), "abc", true},
		{"alpha digits", Alpha(""), "abc1", false},
		{"alphanum", AlphaNumeric(""), "abc1", true},
		{"numeric", Numeric(""), "0123", true},
		{"numeric letters", Numeric(""), "12a", false},
		{"phone", Phone(""), "+1-234-567-8900", true},
		{"pattern", Pattern(regexp.MustCompile(`^[A-Z]{3}$`), ""), "ABC", true},
		{"pattern bad", Pattern(regexp.MustCompile(`^[A-Z]{3}$`), ""), "abc", false},
		{"oneof", OneOf([]string{"red", "blue"}, ""), "blue", true},
		{"oneof bad", OneOf([]string{"red", "blue"}, ""), "green", false},
		{"empty passes", Email(""), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := check(tt.rule, tt.value); (err == nil) != tt.ok {
				t.Errorf("check(%q) = %v, want ok=%v", tt.value, err, tt.ok)
			}
		})
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		name  string
		rule  Rule
		value any
		ok    bool
	}{
		{"min int", Min(18, ""), 18, true},
		{"min below", Min(18, ""), 17, false},
		{"min string", Min(18, ""), "20", true},
		{"min not a number", Min(18, ""), "abc", false},
		{"max", Max(10, ""), 10.5, false},
		{"between", Between(1, 5, ""), uint8(3), true},
		{"positive zero", Positive(""), 0, false},
		{"nonnegative zero", NonNegative(""), 0, true},
		{"empty passes", Min(18, ""), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := check(tt.rule, tt.value); (err == nil) != tt.ok {
				t.Errorf("check(%v) = %v, want ok=%v", tt.value, err, tt.ok)
			}
		})
	}
}

func newForm(t *testing.T) *form.Form {
	t.Helper()
	f := form.New(form.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(f.Close)
	return f
}

func TestValidatorCollectsMessages(t *testing.T) {
	f := newForm(t)
	c := f.Register("name", "a1", Validator(
		MinLength(3, "too short"),
		Alpha("letters only"),
	))

	want := form.Invalid("too short", "letters only")
	if st := c.Status(); !st.Equal(want) {
		t.Errorf("Status() = %v, want %v", st, want)
	}

	c.Write("abcd")
	if st := c.Status(); !st.IsValid() {
		t.Errorf("Status() = %v, want valid", st)
	}
}

func TestEqualToTracksOtherField(t *testing.T) {
	f := newForm(t)
	pw := f.Register("password", "secret", nil)
	confirm := f.Register("confirm", "secret", Validator(EqualTo("password", "")))

	if st := confirm.Status(); !st.IsValid() {
		t.Fatalf("Status() = %v, want valid", st)
	}
	pw.Write("other")
	if st := confirm.Status(); !st.Equal(form.Invalid("Must match password")) {
		t.Errorf("Status() after password change = %v", st)
	}
}

func TestEqualToUnknownFieldFailsRun(t *testing.T) {
	var got error
	f := form.New(
		form.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		form.WithErrorHandler(func(err error) { got = err }),
	)
	c := f.Register("confirm", "", Validator(NotEqualTo("nope", "")))
	c.Status()

	if !errors.Is(got, form.ErrControlNotRegistered) {
		t.Errorf("handler error = %v, want ErrControlNotRegistered", got)
	}
}

func TestCustom(t *testing.T) {
	r := Custom(func(v any) error {
		if v == "admin" {
			return errors.New("reserved name")
		}
		return nil
	})
	err := check(r, "admin")
	var v *Violation
	if !errors.As(err, &v) || v.Message != "reserved name" {
		t.Errorf("Custom() = %v, want violation", err)
	}
}

func TestRemote(t *testing.T) {
	f := newForm(t)
	c := f.Register("user", "ada", Remote(func(_ context.Context, v any) error {
		if v == "ada" {
			return Fails("taken")
		}
		return nil
	}))

	if st := c.Status(); !st.IsPending() {
		t.Fatalf("Status() = %v, want pending", st)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := f.Loop().Next(ctx); err != nil {
		t.Fatal(err)
	}
	if st := c.Status(); !st.Equal(form.Invalid("taken")) {
		t.Errorf("Status() = %v, want invalid: taken", st)
	}
}

func TestParse(t *testing.T) {
	rules, err := Parse("required, minlen=3 ,oneof=a|bcd,email")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(rules) != 4 {
		t.Fatalf("Parse() returned %d rules, want 4", len(rules))
	}

	f := newForm(t)
	c := f.Register("x", "ab", Validator(rules...))
	want := form.Invalid("Must be at least 3 characters", "Must be one of a, bcd", "Invalid email address")
	if diff := cmp.Diff(want.Messages, c.Status().Messages); diff != "" {
		t.Errorf("messages (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	for _, tags := range []string{"nope", "minlen=x", "min=", "pattern=(", "oneof", "eqfield"} {
		if _, err := Parse(tags); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", tags)
		}
	}
}

func TestGlobalRules(t *testing.T) {
	f := newForm(t)
	f.Register("email", "", nil)
	phone := f.Register("phone", "", nil)

	if _, err := f.RegisterValidator("contact", AnyRequired("", "email", "phone")); err != nil {
		t.Fatal(err)
	}
	if st, _ := f.ValidatorStatus("contact"); !st.Equal(form.Invalid("One of email, phone is required")) {
		t.Errorf("contact = %v", st)
	}
	phone.Write("555")
	if st, _ := f.ValidatorStatus("contact"); !st.IsValid() {
		t.Errorf("contact after phone = %v, want valid", st)
	}

	f.Register("a", "x", nil)
	f.Register("b", "y", nil)
	if _, err := f.RegisterValidator("same", FieldsEqual("differ", "a", "b")); err != nil {
		t.Fatal(err)
	}
	if st, _ := f.ValidatorStatus("same"); !st.Equal(form.Invalid("differ")) {
		t.Errorf("same = %v", st)
	}

	if _, err := f.RegisterValidator("short", NoneInvalid(MaxLength(3, ""), "too long")); err != nil {
		t.Fatal(err)
	}
	f.Register("late", "abcdef", nil)
	late, _ := f.Control("late")
	late.Write("abcdefg")
	if st, _ := f.ValidatorStatus("short"); !st.Equal(form.Invalid("too long")) {
		t.Errorf("short = %v", st)
	}
}

func TestNoneInvalidWithCrossFieldRule(t *testing.T) {
	var got error
	f := form.New(
		form.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		form.WithErrorHandler(func(err error) { got = err }),
	)
	t.Cleanup(f.Close)
	f.Register("a", "x", nil)
	f.Register("b", "y", nil)

	rs := MustParse("eqfield=a")
	if !ReadsControls(rs...) {
		t.Error("ReadsControls(eqfield) = false")
	}
	if ReadsControls(MustParse("required,maxlen=3")...) {
		t.Error("ReadsControls(required,maxlen) = true")
	}

	if _, err := f.RegisterValidator("same", NoneInvalid(rs[0], "")); err != nil {
		t.Fatal(err)
	}
	if !errors.Is(got, ErrNoDeps) || !errors.Is(got, form.ErrValidatorFailed) {
		t.Errorf("handler error = %v, want ErrNoDeps wrapped as ErrValidatorFailed", got)
	}
	if err := f.ValidatorErr("same"); !errors.Is(err, ErrNoDeps) {
		t.Errorf("ValidatorErr() = %v", err)
	}
}
