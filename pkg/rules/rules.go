// Package rules provides stock validators for form controls.
//
// Rules are combined into a form.Validator with Validator. Every failing rule
// contributes its message, so a control can report several problems at once:
//
//	f.Register("email", "", rules.Validator(
//	    rules.Required(""),
//	    rules.Email(""),
//	))
//
// Rules other than Required accept empty values; combine them with Required
// when a value must be present.
package rules

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/vango-dev/formstate/pkg/form"
)

// Rule checks a single value.
type Rule interface {
	// Check returns nil if the value is valid, a *Violation if it is not,
	// or any other error if the check itself could not run.
	Check(value any, deps *form.Deps) error
}

// RuleFunc is a function that implements Rule.
type RuleFunc func(value any, deps *form.Deps) error

func (f RuleFunc) Check(value any, deps *form.Deps) error {
	return f(value, deps)
}

// Violation is a failed rule.
type Violation struct {
	Message string
}

func (v *Violation) Error() string {
	return v.Message
}

func violation(msg string) error {
	return &Violation{Message: msg}
}

// Validator runs every rule and reports the messages of those that fail.
// A rule returning an error other than a *Violation fails the run.
func Validator(rules ...Rule) form.Validator {
	return func(value any, deps *form.Deps) form.Result {
		var msgs []string
		for _, r := range rules {
			err := r.Check(value, deps)
			if err == nil {
				continue
			}
			var v *Violation
			if !errors.As(err, &v) {
				return form.Fail(err)
			}
			msgs = append(msgs, v.Message)
		}
		if len(msgs) > 0 {
			return form.Messages(msgs...)
		}
		return form.OK()
	}
}

// Remote checks the value asynchronously, typically against a server. The
// control is pending until check returns.
func Remote(check func(ctx context.Context, value any) error) form.Validator {
	return func(value any, _ *form.Deps) form.Result {
		return form.Async(func(ctx context.Context) (form.Result, error) {
			err := check(ctx, value)
			if err == nil {
				return form.OK(), nil
			}
			var v *Violation
			if errors.As(err, &v) {
				return form.Messages(v.Message), nil
			}
			return form.Result{}, err
		})
	}
}

// Fails returns a violation with msg, for use in custom and remote checks.
func Fails(msg string) error {
	return violation(msg)
}

// ----------------------------------------------------------------------------
// String Rules
// ----------------------------------------------------------------------------

// Required rejects empty values.
func Required(msg string) Rule {
	if msg == "" {
		msg = "This field is required"
	}
	return RuleFunc(func(value any, _ *form.Deps) error {
		if isEmpty(value) {
			return violation(msg)
		}
		return nil
	})
}

// MinLength requires at least n characters.
func MinLength(n int, msg string) Rule {
	if msg == "" {
		msg = fmt.Sprintf("Must be at least %d characters", n)
	}
	return RuleFunc(func(value any, _ *form.Deps) error {
		s := toString(value)
		if s == "" {
			return nil
		}
		if len([]rune(s)) < n {
			return violation(msg)
		}
		return nil
	})
}

// MaxLength allows at most n characters.
func MaxLength(n int, msg string) Rule {
	if msg == "" {
		msg = fmt.Sprintf("Must be at most %d characters", n)
	}
	return RuleFunc(func(value any, _ *form.Deps) error {
		if len([]rune(toString(value))) > n {
			return violation(msg)
		}
		return nil
	})
}

// Pattern requires a match of re.
func Pattern(re *regexp.Regexp, msg string) Rule {
	if msg == "" {
		msg = "Invalid format"
	}
	return matches(re, msg)
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	uuidPattern  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	phonePattern = regexp.MustCompile(`^[\+]?[(]?[0-9]{1,4}[)]?[-\s\.]?[(]?[0-9]{1,3}[)]?[-\s\.]?[0-9]{1,4}[-\s\.]?[0-9]{1,4}[-\s\.]?[0-9]{1,9}$`)
)

// Email requires something shaped like an email address.
func Email(msg string) Rule {
	if msg == "" {
		msg = "Invalid email address"
	}
	return matches(emailPattern, msg)
}

// UUID requires a UUID in canonical form.
func UUID(msg string) Rule {
	if msg == "" {
		msg = "Invalid UUID"
	}
	return matches(uuidPattern, msg)
}

// Phone requires something shaped like a phone number.
func Phone(msg string) Rule {
	if msg == "" {
		msg = "Invalid phone number"
	}
	return matches(phonePattern, msg)
}

func matches(re *regexp.Regexp, msg string) Rule {
	return RuleFunc(func(value any, _ *form.Deps) error {
		s := toString(value)
		if s == "" {
			return nil
		}
		if !re.MatchString(s) {
			return violation(msg)
		}
		return nil
	})
}

// URL requires an absolute URL.
func URL(msg string) Rule {
	if msg == "" {
		msg = "Invalid URL"
	}
	return RuleFunc(func(value any, _ *form.Deps) error {
		s := toString(value)
		if s == "" {
			return nil
		}
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return violation(msg)
		}
		return nil
	})
}

// Alpha allows letters only.
func Alpha(msg string) Rule {
	if msg == "" {
		msg = "Must contain only letters"
	}
	return runes(unicode.IsLetter, msg)
}

// AlphaNumeric allows letters and digits only.
func AlphaNumeric(msg string) Rule {
	if msg == "" {
		msg = "Must contain only letters and numbers"
	}
	return runes(func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}, msg)
}

// Numeric allows digits only.
func Numeric(msg string) Rule {
	if msg == "" {
		msg = "Must contain only numbers"
	}
	return runes(unicode.IsDigit, msg)
}

func runes(ok func(rune) bool, msg string) Rule {
	return RuleFunc(func(value any, _ *form.Deps) error {
		for _, r := range toString(value) {
			if !ok(r) {
				return violation(msg)
			}
		}
		return nil
	})
}

// OneOf requires the value to be one of allowed.
func OneOf(allowed []string, msg string) Rule {
	if msg == "" {
		msg = "Must be one of " + strings.Join(allowed, ", ")
	}
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return RuleFunc(func(value any, _ *form.Deps) error {
		if isEmpty(value) {
			return nil
		}
		if _, ok := set[toString(value)]; !ok {
			return violation(msg)
		}
		return nil
	})
}

// ----------------------------------------------------------------------------
// Numeric Rules
// ----------------------------------------------------------------------------

// Min requires a number >= n.
func Min(n float64, msg string) Rule {
	if msg == "" {
		msg = fmt.Sprintf("Must be at least %v", n)
	}
	return number(func(v float64) bool { return v >= n }, msg)
}

// Max requires a number <= n.
func Max(n float64, msg string) Rule {
	if msg == "" {
		msg = fmt.Sprintf("Must be at most %v", n)
	}
	return number(func(v float64) bool { return v <= n }, msg)
}

// Between requires a number in [lo, hi].
func Between(lo, hi float64, msg string) Rule {
	if msg == "" {
		msg = fmt.Sprintf("Must be between %v and %v", lo, hi)
	}
	return number(func(v float64) bool { return v >= lo && v <= hi }, msg)
}

// Positive requires a number > 0.
func Positive(msg string) Rule {
	if msg == "" {
		msg = "Must be positive"
	}
	return number(func(v float64) bool { return v > 0 }, msg)
}

// NonNegative requires a number >= 0.
func NonNegative(msg string) Rule {
	if msg == "" {
		msg = "Must not be negative"
	}
	return number(func(v float64) bool { return v >= 0 }, msg)
}

func number(ok func(float64) bool, msg string) Rule {
	return RuleFunc(func(value any, _ *form.Deps) error {
		if isEmpty(value) {
			return nil
		}
		v, parsed := toFloat64(value)
		if !parsed || !ok(v) {
			return violation(msg)
		}
		return nil
	})
}

// ----------------------------------------------------------------------------
// Cross-field Rules
// ----------------------------------------------------------------------------

// ErrNoDeps is returned by cross-field rules checked without a *form.Deps,
// for example inside NoneInvalid.
var ErrNoDeps = errors.New("rules: cross-field rule checked without deps")

// fieldRule is a rule that reads another control.
type fieldRule struct {
	field string
	check func(value, other any) error
}

func (r fieldRule) Check(value any, deps *form.Deps) error {
	if deps == nil {
		return fmt.Errorf("%w (field %q)", ErrNoDeps, r.field)
	}
	other, err := deps.Get(r.field)
	if err != nil {
		return err
	}
	return r.check(value, other)
}

// ReadsControls reports whether any of rs reads other controls and so needs
// a field validator.
func ReadsControls(rs ...Rule) bool {
	for _, r := range rs {
		if _, ok := r.(fieldRule); ok {
			return true
		}
	}
	return false
}

// EqualTo requires the value to equal the control under field. The control
// becomes a dependency, so editing it re-checks this one.
func EqualTo(field, msg string) Rule {
	if msg == "" {
		msg = fmt.Sprintf("Must match %s", field)
	}
	return fieldRule{field: field, check: func(value, other any) error {
		if !equals(value, other) {
			return violation(msg)
		}
		return nil
	}}
}

// NotEqualTo requires the value to differ from the control under field.
func NotEqualTo(field, msg string) Rule {
	if msg == "" {
		msg = fmt.Sprintf("Must not match %s", field)
	}
	return fieldRule{field: field, check: func(value, other any) error {
		if equals(value, other) {
			return violation(msg)
		}
		return nil
	}}
}

// Custom adapts a plain check. A nil error passes; any error fails with its
// message.
func Custom(check func(value any) error) Rule {
	return RuleFunc(func(value any, _ *form.Deps) error {
		if err := check(value); err != nil {
			var v *Violation
			if errors.As(err, &v) {
				return v
			}
			return violation(err.Error())
		}
		return nil
	})
}
