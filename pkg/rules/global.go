package rules

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vango-dev/formstate/pkg/form"
)

// FieldsEqual is a global validator requiring every named control to hold the
// same value.
func FieldsEqual(msg string, keys ...string) form.GlobalValidator {
	if msg == "" {
		msg = fmt.Sprintf("%s must match", strings.Join(keys, ", "))
	}
	return func(deps *form.GlobalDeps) form.Result {
		if len(keys) < 2 {
			return form.OK()
		}
		values := deps.Values(keys...)
		for _, k := range keys[1:] {
			if !equals(values[keys[0]], values[k]) {
				return form.Messages(msg)
			}
		}
		return form.OK()
	}
}

// AnyRequired is a global validator requiring at least one of the named
// controls to be non-empty.
func AnyRequired(msg string, keys ...string) form.GlobalValidator {
	if msg == "" {
		msg = fmt.Sprintf("One of %s is required", strings.Join(keys, ", "))
	}
	return func(deps *form.GlobalDeps) form.Result {
		for _, v := range deps.Values(keys...) {
			if !isEmpty(v) {
				return form.OK()
			}
		}
		return form.Messages(msg)
	}
}

// NoneInvalid is a global validator over every control: it fails when any
// control value breaks rule. Controls registered later are included. rule
// must not read other controls; if it does, every run fails with ErrNoDeps.
func NoneInvalid(rule Rule, msg string) form.GlobalValidator {
	return func(deps *form.GlobalDeps) form.Result {
		values := deps.All()
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if err := rule.Check(values[key], nil); err != nil {
				var v *Violation
				if !errors.As(err, &v) {
					return form.Fail(err)
				}
				if msg == "" {
					return form.Messages(fmt.Sprintf("%s: %v", key, err))
				}
				return form.Messages(msg)
			}
		}
		return form.OK()
	}
}
