package form

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Kind is the state of a validation status.
type Kind uint8

const (
	// KindValid means no error.
	KindValid Kind = iota
	// KindInvalid means the value failed validation, with zero or more messages.
	KindInvalid
	// KindPending means an asynchronous validation is in flight.
	KindPending
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindValid:
		return "valid"
	case KindInvalid:
		return "invalid"
	case KindPending:
		return "pending"
	default:
		return "unknown"
	}
}

// Status is the normalized outcome of a validation run.
// Messages is only meaningful when Kind is KindInvalid.
type Status struct {
	Kind     Kind
	Messages []string
}

// Valid returns the passing status.
func Valid() Status { return Status{Kind: KindValid} }

// Pending returns the in-flight status.
func Pending() Status { return Status{Kind: KindPending} }

// Invalid returns a failing status. A failure without messages is still a
// failure.
func Invalid(messages ...string) Status {
	return Status{Kind: KindInvalid, Messages: messages}
}

// IsValid reports whether the status is KindValid.
func (s Status) IsValid() bool { return s.Kind == KindValid }

// IsPending reports whether the status is KindPending.
func (s Status) IsPending() bool { return s.Kind == KindPending }

// IsInvalid reports whether the status is KindInvalid.
func (s Status) IsInvalid() bool { return s.Kind == KindInvalid }

// Equal reports value equality: same kind and, for invalid statuses, the same
// messages in the same order. A nil and an empty message list are equal.
func (s Status) Equal(other Status) bool {
	if s.Kind != other.Kind {
		return false
	}
	if s.Kind != KindInvalid {
		return true
	}
	return equalMessages(s.Messages, other.Messages)
}

// String renders the status for logs.
func (s Status) String() string {
	if s.Kind == KindInvalid && len(s.Messages) > 0 {
		return "invalid: " + strings.Join(s.Messages, "; ")
	}
	return s.Kind.String()
}

// MarshalJSON encodes valid as true, pending as "pending" and invalid as the
// list of messages.
func (s Status) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case KindValid:
		return []byte("true"), nil
	case KindPending:
		return []byte(`"pending"`), nil
	default:
		msgs := s.Messages
		if msgs == nil {
			msgs = []string{}
		}
		return json.Marshal(msgs)
	}
}

// UnmarshalJSON accepts the MarshalJSON encoding plus false for an invalid
// status without messages.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case bool:
		if v {
			*s = Valid()
		} else {
			*s = Invalid()
		}
	case string:
		if v != "pending" {
			return fmt.Errorf("form: unknown status %q", v)
		}
		*s = Pending()
	case []any:
		msgs := make([]string, 0, len(v))
		for _, m := range v {
			str, ok := m.(string)
			if !ok {
				return fmt.Errorf("form: status message must be a string, got %T", m)
			}
			msgs = append(msgs, str)
		}
		*s = Invalid(msgs...)
	default:
		return fmt.Errorf("form: cannot decode status from %s", string(data))
	}
	return nil
}

func equalMessages(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Errors maps a key to a non-valid status. A key is present only while its
// status is pending or invalid.
//
// Maps handed to observers are never mutated afterwards; treat them as
// read-only.
type Errors map[string]Status

// Equal reports whether both maps have the same keys and equal statuses.
func (e Errors) Equal(other Errors) bool {
	if len(e) != len(other) {
		return false
	}
	for k, v := range e {
		o, ok := other[k]
		if !ok || !v.Equal(o) {
			return false
		}
	}
	return true
}

// Keys returns the keys in sorted order.
func (e Errors) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validity collapses the map: invalid if any entry is invalid, else pending if
// any entry is pending, else valid.
func (e Errors) Validity() Validity {
	pending := false
	for _, st := range e {
		switch st.Kind {
		case KindInvalid:
			return ValidityInvalid
		case KindPending:
			pending = true
		}
	}
	if pending {
		return ValidityPending
	}
	return ValidityValid
}

func (e Errors) with(key string, st Status) Errors {
	next := make(Errors, len(e)+1)
	for k, v := range e {
		next[k] = v
	}
	next[key] = st
	return next
}

func (e Errors) without(key string) Errors {
	next := make(Errors, len(e))
	for k, v := range e {
		if k != key {
			next[k] = v
		}
	}
	return next
}

// Validity is the single-value summary of an Errors map.
type Validity uint8

const (
	ValidityValid Validity = iota
	ValidityInvalid
	ValidityPending
)

// String returns "true", "false" or "pending".
func (v Validity) String() string {
	switch v {
	case ValidityValid:
		return "true"
	case ValidityInvalid:
		return "false"
	default:
		return "pending"
	}
}

// MarshalJSON encodes the validity as true, false or "pending".
func (v Validity) MarshalJSON() ([]byte, error) {
	if v == ValidityPending {
		return []byte(`"pending"`), nil
	}
	return []byte(v.String()), nil
}

// UnmarshalJSON accepts true, false or "pending".
func (v *Validity) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true":
		*v = ValidityValid
	case "false":
		*v = ValidityInvalid
	case `"pending"`:
		*v = ValidityPending
	default:
		return fmt.Errorf("form: cannot decode validity from %s", string(data))
	}
	return nil
}
