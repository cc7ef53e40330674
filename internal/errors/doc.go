// Package errors provides the coded error catalog used across formstate.
//
// Every structural or operational failure the engine reports is a *FormError
// carrying:
//   - a stable code (e.g., "F001") that maps to a registered template
//   - a category (registration, dependency, async, command, config)
//   - the field or validator key involved, when there is one
//   - an optional wrapped cause, visible to errors.Is/As
//
// Two FormErrors with the same code match under errors.Is, which lets callers
// compare against sentinels without caring about the key:
//
//	if errors.Is(err, form.ErrControlNotRegistered) {
//	    ...
//	}
//
// # Usage
//
//	err := errors.New(errors.CodeDuplicateValidator).
//	    WithKey("passwords-match").
//	    WithSuggestion("Tear down the existing validator before registering it again")
//
//	fmt.Println(err.Format())
package errors
