package form

import (
	ferrors "github.com/vango-dev/formstate/internal/errors"
)

// Sentinel errors. Compare with errors.Is; the concrete errors returned carry
// the key involved.
var (
	// ErrControlNotRegistered is returned when a validator reads, or a command
	// writes, a key that has no control.
	ErrControlNotRegistered = ferrors.New(ferrors.CodeControlNotRegistered)

	// ErrDuplicateValidator is returned when a global validator key is taken.
	ErrDuplicateValidator = ferrors.New(ferrors.CodeDuplicateValidator)

	// ErrAsyncFailed wraps an error returned by an AsyncFunc.
	ErrAsyncFailed = ferrors.New(ferrors.CodeAsyncFailed)

	// ErrFieldNotFound is logged when a manual error targets an unknown field.
	ErrFieldNotFound = ferrors.New(ferrors.CodeFieldNotFound)

	// ErrValidatorFailed wraps the error passed to Fail.
	ErrValidatorFailed = ferrors.New(ferrors.CodeValidatorFailed)
)

func errControlNotRegistered(key string) error {
	return ferrors.New(ferrors.CodeControlNotRegistered).
		WithKey(key).
		WithSuggestion("Register the control before observing validators that read it")
}

func errDuplicateValidator(key string) error {
	return ferrors.New(ferrors.CodeDuplicateValidator).WithKey(key)
}

// depsPanic carries an error raised by Deps.MustGet up to the runner.
type depsPanic struct {
	err error
}
