package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryRegistration Category = "registration"
	CategoryDependency   Category = "dependency"
	CategoryValidation   Category = "validation"
	CategoryAsync        Category = "async"
	CategoryCommand      Category = "command"
	CategoryConfig       Category = "config"
)

// Error codes known to the catalog.
const (
	CodeControlNotRegistered = "F001"
	CodeDuplicateValidator   = "F002"
	CodeAsyncFailed          = "F003"
	CodeFieldNotFound        = "F004"
	CodeValidatorFailed      = "F005"
	CodeInvalidConfig        = "F006"
)

// FormError is a structured error with a code, the key it concerns and an
// optional suggestion.
type FormError struct {
	// Code is a unique error identifier (e.g., "F001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Key is the control or validator key involved, if any.
	Key string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *FormError) Error() string {
	msg := e.Message
	if e.Key != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Key)
	}
	if e.Wrapped != nil {
		msg = msg + ": " + e.Wrapped.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *FormError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a FormError with the same code.
func (e *FormError) Is(target error) bool {
	t, ok := target.(*FormError)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// WithKey records the key the error concerns.
func (e *FormError) WithKey(key string) *FormError {
	e.Key = key
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *FormError) WithSuggestion(s string) *FormError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *FormError) WithDetail(d string) *FormError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *FormError) Wrap(err error) *FormError {
	e.Wrapped = err
	return e
}

// New creates a FormError from a registered error code.
func New(code string) *FormError {
	template, ok := registry[code]
	if !ok {
		return &FormError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &FormError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new FormError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *FormError {
	return &FormError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a FormError.
// FormErrors are returned unchanged.
func FromError(err error, code string) *FormError {
	if err == nil {
		return nil
	}
	if fe, ok := err.(*FormError); ok {
		return fe
	}
	return New(code).Wrap(err)
}

// CodeOf returns the code of the first FormError in err's chain, or "".
func CodeOf(err error) string {
	for err != nil {
		if fe, ok := err.(*FormError); ok && fe.Code != "" {
			return fe.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
