// Package formstate provides the public API for the formstate engine.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/formstate"
//
// Usage:
//
//	f := formstate.New()
//	f.Register("email", "", formstate.Rules(formstate.Required(""), formstate.Email("")))
//	obs := f.ObserveErrors(func(e formstate.Errors) { fmt.Println(e) })
//	defer obs.Close()
package formstate

import (
	"github.com/vango-dev/formstate/pkg/form"
	"github.com/vango-dev/formstate/pkg/reactive"
	"github.com/vango-dev/formstate/pkg/rules"
)

// =============================================================================
// Form (re-export from pkg/form)
// =============================================================================

// Form is a registry of controls and global validators.
type Form = form.Form

// Control is a named value cell plus its validation status.
type Control = form.Control

// Observer folds statuses into an Errors map.
type Observer = form.Observer

// Option configures a Form.
type Option = form.Option

// New creates an empty form.
var New = form.New

// NewField registers a typed control.
func NewField[T any](f *Form, key string, initial T, validator func(value T, deps *Deps) Result) *form.Field[T] {
	return form.NewField(f, key, initial, validator)
}

// Form options.
var (
	WithLogger       = form.WithLogger
	WithDispatcher   = form.WithDispatcher
	WithErrorHandler = form.WithErrorHandler
	WithMetrics      = form.WithMetrics
	WithTracer       = form.WithTracer
	WithAsyncBudget  = form.WithAsyncBudget
)

// NewMetrics creates Prometheus collectors for forms.
var NewMetrics = form.NewMetrics

// =============================================================================
// Validation
// =============================================================================

type (
	// Validator checks a control's value.
	Validator = form.Validator

	// GlobalValidator validates across controls.
	GlobalValidator = form.GlobalValidator

	// Deps tracks the controls a validator reads.
	Deps = form.Deps

	// GlobalDeps tracks the controls a global validator reads.
	GlobalDeps = form.GlobalDeps

	// Result is the raw outcome of a validator.
	Result = form.Result

	// AsyncFunc is the asynchronous part of a validator.
	AsyncFunc = form.AsyncFunc

	// Status is a normalized validation outcome.
	Status = form.Status

	// Errors maps keys to pending or invalid statuses.
	Errors = form.Errors

	// Validity summarizes an Errors map.
	Validity = form.Validity
)

// Results.
var (
	OK       = form.OK
	Bool     = form.Bool
	Messages = form.Messages
	Async    = form.Async
	Fail     = form.Fail
)

// Statuses.
var (
	Valid   = form.Valid
	Invalid = form.Invalid
	Pending = form.Pending
)

// Validity values.
const (
	ValidityValid   = form.ValidityValid
	ValidityInvalid = form.ValidityInvalid
	ValidityPending = form.ValidityPending
)

// Reduce folds one status into an Errors map.
var Reduce = form.Reduce

// Errors returned by forms; compare with errors.Is.
var (
	ErrControlNotRegistered = form.ErrControlNotRegistered
	ErrDuplicateValidator   = form.ErrDuplicateValidator
	ErrAsyncFailed          = form.ErrAsyncFailed
	ErrFieldNotFound        = form.ErrFieldNotFound
	ErrValidatorFailed      = form.ErrValidatorFailed
)

// =============================================================================
// Rules (re-export from pkg/rules)
// =============================================================================

// Rule checks a single value.
type Rule = rules.Rule

// Rules combines rules into a Validator.
var Rules = rules.Validator

// Stock rules.
var (
	Required    = rules.Required
	MinLength   = rules.MinLength
	MaxLength   = rules.MaxLength
	Email       = rules.Email
	URL         = rules.URL
	Numeric     = rules.Numeric
	Min         = rules.Min
	Max         = rules.Max
	OneOf       = rules.OneOf
	EqualTo     = rules.EqualTo
	NotEqualTo  = rules.NotEqualTo
	Custom      = rules.Custom
	Remote      = rules.Remote
	ParseRules  = rules.Parse
	FieldsEqual = rules.FieldsEqual
	AnyRequired = rules.AnyRequired
)

// =============================================================================
// Execution context (re-export from pkg/reactive)
// =============================================================================

// Loop is the single execution context a form runs on.
type Loop = reactive.Loop

// Dispatcher schedules work on a form's execution context.
type Dispatcher = reactive.Dispatcher

// NewLoop creates an empty loop.
var NewLoop = reactive.NewLoop
