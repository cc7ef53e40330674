package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	CodeControlNotRegistered: {
		Category: CategoryDependency,
		Message:  "Control not registered",
		Detail:   "A validator read a control that has not been registered on this form yet. Register every control a validator depends on before its status is observed.",
	},
	CodeDuplicateValidator: {
		Category: CategoryRegistration,
		Message:  "Global validator already registered",
		Detail:   "Two global validators cannot share a key. The first registration stays active.",
	},
	CodeAsyncFailed: {
		Category: CategoryAsync,
		Message:  "Asynchronous validation failed",
		Detail:   "The asynchronous part of a validator returned an error. The status stays pending until the validator runs again.",
	},
	CodeFieldNotFound: {
		Category: CategoryCommand,
		Message:  "Field not registered",
		Detail:   "A command targeted a field that is not registered. The command was ignored.",
	},
	CodeValidatorFailed: {
		Category: CategoryValidation,
		Message:  "Validator failed",
		Detail:   "The validator reported an error instead of a result.",
	},
	CodeInvalidConfig: {
		Category: CategoryConfig,
		Message:  "Invalid form configuration",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
