// Package form is a reactive form-state engine.
//
// A Form holds named controls. Each control is a value cell with an optional
// validator; the validator's result becomes the control's status:
//
//	f := form.New()
//	f.Register("password", "", nil)
//	f.Register("confirm", "", func(v any, deps *form.Deps) form.Result {
//	    pw, err := deps.Get("password")
//	    if err != nil {
//	        return form.Fail(err)
//	    }
//	    return form.Bool(v == pw)
//	})
//
// Reading another control through Deps makes it a dependency: writing
// "password" re-runs the validator of "confirm". Dependencies accumulate and
// are never dropped.
//
// # Results
//
// A validator returns OK, Bool, Messages, Fail or Async. Async work runs on
// its own goroutine and the control reports Pending until it settles. Only
// the result of the latest run is ever applied; older results are discarded.
// Settled results re-enter the form through its Dispatcher, by default a
// reactive.Loop that the owner drives:
//
//	go f.Loop().Run(ctx)
//
// # Global validators
//
// RegisterValidator adds a validator that is not bound to a control. It runs
// once on registration and again whenever a control it read changes. Calling
// GlobalDeps.All makes it depend on every control, present and future.
//
// # Aggregation
//
// ObserveErrors folds statuses into an Errors map holding only pending and
// invalid entries, and reports it only when it actually changes:
//
//	obs := f.ObserveErrors(func(e form.Errors) {
//	    fmt.Println(e.Validity(), e)
//	})
//	defer obs.Close()
//
// # Threading
//
// A Form is not safe for concurrent use. Call it from one goroutine, the
// same one that runs its dispatcher.
package form
