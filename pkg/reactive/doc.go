// Package reactive provides the primitives the form engine is built on.
//
// # Cell
//
// Cell[T] is a mutable value with synchronous reads and ordered subscribers:
//
//	name := reactive.NewCell("")
//	stop := name.Subscribe(func(v string) { fmt.Println("name:", v) })
//	name.Set("Ada")   // prints "name: Ada" before Set returns
//	stop()
//
// Unlike a memoizing signal, a Cell never compares values: every Set notifies,
// including a Set of the value already stored.
//
// # Scope
//
// Scope collects teardown functions and releases them as a single unit.
//
// # Loop
//
// Loop is a single execution context. Work from other goroutines enters it
// through Dispatch; whoever owns the loop runs the queued work with Run, Drain
// or Next. A Loop is the default Dispatcher of a form.
package reactive
