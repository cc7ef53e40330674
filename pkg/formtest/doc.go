// Package formtest provides testing helpers for forms.
//
// # Quick Start
//
//	func TestSignup(t *testing.T) {
//	    h := formtest.New(t).
//	        WithField("email", "", emailValidator).
//	        WithField("confirm", "", confirmValidator).
//	        Build()
//
//	    h.Write("email", "ada@example.com")
//	    h.Settle()
//	    formtest.ExpectValid(t, h.Errors())
//	}
//
// A Harness observes every control and global validator from the moment it
// is built, so Errors and GlobalErrors always hold the latest aggregate.
// Errors reported by failed validation runs are captured and available from
// RunErrors.
package formtest
