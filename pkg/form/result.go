package form

import (
	"context"
)

type resultKind uint8

const (
	resultBool resultKind = iota
	resultMessages
	resultAsync
	resultFail
)

// AsyncFunc is the asynchronous part of a validator. It runs on its own
// goroutine and must not touch the form; ctx is cancelled when a newer run
// supersedes it.
type AsyncFunc func(ctx context.Context) (Result, error)

// Result is the raw outcome of a validator call, before normalization.
type Result struct {
	kind     resultKind
	ok       bool
	messages []string
	async    AsyncFunc
	err      error
}

// OK is a passing result.
func OK() Result { return Result{kind: resultBool, ok: true} }

// Bool is a passing (true) or failing (false) result. A failing boolean
// normalizes to an invalid status without messages.
func Bool(ok bool) Result { return Result{kind: resultBool, ok: ok} }

// Messages is a failing result carrying messages. An empty list still fails.
func Messages(msgs ...string) Result {
	if msgs == nil {
		msgs = []string{}
	}
	return Result{kind: resultMessages, messages: msgs}
}

// Async defers the outcome to fn. The status is pending until fn settles.
func Async(fn AsyncFunc) Result { return Result{kind: resultAsync, async: fn} }

// Fail aborts the run with err. No status is emitted for a failed run.
func Fail(err error) Result { return Result{kind: resultFail, err: err} }

// IsAsync reports whether the result defers to an AsyncFunc.
func (r Result) IsAsync() bool { return r.kind == resultAsync }

// Status normalizes a synchronous result. It reports false for asynchronous
// and failed results.
func (r Result) Status() (Status, bool) {
	switch r.kind {
	case resultBool:
		if r.ok {
			return Valid(), true
		}
		return Invalid(), true
	case resultMessages:
		return Invalid(r.messages...), true
	default:
		return Status{}, false
	}
}
