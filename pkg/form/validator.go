package form

import (
	"sync"

	"github.com/vango-dev/formstate/pkg/reactive"
)

// GlobalValidator validates across controls. It is not bound to a value; it
// reads whatever it needs through deps.
type GlobalValidator func(deps *GlobalDeps) Result

type globalValidator struct {
	key    string
	status *reactive.Cell[Status]
	runner *runner
}

func (v *globalValidator) activate()                          {}
func (v *globalValidator) statusCell() *reactive.Cell[Status] { return v.status }

// RegisterValidator registers a global validator under key and runs it once.
// It fails with ErrDuplicateValidator if key is taken; the existing validator
// is left untouched. The returned teardown removes the validator and may be
// called more than once.
func (f *Form) RegisterValidator(key string, fn GlobalValidator) (func(), error) {
	f.mu.Lock()
	if _, ok := f.validators[key]; ok {
		f.mu.Unlock()
		return nil, errDuplicateValidator(key)
	}

	v := &globalValidator{
		key:    key,
		status: reactive.NewCell(Valid()),
	}
	v.runner = newRunner(f, key, sourceValidator, v.status, func(t *tracker) Result {
		return fn(&GlobalDeps{t: t})
	})
	f.validators[key] = v
	f.validatorOrder = append(f.validatorOrder, key)
	snapshot := append([]string(nil), f.validatorOrder...)
	f.mu.Unlock()

	f.metrics.setValidators(len(snapshot))
	f.logger.Debug("global validator registered", "key", key)
	f.validatorMember.Set(snapshot)

	v.runner.run()

	var once sync.Once
	teardown := func() {
		once.Do(func() { f.unregisterValidator(v) })
	}
	return teardown, nil
}

func (f *Form) unregisterValidator(v *globalValidator) {
	f.mu.Lock()
	if f.validators[v.key] != v {
		f.mu.Unlock()
		return
	}
	delete(f.validators, v.key)
	for i, k := range f.validatorOrder {
		if k == v.key {
			f.validatorOrder = append(f.validatorOrder[:i:i], f.validatorOrder[i+1:]...)
			break
		}
	}
	snapshot := append([]string(nil), f.validatorOrder...)
	f.mu.Unlock()

	v.runner.dispose()
	f.metrics.setValidators(len(snapshot))
	f.logger.Debug("global validator removed", "key", v.key)
	f.validatorMember.Set(snapshot)
}

// ValidatorKeys returns the global validator keys in registration order.
func (f *Form) ValidatorKeys() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.validatorOrder...)
}

// ValidatorStatus returns the current status of the global validator under key.
func (f *Form) ValidatorStatus(key string) (Status, bool) {
	v, ok := f.validator(key)
	if !ok {
		return Status{}, false
	}
	return v.status.Get(), true
}

// ValidatorErr returns the error of the latest run of the validator under key.
func (f *Form) ValidatorErr(key string) error {
	v, ok := f.validator(key)
	if !ok {
		return nil
	}
	return v.runner.err
}

func (f *Form) validator(key string) (*globalValidator, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.validators[key]
	return v, ok
}
