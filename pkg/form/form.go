package form

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	ferrors "github.com/vango-dev/formstate/internal/errors"
	"github.com/vango-dev/formstate/pkg/path"
	"github.com/vango-dev/formstate/pkg/reactive"
)

// Form is a registry of controls and global validators.
//
// A Form is driven from a single goroutine: every method, and every job of
// its dispatcher, must run on that goroutine. Asynchronous validator work is
// the only thing that runs elsewhere, and it re-enters through the dispatcher.
type Form struct {
	mu sync.RWMutex

	controls map[string]*Control
	order    []string
	members  *reactive.Cell[[]string]

	validators      map[string]*globalValidator
	validatorOrder  []string
	validatorMember *reactive.Cell[[]string]

	logger     *slog.Logger
	dispatcher reactive.Dispatcher
	loop       *reactive.Loop
	onError    ErrorHandler
	metrics    *Metrics
	tracer     trace.Tracer
	budget     *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// New creates an empty form.
func New(opts ...Option) *Form {
	cfg := newConfig(opts)

	ctx, cancel := context.WithCancel(context.Background())
	f := &Form{
		controls:        make(map[string]*Control),
		members:         reactive.NewCell([]string{}),
		validators:      make(map[string]*globalValidator),
		validatorMember: reactive.NewCell([]string{}),
		logger:          cfg.logger,
		dispatcher:      cfg.dispatcher,
		onError:         cfg.onError,
		metrics:         cfg.metrics,
		tracer:          cfg.tracer,
		budget:          cfg.budget,
		ctx:             ctx,
		cancel:          cancel,
	}
	if f.dispatcher == nil {
		f.loop = reactive.NewLoop(reactive.WithLoopLogger(cfg.logger))
		f.dispatcher = f.loop
	}
	return f
}

// Loop returns the loop created when no dispatcher was configured, or nil.
// Asynchronous results are applied when the loop runs them.
func (f *Form) Loop() *reactive.Loop {
	return f.loop
}

// Logger returns the form's logger.
func (f *Form) Logger() *slog.Logger {
	return f.logger
}

// Register returns the control registered under key, creating it with
// initial and validator if it does not exist. For an existing key, initial
// and validator are ignored. validator may be nil.
func (f *Form) Register(key string, initial any, validator Validator) *Control {
	f.mu.Lock()
	if c, ok := f.controls[key]; ok {
		f.mu.Unlock()
		return c
	}
	c := newControl(f, key, initial, validator)
	f.controls[key] = c
	f.order = append(f.order, key)
	snapshot := append([]string(nil), f.order...)
	f.mu.Unlock()

	f.metrics.setControls(len(snapshot))
	f.logger.Debug("control registered", "key", key)
	f.members.Set(snapshot)
	return c
}

// Control returns the control registered under key.
func (f *Form) Control(key string) (*Control, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	c, ok := f.controls[key]
	return c, ok
}

// Keys returns the control keys in registration order.
func (f *Form) Keys() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.order...)
}

func (f *Form) controlsSnapshot() []*Control {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*Control, 0, len(f.order))
	for _, k := range f.order {
		out = append(out, f.controls[k])
	}
	return out
}

// ReadAll returns a flat snapshot of every control's value.
func (f *Form) ReadAll() map[string]any {
	controls := f.controlsSnapshot()
	out := make(map[string]any, len(controls))
	for _, c := range controls {
		out[c.key] = c.cell.Get()
	}
	return out
}

// ReadNested returns ReadAll with dotted keys expanded into nested maps.
func (f *Form) ReadNested() map[string]any {
	return path.Build(f.ReadAll())
}

// WriteMany writes the values whose keys are registered, in registration
// order. Other controls keep their values. Unknown keys are logged and
// skipped.
func (f *Form) WriteMany(values map[string]any) {
	for _, c := range f.controlsSnapshot() {
		if v, ok := values[c.key]; ok {
			c.Write(v)
		}
	}

	var unknown []string
	for k := range values {
		if _, ok := f.Control(k); !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		f.logger.Warn("skipped values for unregistered fields", "keys", unknown)
	}
}

// WriteNested flattens values and writes them with WriteMany.
func (f *Form) WriteNested(values map[string]any) {
	f.WriteMany(path.Flatten(values))
}

// SetFieldValue writes v to the control under key.
func (f *Form) SetFieldValue(key string, v any) error {
	c, ok := f.Control(key)
	if !ok {
		return errControlNotRegistered(key)
	}
	c.Write(v)
	return nil
}

// SetFieldError pushes st on the manual error channel of key. An unknown key
// is logged and ignored.
func (f *Form) SetFieldError(key string, st Status) {
	c, ok := f.Control(key)
	if !ok {
		err := ferrors.New(ferrors.CodeFieldNotFound).WithKey(key)
		f.logger.Warn("can't set error: field not registered",
			"key", key,
			"error", err)
		return
	}
	c.SetManualError(st)
}

func (f *Form) reportError(err error) {
	if f.onError != nil {
		f.onError(err)
		return
	}
	f.logger.Error("validation run failed",
		"code", ferrors.CodeOf(err),
		"error", err)
}

// Close stops every validator and cancels in-flight asynchronous work.
// Values stay readable; statuses stop changing.
func (f *Form) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	controls := make([]*Control, 0, len(f.controls))
	for _, k := range f.order {
		controls = append(controls, f.controls[k])
	}
	validators := make([]*globalValidator, 0, len(f.validators))
	for _, k := range f.validatorOrder {
		validators = append(validators, f.validators[k])
	}
	f.mu.Unlock()

	for _, c := range controls {
		c.runner.dispose()
	}
	for _, v := range validators {
		v.runner.dispose()
	}
	f.cancel()
}
