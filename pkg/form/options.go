package form

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/vango-dev/formstate/pkg/reactive"
)

// tracerName is the instrumentation name used for the default tracer.
const tracerName = "github.com/vango-dev/formstate"

// ErrorHandler receives errors from validation runs that failed: an
// unregistered dependency, a validator returning Fail, or a failed
// asynchronous computation.
type ErrorHandler func(err error)

// Option configures a Form.
type Option func(*config)

type config struct {
	logger     *slog.Logger
	dispatcher reactive.Dispatcher
	onError    ErrorHandler
	metrics    *Metrics
	tracer     trace.Tracer
	budget     *rate.Limiter
}

// WithLogger sets the logger. If unset, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithDispatcher sets where asynchronous results are delivered. The
// dispatcher must run jobs on the same goroutine that drives the form.
// If unset, the form creates a reactive.Loop, available via Form.Loop.
func WithDispatcher(d reactive.Dispatcher) Option {
	return func(c *config) {
		c.dispatcher = d
	}
}

// WithErrorHandler sets the handler for failed validation runs. The default
// logs the error.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *config) {
		c.onError = h
	}
}

// WithMetrics records validation activity in m.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithTracer sets the tracer used for asynchronous validation spans.
// If unset, the global OpenTelemetry provider is used.
func WithTracer(t trace.Tracer) Option {
	return func(c *config) {
		c.tracer = t
	}
}

// WithAsyncBudget limits how often asynchronous validator work may start.
// Work waits for a token; superseded work waiting for a token is cancelled
// and never runs.
func WithAsyncBudget(limit rate.Limit, burst int) Option {
	return func(c *config) {
		if burst <= 0 {
			burst = 1
		}
		c.budget = rate.NewLimiter(limit, burst)
	}
}

func newConfig(opts []Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	return c
}
