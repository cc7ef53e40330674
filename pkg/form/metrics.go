package form

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus collectors of a form.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "formstate").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for asynchronous validation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "formstate",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors for validation activity.
// A nil *Metrics records nothing.
type Metrics struct {
	statuses      *prometheus.CounterVec
	superseded    *prometheus.CounterVec
	runErrors     *prometheus.CounterVec
	asyncInFlight prometheus.Gauge
	asyncDuration *prometheus.HistogramVec
	controls      prometheus.Gauge
	validators    prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		statuses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "statuses_total",
			Help:        "Total number of validation statuses emitted",
			ConstLabels: config.ConstLabels,
		}, []string{"source", "kind"}),

		superseded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "superseded_total",
			Help:        "Total number of validation results discarded because a newer run started",
			ConstLabels: config.ConstLabels,
		}, []string{"source"}),

		runErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "run_errors_total",
			Help:        "Total number of failed validation runs",
			ConstLabels: config.ConstLabels,
		}, []string{"source", "code"}),

		asyncInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "async_in_flight",
			Help:        "Number of asynchronous validations currently running",
			ConstLabels: config.ConstLabels,
		}),

		asyncDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "async_duration_seconds",
			Help:        "Asynchronous validation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"source"}),

		controls: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "controls",
			Help:        "Number of registered controls",
			ConstLabels: config.ConstLabels,
		}),

		validators: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "validators",
			Help:        "Number of registered global validators",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) status(source string, st Status) {
	if m == nil {
		return
	}
	m.statuses.WithLabelValues(source, st.Kind.String()).Inc()
}

func (m *Metrics) supersede(source string) {
	if m == nil {
		return
	}
	m.superseded.WithLabelValues(source).Inc()
}

func (m *Metrics) runError(source, code string) {
	if m == nil {
		return
	}
	if code == "" {
		code = "unknown"
	}
	m.runErrors.WithLabelValues(source, code).Inc()
}

func (m *Metrics) asyncStarted() {
	if m == nil {
		return
	}
	m.asyncInFlight.Inc()
}

func (m *Metrics) asyncSettled(source string, d time.Duration) {
	if m == nil {
		return
	}
	m.asyncInFlight.Dec()
	m.asyncDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (m *Metrics) setControls(n int) {
	if m == nil {
		return
	}
	m.controls.Set(float64(n))
}

func (m *Metrics) setValidators(n int) {
	if m == nil {
		return
	}
	m.validators.Set(float64(n))
}
