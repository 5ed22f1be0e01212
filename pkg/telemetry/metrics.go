package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/snapfx/pkg/snapfx"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "snapfx").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render and flush durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
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
		Namespace: "snapfx",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a snapfx.Observer that records Prometheus metrics.
type Metrics struct {
	rendersTotal   *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	commitsTotal   *prometheus.CounterVec
	effectRuns     *prometheus.CounterVec
	effectErrors   *prometheus.CounterVec
	cleanupsTotal  *prometheus.CounterVec
	mounted        prometheus.Gauge
	flushesTotal   prometheus.Counter
	flushBatches   prometheus.Histogram
	flushDuration  prometheus.Histogram
	flushErrors    prometheus.Counter
}

// Prometheus creates the metrics observer and registers its collectors.
//
// Metrics collected (with the default namespace):
//   - snapfx_renders_total: component renders by component name
//   - snapfx_render_duration_seconds: render duration by component name
//   - snapfx_commits_total: committed state changes by component name
//   - snapfx_effect_runs_total: effect runs by component name
//   - snapfx_effect_errors_total: failed effect bodies and cleanups
//   - snapfx_cleanups_total: cleanups run by component name
//   - snapfx_mounted_instances: currently mounted instances
//   - snapfx_flushes_total: flushes that did any work
//   - snapfx_flush_batches: batches per flush
//   - snapfx_flush_duration_seconds: flush duration
//   - snapfx_flush_errors_total: flushes that returned an error
//
// Registering twice on the same registry panics, as with promauto.
func Prometheus(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)
	byComponent := []string{"component"}

	return &Metrics{
		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of component renders",
			ConstLabels: config.ConstLabels,
		}, byComponent),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Component render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, byComponent),

		commitsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commits_total",
			Help:        "Total number of committed state changes",
			ConstLabels: config.ConstLabels,
		}, byComponent),

		effectRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_runs_total",
			Help:        "Total number of successful effect runs",
			ConstLabels: config.ConstLabels,
		}, byComponent),

		effectErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_errors_total",
			Help:        "Total number of failed effect bodies and cleanups",
			ConstLabels: config.ConstLabels,
		}, byComponent),

		cleanupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cleanups_total",
			Help:        "Total number of effect cleanups run",
			ConstLabels: config.ConstLabels,
		}, byComponent),

		mounted: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mounted_instances",
			Help:        "Number of mounted component instances",
			ConstLabels: config.ConstLabels,
		}),

		flushesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of flushes that ran at least one batch",
			ConstLabels: config.ConstLabels,
		}),

		flushBatches: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_batches",
			Help:        "Number of batches per flush",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 3, 5, 10, 25, 50, 100},
		}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Flush duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		flushErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_errors_total",
			Help:        "Total number of flushes that returned an error",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Observe implements snapfx.Observer.
func (m *Metrics) Observe(ev snapfx.Event) {
	switch ev.Kind {
	case snapfx.EventMount:
		m.mounted.Inc()
	case snapfx.EventUnmount:
		m.mounted.Dec()
	case snapfx.EventRender:
		m.rendersTotal.WithLabelValues(ev.Name).Inc()
		m.renderDuration.WithLabelValues(ev.Name).Observe(ev.Duration.Seconds())
	case snapfx.EventCommit:
		m.commitsTotal.WithLabelValues(ev.Name).Inc()
	case snapfx.EventEffectRun:
		m.effectRuns.WithLabelValues(ev.Name).Inc()
	case snapfx.EventEffectError:
		m.effectErrors.WithLabelValues(ev.Name).Inc()
	case snapfx.EventCleanup:
		m.cleanupsTotal.WithLabelValues(ev.Name).Inc()
	case snapfx.EventFlushEnd:
		if ev.Err != nil {
			m.flushErrors.Inc()
		}
		if ev.Batch == 0 {
			return
		}
		m.flushesTotal.Inc()
		m.flushBatches.Observe(float64(ev.Batch))
		m.flushDuration.Observe(ev.Duration.Seconds())
	}
}
