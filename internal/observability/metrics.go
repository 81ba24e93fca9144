package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "parking_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	ZonesConsumed   prometheus.Counter
	ZonesProduced   prometheus.Counter
	TransformErrors prometheus.Counter
	PipelineRunning prometheus.Gauge

	// Zones dropped before publishing.
	ZonesFiltered       *prometheus.CounterVec // labels: reason={restricted_usage,zero_price}
	IntegrityViolations *prometheus.CounterVec // labels: code
	RulesDropped        prometheus.Counter

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Description rewriting metrics.
	RewriteRequests    *prometheus.CounterVec // labels: outcome={success,error,empty,throttled}
	RewriteCache       *prometheus.CounterVec // labels: backend={memory,redis}, result={hit,miss,error}
	RewriteAPIDuration prometheus.Histogram
	RewriteEnabled     prometheus.Gauge

	// Upstream RDW fetches.
	UpstreamRequests *prometheus.CounterVec // labels: dataset, outcome={success,error,rejected}
}

func newMetrics(buckets bool) *Metrics {
	batchSizeOpts := prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_size",
		Help:      "Number of zone messages per batch extracted from Kafka.",
	}
	batchDurationOpts := prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_processing_duration_seconds",
		Help:      "Duration of a complete batch extract-transform-load cycle.",
	}
	rewriteDurationOpts := prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rewrite_api_duration_seconds",
		Help:      "Gemini API request duration in seconds.",
	}
	if buckets {
		batchSizeOpts.Buckets = []float64{1, 5, 10, 20, 30, 40, 50, 75, 100}
		batchDurationOpts.Buckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30}
		rewriteDurationOpts.Buckets = []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15}
	}

	return &Metrics{
		ZonesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "zones_consumed_total",
			Help:      "Total zone tariff messages read from the source topic.",
		}),
		ZonesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "zones_produced_total",
			Help:      "Total zone schedules written to the sinks.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total messages that could not be decoded.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		ZonesFiltered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "zones_filtered_total",
			Help:      "Zones not published, by reason.",
		}, []string{"reason"}),
		IntegrityViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "integrity_violations_total",
			Help:      "Schedule integrity violations, by code.",
		}, []string{"code"}),
		RulesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rules_dropped_total",
			Help:      "Malformed fare rules dropped during normalization.",
		}),
		BatchSize:               prometheus.NewHistogram(batchSizeOpts),
		BatchProcessingDuration: prometheus.NewHistogram(batchDurationOpts),
		RewriteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rewrite_requests_total",
			Help:      "Description rewrite requests by outcome.",
		}, []string{"outcome"}),
		RewriteCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rewrite_cache_total",
			Help:      "Rewrite cache lookups by backend and result.",
		}, []string{"backend", "result"}),
		RewriteAPIDuration: prometheus.NewHistogram(rewriteDurationOpts),
		RewriteEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rewrite_enabled",
			Help:      "1 when description rewriting is enabled, 0 otherwise.",
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "RDW open data requests by dataset and outcome.",
		}, []string{"dataset", "outcome"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ZonesConsumed,
		m.ZonesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.ZonesFiltered,
		m.IntegrityViolations,
		m.RulesDropped,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.RewriteRequests,
		m.RewriteCache,
		m.RewriteAPIDuration,
		m.RewriteEnabled,
		m.UpstreamRequests,
	}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsWithRegistry creates metrics registered on reg, for tools that
// expose their own registry.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newMetrics(true)
	reg.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}
