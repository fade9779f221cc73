package prometheus

import "time"

// Metrics bundles the instruments recorded across the service: acquisition
// pipeline progress, upstream fetch behaviour, and HTTP serving.
type Metrics struct {
	// Acquisition pipeline.
	FetchAttempts  CounterVec   // labels: category, outcome
	FetchRetries   CounterVec   // labels: category
	StepDuration   HistogramVec // labels: category
	RunsStarted    CounterVec   // labels: (none beyond base)
	RunsSuperseded CounterVec
	ActiveRuns     GaugeVec

	// HTTP serving.
	HTTPRequests    CounterVec   // labels: method, path, status
	HTTPDuration    HistogramVec // labels: method, path
	HTTPRateLimited CounterVec   // labels: path

	// Cache.
	CacheHits   CounterVec // labels: operation
	CacheMisses CounterVec // labels: operation
}

// NewMetrics registers the service metric set on the given collector.
func NewMetrics(collector MetricsCollector) *Metrics {
	return &Metrics{
		FetchAttempts: collector.RegisterCounter(
			"fetch_attempts_total",
			"Upstream fetch attempts by category and outcome (ok, rate_limited, error).",
			"category", "outcome",
		),
		FetchRetries: collector.RegisterCounter(
			"fetch_retries_total",
			"Upstream fetch retries by category.",
			"category",
		),
		StepDuration: collector.RegisterHistogram(
			"acquisition_step_duration_seconds",
			"Wall-clock duration of each acquisition step by category.",
			[]float64{.5, 1, 2.5, 5, 10, 30, 60, 120},
			"category",
		),
		RunsStarted: collector.RegisterCounter(
			"runs_started_total",
			"Acquisition runs accepted.",
		),
		RunsSuperseded: collector.RegisterCounter(
			"runs_superseded_total",
			"Acquisition runs cancelled by a newer submission.",
		),
		ActiveRuns: collector.RegisterGauge(
			"active_runs",
			"Acquisition runs currently in flight.",
		),
		HTTPRequests: collector.RegisterCounter(
			"http_requests_total",
			"HTTP requests by method, path and status.",
			"method", "path", "status",
		),
		HTTPDuration: collector.RegisterHistogram(
			"http_request_duration_seconds",
			"HTTP request latency by method and path.",
			nil,
			"method", "path",
		),
		HTTPRateLimited: collector.RegisterCounter(
			"http_rate_limited_total",
			"Requests rejected by the rate limiter.",
			"path",
		),
		CacheHits: collector.RegisterCounter(
			"cache_hits_total",
			"Cache hits by operation.",
			"operation",
		),
		CacheMisses: collector.RegisterCounter(
			"cache_misses_total",
			"Cache misses by operation.",
			"operation",
		),
	}
}

// NewNopMetrics returns a Metrics whose instruments discard observations.
func NewNopMetrics() *Metrics { return NewMetrics(NewNopCollector()) }

// ObserveStep records one completed acquisition step.
func (m *Metrics) ObserveStep(category string, elapsed time.Duration) {
	m.StepDuration.WithLabelValues(category).Observe(elapsed.Seconds())
}
