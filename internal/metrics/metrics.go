package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Resolution Metrics
var (
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameResolutionsTotal,
			Help: HelpTextResolutionsTotal,
		},
		[]string{LabelOutcome},
	)

	ResolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    MetricNameResolutionDuration,
			Help:    HelpTextResolutionDuration,
			Buckets: prometheus.DefBuckets,
		},
	)

	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    MetricNameBatchSize,
			Help:    HelpTextBatchSize,
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		},
	)

	TasksSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameTasksSubmitted,
			Help: HelpTextTasksSubmitted,
		},
	)

	TasksFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameTasksFailed,
			Help: HelpTextTasksFailed,
		},
	)
)

// Store Metrics
var (
	ItemsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameItemsCreated,
			Help: HelpTextItemsCreated,
		},
		[]string{LabelKind},
	)

	ItemsDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameItemsDeleted,
			Help: HelpTextItemsDeleted,
		},
		[]string{LabelKind},
	)

	SearchesPerformed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameSearchesPerformed,
			Help: HelpTextSearchesPerformed,
		},
	)

	IntegrityRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameIntegrityRejections,
			Help: HelpTextIntegrityRejections,
		},
	)
)
