package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Resolution metric names
const (
	MetricNameResolutionsTotal   = "bom_resolutions_total"
	MetricNameResolutionDuration = "bom_resolution_duration_seconds"
	MetricNameBatchSize          = "bom_batch_size"
	MetricNameTasksSubmitted     = "bom_tasks_submitted_total"
	MetricNameTasksFailed        = "bom_tasks_failed_total"
)

// Store metric names
const (
	MetricNameItemsCreated        = "store_items_created_total"
	MetricNameItemsDeleted        = "store_items_deleted_total"
	MetricNameSearchesPerformed   = "store_searches_performed_total"
	MetricNameIntegrityRejections = "store_integrity_rejections_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Resolution metric help text
const (
	HelpTextResolutionsTotal   = "Total number of BOM resolutions by outcome"
	HelpTextResolutionDuration = "BOM resolution latency in seconds"
	HelpTextBatchSize          = "Number of requests per batch resolution"
	HelpTextTasksSubmitted     = "Total number of background resolution tasks submitted"
	HelpTextTasksFailed        = "Total number of background resolution tasks that failed"
)

// Store metric help text
const (
	HelpTextItemsCreated        = "Total number of items created by kind"
	HelpTextItemsDeleted        = "Total number of items deleted by kind"
	HelpTextSearchesPerformed   = "Total number of item searches performed"
	HelpTextIntegrityRejections = "Total number of store writes rejected for invariant violations"
)

// ============================================================================
// Labels
// ============================================================================

const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelOutcome = "outcome"
	LabelKind    = "kind"
)

// Outcome label values
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// HTTPLatencyBuckets covers sub-millisecond cache hits through multi-second
// batch resolutions
var HTTPLatencyBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}
