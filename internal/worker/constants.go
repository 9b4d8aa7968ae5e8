package worker

// ============================================================================
// Log Messages - Resolution Pool
// ============================================================================

const (
	LogMsgTaskSubmitted = "Resolution task submitted"
	LogMsgTaskCompleted = "Resolution task completed"
	LogMsgTaskFailed    = "Resolution task failed"
	LogMsgPoolStarted   = "Resolution pool started"
	LogMsgPoolStopped   = "Resolution pool stopped"
)

// ============================================================================
// Defaults
// ============================================================================

const (
	DefaultWorkerCount = 2
	DefaultQueueSize   = 32
)
