package server

// Log messages for server lifecycle and request handling
const (
	LogMsgServerStarting   = "Server starting"
	LogMsgRequestStarted   = "Request started"
	LogMsgRequestCompleted = "Request completed"
)

// Request body limit for all endpoints. Batch payloads are small; anything
// larger is a client bug.
const MaxRequestBodyBytes = 1 << 20 // 1MB
