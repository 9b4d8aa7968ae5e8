package bom

import "time"

// Expansion limits
const (
	// DefaultMaxDepth bounds recipe expansion. The store rejects cyclic
	// graphs on write, but imports can bypass validation, so the resolver
	// converts a runaway recursion into ErrCycleDetected instead of
	// overflowing the stack.
	DefaultMaxDepth = 64
)

// Cache defaults
const (
	DefaultCacheSize = 1024
	DefaultCacheTTL  = 30 * time.Second
)

// Log messages
const (
	LogMsgResolveCalled        = "Resolve called"
	LogMsgResolveByNameCalled  = "ResolveByName called"
	LogMsgResolveBatchCalled   = "ResolveBatch called"
	LogMsgBuildTreeCalled      = "BuildTree called"
	LogMsgEmptyRecipe          = "Crafted item has no recipe requirements"
	LogMsgResolutionComplete   = "Resolution complete"
)
