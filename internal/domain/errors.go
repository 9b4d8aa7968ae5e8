package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Lookup errors
	ErrMsgItemNotFound = "item not found"

	// Input errors
	ErrMsgInvalidQuantity = "quantity must be positive"
	ErrMsgInvalidKind     = "invalid item kind"

	// Graph errors
	ErrMsgCycleDetected = "recipe cycle detected"

	// Store errors
	ErrMsgIntegrityViolation = "integrity violation"
	ErrMsgDuplicateName      = "duplicate item name"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Lookup errors
	ErrItemNotFound = errors.New(ErrMsgItemNotFound)

	// Input errors
	ErrInvalidQuantity = errors.New(ErrMsgInvalidQuantity)
	ErrInvalidKind     = errors.New(ErrMsgInvalidKind)

	// Graph errors
	ErrCycleDetected = errors.New(ErrMsgCycleDetected)

	// Store errors
	ErrIntegrityViolation = errors.New(ErrMsgIntegrityViolation)
)
