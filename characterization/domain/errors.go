package domain

import "errors"

var (
	// ErrInvalidArgument is returned when a caller violates an operation's precondition.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState is returned when an operation is not allowed in the current state.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidModel is returned when a TestModel or TupleList is malformed.
	ErrInvalidModel = errors.New("invalid model")

	// ErrInvalidConfig is returned when configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotFound is returned when a requested entity doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrUnknownAlgorithm is returned when no algorithm has the requested name.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")

	// ErrExecutionFailed is returned when a test input could not be executed due to infra.
	ErrExecutionFailed = errors.New("test execution failed")

	// ErrRoundLimit is returned when an algorithm keeps requesting inputs past the round limit.
	ErrRoundLimit = errors.New("round limit exceeded")

	// ErrForbiddenProbe is the failure cause fed back for probes that violate a forbidden constraint.
	ErrForbiddenProbe = errors.New("probe violates forbidden constraint")

	// ErrConcurrentModify is returned when a stored session changed since it was read.
	ErrConcurrentModify = errors.New("concurrent modification")

	// ErrSessionAlreadyComplete is returned when trying to modify a complete session.
	ErrSessionAlreadyComplete = errors.New("session already complete")
)
