package domain

import "errors"

// Domain errors shared across the engine and storage implementations.

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidFrequency indicates an unknown or malformed frequency code.
	ErrInvalidFrequency = errors.New("invalid frequency")

	// ErrInvalidInstanceStatus indicates an unknown instance status value.
	ErrInvalidInstanceStatus = errors.New("invalid instance status")

	// ErrInvalidTimeOfDay indicates a time-of-day string outside HH:MM form.
	ErrInvalidTimeOfDay = errors.New("invalid time of day")

	// ErrInvalidTaskDefinition indicates a task definition that cannot
	// produce instances for one of its frequencies (for example a once-off
	// task with no due date). Evaluation surfaces it as a warning, not a
	// fatal error.
	ErrInvalidTaskDefinition = errors.New("invalid task definition")

	// ErrInvalidDate indicates a caller-supplied date string that is not a
	// well-formed ISO date. Rejected at the boundary before evaluation.
	ErrInvalidDate = errors.New("invalid date")
)
