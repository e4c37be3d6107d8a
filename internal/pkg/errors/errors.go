package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrValidation is a generic sentinel for invalid input
	// (out-of-range snooze days, bad frequency offsets, unknown scope/window).
	ErrValidation = errors.New("validation failed")
	// ErrInvalidStateTransition signals an operation on an entry that is
	// already in a terminal state.
	ErrInvalidStateTransition = errors.New("invalid state transition")
	// ErrSessionAlreadyActive signals a second timer start for a topic whose
	// previous session has not been finished.
	ErrSessionAlreadyActive = errors.New("session already active")
	// ErrSessionAlreadyFinished signals a duplicate finish call.
	ErrSessionAlreadyFinished = errors.New("session already finished")
	// ErrEmptyCohort signals a metrics/comparison request over zero eligible
	// users or topics. Callers resolve it to a zeroed result, never a crash.
	ErrEmptyCohort = errors.New("empty cohort")
)
