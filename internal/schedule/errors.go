// Package schedule is the availability and booking-conflict engine: interval
// algebra, the grid codec, common-slot search, conflict detection and the
// lesson lifecycle. Everything here is pure and safe for concurrent use;
// persistence and serialization live in the service layer.
package schedule

import "errors"

var (
	// ErrInvalidInterval reports a malformed interval (start >= end or out
	// of range).
	ErrInvalidInterval = errors.New("interval start must be before end")

	// ErrValidation reports a malformed batch availability payload. The
	// whole batch is rejected; nothing is partially applied.
	ErrValidation = errors.New("invalid availability payload")

	// ErrInvalidState reports a lifecycle transition or edit attempted from
	// a terminal or locked status.
	ErrInvalidState = errors.New("operation not allowed in current lesson status")

	// ErrConflictCheckTimeout means exclusive access for a booking check
	// could not be acquired in time. Retryable with backoff.
	ErrConflictCheckTimeout = errors.New("conflict check timed out waiting for lock")

	// ErrNotFound reports a missing enrollment, lesson, person or interval.
	ErrNotFound = errors.New("not found")
)
