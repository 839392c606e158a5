package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors shared across stores and the engine.
var (
	// ErrWalkoutNotFound is returned by stores when no walkout exists
	// for the requested identity or appointment.
	ErrWalkoutNotFound = errors.New("walkout not found")

	// ErrAppointmentNotFound is returned by the appointment source.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSubmissionInFlight is returned when a second submission for
	// the same section is attempted while one is still pending.
	ErrSubmissionInFlight = errors.New("submission already in flight")

	// ErrSubmissionCancelled is returned when a pending confirmation
	// is cancelled; the aborted submission has no persisted effect.
	ErrSubmissionCancelled = errors.New("submission cancelled")
)

// Violation describes why a field failed validation.
type Violation string

const (
	ViolationRequired     Violation = "required"
	ViolationFormat       Violation = "format"
	ViolationStaleLookup  Violation = "stale_lookup"
	ViolationImageMissing Violation = "image_missing"
)

// ValidationErrorMap is the ephemeral result of one validation pass,
// keyed by field. It is produced fresh on every attempt and never
// persisted.
type ValidationErrorMap map[FieldID]Violation

// Stale reports whether the map contains the updateButtonPending
// entry, i.e. the caller must re-fetch the rule-engine lookup before
// the submission can proceed.
func (m ValidationErrorMap) Stale() bool {
	return m[FieldUpdateButtonPending] == ViolationStaleLookup
}

// ValidationError carries the violation map of a failed submission.
// It is fully recoverable: no persistence call was made.
type ValidationError struct {
	Section Section
	Fields  ValidationErrorMap
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s section: %d field(s)", e.Section, len(e.Fields))
}

// ConflictError reports an attempted duplicate create for an
// appointment that already has a walkout. Callers must resolve the
// submission to an update against the existing identity.
type ConflictError struct {
	AppointmentID string
	WalkoutID     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("appointment %s already has walkout %s", e.AppointmentID, e.WalkoutID)
}

// NetworkError wraps a transient transport failure from an external
// collaborator. The persistence call was not acknowledged, so retrying
// is safe.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RateLimitError is returned by the note-analysis client when the
// upstream window is exhausted. RetryAfter tells callers when the
// regenerate action may be enabled again.
type RateLimitError struct {
	RetryAfter time.Time
	Limit      int
	Remaining  int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded (%d/%d), retry after %s",
		e.Remaining, e.Limit, e.RetryAfter.Format(time.RFC3339))
}
