/*
errors.go - Centralized error types for the ingestion engine

PURPOSE:
  All pipeline error types in one place. The controller classifies errors
  into request-level (fatal to the whole request) and record-level (caught,
  reported, processing continues).

ERROR CATEGORIES:
  1. Request-level - Authentication failures, rejected before any record
  2. Record-level  - Malformed records, unresolvable employees, duplicate
                     punches, persistence failures

USAGE:
  Callers match with errors.Is / errors.As:

    var nf *attendance.EmployeeNotFoundError
    if errors.As(err, &nf) {
        log.Printf("unknown device code %s", nf.Code)
    }

SEE ALSO:
  - pipeline.go: Produces and catches these errors
  - api/handlers.go: Maps them onto the webhook response
*/
package attendance

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAuthenticationFailed is returned when the shared webhook secret is
	// missing or wrong. Request-level: nothing is processed.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrEmployeeNotFound is returned when no resolution attempt matches a
	// device employee code.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrMalformedRecord is returned when a record is missing its employee code.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrDuplicatePunch is returned when a punch falls inside the retransmission
	// tolerance window of an already recorded punch.
	ErrDuplicatePunch = errors.New("duplicate punch")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// EmployeeNotFoundError carries the original device code through resolution
// failure so the batch report can echo it.
type EmployeeNotFoundError struct {
	Code string
}

func (e *EmployeeNotFoundError) Error() string {
	return fmt.Sprintf("no employee matches device code %q", e.Code)
}

func (e *EmployeeNotFoundError) Unwrap() error { return ErrEmployeeNotFound }

// MalformedRecordError describes an unprocessable inbound record.
type MalformedRecordError struct {
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return "malformed record: " + e.Reason
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// DuplicatePunchError reports a punch rejected by the deduplicator.
type DuplicatePunchError struct {
	EmployeeID string
	At         time.Time
	Existing   time.Time
}

func (e *DuplicatePunchError) Error() string {
	return fmt.Sprintf("duplicate punch for %s at %s: within %s of existing punch at %s",
		e.EmployeeID, e.At.Format(time.RFC3339), DuplicateWindow, e.Existing.Format(time.RFC3339))
}

func (e *DuplicatePunchError) Unwrap() error { return ErrDuplicatePunch }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRecordError returns true for failures scoped to a single record. These
// never abort a batch; they are caught and surfaced in the errors list.
func IsRecordError(err error) bool {
	return errors.Is(err, ErrMalformedRecord) ||
		errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrDuplicatePunch)
}
