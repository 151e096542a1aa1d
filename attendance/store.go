/*
store.go - Persistence interfaces for the ingestion pipeline

PURPOSE:
  Defines the interfaces between the pipeline and its collaborators: the
  employee directory it resolves against and the attendance store it
  upserts into. Modeled as injected capabilities, never ambient globals,
  so tests substitute in-memory fakes.

KEY INTERFACES:
  EmployeeDirectory: Device-code and primary-ID lookups
  AttendanceStore:   Find/upsert of the (employee, day) aggregate

UPSERT CONTRACT:
  UpsertDay persists the whole aggregate for its (EmployeeID, Day) key,
  creating the row on first punch and replacing the summary fields plus
  appending any new punches afterwards. At most one row exists per key.
  Punch rows are append-only: implementations must never rewrite or drop
  punches already persisted.

NOT-FOUND CONVENTION:
  Lookup methods return (nil, nil) when no record exists. Errors are
  reserved for storage failures.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - attendance/store: In-memory for tests and dev
*/
package attendance

import (
	"context"
	"time"
)

// EmployeeDirectory is the read side of the employee-management subsystem.
type EmployeeDirectory interface {
	// FindByAttendanceNumber matches the code programmed into the device.
	FindByAttendanceNumber(ctx context.Context, code string) (*Employee, error)

	// FindByID matches the employee's primary identifier.
	FindByID(ctx context.Context, id string) (*Employee, error)

	// SaveEmployee seeds or updates a directory entry.
	SaveEmployee(ctx context.Context, emp Employee) error

	// ListEmployees returns the full directory.
	ListEmployees(ctx context.Context) ([]Employee, error)
}

// AttendanceStore persists AttendanceDay aggregates. Only this pipeline
// writes them; reporting and payroll read through ListDays.
type AttendanceStore interface {
	// GetDay returns the aggregate for (employeeID, day), or (nil, nil).
	// day must already be truncated to business-timezone midnight.
	GetDay(ctx context.Context, employeeID string, day time.Time) (*AttendanceDay, error)

	// UpsertDay creates or updates the aggregate under its natural key.
	UpsertDay(ctx context.Context, day *AttendanceDay) error

	// ListDays returns aggregates for an employee with Day in [from, to],
	// ordered by day ascending.
	ListDays(ctx context.Context, employeeID string, from, to time.Time) ([]*AttendanceDay, error)
}
