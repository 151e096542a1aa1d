/*
Package attendance provides the biometric punch ingestion engine.

PURPOSE:
  This package contains the domain types and algorithms for turning raw
  device punch signals into per-employee, per-day attendance records.
  Identity resolution, timestamp normalization, deduplication, in/out
  alternation and lateness evaluation all live here, independent of any
  transport or storage technology.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: A directory entry the resolver matches device codes against
  - PunchEvent: An immutable record of one accepted device signal
  - AttendanceDay: The per-employee, per-calendar-day aggregate
  - RawEvent: A device payload before any processing
  - Receipt/Report: Per-record and per-batch processing outcomes

DESIGN PRINCIPLES:
  1. Append-only: punches are never mutated or deleted once recorded
  2. Precision: decimal.Decimal for derived hour totals (payroll-facing)
  3. Derivation: status/lateness come from the FIRST punch of the day only
  4. One aggregate per (employee, day): upsert semantics, never duplicates

SEE ALSO:
  - pipeline.go: Drives the per-record processing flow
  - clock.go: Business timezone and day truncation
  - store.go: Persistence interfaces
*/
package attendance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PUNCH - A single in/out signal from a device
// =============================================================================

type PunchType string

const (
	PunchIn  PunchType = "in"
	PunchOut PunchType = "out"
)

// Opposite returns the alternated direction.
func (t PunchType) Opposite() PunchType {
	if t == PunchIn {
		return PunchOut
	}
	return PunchIn
}

// MethodBiometric is the capture method recorded on device-originated punches.
const MethodBiometric = "biometric"

// PunchEvent records one accepted device signal. Append-only: once added to
// an AttendanceDay it is never mutated or removed.
type PunchEvent struct {
	ID                 string
	Time               time.Time
	Type               PunchType
	Method             string
	DeviceName         string
	DeviceSerialNumber string
	Notes              string
}

// =============================================================================
// EMPLOYEE - Directory entry (owned by the employee-management subsystem)
// =============================================================================

// Employee is the directory record punches resolve against. This pipeline
// reads employees; it never mutates them beyond directory seeding.
type Employee struct {
	ID               string
	Name             string
	Email            string
	AttendanceNumber string // badge code programmed into the device, may be zero-padded
	CreatedAt        time.Time
}

// =============================================================================
// ATTENDANCE DAY - The persistent aggregate
// =============================================================================

type DayStatus string

const (
	StatusPresent DayStatus = "present"
	StatusLate    DayStatus = "late"
	StatusWeekend DayStatus = "weekend"
	// StatusAbsent is never produced by ingestion (no punch means no row);
	// downstream reporting marks absences.
	StatusAbsent DayStatus = "absent"
)

// AttendanceDay aggregates all punches for one employee on one calendar day.
// Day is truncated to midnight in the business timezone and, together with
// EmployeeID, forms the natural key: at most one record exists per pair.
//
// Status, IsLate, LateMinutes and IsWeekendWork are derived from the FIRST
// punch ever appended. Later punches never change them.
type AttendanceDay struct {
	EmployeeID    string
	Day           time.Time
	PunchRecords  []PunchEvent // arrival order, not necessarily chronological
	Status        DayStatus
	IsLate        bool
	LateMinutes   int
	IsWeekendWork bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Append adds a punch in arrival order.
func (d *AttendanceDay) Append(p PunchEvent) {
	d.PunchRecords = append(d.PunchRecords, p)
}

// Chronological returns the punches sorted by punch time. Devices can report
// out of arrival order, so direction alternation and hour spans must look at
// the chronological sequence, not the stored one.
func (d *AttendanceDay) Chronological() []PunchEvent {
	sorted := make([]PunchEvent, len(d.PunchRecords))
	copy(sorted, d.PunchRecords)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})
	return sorted
}

// LatestPunch returns the chronologically last punch, or nil when empty.
func (d *AttendanceDay) LatestPunch() *PunchEvent {
	sorted := d.Chronological()
	if len(sorted) == 0 {
		return nil
	}
	return &sorted[len(sorted)-1]
}

// TotalHours is the span between the chronologically earliest and latest
// punch. A single punch yields zero (no closing punch yet). Recomputed on
// read so it can never drift from the punch list.
func (d *AttendanceDay) TotalHours() decimal.Decimal {
	sorted := d.Chronological()
	if len(sorted) < 2 {
		return decimal.Zero
	}
	span := sorted[len(sorted)-1].Time.Sub(sorted[0].Time)
	return decimal.NewFromFloat(span.Hours()).Round(2)
}

// =============================================================================
// RAW EVENT - A device payload before processing
// =============================================================================

// RawEvent is one inbound device record after field-name coalescing but
// before any resolution, parsing or classification.
type RawEvent struct {
	EmployeeCode string
	Timestamp    string
	TypeHint     string // device-reported direction; informational only
	DeviceName   string
	SerialNumber string
	Notes        string
}

// =============================================================================
// PROCESSING OUTCOMES
// =============================================================================

// Receipt summarizes one successfully processed record.
type Receipt struct {
	EmployeeID   string
	EmployeeName string
	PunchType    PunchType
	Time         time.Time
	PunchCount   int // running count for the day, this punch included
	TotalHours   decimal.Decimal
	IsLate       bool // meaningful for "in" punches only
	LateMinutes  int
}

// RecordError ties a per-record failure back to the offending input.
type RecordError struct {
	Index  int
	Record RawEvent
	Err    error
}

// Report is the outcome of one batch. Failed records never abort a batch;
// Processed+Failed always equals the number of submitted records.
type Report struct {
	Processed int
	Failed    int
	Receipts  []Receipt
	Errors    []RecordError
}
