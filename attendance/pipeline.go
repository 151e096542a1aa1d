/*
pipeline.go - Per-record ingestion flow

PURPOSE:
  Drives one raw device record through the full pipeline:

    resolve identity -> normalize timestamp -> deduplicate ->
    alternate direction -> evaluate lateness -> upsert aggregate

  Records in a batch run strictly sequentially: the alternator reads the
  fully-updated punch list before deciding the next direction, so records
  for the same employee-day must never interleave. Across requests, a
  per-(employee, day) mutex guards the read-modify-write on the aggregate.

FAILURE POLICY:
  A failure in one record (malformed input, unknown employee, duplicate
  punch, storage error) is caught, recorded with the offending record, and
  processing continues. A batch never aborts on a single bad record.

SEE ALSO:
  - resolver.go, timestamp.go, dedup.go, alternator.go, lateness.go
  - store.go: Injected collaborators
*/
package attendance

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Pipeline is the batch ingestion controller.
type Pipeline struct {
	resolver   *Resolver
	store      AttendanceStore
	cal        *BusinessCalendar
	normalizer *Normalizer
	clock      Clock
	locks      *keyedMutex
	logf       func(format string, args ...any)
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithClock substitutes the time source. Tests use FixedClock.
func WithClock(c Clock) PipelineOption {
	return func(p *Pipeline) { p.clock = c }
}

// WithLogger substitutes the warning/info sink.
func WithLogger(logf func(format string, args ...any)) PipelineOption {
	return func(p *Pipeline) { p.logf = logf }
}

// NewPipeline wires the ingestion controller.
func NewPipeline(dir EmployeeDirectory, store AttendanceStore, cal *BusinessCalendar, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		resolver: NewResolver(dir),
		store:    store,
		cal:      cal,
		clock:    SystemClock(),
		locks:    newKeyedMutex(),
		logf:     log.Printf,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.normalizer = NewNormalizer(cal, p.clock, p.logf)
	return p
}

// ProcessBatch runs every record through the pipeline, sequentially, and
// returns the partial-success report.
func (p *Pipeline) ProcessBatch(ctx context.Context, events []RawEvent) Report {
	report := Report{}
	for i, ev := range events {
		receipt, err := p.ProcessOne(ctx, ev)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, RecordError{Index: i, Record: ev, Err: err})
			continue
		}
		report.Processed++
		report.Receipts = append(report.Receipts, receipt)
	}
	return report
}

// ProcessOne runs a single record through the pipeline.
func (p *Pipeline) ProcessOne(ctx context.Context, ev RawEvent) (Receipt, error) {
	if strings.TrimSpace(ev.EmployeeCode) == "" {
		return Receipt{}, &MalformedRecordError{Reason: "missing employee code"}
	}

	emp, err := p.resolver.Resolve(ctx, ev.EmployeeCode)
	if err != nil {
		return Receipt{}, err
	}

	at, _ := p.normalizer.Normalize(ev.Timestamp)
	day := p.cal.DayOf(at)

	// Guard the read-modify-write for this aggregate against concurrent
	// requests. Within the lock the punch list is stable, which both the
	// deduplicator and the alternator rely on.
	unlock := p.locks.Lock(dayKey(emp.ID, day))
	defer unlock()

	rec, err := p.store.GetDay(ctx, emp.ID, day)
	if err != nil {
		return Receipt{}, fmt.Errorf("load attendance day: %w", err)
	}

	if rec != nil {
		if dup := findDuplicate(rec.PunchRecords, at); dup != nil {
			return Receipt{}, &DuplicatePunchError{EmployeeID: emp.ID, At: at, Existing: dup.Time}
		}
	}

	punchType := nextPunchType(rec)
	if hint := normalizeTypeHint(ev.TypeHint); hint != "" && hint != punchType {
		// Device hints are informational only; the alternation is authoritative.
		p.logf("punch type hint %q for employee %s disagrees with alternation %q, ignoring hint",
			ev.TypeHint, emp.ID, punchType)
	}

	punch := PunchEvent{
		ID:                 uuid.NewString(),
		Time:               at,
		Type:               punchType,
		Method:             MethodBiometric,
		DeviceName:         ev.DeviceName,
		DeviceSerialNumber: ev.SerialNumber,
		Notes:              ev.Notes,
	}

	now := p.clock.Now()
	if rec == nil {
		cls := classifyFirstPunch(p.cal, at)
		rec = &AttendanceDay{
			EmployeeID:    emp.ID,
			Day:           day,
			Status:        cls.Status,
			IsLate:        cls.IsLate,
			LateMinutes:   cls.LateMinutes,
			IsWeekendWork: cls.IsWeekendWork,
			CreatedAt:     now,
		}
		rec.Append(punch)
	} else {
		first := len(rec.PunchRecords) == 0
		rec.Append(punch)
		if first {
			// Only the first punch ever appended drives the summary fields.
			cls := classifyFirstPunch(p.cal, at)
			rec.Status = cls.Status
			rec.IsLate = cls.IsLate
			rec.LateMinutes = cls.LateMinutes
			rec.IsWeekendWork = cls.IsWeekendWork
		}
	}
	rec.UpdatedAt = now

	if err := p.store.UpsertDay(ctx, rec); err != nil {
		return Receipt{}, fmt.Errorf("persist attendance day: %w", err)
	}

	receipt := Receipt{
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		PunchType:    punchType,
		Time:         at,
		PunchCount:   len(rec.PunchRecords),
		TotalHours:   rec.TotalHours(),
	}
	if punchType == PunchIn {
		receipt.IsLate = rec.IsLate
		receipt.LateMinutes = rec.LateMinutes
	}
	return receipt, nil
}

func dayKey(employeeID string, day time.Time) string {
	return employeeID + "|" + day.Format("2006-01-02")
}

// normalizeTypeHint maps common device direction hints onto punch types.
// Unrecognized hints normalize to "".
func normalizeTypeHint(hint string) PunchType {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "in", "checkin", "check-in", "check_in", "clock_in", "0":
		return PunchIn
	case "out", "checkout", "check-out", "check_out", "clock_out", "1":
		return PunchOut
	default:
		return ""
	}
}
