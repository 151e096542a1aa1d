/*
lateness.go - First-punch lateness policy

PURPOSE:
  Lateness is evaluated once per employee-day, from the first punch only,
  against the fixed office-start time in the business timezone. Weekend
  punches are classified "weekend" and never late: weekend attendance is
  tracked for hours, not punctuality.
*/
package attendance

import (
	"math"
	"time"
)

// DayClassification is the derived summary seeded from the first punch.
type DayClassification struct {
	Status        DayStatus
	IsLate        bool
	LateMinutes   int
	IsWeekendWork bool
}

// classifyFirstPunch evaluates the day's first punch against the office
// schedule. Applies only to the first punch; callers must never re-run it
// for subsequent punches.
func classifyFirstPunch(cal *BusinessCalendar, at time.Time) DayClassification {
	if cal.IsWeekend(at) {
		return DayClassification{Status: StatusWeekend, IsWeekendWork: true}
	}

	start := cal.OfficeStart(at)
	if !at.After(start) {
		return DayClassification{Status: StatusPresent}
	}

	// Ceiling: arriving 10:00:01 already counts as 1 minute late.
	late := int(math.Ceil(at.Sub(start).Minutes()))
	return DayClassification{
		Status:      StatusLate,
		IsLate:      true,
		LateMinutes: late,
	}
}
