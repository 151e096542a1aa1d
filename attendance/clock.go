package attendance

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// CLOCK - Injectable time source
// =============================================================================

// Clock supplies the current time. Injected so the timestamp fallback and
// lateness evaluation are deterministic in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// FixedClock always returns the same instant. Test helper.
type FixedClock struct{ At time.Time }

func (c FixedClock) Now() time.Time { return c.At }

// =============================================================================
// BUSINESS CALENDAR - Fixed timezone and office schedule
// =============================================================================

// DefaultTimezone anchors all device timestamps and the office-start cutoff.
const DefaultTimezone = "Asia/Kolkata"

// DefaultOfficeStart is the cutoff for lateness evaluation, as HH:MM.
const DefaultOfficeStart = "10:00"

// BusinessCalendar interprets instants in the fixed business timezone.
// Every calendar-day decision in the pipeline (day truncation, weekend
// classification, office start) goes through this type so that server
// locale never leaks into attendance data.
type BusinessCalendar struct {
	loc         *time.Location
	startHour   int
	startMinute int
}

// NewBusinessCalendar builds a calendar for the given IANA timezone name and
// an office-start time of day formatted as "HH:MM".
func NewBusinessCalendar(timezone, officeStart string) (*BusinessCalendar, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid business timezone %q: %w", timezone, err)
	}

	hour, minute, err := parseClockTime(officeStart)
	if err != nil {
		return nil, err
	}

	return &BusinessCalendar{loc: loc, startHour: hour, startMinute: minute}, nil
}

// MustCalendar is a convenience for tests and defaults; panics on bad input.
func MustCalendar(timezone, officeStart string) *BusinessCalendar {
	cal, err := NewBusinessCalendar(timezone, officeStart)
	if err != nil {
		panic(err)
	}
	return cal
}

func parseClockTime(s string) (hour, minute int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid office start %q: want HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err == nil {
		minute, err = strconv.Atoi(parts[1])
	}
	if err != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid office start %q: want HH:MM", s)
	}
	return hour, minute, nil
}

// Location returns the business timezone.
func (c *BusinessCalendar) Location() *time.Location { return c.loc }

// DayOf truncates an instant to midnight of its calendar day in the
// business timezone. This is the aggregate key, so truncation must happen
// in the business zone, never UTC or server-local.
func (c *BusinessCalendar) DayOf(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
}

// IsWeekend reports whether the instant falls on Saturday or Sunday in the
// business timezone.
func (c *BusinessCalendar) IsWeekend(t time.Time) bool {
	wd := t.In(c.loc).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// OfficeStart returns the lateness cutoff on the instant's calendar day.
func (c *BusinessCalendar) OfficeStart(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), c.startHour, c.startMinute, 0, 0, c.loc)
}
