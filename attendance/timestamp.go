/*
timestamp.go - Normalization of free-form device timestamps

PURPOSE:
  Device exports disagree on timestamp formats. The normalizer parses an
  ordered list of accepted layouts, always interpreting the wall-clock
  value in the business timezone (never UTC, never server-local).

FALLBACK:
  When nothing matches, or the field is absent, the normalizer falls back
  to "now" in the business timezone instead of dropping the record. Lost
  precision is preferred over a lost attendance event. The fallback emits
  a data-quality warning so it stays observable.

SEE ALSO:
  - clock.go: BusinessCalendar and Clock
  - pipeline.go: Calls Normalize per record
*/
package attendance

import (
	"log"
	"time"
)

// punchLayouts are tried in order. The slash layouts are month-first then
// day-first; values valid under both parse as month-first.
var punchLayouts = []string{
	"01/02/2006 15:04:05",
	"02/01/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Normalizer parses raw timestamps into absolute instants anchored to the
// business timezone.
type Normalizer struct {
	cal   *BusinessCalendar
	clock Clock
	warnf func(format string, args ...any)
}

// NewNormalizer builds a normalizer. warnf receives data-quality warnings;
// nil routes them to the standard logger.
func NewNormalizer(cal *BusinessCalendar, clock Clock, warnf func(format string, args ...any)) *Normalizer {
	if clock == nil {
		clock = SystemClock()
	}
	if warnf == nil {
		warnf = log.Printf
	}
	return &Normalizer{cal: cal, clock: clock, warnf: warnf}
}

// Normalize parses raw into an instant in the business timezone. The second
// return value reports whether the input actually parsed; false means the
// current time was substituted.
func (n *Normalizer) Normalize(raw string) (time.Time, bool) {
	if raw != "" {
		for _, layout := range punchLayouts {
			if t, err := time.ParseInLocation(layout, raw, n.cal.Location()); err == nil {
				return t, true
			}
		}
	}

	now := n.clock.Now().In(n.cal.Location())
	n.warnf("data quality: unparseable punch timestamp %q, falling back to %s", raw, now.Format(time.RFC3339))
	return now, false
}
