/*
alternator.go - In/out direction state machine

PURPOSE:
  Punch direction is decided here, not by the device. Types strictly
  alternate per employee-day starting from "in": the next punch is the
  opposite of the chronologically latest existing punch. Devices can report
  out of arrival order, so the existing punches are sorted by time before
  the last one is inspected.

  Raw device-reported direction hints are informational only. Overriding
  the alternation with them would let a single quirky device break the
  in/out/in/out sequence for the whole day.
*/
package attendance

// nextPunchType returns the direction for a new punch given the day's
// existing punches (any order). An empty day opens with "in".
func nextPunchType(day *AttendanceDay) PunchType {
	if day == nil {
		return PunchIn
	}
	latest := day.LatestPunch()
	if latest == nil {
		return PunchIn
	}
	return latest.Type.Opposite()
}
