package attendance

import "time"

// =============================================================================
// DEDUPLICATOR - Retransmission tolerance
// =============================================================================

// DuplicateWindow is the tolerance inside which two punches are treated as
// retransmissions of the same physical touch. Genuine in/out pairs are
// separated by working minutes, never seconds, so the window can stay tight.
const DuplicateWindow = 2 * time.Second

// findDuplicate returns the first existing punch strictly within
// DuplicateWindow of the candidate instant, or nil. Punches exactly
// DuplicateWindow apart are distinct.
func findDuplicate(existing []PunchEvent, at time.Time) *PunchEvent {
	for i := range existing {
		diff := at.Sub(existing[i].Time)
		if diff < 0 {
			diff = -diff
		}
		if diff < DuplicateWindow {
			return &existing[i]
		}
	}
	return nil
}
