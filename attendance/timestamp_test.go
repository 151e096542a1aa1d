package attendance_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/attendance"
)

func newTestNormalizer(t *testing.T, clock attendance.Clock) (*attendance.Normalizer, *[]string) {
	t.Helper()
	cal, err := attendance.NewBusinessCalendar(attendance.DefaultTimezone, attendance.DefaultOfficeStart)
	require.NoError(t, err)

	var warnings []string
	n := attendance.NewNormalizer(cal, clock, func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})
	return n, &warnings
}

func TestNormalizer_FormatInvariance(t *testing.T) {
	// The same wall-clock moment parses to the same instant regardless of
	// which supported layout carried it.

	n, _ := newTestNormalizer(t, nil)

	inputs := []string{
		"10/10/2025 09:58:00",
		"2025-10-10 09:58:00",
		"2025-10-10T09:58:00",
	}

	first, ok := n.Normalize(inputs[0])
	require.True(t, ok)
	for _, raw := range inputs[1:] {
		got, ok := n.Normalize(raw)
		require.True(t, ok, "layout %q", raw)
		assert.True(t, first.Equal(got), "layout %q: got %s, want %s", raw, got, first)
	}
}

func TestNormalizer_DayFirstLayout(t *testing.T) {
	n, _ := newTestNormalizer(t, nil)

	// 25/12 only parses day-first.
	got, ok := n.Normalize("25/12/2025 08:30:00")
	require.True(t, ok)
	assert.Equal(t, time.December, got.Month())
	assert.Equal(t, 25, got.Day())
	assert.Equal(t, 8, got.Hour())
}

func TestNormalizer_InterpretsInBusinessTimezone(t *testing.T) {
	n, _ := newTestNormalizer(t, nil)

	got, ok := n.Normalize("2025-10-10 09:58:00")
	require.True(t, ok)

	// 09:58 IST is 04:28 UTC; a UTC or server-local interpretation would
	// shift the instant.
	assert.Equal(t, 4, got.UTC().Hour())
	assert.Equal(t, 28, got.UTC().Minute())
}

func TestNormalizer_FallbackToNowWithWarning(t *testing.T) {
	now := time.Date(2025, time.October, 10, 12, 0, 0, 0, time.UTC)
	n, warnings := newTestNormalizer(t, attendance.FixedClock{At: now})

	got, ok := n.Normalize("not a timestamp")
	assert.False(t, ok, "unparseable input falls back")
	assert.True(t, now.Equal(got), "fallback is the injected now")
	require.Len(t, *warnings, 1, "fallback emits a data-quality warning")
	assert.Contains(t, (*warnings)[0], "not a timestamp")

	got, ok = n.Normalize("")
	assert.False(t, ok, "absent input falls back")
	assert.True(t, now.Equal(got))
	assert.Len(t, *warnings, 2)
}
