package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) (*sqlite.Store, *time.Location) {
	t.Helper()
	loc, err := time.LoadLocation(attendance.DefaultTimezone)
	require.NoError(t, err)

	store, err := sqlite.New(":memory:", loc)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, loc
}

func testDay(loc *time.Location) time.Time {
	return time.Date(2025, time.October, 10, 0, 0, 0, 0, loc)
}

func testPunch(id string, at time.Time, pt attendance.PunchType) attendance.PunchEvent {
	return attendance.PunchEvent{
		ID:                 id,
		Time:               at,
		Type:               pt,
		Method:             attendance.MethodBiometric,
		DeviceName:         "Main Gate",
		DeviceSerialNumber: "BX-1001",
	}
}

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

func TestSQLite_EmployeeDirectoryRoundtrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	emp := attendance.Employee{
		ID:               "emp-1",
		Name:             "Asha Verma",
		Email:            "asha@example.com",
		AttendanceNumber: "00000083",
		CreatedAt:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveEmployee(ctx, emp))

	byBadge, err := store.FindByAttendanceNumber(ctx, "00000083")
	require.NoError(t, err)
	require.NotNil(t, byBadge)
	assert.Equal(t, "emp-1", byBadge.ID)
	assert.Equal(t, "Asha Verma", byBadge.Name)

	byID, err := store.FindByID(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "00000083", byID.AttendanceNumber)

	missing, err := store.FindByAttendanceNumber(ctx, "12345678")
	require.NoError(t, err)
	assert.Nil(t, missing, "missing employee is (nil, nil), not an error")
}

func TestSQLite_SaveEmployeeUpserts(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmployee(ctx, attendance.Employee{ID: "emp-1", Name: "Asha"}))
	require.NoError(t, store.SaveEmployee(ctx, attendance.Employee{ID: "emp-1", Name: "Asha Verma", AttendanceNumber: "83"}))

	employees, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "Asha Verma", employees[0].Name)
	assert.Equal(t, "83", employees[0].AttendanceNumber)
}

// =============================================================================
// ATTENDANCE STORE
// =============================================================================

func TestSQLite_UpsertDayRoundtrip(t *testing.T) {
	store, loc := newTestStore(t)
	ctx := context.Background()
	day := testDay(loc)

	rec := &attendance.AttendanceDay{
		EmployeeID:  "emp-1",
		Day:         day,
		Status:      attendance.StatusLate,
		IsLate:      true,
		LateMinutes: 15,
	}
	rec.Append(testPunch("p-1", day.Add(10*time.Hour+15*time.Minute), attendance.PunchIn))
	require.NoError(t, store.UpsertDay(ctx, rec))

	loaded, err := store.GetDay(ctx, "emp-1", day)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, attendance.StatusLate, loaded.Status)
	assert.True(t, loaded.IsLate)
	assert.Equal(t, 15, loaded.LateMinutes)
	assert.False(t, loaded.IsWeekendWork)
	assert.True(t, loaded.Day.Equal(day))
	require.Len(t, loaded.PunchRecords, 1)
	p := loaded.PunchRecords[0]
	assert.Equal(t, "p-1", p.ID)
	assert.Equal(t, attendance.PunchIn, p.Type)
	assert.Equal(t, "Main Gate", p.DeviceName)
	assert.True(t, p.Time.Equal(day.Add(10*time.Hour+15*time.Minute)))
}

func TestSQLite_GetDayMissingIsNil(t *testing.T) {
	store, loc := newTestStore(t)

	rec, err := store.GetDay(context.Background(), "emp-1", testDay(loc))
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSQLite_UpsertNeverDuplicatesAggregate(t *testing.T) {
	// Two upserts under the same (employee, day) must end as one row with
	// the punches appended, not two rows.

	store, loc := newTestStore(t)
	ctx := context.Background()
	day := testDay(loc)

	rec := &attendance.AttendanceDay{
		EmployeeID: "emp-1",
		Day:        day,
		Status:     attendance.StatusPresent,
	}
	rec.Append(testPunch("p-1", day.Add(9*time.Hour), attendance.PunchIn))
	require.NoError(t, store.UpsertDay(ctx, rec))

	rec.Append(testPunch("p-2", day.Add(17*time.Hour), attendance.PunchOut))
	require.NoError(t, store.UpsertDay(ctx, rec))

	days, err := store.ListDays(ctx, "emp-1", day, day)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Len(t, days[0].PunchRecords, 2)
}

func TestSQLite_PunchArrivalOrderPreserved(t *testing.T) {
	// Arrival order is the storage order even when punch times are not
	// monotonic (devices can report out of order).

	store, loc := newTestStore(t)
	ctx := context.Background()
	day := testDay(loc)

	rec := &attendance.AttendanceDay{EmployeeID: "emp-1", Day: day, Status: attendance.StatusPresent}
	rec.Append(testPunch("p-late", day.Add(13*time.Hour), attendance.PunchOut))
	rec.Append(testPunch("p-early", day.Add(9*time.Hour), attendance.PunchIn))
	require.NoError(t, store.UpsertDay(ctx, rec))

	loaded, err := store.GetDay(ctx, "emp-1", day)
	require.NoError(t, err)
	require.Len(t, loaded.PunchRecords, 2)
	assert.Equal(t, "p-late", loaded.PunchRecords[0].ID)
	assert.Equal(t, "p-early", loaded.PunchRecords[1].ID)
}

func TestSQLite_ListDaysRange(t *testing.T) {
	store, loc := newTestStore(t)
	ctx := context.Background()

	for _, d := range []int{8, 9, 10, 13} {
		day := time.Date(2025, time.October, d, 0, 0, 0, 0, loc)
		rec := &attendance.AttendanceDay{EmployeeID: "emp-1", Day: day, Status: attendance.StatusPresent}
		rec.Append(testPunch(day.Format("2006-01-02"), day.Add(9*time.Hour), attendance.PunchIn))
		require.NoError(t, store.UpsertDay(ctx, rec))
	}

	from := time.Date(2025, time.October, 9, 0, 0, 0, 0, loc)
	to := time.Date(2025, time.October, 10, 0, 0, 0, 0, loc)
	days, err := store.ListDays(ctx, "emp-1", from, to)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, 9, days[0].Day.Day())
	assert.Equal(t, 10, days[1].Day.Day())

	// Other employees never leak into the range.
	days, err = store.ListDays(ctx, "emp-2", from, to)
	require.NoError(t, err)
	assert.Empty(t, days)
}
