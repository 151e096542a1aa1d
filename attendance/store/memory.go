// Package store provides in-memory implementations of the attendance
// persistence interfaces, for testing and development.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// MEMORY DIRECTORY - In-memory EmployeeDirectory
// =============================================================================

type MemoryDirectory struct {
	mu        sync.RWMutex
	byID      map[string]attendance.Employee
	byBadge   map[string]string // attendance number -> employee ID
	insertSeq []string          // preserves listing order
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		byID:    make(map[string]attendance.Employee),
		byBadge: make(map[string]string),
	}
}

func (d *MemoryDirectory) SaveEmployee(_ context.Context, emp attendance.Employee) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if old, ok := d.byID[emp.ID]; ok {
		if old.AttendanceNumber != "" {
			delete(d.byBadge, old.AttendanceNumber)
		}
	} else {
		d.insertSeq = append(d.insertSeq, emp.ID)
	}
	d.byID[emp.ID] = emp
	if emp.AttendanceNumber != "" {
		d.byBadge[emp.AttendanceNumber] = emp.ID
	}
	return nil
}

func (d *MemoryDirectory) FindByAttendanceNumber(_ context.Context, code string) (*attendance.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byBadge[code]
	if !ok {
		return nil, nil
	}
	emp := d.byID[id]
	return &emp, nil
}

func (d *MemoryDirectory) FindByID(_ context.Context, id string) (*attendance.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	emp, ok := d.byID[id]
	if !ok {
		return nil, nil
	}
	return &emp, nil
}

func (d *MemoryDirectory) ListEmployees(_ context.Context) ([]attendance.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]attendance.Employee, 0, len(d.insertSeq))
	for _, id := range d.insertSeq {
		out = append(out, d.byID[id])
	}
	return out, nil
}

// =============================================================================
// MEMORY ATTENDANCE STORE - In-memory AttendanceStore
// =============================================================================

type MemoryAttendance struct {
	mu   sync.RWMutex
	days map[dayKey]*attendance.AttendanceDay
}

type dayKey struct {
	EmployeeID string
	Day        string // 2006-01-02 in the business timezone
}

func NewMemoryAttendance() *MemoryAttendance {
	return &MemoryAttendance{days: make(map[dayKey]*attendance.AttendanceDay)}
}

func keyFor(employeeID string, day time.Time) dayKey {
	return dayKey{EmployeeID: employeeID, Day: day.Format("2006-01-02")}
}

func (m *MemoryAttendance) GetDay(_ context.Context, employeeID string, day time.Time) (*attendance.AttendanceDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.days[keyFor(employeeID, day)]
	if !ok {
		return nil, nil
	}
	return copyDay(rec), nil
}

func (m *MemoryAttendance) UpsertDay(_ context.Context, day *attendance.AttendanceDay) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.days[keyFor(day.EmployeeID, day.Day)] = copyDay(day)
	return nil
}

func (m *MemoryAttendance) ListDays(_ context.Context, employeeID string, from, to time.Time) ([]*attendance.AttendanceDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*attendance.AttendanceDay
	for _, rec := range m.days {
		if rec.EmployeeID != employeeID {
			continue
		}
		if rec.Day.Before(from) || rec.Day.After(to) {
			continue
		}
		out = append(out, copyDay(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

// copyDay deep-copies so callers can never mutate stored state in place.
func copyDay(d *attendance.AttendanceDay) *attendance.AttendanceDay {
	cp := *d
	cp.PunchRecords = make([]attendance.PunchEvent, len(d.PunchRecords))
	copy(cp.PunchRecords, d.PunchRecords)
	return &cp
}
