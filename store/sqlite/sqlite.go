/*
Package sqlite provides a SQLite-backed implementation of the attendance
storage interfaces.

PURPOSE:
  Implements attendance.EmployeeDirectory and attendance.AttendanceStore
  using SQLite. In production the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  employees:        Directory entries the resolver matches against
  attendance_days:  One row per (employee_id, day) aggregate
  punch_records:    Append-only punch log, ordered by arrival sequence

UPSERT CONTRACT:
  UpsertDay runs in one SQL transaction: the summary row is inserted with
  ON CONFLICT(employee_id, day) DO UPDATE, then any punches not yet stored
  are appended. The (employee_id, day) primary key makes a second row for
  the same aggregate impossible. Existing punch rows are never rewritten.

CONCURRENCY:
  Uses sync.RWMutex for in-process thread-safety, on top of the pipeline's
  per-aggregate lock. SQLite is opened in WAL mode.

USAGE:
  store, err := sqlite.New("./data/attendance.db", cal.Location())
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - attendance/store.go: Interface definitions
  - attendance/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/attendance-engine/attendance"
)

// Store implements the attendance storage interfaces using SQLite.
type Store struct {
	db  *sql.DB
	loc *time.Location
	mu  sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database. loc is the business timezone used to rebuild day
// keys from their stored form.
func New(dbPath string, loc *time.Location) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if loc == nil {
		loc = time.UTC
	}
	store := &Store{db: db, loc: loc}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Employee directory (resolver lookups)
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		attendance_number TEXT,
		created_at TEXT NOT NULL
	);

	-- Device badge codes must map to at most one employee
	CREATE UNIQUE INDEX IF NOT EXISTS idx_employees_attendance_number
		ON employees(attendance_number) WHERE attendance_number != '';

	-- Attendance aggregates: the (employee_id, day) primary key enforces
	-- the at-most-one-row-per-key upsert contract at the schema level
	CREATE TABLE IF NOT EXISTS attendance_days (
		employee_id TEXT NOT NULL,
		day TEXT NOT NULL,
		status TEXT NOT NULL,
		is_late INTEGER NOT NULL DEFAULT 0,
		late_minutes INTEGER NOT NULL DEFAULT 0,
		is_weekend_work INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, day)
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_days_day
		ON attendance_days(day);

	-- Punch log (append-only; seq preserves arrival order)
	CREATE TABLE IF NOT EXISTS punch_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		day TEXT NOT NULL,
		seq INTEGER NOT NULL,
		punched_at TEXT NOT NULL,
		punch_type TEXT NOT NULL,
		method TEXT NOT NULL,
		device_name TEXT,
		device_serial TEXT,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_punch_records_day_seq
		ON punch_records(employee_id, day, seq);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE DIRECTORY (attendance.EmployeeDirectory interface)
// =============================================================================

// SaveEmployee creates or updates a directory entry.
func (s *Store) SaveEmployee(ctx context.Context, emp attendance.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, email, attendance_number, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			attendance_number = excluded.attendance_number
	`

	createdAt := emp.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Email, emp.AttendanceNumber,
		createdAt.Format(time.RFC3339),
	)
	return err
}

// FindByAttendanceNumber retrieves an employee by device badge code.
func (s *Store) FindByAttendanceNumber(ctx context.Context, code string) (*attendance.Employee, error) {
	if code == "" {
		return nil, nil
	}
	return s.findEmployee(ctx,
		"SELECT id, name, email, attendance_number, created_at FROM employees WHERE attendance_number = ?",
		code,
	)
}

// FindByID retrieves an employee by primary identifier.
func (s *Store) FindByID(ctx context.Context, id string) (*attendance.Employee, error) {
	return s.findEmployee(ctx,
		"SELECT id, name, email, attendance_number, created_at FROM employees WHERE id = ?",
		id,
	)
}

func (s *Store) findEmployee(ctx context.Context, query string, arg any) (*attendance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var emp attendance.Employee
	var email, number sql.NullString
	var createdAt string

	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&emp.ID, &emp.Name, &email, &number, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	emp.Email = email.String
	emp.AttendanceNumber = number.String
	emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &emp, nil
}

// ListEmployees returns all directory entries.
func (s *Store) ListEmployees(ctx context.Context) ([]attendance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, attendance_number, created_at FROM employees ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []attendance.Employee
	for rows.Next() {
		var emp attendance.Employee
		var email, number sql.NullString
		var createdAt string
		if err := rows.Scan(&emp.ID, &emp.Name, &email, &number, &createdAt); err != nil {
			return nil, err
		}
		emp.Email = email.String
		emp.AttendanceNumber = number.String
		emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// =============================================================================
// ATTENDANCE STORE (attendance.AttendanceStore interface)
// =============================================================================

// GetDay loads the aggregate for (employeeID, day), or (nil, nil).
func (s *Store) GetDay(ctx context.Context, employeeID string, day time.Time) (*attendance.AttendanceDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadDay(ctx, employeeID, day.Format("2006-01-02"))
}

func (s *Store) loadDay(ctx context.Context, employeeID, dayStr string) (*attendance.AttendanceDay, error) {
	rec := &attendance.AttendanceDay{EmployeeID: employeeID}
	var isLate, isWeekend int
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT status, is_late, late_minutes, is_weekend_work, created_at, updated_at
		FROM attendance_days WHERE employee_id = ? AND day = ?`,
		employeeID, dayStr,
	).Scan(&rec.Status, &isLate, &rec.LateMinutes, &isWeekend, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec.Day, _ = time.ParseInLocation("2006-01-02", dayStr, s.loc)
	rec.IsLate = isLate != 0
	rec.IsWeekendWork = isWeekend != 0
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	punches, err := s.loadPunches(ctx, employeeID, dayStr)
	if err != nil {
		return nil, err
	}
	rec.PunchRecords = punches
	return rec, nil
}

func (s *Store) loadPunches(ctx context.Context, employeeID, dayStr string) ([]attendance.PunchEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, punched_at, punch_type, method, device_name, device_serial, notes
		FROM punch_records WHERE employee_id = ? AND day = ? ORDER BY seq`,
		employeeID, dayStr,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var punches []attendance.PunchEvent
	for rows.Next() {
		var p attendance.PunchEvent
		var punchedAt string
		var device, serial, notes sql.NullString
		if err := rows.Scan(&p.ID, &punchedAt, &p.Type, &p.Method, &device, &serial, &notes); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, punchedAt)
		if err != nil {
			return nil, fmt.Errorf("corrupt punch time %q: %w", punchedAt, err)
		}
		p.Time = t.In(s.loc)
		p.DeviceName = device.String
		p.DeviceSerialNumber = serial.String
		p.Notes = notes.String
		punches = append(punches, p)
	}
	return punches, rows.Err()
}

// UpsertDay creates or updates an aggregate atomically. The summary upsert
// and the punch appends commit in one SQL transaction.
func (s *Store) UpsertDay(ctx context.Context, day *attendance.AttendanceDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	dayStr := day.Day.Format("2006-01-02")
	createdAt := day.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := day.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO attendance_days
			(employee_id, day, status, is_late, late_minutes, is_weekend_work, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, day) DO UPDATE SET
			status = excluded.status,
			is_late = excluded.is_late,
			late_minutes = excluded.late_minutes,
			is_weekend_work = excluded.is_weekend_work,
			updated_at = excluded.updated_at`,
		day.EmployeeID, dayStr, day.Status,
		boolToInt(day.IsLate), day.LateMinutes, boolToInt(day.IsWeekendWork),
		createdAt.Format(time.RFC3339), updatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert attendance day: %w", err)
	}

	// Punch rows are append-only: already-stored punches are skipped by ID,
	// never rewritten.
	for seq, p := range day.PunchRecords {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO punch_records
				(id, employee_id, day, seq, punched_at, punch_type, method, device_name, device_serial, notes, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING`,
			p.ID, day.EmployeeID, dayStr, seq,
			p.Time.Format(time.RFC3339), p.Type, p.Method,
			nullString(p.DeviceName), nullString(p.DeviceSerialNumber), nullString(p.Notes),
			updatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to append punch record: %w", err)
		}
	}

	return tx.Commit()
}

// ListDays returns aggregates with day in [from, to], ordered by day.
func (s *Store) ListDays(ctx context.Context, employeeID string, from, to time.Time) ([]*attendance.AttendanceDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT day FROM attendance_days
		WHERE employee_id = ? AND day >= ? AND day <= ?
		ORDER BY day`,
		employeeID, from.Format("2006-01-02"), to.Format("2006-01-02"),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dayStrs []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dayStrs = append(dayStrs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	days := make([]*attendance.AttendanceDay, 0, len(dayStrs))
	for _, d := range dayStrs {
		rec, err := s.loadDay(ctx, employeeID, d)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			days = append(days, rec)
		}
	}
	return days, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
