/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements engine.Store and engine.TxStore on SQLite. The same patterns
  apply to PostgreSQL; only minor SQL dialect differences.

MUTATION CONTRACT ENFORCEMENT:
  - schedules:  INSERT and DELETE only, no UPDATE statements exist.
  - attendance: one INSERT plus one close UPDATE guarded by
                "clock_out IS NULL"; a closed row can never change again.
  - overtime/leaves: one INSERT plus one resolve UPDATE guarded by
                "status = 'PENDING'"; terminal rows are frozen.

KEY INDEXES:
  - idx_attendance_unique_day: at most one attendance row per (employee, date);
    the second concurrent clock-in loses with a conflict.
  - idx_overtime_unique_slot: one overtime entry per (employee, date, type).
  - idx_schedules_employee_date: conflict checks and range reads.

CONCURRENCY:
  Opened in WAL mode; a sync.RWMutex serializes writers in-process, and
  WithTx holds the write lock for the whole transaction. Window-overlap
  detection for schedule inserts runs in Go under that lock (overnight wrap
  doesn't map onto a SQL range predicate).

SEE ALSO:
  - engine/store.go: interface definitions and the mutation contract
  - engine/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/shift-engine/engine"
)

// Store implements engine.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
	c  conn
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, c: conn{q: db}}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS roles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		work_days TEXT NOT NULL DEFAULT '',
		break_minutes INTEGER NOT NULL DEFAULT 0,
		daily_work_hours TEXT NOT NULL DEFAULT '0',
		daily_max_hours TEXT NOT NULL DEFAULT '0',
		weekly_hours_limit TEXT NOT NULL DEFAULT '0',
		monthly_overtime_limit TEXT NOT NULL DEFAULT '0',
		employment_type TEXT NOT NULL DEFAULT 'FULL_TIME',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		role_id TEXT NOT NULL,
		name TEXT NOT NULL,
		day_of_week INTEGER NOT NULL,
		start_minutes INTEGER NOT NULL,
		end_minutes INTEGER NOT NULL,
		priority INTEGER NOT NULL DEFAULT 0,
		skills_json TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_shifts_role ON shifts(role_id);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		role_id TEXT NOT NULL,
		name TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		skills_json TEXT NOT NULL DEFAULT '[]',
		yearly_paid_leave_allowance TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_role ON employees(role_id);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		date TEXT NOT NULL,
		type TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		is_paid BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_date ON holidays(date);

	-- Planned work. Insert/delete only; no UPDATE path exists.
	CREATE TABLE IF NOT EXISTS schedules (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		shift_id TEXT,
		date TEXT NOT NULL,
		start_minutes INTEGER NOT NULL,
		end_minutes INTEGER NOT NULL,
		is_custom BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_schedules_employee_date
		ON schedules(employee_id, date);

	-- Actual work. One row per (employee, date), closed exactly once.
	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		sched_start_minutes INTEGER,
		sched_end_minutes INTEGER,
		clock_in TEXT NOT NULL,
		clock_out TEXT,
		worked_hours TEXT NOT NULL DEFAULT '0',
		status TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_unique_day
		ON attendance(employee_id, date);

	CREATE TABLE IF NOT EXISTS overtime (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		actual_hours TEXT NOT NULL,
		approved_hours TEXT,
		type TEXT NOT NULL,
		compensation TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		created_at TEXT NOT NULL,
		resolved_by TEXT NOT NULL DEFAULT '',
		resolved_at TEXT
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_overtime_unique_slot
		ON overtime(employee_id, date, type);
	CREATE INDEX IF NOT EXISTS idx_overtime_employee_date
		ON overtime(employee_id, date);

	CREATE TABLE IF NOT EXISTS leaves (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		type TEXT NOT NULL,
		duration TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'PENDING',
		created_at TEXT NOT NULL,
		resolved_by TEXT NOT NULL DEFAULT '',
		resolved_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_leaves_employee_date
		ON leaves(employee_id, date);
	CREATE INDEX IF NOT EXISTS idx_leaves_status
		ON leaves(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LOCKED WRAPPERS - Store methods take the mutex and delegate to conn
// =============================================================================

func (s *Store) SaveRole(ctx context.Context, r engine.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.SaveRole(ctx, r)
}

func (s *Store) GetRole(ctx context.Context, id engine.RoleID) (*engine.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.GetRole(ctx, id)
}

func (s *Store) ListRoles(ctx context.Context) ([]engine.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.ListRoles(ctx)
}

func (s *Store) SaveShift(ctx context.Context, sh engine.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.SaveShift(ctx, sh)
}

func (s *Store) ListShifts(ctx context.Context, roleID engine.RoleID) ([]engine.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.ListShifts(ctx, roleID)
}

func (s *Store) SaveEmployee(ctx context.Context, e engine.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.SaveEmployee(ctx, e)
}

func (s *Store) GetEmployee(ctx context.Context, id engine.EmployeeID) (*engine.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.GetEmployee(ctx, id)
}

func (s *Store) ListEmployeesByRole(ctx context.Context, roleID engine.RoleID) ([]engine.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.ListEmployeesByRole(ctx, roleID)
}

func (s *Store) SaveHoliday(ctx context.Context, h engine.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.SaveHoliday(ctx, h)
}

func (s *Store) HolidaysOn(ctx context.Context, date engine.Date) ([]engine.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.HolidaysOn(ctx, date)
}

func (s *Store) CreateSchedule(ctx context.Context, row engine.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.CreateSchedule(ctx, row)
}

func (s *Store) GetSchedule(ctx context.Context, id engine.ScheduleID) (*engine.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.GetSchedule(ctx, id)
}

func (s *Store) SchedulesFor(ctx context.Context, emp engine.EmployeeID, from, to engine.Date) ([]engine.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.SchedulesFor(ctx, emp, from, to)
}

func (s *Store) SchedulesOn(ctx context.Context, emp engine.EmployeeID, date engine.Date) ([]engine.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.SchedulesOn(ctx, emp, date)
}

func (s *Store) DeleteSchedule(ctx context.Context, id engine.ScheduleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.DeleteSchedule(ctx, id)
}

func (s *Store) CreateAttendance(ctx context.Context, a engine.Attendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.CreateAttendance(ctx, a)
}

func (s *Store) GetAttendance(ctx context.Context, emp engine.EmployeeID, date engine.Date) (*engine.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.GetAttendance(ctx, emp, date)
}

func (s *Store) CloseAttendance(ctx context.Context, id engine.AttendanceID, a engine.Attendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.CloseAttendance(ctx, id, a)
}

func (s *Store) AttendanceFor(ctx context.Context, emp engine.EmployeeID, from, to engine.Date) ([]engine.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.AttendanceFor(ctx, emp, from, to)
}

func (s *Store) CreateOvertime(ctx context.Context, o engine.Overtime) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.CreateOvertime(ctx, o)
}

func (s *Store) GetOvertime(ctx context.Context, id engine.OvertimeID) (*engine.Overtime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.GetOvertime(ctx, id)
}

func (s *Store) ListOvertime(ctx context.Context, emp engine.EmployeeID, from, to engine.Date) ([]engine.Overtime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.ListOvertime(ctx, emp, from, to)
}

func (s *Store) ResolveOvertime(ctx context.Context, o engine.Overtime) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.ResolveOvertime(ctx, o)
}

func (s *Store) CreateLeave(ctx context.Context, l engine.Leave) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.CreateLeave(ctx, l)
}

func (s *Store) GetLeave(ctx context.Context, id engine.LeaveID) (*engine.Leave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.GetLeave(ctx, id)
}

func (s *Store) ListLeave(ctx context.Context, emp engine.EmployeeID, from, to engine.Date) ([]engine.Leave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.ListLeave(ctx, emp, from, to)
}

func (s *Store) HasApprovedLeave(ctx context.Context, emp engine.EmployeeID, date engine.Date) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.HasApprovedLeave(ctx, emp, date)
}

func (s *Store) ResolveLeave(ctx context.Context, l engine.Leave) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.ResolveLeave(ctx, l)
}

// WithTx executes fn within a database transaction. The write lock is held
// for the whole transaction, so in-process callers are serialized too.
func (s *Store) WithTx(ctx context.Context, fn func(store engine.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&conn{q: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// =============================================================================
// CONNECTION - shared by the direct path (*sql.DB) and WithTx (*sql.Tx)
// =============================================================================

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type conn struct {
	q querier
}

// -------- catalog --------

func (c *conn) SaveRole(ctx context.Context, r engine.Role) error {
	query := `
		INSERT INTO roles (id, name, location, work_days, break_minutes,
			daily_work_hours, daily_max_hours, weekly_hours_limit,
			monthly_overtime_limit, employment_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			location = excluded.location,
			work_days = excluded.work_days,
			break_minutes = excluded.break_minutes,
			daily_work_hours = excluded.daily_work_hours,
			daily_max_hours = excluded.daily_max_hours,
			weekly_hours_limit = excluded.weekly_hours_limit,
			monthly_overtime_limit = excluded.monthly_overtime_limit,
			employment_type = excluded.employment_type
	`
	_, err := c.q.ExecContext(ctx, query,
		r.ID, r.Name, r.Location, encodeWorkDays(r.WorkDays), r.BreakMinutes,
		r.DailyWorkHours.String(), r.DailyMaxHours.String(),
		r.WeeklyHoursLimit.String(), r.MonthlyOvertimeLimit.String(),
		r.EmploymentType, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (c *conn) GetRole(ctx context.Context, id engine.RoleID) (*engine.Role, error) {
	row := c.q.QueryRowContext(ctx, `
		SELECT id, name, location, work_days, break_minutes, daily_work_hours,
		       daily_max_hours, weekly_hours_limit, monthly_overtime_limit,
		       employment_type, created_at
		FROM roles WHERE id = ?`, id)
	r, err := scanRole(row)
	if err == sql.ErrNoRows {
		return nil, &engine.NotFoundError{Kind: "role", ID: string(id)}
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (c *conn) ListRoles(ctx context.Context) ([]engine.Role, error) {
	rows, err := c.q.QueryContext(ctx, `
		SELECT id, name, location, work_days, break_minutes, daily_work_hours,
		       daily_max_hours, weekly_hours_limit, monthly_overtime_limit,
		       employment_type, created_at
		FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []engine.Role
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *r)
	}
	return roles, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRole(s scanner) (*engine.Role, error) {
	var r engine.Role
	var workDays, daily, dailyMax, weekly, monthly, createdAt string
	err := s.Scan(&r.ID, &r.Name, &r.Location, &workDays, &r.BreakMinutes,
		&daily, &dailyMax, &weekly, &monthly, &r.EmploymentType, &createdAt)
	if err != nil {
		return nil, err
	}
	r.WorkDays = decodeWorkDays(workDays)
	r.DailyWorkHours = parseHours(daily)
	r.DailyMaxHours = parseHours(dailyMax)
	r.WeeklyHoursLimit = parseHours(weekly)
	r.MonthlyOvertimeLimit = parseHours(monthly)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &r, nil
}

func (c *conn) SaveShift(ctx context.Context, sh engine.Shift) error {
	query := `
		INSERT INTO shifts (id, role_id, name, day_of_week, start_minutes,
			end_minutes, priority, skills_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			day_of_week = excluded.day_of_week,
			start_minutes = excluded.start_minutes,
			end_minutes = excluded.end_minutes,
			priority = excluded.priority,
			skills_json = excluded.skills_json
	`
	_, err := c.q.ExecContext(ctx, query,
		sh.ID, sh.RoleID, sh.Name, int(sh.DayOfWeek),
		int(sh.Window.Start), int(sh.Window.End), sh.Priority,
		encodeSkills(sh.Skills), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (c *conn) ListShifts(ctx context.Context, roleID engine.RoleID) ([]engine.Shift, error) {
	rows, err := c.q.QueryContext(ctx, `
		SELECT id, role_id, name, day_of_week, start_minutes, end_minutes,
		       priority, skills_json, created_at
		FROM shifts WHERE role_id = ? ORDER BY id`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []engine.Shift
	for rows.Next() {
		var sh engine.Shift
		var dow, start, end int
		var skills, createdAt string
		if err := rows.Scan(&sh.ID, &sh.RoleID, &sh.Name, &dow, &start, &end,
			&sh.Priority, &skills, &createdAt); err != nil {
			return nil, err
		}
		sh.DayOfWeek = time.Weekday(dow)
		sh.Window = engine.Window{Start: engine.TimeOfDay(start), End: engine.TimeOfDay(end)}
		sh.Skills = decodeSkills(skills)
		sh.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		shifts = append(shifts, sh)
	}
	return shifts, rows.Err()
}

func (c *conn) SaveEmployee(ctx context.Context, e engine.Employee) error {
	query := `
		INSERT INTO employees (id, role_id, name, is_active, skills_json,
			yearly_paid_leave_allowance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			role_id = excluded.role_id,
			name = excluded.name,
			is_active = excluded.is_active,
			skills_json = excluded.skills_json,
			yearly_paid_leave_allowance = excluded.yearly_paid_leave_allowance
	`
	_, err := c.q.ExecContext(ctx, query,
		e.ID, e.RoleID, e.Name, e.IsActive, encodeSkills(e.Skills),
		e.YearlyPaidLeaveAllowance.String(), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (c *conn) GetEmployee(ctx context.Context, id engine.EmployeeID) (*engine.Employee, error) {
	row := c.q.QueryRowContext(ctx, `
		SELECT id, role_id, name, is_active, skills_json,
		       yearly_paid_leave_allowance, created_at
		FROM employees WHERE id = ?`, id)
	e, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, &engine.NotFoundError{Kind: "employee", ID: string(id)}
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (c *conn) ListEmployeesByRole(ctx context.Context, roleID engine.RoleID) ([]engine.Employee, error) {
	// Ascending ID: the resolver's default ranking depends on this order.
	rows, err := c.q.QueryContext(ctx, `
		SELECT id, role_id, name, is_active, skills_json,
		       yearly_paid_leave_allowance, created_at
		FROM employees WHERE role_id = ? ORDER BY id`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []engine.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *e)
	}
	return employees, rows.Err()
}

func scanEmployee(s scanner) (*engine.Employee, error) {
	var e engine.Employee
	var skills, allowance, createdAt string
	err := s.Scan(&e.ID, &e.RoleID, &e.Name, &e.IsActive, &skills, &allowance, &createdAt)
	if err != nil {
		return nil, err
	}
	e.Skills = decodeSkills(skills)
	e.YearlyPaidLeaveAllowance = parseDays(allowance)
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &e, nil
}

func (c *conn) SaveHoliday(ctx context.Context, h engine.Holiday) error {
	query := `
		INSERT INTO holidays (id, name, date, type, location, is_paid)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			date = excluded.date,
			type = excluded.type,
			location = excluded.location,
			is_paid = excluded.is_paid
	`
	_, err := c.q.ExecContext(ctx, query,
		h.ID, h.Name, h.Date.String(), h.Type, h.Location, h.IsPaid)
	return err
}

func (c *conn) HolidaysOn(ctx context.Context, date engine.Date) ([]engine.Holiday, error) {
	rows, err := c.q.QueryContext(ctx, `
		SELECT id, name, date, type, location, is_paid
		FROM holidays WHERE date = ? ORDER BY id`, date.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []engine.Holiday
	for rows.Next() {
		var h engine.Holiday
		var dateStr string
		if err := rows.Scan(&h.ID, &h.Name, &dateStr, &h.Type, &h.Location, &h.IsPaid); err != nil {
			return nil, err
		}
		h.Date, _ = engine.ParseDate(dateStr)
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// -------- schedule --------

func (c *conn) CreateSchedule(ctx context.Context, row engine.Schedule) error {
	// Overlap check in Go: overnight wrap makes the window comparison
	// non-trivial in SQL, and the outer write lock serializes inserts.
	existing, err := c.SchedulesOn(ctx, row.EmployeeID, row.Date)
	if err != nil {
		return err
	}
	for _, s := range existing {
		if s.Window.Overlaps(row.Window) {
			return &engine.OverlapError{EmployeeID: row.EmployeeID, Date: row.Date, Window: row.Window}
		}
	}

	var shiftID *string
	if row.ShiftID != nil {
		id := string(*row.ShiftID)
		shiftID = &id
	}
	_, err = c.q.ExecContext(ctx, `
		INSERT INTO schedules (id, employee_id, shift_id, date, start_minutes,
			end_minutes, is_custom, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.EmployeeID, shiftID, row.Date.String(),
		int(row.Window.Start), int(row.Window.End), row.IsCustom,
		row.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (c *conn) GetSchedule(ctx context.Context, id engine.ScheduleID) (*engine.Schedule, error) {
	row := c.q.QueryRowContext(ctx, `
		SELECT id, employee_id, shift_id, date, start_minutes, end_minutes,
		       is_custom, created_at
		FROM schedules WHERE id = ?`, id)
	s, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, &engine.NotFoundError{Kind: "schedule", ID: string(id)}
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (c *conn) SchedulesFor(ctx context.Context, emp engine.EmployeeID, from, to engine.Date) ([]engine.Schedule, error) {
	rows, err := c.q.QueryContext(ctx, `
		SELECT id, employee_id, shift_id, date, start_minutes, end_minutes,
		       is_custom, created_at
		FROM schedules
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date, start_minutes`,
		emp, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []engine.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *s)
	}
	return schedules, rows.Err()
}

func (c *conn) SchedulesOn(ctx context.Context, emp engine.EmployeeID, date engine.Date) ([]engine.Schedule, error) {
	return c.SchedulesFor(ctx, emp, date, date)
}

func (c *conn) DeleteSchedule(ctx context.Context, id engine.ScheduleID) error {
	res, err := c.q.ExecContext(ctx, "DELETE FROM schedules WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &engine.NotFoundError{Kind: "schedule", ID: string(id)}
	}
	return nil
}

func scanSchedule(s scanner) (*engine.Schedule, error) {
	var row engine.Schedule
	var shiftID sql.NullString
	var dateStr, createdAt string
	var start, end int
	err := s.Scan(&row.ID, &row.EmployeeID, &shiftID, &dateStr, &start, &end,
		&row.IsCustom, &createdAt)
	if err != nil {
		return nil, err
	}
	if shiftID.Valid {
		id := engine.ShiftID(shiftID.String)
		row.ShiftID = &id
	}
	row.Date, _ = engine.ParseDate(dateStr)
	row.Window = engine.Window{Start: engine.TimeOfDay(start), End: engine.TimeOfDay(end)}
	row.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &row, nil
}

// -------- attendance --------

func (c *conn) CreateAttendance(ctx context.Context, a engine.Attendance) error {
	var schedStart, schedEnd *int
	if a.ScheduledWindow != nil {
		s, e := int(a.ScheduledWindow.Start), int(a.ScheduledWindow.End)
		schedStart, schedEnd = &s, &e
	}
	_, err := c.q.ExecContext(ctx, `
		INSERT INTO attendance (id, employee_id, date, sched_start_minutes,
			sched_end_minutes, clock_in, clock_out, worked_hours, status)
		VALUES (?, ?, ?, ?, ?, ?, NULL, '0', ?)`,
		a.ID, a.EmployeeID, a.Date.String(), schedStart, schedEnd,
		a.ClockIn.UTC().Format(time.RFC3339), a.Status,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: attendance already exists for %s on %s",
				engine.ErrConflict, a.EmployeeID, a.Date)
		}
		return fmt.Errorf("failed to insert attendance: %w", err)
	}
	return nil
}

func (c *conn) GetAttendance(ctx context.Context, emp engine.EmployeeID, date engine.Date) (*engine.Attendance, error) {
	row := c.q.QueryRowContext(ctx, `
		SELECT id, employee_id, date, sched_start_minutes, sched_end_minutes,
		       clock_in, clock_out, worked_hours, status
		FROM attendance WHERE employee_id = ? AND date = ?`,
		emp, date.String())
	a, err := scanAttendance(row)
	if err == sql.ErrNoRows {
		return nil, &engine.NotFoundError{Kind: "attendance", ID: string(emp) + "/" + date.String()}
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (c *conn) CloseAttendance(ctx context.Context, id engine.AttendanceID, a engine.Attendance) error {
	if a.ClockOut == nil {
		return engine.Validationf("close requires a clock-out timestamp")
	}
	// The "clock_out IS NULL" guard makes the close one-shot: the losing
	// writer of a race affects zero rows and reports a conflict.
	res, err := c.q.ExecContext(ctx, `
		UPDATE attendance SET clock_out = ?, worked_hours = ?, status = ?
		WHERE id = ? AND clock_out IS NULL`,
		a.ClockOut.UTC().Format(time.RFC3339), a.WorkedHours.String(), a.Status, id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := c.q.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM attendance WHERE id = ?", id).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return &engine.NotFoundError{Kind: "attendance", ID: string(id)}
		}
		return fmt.Errorf("%w: attendance %s is closed", engine.ErrConflict, id)
	}
	return nil
}

func (c *conn) AttendanceFor(ctx context.Context, emp engine.EmployeeID, from, to engine.Date) ([]engine.Attendance, error) {
	rows, err := c.q.QueryContext(ctx, `
		SELECT id, employee_id, date, sched_start_minutes, sched_end_minutes,
		       clock_in, clock_out, worked_hours, status
		FROM attendance
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date`,
		emp, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []engine.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *a)
	}
	return records, rows.Err()
}

func scanAttendance(s scanner) (*engine.Attendance, error) {
	var a engine.Attendance
	var schedStart, schedEnd sql.NullInt64
	var dateStr, clockIn, worked string
	var clockOut sql.NullString
	err := s.Scan(&a.ID, &a.EmployeeID, &dateStr, &schedStart, &schedEnd,
		&clockIn, &clockOut, &worked, &a.Status)
	if err != nil {
		return nil, err
	}
	a.Date, _ = engine.ParseDate(dateStr)
	if schedStart.Valid && schedEnd.Valid {
		w := engine.Window{Start: engine.TimeOfDay(schedStart.Int64), End: engine.TimeOfDay(schedEnd.Int64)}
		a.ScheduledWindow = &w
	}
	a.ClockIn, _ = time.Parse(time.RFC3339, clockIn)
	if clockOut.Valid {
		t, _ := time.Parse(time.RFC3339, clockOut.String)
		a.ClockOut = &t
	}
	a.WorkedHours = parseHours(worked)
	return &a, nil
}

// -------- overtime --------

func (c *conn) CreateOvertime(ctx context.Context, o engine.Overtime) error {
	_, err := c.q.ExecContext(ctx, `
		INSERT INTO overtime (id, employee_id, date, actual_hours,
			approved_hours, type, compensation, status, created_at,
			resolved_by, resolved_at)
		VALUES (?, ?, ?, ?, NULL, ?, ?, ?, ?, '', NULL)`,
		o.ID, o.EmployeeID, o.Date.String(), o.ActualHours.String(),
		o.Type, o.Compensation, o.Status, o.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil && isUniqueConstraintError(err) {
		return fmt.Errorf("%w: overtime already recorded for %s on %s (%s)",
			engine.ErrConflict, o.EmployeeID, o.Date, o.Type)
	}
	return err
}

func (c *conn) GetOvertime(ctx context.Context, id engine.OvertimeID) (*engine.Overtime, error) {
	row := c.q.QueryRowContext(ctx, `
		SELECT id, employee_id, date, actual_hours, approved_hours, type,
		       compensation, status, created_at, resolved_by, resolved_at
		FROM overtime WHERE id = ?`, id)
	o, err := scanOvertime(row)
	if err == sql.ErrNoRows {
		return nil, &engine.NotFoundError{Kind: "overtime", ID: string(id)}
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (c *conn) ListOvertime(ctx context.Context, emp engine.EmployeeID, from, to engine.Date) ([]engine.Overtime, error) {
	rows, err := c.q.QueryContext(ctx, `
		SELECT id, employee_id, date, actual_hours, approved_hours, type,
		       compensation, status, created_at, resolved_by, resolved_at
		FROM overtime
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date`,
		emp, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []engine.Overtime
	for rows.Next() {
		o, err := scanOvertime(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *o)
	}
	return entries, rows.Err()
}

func (c *conn) ResolveOvertime(ctx context.Context, o engine.Overtime) error {
	var approved *string
	if o.ApprovedHours != nil {
		s := o.ApprovedHours.String()
		approved = &s
	}
	var resolvedAt *string
	if o.ResolvedAt != nil {
		s := o.ResolvedAt.UTC().Format(time.RFC3339)
		resolvedAt = &s
	}
	// One-shot: the status guard means a settled row affects zero rows.
	res, err := c.q.ExecContext(ctx, `
		UPDATE overtime SET status = ?, approved_hours = ?, resolved_by = ?, resolved_at = ?
		WHERE id = ? AND status = ?`,
		o.Status, approved, o.ResolvedBy, resolvedAt, o.ID, engine.StatusPending,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return c.transitionFailure(ctx, "overtime", engine.KindOvertime, string(o.ID))
	}
	return nil
}

func scanOvertime(s scanner) (*engine.Overtime, error) {
	var o engine.Overtime
	var dateStr, actual, createdAt string
	var approved, resolvedAt sql.NullString
	err := s.Scan(&o.ID, &o.EmployeeID, &dateStr, &actual, &approved, &o.Type,
		&o.Compensation, &o.Status, &createdAt, &o.ResolvedBy, &resolvedAt)
	if err != nil {
		return nil, err
	}
	o.Date, _ = engine.ParseDate(dateStr)
	o.ActualHours = parseHours(actual)
	if approved.Valid {
		h := parseHours(approved.String)
		o.ApprovedHours = &h
	}
	o.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if resolvedAt.Valid {
		t, _ := time.Parse(time.RFC3339, resolvedAt.String)
		o.ResolvedAt = &t
	}
	return &o, nil
}

// -------- leave --------

func (c *conn) CreateLeave(ctx context.Context, l engine.Leave) error {
	_, err := c.q.ExecContext(ctx, `
		INSERT INTO leaves (id, employee_id, date, type, duration, reason,
			status, created_at, resolved_by, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, '', NULL)`,
		l.ID, l.EmployeeID, l.Date.String(), l.Type, l.Duration, l.Reason,
		l.Status, l.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (c *conn) GetLeave(ctx context.Context, id engine.LeaveID) (*engine.Leave, error) {
	row := c.q.QueryRowContext(ctx, `
		SELECT id, employee_id, date, type, duration, reason, status,
		       created_at, resolved_by, resolved_at
		FROM leaves WHERE id = ?`, id)
	l, err := scanLeave(row)
	if err == sql.ErrNoRows {
		return nil, &engine.NotFoundError{Kind: "leave", ID: string(id)}
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (c *conn) ListLeave(ctx context.Context, emp engine.EmployeeID, from, to engine.Date) ([]engine.Leave, error) {
	rows, err := c.q.QueryContext(ctx, `
		SELECT id, employee_id, date, type, duration, reason, status,
		       created_at, resolved_by, resolved_at
		FROM leaves
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date`,
		emp, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []engine.Leave
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *l)
	}
	return entries, rows.Err()
}

func (c *conn) HasApprovedLeave(ctx context.Context, emp engine.EmployeeID, date engine.Date) (bool, error) {
	var count int
	err := c.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM leaves
		WHERE employee_id = ? AND date = ? AND status = ?`,
		emp, date.String(), engine.StatusApproved,
	).Scan(&count)
	return count > 0, err
}

func (c *conn) ResolveLeave(ctx context.Context, l engine.Leave) error {
	var resolvedAt *string
	if l.ResolvedAt != nil {
		s := l.ResolvedAt.UTC().Format(time.RFC3339)
		resolvedAt = &s
	}
	res, err := c.q.ExecContext(ctx, `
		UPDATE leaves SET status = ?, resolved_by = ?, resolved_at = ?
		WHERE id = ? AND status = ?`,
		l.Status, l.ResolvedBy, resolvedAt, l.ID, engine.StatusPending,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return c.transitionFailure(ctx, "leaves", engine.KindLeave, string(l.ID))
	}
	return nil
}

func scanLeave(s scanner) (*engine.Leave, error) {
	var l engine.Leave
	var dateStr, createdAt string
	var resolvedAt sql.NullString
	err := s.Scan(&l.ID, &l.EmployeeID, &dateStr, &l.Type, &l.Duration,
		&l.Reason, &l.Status, &createdAt, &l.ResolvedBy, &resolvedAt)
	if err != nil {
		return nil, err
	}
	l.Date, _ = engine.ParseDate(dateStr)
	l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if resolvedAt.Valid {
		t, _ := time.Parse(time.RFC3339, resolvedAt.String)
		l.ResolvedAt = &t
	}
	return &l, nil
}

// transitionFailure classifies a zero-row resolve: the entry is either
// missing or already settled.
func (c *conn) transitionFailure(ctx context.Context, table string, kind engine.ApprovalKind, id string) error {
	var status engine.ApprovalStatus
	err := c.q.QueryRowContext(ctx,
		"SELECT status FROM "+table+" WHERE id = ?", id).Scan(&status)
	if err == sql.ErrNoRows {
		return &engine.NotFoundError{Kind: string(kind), ID: id}
	}
	if err != nil {
		return err
	}
	return &engine.TransitionError{Kind: kind, ID: id, Current: status}
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"schedules", "attendance", "overtime", "leaves",
		"holidays", "shifts", "employees", "roles"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func encodeWorkDays(days []time.Weekday) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ",")
}

func decodeWorkDays(s string) []time.Weekday {
	if s == "" {
		return nil
	}
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		days = append(days, time.Weekday(n))
	}
	return days
}

func encodeSkills(skills []string) string {
	if len(skills) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(skills)
	return string(b)
}

func decodeSkills(s string) []string {
	if s == "" || s == "[]" {
		return nil
	}
	var skills []string
	json.Unmarshal([]byte(s), &skills)
	return skills
}

func parseHours(s string) engine.Hours {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return engine.ZeroHours()
	}
	return engine.Hours{Value: d}
}

func parseDays(s string) engine.Days {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return engine.ZeroDays()
	}
	return engine.Days{Value: d}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
