/*
store.go - Persistence interfaces for the scheduling engine

PURPOSE:
  Defines the boundary between domain logic and the database. Implementations
  exist for SQLite (store/sqlite) and in-memory (engine/store, for tests).

MUTATION CONTRACT:
  All shared mutable state (Schedule, Attendance, Overtime, Leave) is touched
  only through the operations below, never via field edits:
  - Schedule:   create, delete. No update.
  - Attendance: create open, close once. No update after close, no delete.
  - Overtime:   create PENDING, resolve once to a terminal status.
  - Leave:      create PENDING, resolve once to a terminal status.

CONFLICT DETECTION:
  CreateSchedule re-checks for a window overlap at insert time and returns an
  OverlapError; the generator degrades that to an UNSTAFFED skip instead of
  failing the run. CreateAttendance enforces at most one record per
  (employee, date) and returns ErrConflict on a duplicate; CreateOvertime
  does the same for the (employee, date, type) slot.

ATOMICITY:
  TxStore.WithTx brackets multi-step operations (approval transition plus its
  balance validation; attendance close plus its overtime seed) so they apply
  as one unit.

SEE ALSO:
  - engine/store/memory.go: in-memory implementation
  - store/sqlite/sqlite.go: production implementation
*/
package engine

import "context"

// =============================================================================
// CATALOG - Roles, shifts, employees, holidays (resolver inputs)
// =============================================================================

type CatalogStore interface {
	SaveRole(ctx context.Context, role Role) error
	GetRole(ctx context.Context, id RoleID) (*Role, error)
	ListRoles(ctx context.Context) ([]Role, error)

	SaveShift(ctx context.Context, shift Shift) error
	// ListShifts returns a role's shift templates in stable (ID) order.
	ListShifts(ctx context.Context, roleID RoleID) ([]Shift, error)

	SaveEmployee(ctx context.Context, emp Employee) error
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
	// ListEmployeesByRole returns employees in ascending ID order.
	ListEmployeesByRole(ctx context.Context, roleID RoleID) ([]Employee, error)

	SaveHoliday(ctx context.Context, h Holiday) error
	// HolidaysOn returns all holidays falling on the date.
	HolidaysOn(ctx context.Context, date Date) ([]Holiday, error)
}

// =============================================================================
// SCHEDULE - Create/delete only
// =============================================================================

type ScheduleStore interface {
	// CreateSchedule inserts a row. Returns an OverlapError if the employee
	// already has a schedule whose window overlaps on the same date.
	CreateSchedule(ctx context.Context, s Schedule) error

	GetSchedule(ctx context.Context, id ScheduleID) (*Schedule, error)

	// SchedulesFor returns an employee's schedules in [from, to], date order.
	SchedulesFor(ctx context.Context, emp EmployeeID, from, to Date) ([]Schedule, error)

	// SchedulesOn returns an employee's schedules for a single date.
	SchedulesOn(ctx context.Context, emp EmployeeID, date Date) ([]Schedule, error)

	DeleteSchedule(ctx context.Context, id ScheduleID) error
}

// =============================================================================
// ATTENDANCE - Open once, close once
// =============================================================================

type AttendanceStore interface {
	// CreateAttendance inserts an open record. Returns ErrConflict if any
	// record already exists for (employee, date).
	CreateAttendance(ctx context.Context, a Attendance) error

	GetAttendance(ctx context.Context, emp EmployeeID, date Date) (*Attendance, error)

	// CloseAttendance seals an open record. Returns ErrConflict if the
	// record is already closed, ErrNotFound if it doesn't exist.
	CloseAttendance(ctx context.Context, id AttendanceID, a Attendance) error

	AttendanceFor(ctx context.Context, emp EmployeeID, from, to Date) ([]Attendance, error)
}

// =============================================================================
// OVERTIME / LEAVE - Create PENDING, resolve once
// =============================================================================

type OvertimeStore interface {
	// CreateOvertime inserts a PENDING entry. Returns ErrConflict if an
	// entry already exists for the same (employee, date, type) slot.
	CreateOvertime(ctx context.Context, o Overtime) error
	GetOvertime(ctx context.Context, id OvertimeID) (*Overtime, error)
	ListOvertime(ctx context.Context, emp EmployeeID, from, to Date) ([]Overtime, error)

	// ResolveOvertime applies the one-shot terminal transition. Returns a
	// TransitionError if the entry is not PENDING.
	ResolveOvertime(ctx context.Context, o Overtime) error
}

type LeaveStore interface {
	CreateLeave(ctx context.Context, l Leave) error
	GetLeave(ctx context.Context, id LeaveID) (*Leave, error)
	ListLeave(ctx context.Context, emp EmployeeID, from, to Date) ([]Leave, error)

	// HasApprovedLeave reports whether an APPROVED leave covers the date.
	HasApprovedLeave(ctx context.Context, emp EmployeeID, date Date) (bool, error)

	// ResolveLeave applies the one-shot terminal transition. Returns a
	// TransitionError if the entry is not PENDING.
	ResolveLeave(ctx context.Context, l Leave) error
}

// =============================================================================
// COMPOSITE STORES
// =============================================================================

// Store aggregates every persistence concern the engine needs.
type Store interface {
	CatalogStore
	ScheduleStore
	AttendanceStore
	OvertimeStore
	LeaveStore
}

// TxStore wraps Store with transaction support.
// Use this when a status transition and its balance check must be one unit.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
