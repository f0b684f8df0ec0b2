// Package store provides an in-memory Store implementation (testing/dev).
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/shift-engine/engine"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	roles     map[engine.RoleID]engine.Role
	shifts    map[engine.ShiftID]engine.Shift
	employees map[engine.EmployeeID]engine.Employee
	holidays  map[engine.HolidayID]engine.Holiday

	schedules  map[engine.ScheduleID]engine.Schedule
	attendance map[engine.AttendanceID]engine.Attendance
	// attendance uniqueness index: (employee, date) -> record ID
	attendanceByDay map[dayKey]engine.AttendanceID

	overtime map[engine.OvertimeID]engine.Overtime
	leaves   map[engine.LeaveID]engine.Leave
}

type dayKey struct {
	Emp  engine.EmployeeID
	Date string
}

func NewMemory() *Memory {
	return &Memory{
		roles:           make(map[engine.RoleID]engine.Role),
		shifts:          make(map[engine.ShiftID]engine.Shift),
		employees:       make(map[engine.EmployeeID]engine.Employee),
		holidays:        make(map[engine.HolidayID]engine.Holiday),
		schedules:       make(map[engine.ScheduleID]engine.Schedule),
		attendance:      make(map[engine.AttendanceID]engine.Attendance),
		attendanceByDay: make(map[dayKey]engine.AttendanceID),
		overtime:        make(map[engine.OvertimeID]engine.Overtime),
		leaves:          make(map[engine.LeaveID]engine.Leave),
	}
}

// =============================================================================
// CATALOG
// =============================================================================

func (m *Memory) SaveRole(_ context.Context, role engine.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[role.ID] = role
	return nil
}

func (m *Memory) GetRole(_ context.Context, id engine.RoleID) (*engine.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	role, ok := m.roles[id]
	if !ok {
		return nil, &engine.NotFoundError{Kind: "role", ID: string(id)}
	}
	return &role, nil
}

func (m *Memory) ListRoles(_ context.Context) ([]engine.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SaveShift(_ context.Context, shift engine.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts[shift.ID] = shift
	return nil
}

func (m *Memory) ListShifts(_ context.Context, roleID engine.RoleID) ([]engine.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.Shift
	for _, s := range m.shifts {
		if s.RoleID == roleID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SaveEmployee(_ context.Context, emp engine.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[emp.ID] = emp
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id engine.EmployeeID) (*engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	emp, ok := m.employees[id]
	if !ok {
		return nil, &engine.NotFoundError{Kind: "employee", ID: string(id)}
	}
	return &emp, nil
}

func (m *Memory) ListEmployeesByRole(_ context.Context, roleID engine.RoleID) ([]engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.Employee
	for _, e := range m.employees {
		if e.RoleID == roleID {
			out = append(out, e)
		}
	}
	// Ascending ID: the resolver's default ranking depends on this order.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SaveHoliday(_ context.Context, h engine.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[h.ID] = h
	return nil
}

func (m *Memory) HolidaysOn(_ context.Context, date engine.Date) ([]engine.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.Holiday
	for _, h := range m.holidays {
		if h.Date.Equal(date) {
			out = append(out, h)
		}
	}
	return out, nil
}

// =============================================================================
// SCHEDULE
// =============================================================================

func (m *Memory) CreateSchedule(_ context.Context, s engine.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createScheduleLocked(s)
}

func (m *Memory) createScheduleLocked(s engine.Schedule) error {
	for _, existing := range m.schedules {
		if existing.EmployeeID == s.EmployeeID && existing.Date.Equal(s.Date) &&
			existing.Window.Overlaps(s.Window) {
			return &engine.OverlapError{EmployeeID: s.EmployeeID, Date: s.Date, Window: s.Window}
		}
	}
	m.schedules[s.ID] = s
	return nil
}

func (m *Memory) GetSchedule(_ context.Context, id engine.ScheduleID) (*engine.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.schedules[id]
	if !ok {
		return nil, &engine.NotFoundError{Kind: "schedule", ID: string(id)}
	}
	return &s, nil
}

func (m *Memory) SchedulesFor(_ context.Context, emp engine.EmployeeID, from, to engine.Date) ([]engine.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.Schedule
	for _, s := range m.schedules {
		if s.EmployeeID == emp && from.BeforeOrEqual(s.Date) && s.Date.BeforeOrEqual(to) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Window.Start < out[j].Window.Start
	})
	return out, nil
}

func (m *Memory) SchedulesOn(ctx context.Context, emp engine.EmployeeID, date engine.Date) ([]engine.Schedule, error) {
	return m.SchedulesFor(ctx, emp, date, date)
}

func (m *Memory) DeleteSchedule(_ context.Context, id engine.ScheduleID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedules[id]; !ok {
		return &engine.NotFoundError{Kind: "schedule", ID: string(id)}
	}
	delete(m.schedules, id)
	return nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (m *Memory) CreateAttendance(_ context.Context, a engine.Attendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := dayKey{Emp: a.EmployeeID, Date: a.Date.String()}
	if _, exists := m.attendanceByDay[k]; exists {
		return fmt.Errorf("%w: attendance already exists for %s on %s",
			engine.ErrConflict, a.EmployeeID, a.Date)
	}
	m.attendance[a.ID] = a
	m.attendanceByDay[k] = a.ID
	return nil
}

func (m *Memory) GetAttendance(_ context.Context, emp engine.EmployeeID, date engine.Date) (*engine.Attendance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.attendanceByDay[dayKey{Emp: emp, Date: date.String()}]
	if !ok {
		return nil, &engine.NotFoundError{Kind: "attendance", ID: string(emp) + "/" + date.String()}
	}
	a := m.attendance[id]
	return &a, nil
}

func (m *Memory) CloseAttendance(_ context.Context, id engine.AttendanceID, a engine.Attendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.attendance[id]
	if !ok {
		return &engine.NotFoundError{Kind: "attendance", ID: string(id)}
	}
	if existing.Closed() {
		return fmt.Errorf("%w: attendance %s is closed", engine.ErrConflict, id)
	}
	m.attendance[id] = a
	return nil
}

func (m *Memory) AttendanceFor(_ context.Context, emp engine.EmployeeID, from, to engine.Date) ([]engine.Attendance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.Attendance
	for _, a := range m.attendance {
		if a.EmployeeID == emp && from.BeforeOrEqual(a.Date) && a.Date.BeforeOrEqual(to) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// =============================================================================
// OVERTIME
// =============================================================================

func (m *Memory) CreateOvertime(_ context.Context, o engine.Overtime) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// One entry per (employee, date, type), matching the sqlite unique index.
	for _, existing := range m.overtime {
		if existing.EmployeeID == o.EmployeeID && existing.Date.Equal(o.Date) && existing.Type == o.Type {
			return fmt.Errorf("%w: overtime already recorded for %s on %s (%s)",
				engine.ErrConflict, o.EmployeeID, o.Date, o.Type)
		}
	}
	m.overtime[o.ID] = o
	return nil
}

func (m *Memory) GetOvertime(_ context.Context, id engine.OvertimeID) (*engine.Overtime, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.overtime[id]
	if !ok {
		return nil, &engine.NotFoundError{Kind: "overtime", ID: string(id)}
	}
	return &o, nil
}

func (m *Memory) ListOvertime(_ context.Context, emp engine.EmployeeID, from, to engine.Date) ([]engine.Overtime, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.Overtime
	for _, o := range m.overtime {
		if o.EmployeeID == emp && from.BeforeOrEqual(o.Date) && o.Date.BeforeOrEqual(to) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) ResolveOvertime(_ context.Context, o engine.Overtime) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.overtime[o.ID]
	if !ok {
		return &engine.NotFoundError{Kind: "overtime", ID: string(o.ID)}
	}
	if existing.Status != engine.StatusPending {
		return &engine.TransitionError{Kind: engine.KindOvertime, ID: string(o.ID), Current: existing.Status}
	}
	m.overtime[o.ID] = o
	return nil
}

// =============================================================================
// LEAVE
// =============================================================================

func (m *Memory) CreateLeave(_ context.Context, l engine.Leave) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaves[l.ID] = l
	return nil
}

func (m *Memory) GetLeave(_ context.Context, id engine.LeaveID) (*engine.Leave, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.leaves[id]
	if !ok {
		return nil, &engine.NotFoundError{Kind: "leave", ID: string(id)}
	}
	return &l, nil
}

func (m *Memory) ListLeave(_ context.Context, emp engine.EmployeeID, from, to engine.Date) ([]engine.Leave, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.Leave
	for _, l := range m.leaves {
		if l.EmployeeID == emp && from.BeforeOrEqual(l.Date) && l.Date.BeforeOrEqual(to) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) HasApprovedLeave(_ context.Context, emp engine.EmployeeID, date engine.Date) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.leaves {
		if l.EmployeeID == emp && l.Date.Equal(date) && l.Status == engine.StatusApproved {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) ResolveLeave(_ context.Context, l engine.Leave) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.leaves[l.ID]
	if !ok {
		return &engine.NotFoundError{Kind: "leave", ID: string(l.ID)}
	}
	if existing.Status != engine.StatusPending {
		return &engine.TransitionError{Kind: engine.KindLeave, ID: string(l.ID), Current: existing.Status}
	}
	m.leaves[l.ID] = l
	return nil
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support. Transactions are simulated
// with a full snapshot and rollback on error; the outer mutex serializes
// concurrent transactions, which also gives the per-(employee, date)
// mutual-exclusion guarantee the engine requires.
type TxMemory struct {
	*Memory
	txMu sync.Mutex
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn against the store, restoring the snapshot if fn fails.
func (tm *TxMemory) WithTx(ctx context.Context, fn func(engine.Store) error) error {
	tm.txMu.Lock()
	defer tm.txMu.Unlock()

	snap := tm.snapshot()
	if err := fn(tm.Memory); err != nil {
		tm.restore(snap)
		return err
	}
	return nil
}

func (tm *TxMemory) snapshot() memorySnapshot {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return memorySnapshot{
		roles:           copyMap(tm.roles),
		shifts:          copyMap(tm.shifts),
		employees:       copyMap(tm.employees),
		holidays:        copyMap(tm.holidays),
		schedules:       copyMap(tm.schedules),
		attendance:      copyMap(tm.attendance),
		attendanceByDay: copyMap(tm.attendanceByDay),
		overtime:        copyMap(tm.overtime),
		leaves:          copyMap(tm.leaves),
	}
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.roles = s.roles
	tm.shifts = s.shifts
	tm.employees = s.employees
	tm.holidays = s.holidays
	tm.schedules = s.schedules
	tm.attendance = s.attendance
	tm.attendanceByDay = s.attendanceByDay
	tm.overtime = s.overtime
	tm.leaves = s.leaves
}

type memorySnapshot struct {
	roles           map[engine.RoleID]engine.Role
	shifts          map[engine.ShiftID]engine.Shift
	employees       map[engine.EmployeeID]engine.Employee
	holidays        map[engine.HolidayID]engine.Holiday
	schedules       map[engine.ScheduleID]engine.Schedule
	attendance      map[engine.AttendanceID]engine.Attendance
	attendanceByDay map[dayKey]engine.AttendanceID
	overtime        map[engine.OvertimeID]engine.Overtime
	leaves          map[engine.LeaveID]engine.Leave
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
