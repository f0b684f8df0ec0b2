/*
Package engine provides the core workforce scheduling kernel.

PURPOSE:
  This package contains the shared domain types and invariant machinery for
  the scheduling and attendance engine: roles, shift templates, employees,
  planned schedules, attendance records, overtime and leave entries, plus the
  one-shot approval state machine they share.

KEY CONCEPTS IN THIS FILE (types.go):
  - Hours: a fractional hour quantity backed by decimal.Decimal
  - Role/Shift/Employee/Holiday: catalog data consumed by the resolver
  - Schedule: the planned-work fact (delete-only after creation)
  - Attendance: the actual-work fact (immutable once closed)
  - Overtime/Leave: approval-gated entries feeding the balance ledger

DESIGN PRINCIPLES:
  1. Immutability: closed Attendance never changes; Schedule is never mutated
  2. Precision: decimal.Decimal for all hour math, no floating-point drift
  3. Type Safety: distinct ID types so a ShiftID can't stand in for a RoleID
  4. One-shot transitions: PENDING moves to a terminal state exactly once

SEE ALSO:
  - time.go: Date, TimeOfDay and Window primitives
  - errors.go: the engine-wide error taxonomy
  - store.go: persistence interfaces
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// HOURS - Fractional hour quantity
// =============================================================================

type Hours struct {
	Value decimal.Decimal
}

func NewHours(v float64) Hours          { return Hours{Value: decimal.NewFromFloat(v)} }
func NewHoursFromInt(v int) Hours       { return Hours{Value: decimal.NewFromInt(int64(v))} }
func ZeroHours() Hours                  { return Hours{Value: decimal.Zero} }
func HoursFromDuration(d time.Duration) Hours {
	return Hours{Value: decimal.NewFromFloat(d.Hours())}
}

func (h Hours) Add(o Hours) Hours         { return Hours{Value: h.Value.Add(o.Value)} }
func (h Hours) Sub(o Hours) Hours         { return Hours{Value: h.Value.Sub(o.Value)} }
func (h Hours) Div(o Hours) decimal.Decimal { return h.Value.Div(o.Value) }
func (h Hours) IsZero() bool              { return h.Value.IsZero() }
func (h Hours) IsPositive() bool          { return h.Value.IsPositive() }
func (h Hours) IsNegative() bool          { return h.Value.IsNegative() }
func (h Hours) GreaterThan(o Hours) bool  { return h.Value.GreaterThan(o.Value) }
func (h Hours) LessThan(o Hours) bool     { return h.Value.LessThan(o.Value) }
func (h Hours) Equal(o Hours) bool        { return h.Value.Equal(o.Value) }
func (h Hours) Float64() float64          { f, _ := h.Value.Float64(); return f }
func (h Hours) String() string            { return h.Value.String() }

// Days is a fractional day quantity (leave durations, balances).
type Days struct {
	Value decimal.Decimal
}

func NewDays(v float64) Days        { return Days{Value: decimal.NewFromFloat(v)} }
func ZeroDays() Days                { return Days{Value: decimal.Zero} }
func (d Days) Add(o Days) Days      { return Days{Value: d.Value.Add(o.Value)} }
func (d Days) Sub(o Days) Days      { return Days{Value: d.Value.Sub(o.Value)} }
func (d Days) IsNegative() bool     { return d.Value.IsNegative() }
func (d Days) GreaterThan(o Days) bool { return d.Value.GreaterThan(o.Value) }
func (d Days) Float64() float64     { f, _ := d.Value.Float64(); return f }
func (d Days) String() string       { return d.Value.String() }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type (
	RoleID       string
	ShiftID      string
	EmployeeID   string
	ScheduleID   string
	AttendanceID string
	OvertimeID   string
	LeaveID      string
	HolidayID    string
)

// =============================================================================
// CATALOG ENTITIES - Inputs supplied by collaborators
// =============================================================================

type EmploymentType string

const (
	FullTime EmploymentType = "FULL_TIME"
	PartTime EmploymentType = "PART_TIME"
)

// Role is a job category owning work-day rules, hour caps and shift templates.
type Role struct {
	ID       RoleID
	Name     string
	Location string

	// WorkDays holds the weekdays this role works (time.Weekday values).
	WorkDays []time.Weekday

	BreakMinutes         int
	DailyWorkHours       Hours // standard day length; comp-off day-equivalent divisor
	DailyMaxHours        Hours
	WeeklyHoursLimit     Hours
	MonthlyOvertimeLimit Hours
	EmploymentType       EmploymentType

	CreatedAt time.Time
}

// WorksOn reports whether the role's work-day set includes the weekday.
func (r Role) WorksOn(wd time.Weekday) bool {
	for _, d := range r.WorkDays {
		if d == wd {
			return true
		}
	}
	return false
}

// DayEquivalentDivisor returns the hours that count as one comp-off day.
// Falls back to 8h when the role doesn't define a standard day length.
func (r Role) DayEquivalentDivisor() Hours {
	if r.DailyWorkHours.IsPositive() {
		return r.DailyWorkHours
	}
	return NewHoursFromInt(8)
}

// Shift is a recurring weekly time-window template tied to a Role.
// It is a template, not a dated instance.
type Shift struct {
	ID        ShiftID
	RoleID    RoleID
	Name      string
	DayOfWeek time.Weekday
	Window    Window
	Priority  int // higher fills first
	Skills    []string

	CreatedAt time.Time
}

type Employee struct {
	ID       EmployeeID
	RoleID   RoleID
	Name     string
	IsActive bool
	Skills   []string

	// YearlyPaidLeaveAllowance is the paid-leave entitlement in days per year.
	YearlyPaidLeaveAllowance Days

	CreatedAt time.Time
}

// HasSkills reports whether the employee's skill set supersets required.
func (e Employee) HasSkills(required []string) bool {
	for _, want := range required {
		found := false
		for _, have := range e.Skills {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type HolidayType string

const (
	HolidayNational HolidayType = "NATIONAL"
	HolidayRegional HolidayType = "REGIONAL"
	HolidayCompany  HolidayType = "COMPANY"
)

// Holiday suppresses scheduling for applicable roles on its date.
// An empty Location applies everywhere; otherwise it applies to roles
// in the matching location.
type Holiday struct {
	ID       HolidayID
	Name     string
	Date     Date
	Type     HolidayType
	Location string
	IsPaid   bool
}

// AppliesTo reports whether the holiday covers a role's location.
func (h Holiday) AppliesTo(role Role) bool {
	return h.Location == "" || h.Location == role.Location
}

// =============================================================================
// SCHEDULE - The planned-work fact
// =============================================================================

// Schedule is a concrete planned work assignment for one employee on one
// date. A nil ShiftID marks a custom/manual entry. Schedules are created and
// deleted, never mutated.
type Schedule struct {
	ID         ScheduleID
	EmployeeID EmployeeID
	ShiftID    *ShiftID
	Date       Date
	Window     Window
	IsCustom   bool

	CreatedAt time.Time
}

// =============================================================================
// ATTENDANCE - The actual-work fact
// =============================================================================

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
)

// Attendance is the per-(employee, date) actual-work record.
//
// STATE MACHINE: no-record -> open (ClockIn set) -> closed (ClockOut set,
// WorkedHours fixed). There is no transition out of closed; corrections are
// new, separately reviewed entries at a higher layer.
type Attendance struct {
	ID         AttendanceID
	EmployeeID EmployeeID
	Date       Date

	// Snapshot of the planned window at clock-in time, if one existed.
	ScheduledWindow *Window

	ClockIn     time.Time
	ClockOut    *time.Time
	WorkedHours Hours
	Status      AttendanceStatus
}

// Closed reports whether the record is sealed.
func (a Attendance) Closed() bool { return a.ClockOut != nil }

// =============================================================================
// OVERTIME
// =============================================================================

type OvertimeType string

const (
	OvertimeNormal  OvertimeType = "NORMAL"
	OvertimeNight   OvertimeType = "NIGHT"
	OvertimeHoliday OvertimeType = "HOLIDAY"
)

type CompensationMode string

const (
	CompensationExtraPay CompensationMode = "EXTRA_PAY"
	CompensationCompOff  CompensationMode = "COMP_OFF"
)

// Overtime is a request/derivation of hours worked beyond schedule.
// ApprovedHours is set on approval and may be below ActualHours.
type Overtime struct {
	ID            OvertimeID
	EmployeeID    EmployeeID
	Date          Date
	ActualHours   Hours
	ApprovedHours *Hours
	Type          OvertimeType
	Compensation  CompensationMode
	Status        ApprovalStatus

	CreatedAt  time.Time
	ResolvedBy string
	ResolvedAt *time.Time
}

// CreditedHours returns the hours that count toward comp-off accrual:
// the approved figure when the manager overrode it, otherwise actual.
func (o Overtime) CreditedHours() Hours {
	if o.ApprovedHours != nil {
		return *o.ApprovedHours
	}
	return o.ActualHours
}

// =============================================================================
// LEAVE
// =============================================================================

type LeaveType string

const (
	LeavePaid    LeaveType = "PAID"
	LeaveUnpaid  LeaveType = "UNPAID"
	LeaveCompOff LeaveType = "COMP_OFF"
)

type LeaveDuration string

const (
	FullDay LeaveDuration = "FULL_DAY"
	HalfDay LeaveDuration = "HALF_DAY"
)

// DaysValue converts a duration to its day fraction.
func (d LeaveDuration) DaysValue() Days {
	if d == HalfDay {
		return NewDays(0.5)
	}
	return NewDays(1)
}

// Leave is a request for time off on a single date.
type Leave struct {
	ID         LeaveID
	EmployeeID EmployeeID
	Date       Date
	Type       LeaveType
	Duration   LeaveDuration
	Reason     string
	Status     ApprovalStatus

	CreatedAt  time.Time
	ResolvedBy string
	ResolvedAt *time.Time
}

// =============================================================================
// APPROVAL - One-shot PENDING -> terminal transition shared by Overtime/Leave
// =============================================================================

type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "PENDING"
	StatusApproved ApprovalStatus = "APPROVED"
	StatusRejected ApprovalStatus = "REJECTED"
)

// Terminal reports whether the status can never change again.
func (s ApprovalStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type ApprovalKind string

const (
	KindOvertime ApprovalKind = "OVERTIME"
	KindLeave    ApprovalKind = "LEAVE"
)

type Decision string

const (
	DecisionApprove Decision = "APPROVED"
	DecisionReject  Decision = "REJECTED"
)
