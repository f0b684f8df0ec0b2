/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Every mutating
  operation has its own typed request struct; free-form payloads never reach
  the engine.

VALIDATION:
  Request structs carry go-playground/validator tags and are checked in the
  handlers before any domain call. The engine still re-validates its own
  invariants; the tags only catch malformed input early.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *DTO: Response types returned to clients

SEE ALSO:
  - handlers.go: Uses these types
  - server.go: Router setup
*/
package api

import (
	"time"

	"github.com/warp/shift-engine/engine"
	"github.com/warp/shift-engine/leave"
	"github.com/warp/shift-engine/roster"
)

// =============================================================================
// CATALOG REQUESTS
// =============================================================================

// CreateRoleRequest creates or updates a role.
type CreateRoleRequest struct {
	ID                   string  `json:"id" validate:"required"`
	Name                 string  `json:"name" validate:"required"`
	Location             string  `json:"location"`
	WorkDays             []int   `json:"work_days" validate:"required,min=1,dive,gte=0,lte=6"`
	BreakMinutes         int     `json:"break_minutes" validate:"gte=0"`
	DailyWorkHours       float64 `json:"daily_work_hours" validate:"gte=0"`
	DailyMaxHours        float64 `json:"daily_max_hours" validate:"gte=0"`
	WeeklyHoursLimit     float64 `json:"weekly_hours_limit" validate:"gte=0"`
	MonthlyOvertimeLimit float64 `json:"monthly_overtime_limit" validate:"gte=0"`
	EmploymentType       string  `json:"employment_type" validate:"omitempty,oneof=FULL_TIME PART_TIME"`
}

// CreateShiftRequest adds a weekly shift template to a role.
type CreateShiftRequest struct {
	ID        string   `json:"id" validate:"required"`
	Name      string   `json:"name" validate:"required"`
	DayOfWeek int      `json:"day_of_week" validate:"gte=0,lte=6"`
	Start     string   `json:"start" validate:"required"` // HH:MM
	End       string   `json:"end" validate:"required"`   // HH:MM
	Priority  int      `json:"priority"`
	Skills    []string `json:"skills"`
}

// CreateEmployeeRequest creates or updates an employee.
type CreateEmployeeRequest struct {
	ID                       string   `json:"id" validate:"required"`
	RoleID                   string   `json:"role_id" validate:"required"`
	Name                     string   `json:"name" validate:"required"`
	IsActive                 *bool    `json:"is_active"`
	Skills                   []string `json:"skills"`
	YearlyPaidLeaveAllowance float64  `json:"yearly_paid_leave_allowance" validate:"gte=0"`
}

// CreateHolidayRequest registers a holiday.
type CreateHolidayRequest struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Date     string `json:"date" validate:"required"` // YYYY-MM-DD
	Type     string `json:"type" validate:"required,oneof=NATIONAL REGIONAL COMPANY"`
	Location string `json:"location"`
	IsPaid   bool   `json:"is_paid"`
}

// =============================================================================
// OPERATION REQUESTS
// =============================================================================

// GenerateRequest runs schedule generation for a role over a date range.
type GenerateRequest struct {
	RoleID string `json:"role_id" validate:"required"`
	From   string `json:"from" validate:"required"` // YYYY-MM-DD
	To     string `json:"to" validate:"required"`   // YYYY-MM-DD
}

// ManualScheduleRequest creates a custom schedule row.
type ManualScheduleRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Date       string `json:"date" validate:"required"`
	Start      string `json:"start" validate:"required"`
	End        string `json:"end" validate:"required"`
}

// ClockRequest is shared by clock-in and clock-out.
type ClockRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Date       string `json:"date" validate:"required"`
	Timestamp  string `json:"timestamp" validate:"required"` // RFC3339
}

// OvertimeRequest files an employee-initiated overtime request.
type OvertimeRequest struct {
	EmployeeID   string  `json:"employee_id" validate:"required"`
	Date         string  `json:"date" validate:"required"`
	Hours        float64 `json:"hours" validate:"gt=0"`
	Start        string  `json:"start" validate:"required"`
	End          string  `json:"end" validate:"required"`
	Compensation string  `json:"compensation" validate:"required,oneof=EXTRA_PAY COMP_OFF"`
}

// LeaveRequest files a leave request.
type LeaveRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Date       string `json:"date" validate:"required"`
	Type       string `json:"type" validate:"required,oneof=PAID UNPAID COMP_OFF"`
	Duration   string `json:"duration" validate:"required,oneof=FULL_DAY HALF_DAY"`
	Reason     string `json:"reason"`
}

// DecisionRequest settles a PENDING overtime or leave entry.
type DecisionRequest struct {
	Decision      string   `json:"decision" validate:"required,oneof=APPROVED REJECTED"`
	ApprovedHours *float64 `json:"approved_hours" validate:"omitempty,gt=0"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// RoleDTO represents a role.
type RoleDTO struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Location             string  `json:"location,omitempty"`
	WorkDays             []int   `json:"work_days"`
	BreakMinutes         int     `json:"break_minutes"`
	DailyWorkHours       float64 `json:"daily_work_hours"`
	DailyMaxHours        float64 `json:"daily_max_hours"`
	WeeklyHoursLimit     float64 `json:"weekly_hours_limit"`
	MonthlyOvertimeLimit float64 `json:"monthly_overtime_limit"`
	EmploymentType       string  `json:"employment_type"`
}

// ShiftDTO represents a weekly shift template.
type ShiftDTO struct {
	ID        string   `json:"id"`
	RoleID    string   `json:"role_id"`
	Name      string   `json:"name"`
	DayOfWeek int      `json:"day_of_week"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Priority  int      `json:"priority"`
	Skills    []string `json:"skills,omitempty"`
}

// ScheduleDTO represents a planned work assignment.
type ScheduleDTO struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	ShiftID    *string `json:"shift_id,omitempty"`
	Date       string  `json:"date"`
	Start      string  `json:"start"`
	End        string  `json:"end"`
	Hours      float64 `json:"hours"`
	IsCustom   bool    `json:"is_custom"`
}

// SkipDTO is one unfilled slot from a generation run.
type SkipDTO struct {
	Date    string  `json:"date"`
	ShiftID *string `json:"shift_id,omitempty"`
	Reason  string  `json:"reason"`
}

// SummaryDTO is the outcome of a generation run.
type SummaryDTO struct {
	Created      int           `json:"created"`
	Skipped      []SkipDTO     `json:"skipped"`
	SchedulesNew []ScheduleDTO `json:"schedules"`
}

// AttendanceDTO represents an attendance record.
type AttendanceDTO struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	Date           string  `json:"date"`
	ScheduledStart *string `json:"scheduled_start,omitempty"`
	ScheduledEnd   *string `json:"scheduled_end,omitempty"`
	ClockIn        string  `json:"clock_in"`
	ClockOut       *string `json:"clock_out,omitempty"`
	WorkedHours    float64 `json:"worked_hours"`
	Status         string  `json:"status"`
}

// ClockOutResponse pairs the sealed record with any detected overtime.
type ClockOutResponse struct {
	Attendance AttendanceDTO `json:"attendance"`
	Overtime   *OvertimeDTO  `json:"overtime,omitempty"`
}

// OvertimeDTO represents an overtime entry.
type OvertimeDTO struct {
	ID            string   `json:"id"`
	EmployeeID    string   `json:"employee_id"`
	Date          string   `json:"date"`
	ActualHours   float64  `json:"actual_hours"`
	ApprovedHours *float64 `json:"approved_hours,omitempty"`
	Type          string   `json:"type"`
	Compensation  string   `json:"compensation"`
	Status        string   `json:"status"`
	ResolvedBy    string   `json:"resolved_by,omitempty"`
}

// LeaveDTO represents a leave entry.
type LeaveDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Type       string `json:"type"`
	Duration   string `json:"duration"`
	Reason     string `json:"reason,omitempty"`
	Status     string `json:"status"`
	ResolvedBy string `json:"resolved_by,omitempty"`
}

// BalancesDTO reports an employee's derived balances.
type BalancesDTO struct {
	EmployeeID    string  `json:"employee_id"`
	Year          int     `json:"year"`
	PaidRemaining float64 `json:"paid_remaining"`
	CompOff       float64 `json:"comp_off"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toRoleDTO(r engine.Role) RoleDTO {
	workDays := make([]int, len(r.WorkDays))
	for i, d := range r.WorkDays {
		workDays[i] = int(d)
	}
	return RoleDTO{
		ID:                   string(r.ID),
		Name:                 r.Name,
		Location:             r.Location,
		WorkDays:             workDays,
		BreakMinutes:         r.BreakMinutes,
		DailyWorkHours:       r.DailyWorkHours.Float64(),
		DailyMaxHours:        r.DailyMaxHours.Float64(),
		WeeklyHoursLimit:     r.WeeklyHoursLimit.Float64(),
		MonthlyOvertimeLimit: r.MonthlyOvertimeLimit.Float64(),
		EmploymentType:       string(r.EmploymentType),
	}
}

func toRoleDTOs(roles []engine.Role) []RoleDTO {
	dtos := make([]RoleDTO, len(roles))
	for i, r := range roles {
		dtos[i] = toRoleDTO(r)
	}
	return dtos
}

func toShiftDTO(s engine.Shift) ShiftDTO {
	return ShiftDTO{
		ID:        string(s.ID),
		RoleID:    string(s.RoleID),
		Name:      s.Name,
		DayOfWeek: int(s.DayOfWeek),
		Start:     s.Window.Start.String(),
		End:       s.Window.End.String(),
		Priority:  s.Priority,
		Skills:    s.Skills,
	}
}

func toShiftDTOs(shifts []engine.Shift) []ShiftDTO {
	dtos := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		dtos[i] = toShiftDTO(s)
	}
	return dtos
}

func toScheduleDTO(s engine.Schedule) ScheduleDTO {
	dto := ScheduleDTO{
		ID:         string(s.ID),
		EmployeeID: string(s.EmployeeID),
		Date:       s.Date.String(),
		Start:      s.Window.Start.String(),
		End:        s.Window.End.String(),
		Hours:      s.Window.Duration().Float64(),
		IsCustom:   s.IsCustom,
	}
	if s.ShiftID != nil {
		id := string(*s.ShiftID)
		dto.ShiftID = &id
	}
	return dto
}

func toScheduleDTOs(rows []engine.Schedule) []ScheduleDTO {
	dtos := make([]ScheduleDTO, len(rows))
	for i, s := range rows {
		dtos[i] = toScheduleDTO(s)
	}
	return dtos
}

func toSummaryDTO(s *roster.Summary) SummaryDTO {
	skips := make([]SkipDTO, len(s.Skipped))
	for i, skip := range s.Skipped {
		skips[i] = SkipDTO{Date: skip.Date.String(), Reason: string(skip.Reason)}
		if skip.ShiftID != nil {
			id := string(*skip.ShiftID)
			skips[i].ShiftID = &id
		}
	}
	return SummaryDTO{
		Created:      s.CreatedCount(),
		Skipped:      skips,
		SchedulesNew: toScheduleDTOs(s.Created),
	}
}

func toAttendanceDTO(a engine.Attendance) AttendanceDTO {
	dto := AttendanceDTO{
		ID:          string(a.ID),
		EmployeeID:  string(a.EmployeeID),
		Date:        a.Date.String(),
		ClockIn:     a.ClockIn.Format(time.RFC3339),
		WorkedHours: a.WorkedHours.Float64(),
		Status:      string(a.Status),
	}
	if a.ScheduledWindow != nil {
		start, end := a.ScheduledWindow.Start.String(), a.ScheduledWindow.End.String()
		dto.ScheduledStart, dto.ScheduledEnd = &start, &end
	}
	if a.ClockOut != nil {
		out := a.ClockOut.Format(time.RFC3339)
		dto.ClockOut = &out
	}
	return dto
}

func toAttendanceDTOs(records []engine.Attendance) []AttendanceDTO {
	dtos := make([]AttendanceDTO, len(records))
	for i, a := range records {
		dtos[i] = toAttendanceDTO(a)
	}
	return dtos
}

func toOvertimeDTO(o engine.Overtime) OvertimeDTO {
	dto := OvertimeDTO{
		ID:           string(o.ID),
		EmployeeID:   string(o.EmployeeID),
		Date:         o.Date.String(),
		ActualHours:  o.ActualHours.Float64(),
		Type:         string(o.Type),
		Compensation: string(o.Compensation),
		Status:       string(o.Status),
		ResolvedBy:   o.ResolvedBy,
	}
	if o.ApprovedHours != nil {
		h := o.ApprovedHours.Float64()
		dto.ApprovedHours = &h
	}
	return dto
}

func toOvertimeDTOs(entries []engine.Overtime) []OvertimeDTO {
	dtos := make([]OvertimeDTO, len(entries))
	for i, o := range entries {
		dtos[i] = toOvertimeDTO(o)
	}
	return dtos
}

func toLeaveDTO(l engine.Leave) LeaveDTO {
	return LeaveDTO{
		ID:         string(l.ID),
		EmployeeID: string(l.EmployeeID),
		Date:       l.Date.String(),
		Type:       string(l.Type),
		Duration:   string(l.Duration),
		Reason:     l.Reason,
		Status:     string(l.Status),
		ResolvedBy: l.ResolvedBy,
	}
}

func toLeaveDTOs(entries []engine.Leave) []LeaveDTO {
	dtos := make([]LeaveDTO, len(entries))
	for i, l := range entries {
		dtos[i] = toLeaveDTO(l)
	}
	return dtos
}

func toBalancesDTO(empID engine.EmployeeID, year int, b *leave.Balances) BalancesDTO {
	return BalancesDTO{
		EmployeeID:    string(empID),
		Year:          year,
		PaidRemaining: b.PaidRemaining.Float64(),
		CompOff:       b.CompOff.Float64(),
	}
}
