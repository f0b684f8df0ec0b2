/*
handlers.go - HTTP API handlers for the scheduling engine

PURPOSE:
  Exposes the scheduling and attendance engine via REST. Handles HTTP
  request/response, JSON serialization and validation, and delegates to the
  domain packages.

ENDPOINTS:
  Catalog:
    POST   /api/roles                    Create/update role
    GET    /api/roles                    List roles
    POST   /api/roles/{id}/shifts        Add shift template
    GET    /api/roles/{id}/shifts        List shift templates
    POST   /api/employees                Create/update employee
    POST   /api/holidays                 Register holiday

  Scheduling:
    POST   /api/schedules/generate       Run generation over a date range
    POST   /api/schedules                Manual schedule entry
    DELETE /api/schedules/{id}           Delete a schedule row
    GET    /api/employees/{id}/schedules Range query

  Attendance:
    POST   /api/attendance/clock-in
    POST   /api/attendance/clock-out
    GET    /api/employees/{id}/attendance

  Overtime / Leave / Approval:
    POST   /api/overtime                 Employee-initiated request
    POST   /api/leave                    Leave request
    GET    /api/employees/{id}/overtime
    GET    /api/employees/{id}/leave
    GET    /api/employees/{id}/balances
    POST   /api/approvals/{kind}/{id}    Settle a PENDING entry

ACTOR CONTEXT:
  Authentication is out of scope; callers are assumed pre-authorized. The
  X-Actor header names the acting manager and is required for approvals —
  the engine records it on the settled entry.

ERROR HANDLING:
  Domain errors map to HTTP status by kind:
  - 400: validation (malformed input)
  - 404: not found
  - 409: conflict (double clock-in/out, re-approval, overlap)
  - 422: constraint violation (caps, balances, clock-out before clock-in)
  - 500: storage failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/warp/shift-engine/approval"
	"github.com/warp/shift-engine/attendance"
	"github.com/warp/shift-engine/engine"
	"github.com/warp/shift-engine/leave"
	"github.com/warp/shift-engine/roster"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store engine.TxStore

	Schedules  *roster.Service
	Generator  *roster.Generator
	Recorder   *attendance.Recorder
	Classifier *attendance.Classifier
	Ledger     *leave.Ledger
	Approvals  *approval.Engine

	validate *validator.Validate
}

// NewHandler wires the domain services on top of the given store.
func NewHandler(store engine.TxStore) *Handler {
	resolver := roster.NewResolver(store, nil)
	classifier := attendance.NewClassifier(store, attendance.DefaultNightBand())
	return &Handler{
		Store:      store,
		Schedules:  roster.NewService(store),
		Generator:  roster.NewGenerator(store, resolver),
		Recorder:   attendance.NewRecorder(store, classifier),
		Classifier: classifier,
		Ledger:     leave.NewLedger(store),
		Approvals:  approval.NewEngine(store),
		validate:   validator.New(),
	}
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

// CreateRole creates or updates a role.
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if !h.decode(w, r, &req) {
		return
	}

	workDays := make([]time.Weekday, len(req.WorkDays))
	for i, d := range req.WorkDays {
		workDays[i] = time.Weekday(d)
	}
	employment := engine.EmploymentType(req.EmploymentType)
	if employment == "" {
		employment = engine.FullTime
	}

	role := engine.Role{
		ID:                   engine.RoleID(req.ID),
		Name:                 req.Name,
		Location:             req.Location,
		WorkDays:             workDays,
		BreakMinutes:         req.BreakMinutes,
		DailyWorkHours:       engine.NewHours(req.DailyWorkHours),
		DailyMaxHours:        engine.NewHours(req.DailyMaxHours),
		WeeklyHoursLimit:     engine.NewHours(req.WeeklyHoursLimit),
		MonthlyOvertimeLimit: engine.NewHours(req.MonthlyOvertimeLimit),
		EmploymentType:       employment,
	}
	if err := h.Store.SaveRole(r.Context(), role); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": req.ID})
}

// ListRoles returns all roles.
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Store.ListRoles(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoleDTOs(roles))
}

// CreateShift adds a shift template to a role.
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	roleID := engine.RoleID(chi.URLParam(r, "id"))

	var req CreateShiftRequest
	if !h.decode(w, r, &req) {
		return
	}
	window, ok := h.parseWindow(w, req.Start, req.End)
	if !ok {
		return
	}

	shift := engine.Shift{
		ID:        engine.ShiftID(req.ID),
		RoleID:    roleID,
		Name:      req.Name,
		DayOfWeek: time.Weekday(req.DayOfWeek),
		Window:    window,
		Priority:  req.Priority,
		Skills:    req.Skills,
	}
	if err := h.Store.SaveShift(r.Context(), shift); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": req.ID})
}

// ListShifts returns a role's shift templates.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	roleID := engine.RoleID(chi.URLParam(r, "id"))
	shifts, err := h.Store.ListShifts(r.Context(), roleID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTOs(shifts))
}

// CreateEmployee creates or updates an employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	emp := engine.Employee{
		ID:                       engine.EmployeeID(req.ID),
		RoleID:                   engine.RoleID(req.RoleID),
		Name:                     req.Name,
		IsActive:                 active,
		Skills:                   req.Skills,
		YearlyPaidLeaveAllowance: engine.NewDays(req.YearlyPaidLeaveAllowance),
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": req.ID})
}

// CreateHoliday registers a holiday.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, ok := h.parseDate(w, req.Date)
	if !ok {
		return
	}

	holiday := engine.Holiday{
		ID:       engine.HolidayID(req.ID),
		Name:     req.Name,
		Date:     date,
		Type:     engine.HolidayType(req.Type),
		Location: req.Location,
		IsPaid:   req.IsPaid,
	}
	if err := h.Store.SaveHoliday(r.Context(), holiday); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": req.ID})
}

// =============================================================================
// SCHEDULING HANDLERS
// =============================================================================

// GenerateSchedules runs generation for a role over a date range.
func (h *Handler) GenerateSchedules(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !h.decode(w, r, &req) {
		return
	}
	from, ok := h.parseDate(w, req.From)
	if !ok {
		return
	}
	to, ok := h.parseDate(w, req.To)
	if !ok {
		return
	}

	summary, err := h.Generator.Generate(r.Context(), engine.RoleID(req.RoleID), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

// CreateSchedule adds a manual schedule entry.
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req ManualScheduleRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, ok := h.parseDate(w, req.Date)
	if !ok {
		return
	}
	window, ok := h.parseWindow(w, req.Start, req.End)
	if !ok {
		return
	}

	row, err := h.Schedules.CreateManual(r.Context(), engine.EmployeeID(req.EmployeeID), date, window)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toScheduleDTO(*row))
}

// DeleteSchedule removes a schedule row.
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id := engine.ScheduleID(chi.URLParam(r, "id"))
	if err := h.Schedules.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSchedules returns an employee's schedules over ?from=&to=.
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	empID, from, to, ok := h.rangeQuery(w, r)
	if !ok {
		return
	}
	rows, err := h.Schedules.List(r.Context(), empID, from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleDTOs(rows))
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// ClockIn opens today's attendance record for an employee.
func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	empID, date, ts, ok := h.clockArgs(w, r)
	if !ok {
		return
	}
	record, err := h.Recorder.ClockIn(r.Context(), empID, date, ts)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAttendanceDTO(*record))
}

// ClockOut seals the record and reports any detected overtime.
func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	empID, date, ts, ok := h.clockArgs(w, r)
	if !ok {
		return
	}
	record, overtime, err := h.Recorder.ClockOut(r.Context(), empID, date, ts)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := ClockOutResponse{Attendance: toAttendanceDTO(*record)}
	if overtime != nil {
		dto := toOvertimeDTO(*overtime)
		resp.Overtime = &dto
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListAttendance returns an employee's attendance over ?from=&to=.
func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	empID, from, to, ok := h.rangeQuery(w, r)
	if !ok {
		return
	}
	records, err := h.Recorder.List(r.Context(), empID, from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceDTOs(records))
}

func (h *Handler) clockArgs(w http.ResponseWriter, r *http.Request) (engine.EmployeeID, engine.Date, time.Time, bool) {
	var req ClockRequest
	if !h.decode(w, r, &req) {
		return "", engine.Date{}, time.Time{}, false
	}
	date, ok := h.parseDate(w, req.Date)
	if !ok {
		return "", engine.Date{}, time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid timestamp (use RFC3339)", err)
		return "", engine.Date{}, time.Time{}, false
	}
	return engine.EmployeeID(req.EmployeeID), date, ts, true
}

// =============================================================================
// OVERTIME / LEAVE HANDLERS
// =============================================================================

// RequestOvertime files an employee-initiated overtime request.
func (h *Handler) RequestOvertime(w http.ResponseWriter, r *http.Request) {
	var req OvertimeRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, ok := h.parseDate(w, req.Date)
	if !ok {
		return
	}
	window, ok := h.parseWindow(w, req.Start, req.End)
	if !ok {
		return
	}

	entry, err := h.Classifier.Request(r.Context(), engine.EmployeeID(req.EmployeeID), date,
		engine.NewHours(req.Hours), window, engine.CompensationMode(req.Compensation))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOvertimeDTO(*entry))
}

// ListOvertime returns an employee's overtime entries over ?from=&to=.
func (h *Handler) ListOvertime(w http.ResponseWriter, r *http.Request) {
	empID, from, to, ok := h.rangeQuery(w, r)
	if !ok {
		return
	}
	entries, err := h.Classifier.ListOvertime(r.Context(), empID, from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOvertimeDTOs(entries))
}

// RequestLeave files a leave request.
func (h *Handler) RequestLeave(w http.ResponseWriter, r *http.Request) {
	var req LeaveRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, ok := h.parseDate(w, req.Date)
	if !ok {
		return
	}

	entry, err := h.Ledger.Request(r.Context(), engine.EmployeeID(req.EmployeeID), date,
		engine.LeaveType(req.Type), engine.LeaveDuration(req.Duration), req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveDTO(*entry))
}

// ListLeave returns an employee's leave entries over ?from=&to=.
func (h *Handler) ListLeave(w http.ResponseWriter, r *http.Request) {
	empID, from, to, ok := h.rangeQuery(w, r)
	if !ok {
		return
	}
	entries, err := h.Ledger.List(r.Context(), empID, from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTOs(entries))
}

// GetBalances returns derived balances; ?year= defaults to the current year.
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	empID := engine.EmployeeID(chi.URLParam(r, "id"))
	year := time.Now().Year()
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := time.Parse("2006", y)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year", err)
			return
		}
		year = parsed.Year()
	}

	balances, err := h.Ledger.Balances(r.Context(), empID, year)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalancesDTO(empID, year, balances))
}

// =============================================================================
// APPROVAL HANDLERS
// =============================================================================

// Approve settles a PENDING overtime or leave entry.
// The URL kind segment is "overtime" or "leave"; X-Actor names the manager.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	var kind engine.ApprovalKind
	switch chi.URLParam(r, "kind") {
	case "overtime":
		kind = engine.KindOvertime
	case "leave":
		kind = engine.KindLeave
	default:
		writeError(w, http.StatusBadRequest, "unknown approval kind", nil)
		return
	}

	actor := r.Header.Get("X-Actor")
	if actor == "" {
		writeError(w, http.StatusBadRequest, "X-Actor header is required", nil)
		return
	}

	var req DecisionRequest
	if !h.decode(w, r, &req) {
		return
	}
	var approvedHours *engine.Hours
	if req.ApprovedHours != nil {
		hrs := engine.NewHours(*req.ApprovedHours)
		approvedHours = &hrs
	}

	outcome, err := h.Approvals.Approve(r.Context(), kind, chi.URLParam(r, "id"),
		engine.Decision(req.Decision), actor, approvedHours)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if outcome.Overtime != nil {
		writeJSON(w, http.StatusOK, toOvertimeDTO(*outcome.Overtime))
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(*outcome.Leave))
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// decode parses and validates a JSON request body. Writes a 400 and returns
// false on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err)
		return false
	}
	return true
}

func (h *Handler) parseDate(w http.ResponseWriter, s string) (engine.Date, bool) {
	date, err := engine.ParseDate(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date (use YYYY-MM-DD)", err)
		return engine.Date{}, false
	}
	return date, true
}

func (h *Handler) parseWindow(w http.ResponseWriter, start, end string) (engine.Window, bool) {
	s, err := engine.ParseTimeOfDay(start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start time (use HH:MM)", err)
		return engine.Window{}, false
	}
	e, err := engine.ParseTimeOfDay(end)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end time (use HH:MM)", err)
		return engine.Window{}, false
	}
	return engine.NewWindow(s, e), true
}

// rangeQuery extracts the employee path param and the from/to query range.
func (h *Handler) rangeQuery(w http.ResponseWriter, r *http.Request) (engine.EmployeeID, engine.Date, engine.Date, bool) {
	empID := engine.EmployeeID(chi.URLParam(r, "id"))
	from, ok := h.parseDate(w, r.URL.Query().Get("from"))
	if !ok {
		return "", engine.Date{}, engine.Date{}, false
	}
	to, ok := h.parseDate(w, r.URL.Query().Get("to"))
	if !ok {
		return "", engine.Date{}, engine.Date{}, false
	}
	return empID, from, to, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps the engine's error taxonomy onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation failed", err)
	case errors.Is(err, engine.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found", err)
	case errors.Is(err, engine.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, engine.ErrConstraintViolation):
		writeError(w, http.StatusUnprocessableEntity, "constraint violation", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal error", err)
	}
}
