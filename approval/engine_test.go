package approval_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-engine/approval"
	"github.com/warp/shift-engine/engine"
	"github.com/warp/shift-engine/leave"
	"github.com/warp/shift-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestEngine(t *testing.T) (*approval.Engine, *sqlite.Store) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	role := engine.Role{
		ID:                   "eng",
		Name:                 "Engineering",
		WorkDays:             []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		DailyWorkHours:       engine.NewHoursFromInt(8),
		MonthlyOvertimeLimit: engine.NewHoursFromInt(10),
	}
	require.NoError(t, store.SaveRole(ctx, role))

	emp := engine.Employee{
		ID:                       "emp-alice",
		RoleID:                   "eng",
		Name:                     "Alice",
		IsActive:                 true,
		YearlyPaidLeaveAllowance: engine.NewDays(20),
	}
	require.NoError(t, store.SaveEmployee(ctx, emp))

	return approval.NewEngine(store), store
}

func pendingLeave(t *testing.T, store *sqlite.Store, id string, typ engine.LeaveType, dur engine.LeaveDuration) {
	t.Helper()
	entry := engine.Leave{
		ID:         engine.LeaveID(id),
		EmployeeID: "emp-alice",
		Date:       engine.NewDate(2025, time.June, 10),
		Type:       typ,
		Duration:   dur,
		Status:     engine.StatusPending,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, store.CreateLeave(context.Background(), entry))
}

func pendingOvertime(t *testing.T, store *sqlite.Store, id string, date engine.Date, hours float64, comp engine.CompensationMode) {
	t.Helper()
	entry := engine.Overtime{
		ID:           engine.OvertimeID(id),
		EmployeeID:   "emp-alice",
		Date:         date,
		ActualHours:  engine.NewHours(hours),
		Type:         engine.OvertimeNormal,
		Compensation: comp,
		Status:       engine.StatusPending,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, store.CreateOvertime(context.Background(), entry))
}

// =============================================================================
// ONE-SHOT TRANSITION TESTS
// =============================================================================

func TestApprove_Leave_RejectThenApprove_Conflict(t *testing.T) {
	// GIVEN: A pending paid leave that gets rejected
	// WHEN: A second manager tries to approve it afterwards
	// THEN: Conflict; the rejection stands and the balance never moved

	eng, store := newTestEngine(t)
	ctx := context.Background()
	pendingLeave(t, store, "lv-1", engine.LeavePaid, engine.FullDay)

	out, err := eng.Approve(ctx, engine.KindLeave, "lv-1", engine.DecisionReject, "mgr-bob", nil)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusRejected, out.Leave.Status)
	assert.Equal(t, "mgr-bob", out.Leave.ResolvedBy)
	require.NotNil(t, out.Leave.ResolvedAt)

	_, err = eng.Approve(ctx, engine.KindLeave, "lv-1", engine.DecisionApprove, "mgr-carol", nil)
	assert.True(t, engine.IsConflict(err), "expected conflict, got %v", err)

	var transition *engine.TransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, engine.StatusRejected, transition.Current)

	remaining, err := leave.NewLedger(store).PaidRemaining(ctx, "emp-alice", 2025)
	require.NoError(t, err)
	assert.Equal(t, 20.0, remaining.Float64())
}

func TestApprove_Leave_Approved_DeductsBalance(t *testing.T) {
	// GIVEN: A pending full-day paid leave with ample allowance
	// WHEN: Approving it
	// THEN: APPROVED, and the replayed balance drops by one day

	eng, store := newTestEngine(t)
	ctx := context.Background()
	pendingLeave(t, store, "lv-1", engine.LeavePaid, engine.FullDay)

	out, err := eng.Approve(ctx, engine.KindLeave, "lv-1", engine.DecisionApprove, "mgr-bob", nil)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusApproved, out.Leave.Status)

	remaining, err := leave.NewLedger(store).PaidRemaining(ctx, "emp-alice", 2025)
	require.NoError(t, err)
	assert.Equal(t, 19.0, remaining.Float64())
}

func TestApprove_Leave_InsufficientBalance_StaysPending(t *testing.T) {
	// GIVEN: A COMP_OFF leave request with zero accrued comp-off
	// WHEN: Approving it
	// THEN: InsufficientBalanceError and the entry remains PENDING

	eng, store := newTestEngine(t)
	ctx := context.Background()
	pendingLeave(t, store, "lv-1", engine.LeaveCompOff, engine.FullDay)

	_, err := eng.Approve(ctx, engine.KindLeave, "lv-1", engine.DecisionApprove, "mgr-bob", nil)

	var short *engine.InsufficientBalanceError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, engine.LeaveCompOff, short.LeaveType)
	assert.Equal(t, 0.0, short.Available.Float64())
	assert.Equal(t, 1.0, short.Requested.Float64())

	entry, err := store.GetLeave(ctx, "lv-1")
	require.NoError(t, err)
	assert.Equal(t, engine.StatusPending, entry.Status, "failed approval must not settle the entry")
}

func TestApprove_Leave_RejectNeedsNoBalance(t *testing.T) {
	// GIVEN: An over-balance COMP_OFF request
	// WHEN: Rejecting it
	// THEN: The rejection goes through without any balance check

	eng, store := newTestEngine(t)
	pendingLeave(t, store, "lv-1", engine.LeaveCompOff, engine.FullDay)

	out, err := eng.Approve(context.Background(), engine.KindLeave, "lv-1", engine.DecisionReject, "mgr-bob", nil)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusRejected, out.Leave.Status)
}

// =============================================================================
// OVERTIME APPROVAL TESTS
// =============================================================================

func TestApprove_Overtime_ManagerOverride(t *testing.T) {
	// GIVEN: A 3h overtime request
	// WHEN: Approving only 2h of it
	// THEN: ApprovedHours is 2 and drives the credited figure

	eng, store := newTestEngine(t)
	ctx := context.Background()
	pendingOvertime(t, store, "ot-1", engine.NewDate(2025, time.June, 2), 3, engine.CompensationCompOff)

	two := engine.NewHours(2)
	out, err := eng.Approve(ctx, engine.KindOvertime, "ot-1", engine.DecisionApprove, "mgr-bob", &two)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusApproved, out.Overtime.Status)
	require.NotNil(t, out.Overtime.ApprovedHours)
	assert.Equal(t, 2.0, out.Overtime.ApprovedHours.Float64())
	assert.Equal(t, 2.0, out.Overtime.CreditedHours().Float64())
	assert.Equal(t, 3.0, out.Overtime.ActualHours.Float64(), "actual hours stay as worked")
}

func TestApprove_Overtime_OverrideAboveActual_Rejected(t *testing.T) {
	// GIVEN: A 3h overtime request
	// WHEN: Trying to approve 5h
	// THEN: Validation error; the entry stays PENDING

	eng, store := newTestEngine(t)
	ctx := context.Background()
	pendingOvertime(t, store, "ot-1", engine.NewDate(2025, time.June, 2), 3, engine.CompensationExtraPay)

	five := engine.NewHours(5)
	_, err := eng.Approve(ctx, engine.KindOvertime, "ot-1", engine.DecisionApprove, "mgr-bob", &five)
	assert.ErrorIs(t, err, engine.ErrValidation)

	entry, err := store.GetOvertime(ctx, "ot-1")
	require.NoError(t, err)
	assert.Equal(t, engine.StatusPending, entry.Status)
}

func TestApprove_Overtime_MonthlyCap_Enforced(t *testing.T) {
	// GIVEN: A 10h monthly cap with 8h already approved in June
	// WHEN: Approving 3h more in June, then 2h
	// THEN: The 3h approval violates the cap, the 2h one fits exactly

	eng, store := newTestEngine(t)
	ctx := context.Background()

	existing := engine.Overtime{
		ID:           "ot-approved",
		EmployeeID:   "emp-alice",
		Date:         engine.NewDate(2025, time.June, 3),
		ActualHours:  engine.NewHours(8),
		Type:         engine.OvertimeNormal,
		Compensation: engine.CompensationExtraPay,
		Status:       engine.StatusApproved,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, store.CreateOvertime(ctx, existing))

	pendingOvertime(t, store, "ot-over", engine.NewDate(2025, time.June, 20), 3, engine.CompensationExtraPay)
	_, err := eng.Approve(ctx, engine.KindOvertime, "ot-over", engine.DecisionApprove, "mgr-bob", nil)
	assert.ErrorIs(t, err, engine.ErrConstraintViolation)

	entry, err := store.GetOvertime(ctx, "ot-over")
	require.NoError(t, err)
	assert.Equal(t, engine.StatusPending, entry.Status)

	pendingOvertime(t, store, "ot-fits", engine.NewDate(2025, time.June, 21), 2, engine.CompensationExtraPay)
	out, err := eng.Approve(ctx, engine.KindOvertime, "ot-fits", engine.DecisionApprove, "mgr-bob", nil)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusApproved, out.Overtime.Status)
}

func TestApprove_Overtime_CapIgnoresOtherMonths(t *testing.T) {
	// GIVEN: 8h approved in May
	// WHEN: Approving 8h in June under a 10h cap
	// THEN: The May hours don't count against June

	eng, store := newTestEngine(t)
	ctx := context.Background()

	may := engine.Overtime{
		ID:           "ot-may",
		EmployeeID:   "emp-alice",
		Date:         engine.NewDate(2025, time.May, 15),
		ActualHours:  engine.NewHours(8),
		Type:         engine.OvertimeNormal,
		Compensation: engine.CompensationExtraPay,
		Status:       engine.StatusApproved,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, store.CreateOvertime(ctx, may))

	pendingOvertime(t, store, "ot-june", engine.NewDate(2025, time.June, 2), 8, engine.CompensationExtraPay)
	out, err := eng.Approve(ctx, engine.KindOvertime, "ot-june", engine.DecisionApprove, "mgr-bob", nil)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusApproved, out.Overtime.Status)
}

// =============================================================================
// COMP-OFF CREDIT FLOW TESTS
// =============================================================================

func TestApprove_CompOffFlow_CreditThenConsume(t *testing.T) {
	// GIVEN: An approved 8h COMP_OFF overtime (one day equivalent)
	// WHEN: Approving one comp-off day, then a second
	// THEN: The first consumes the credit, the second fails on balance

	eng, store := newTestEngine(t)
	ctx := context.Background()

	pendingOvertime(t, store, "ot-1", engine.NewDate(2025, time.June, 2), 8, engine.CompensationCompOff)
	_, err := eng.Approve(ctx, engine.KindOvertime, "ot-1", engine.DecisionApprove, "mgr-bob", nil)
	require.NoError(t, err)

	balance, err := leave.NewLedger(store).CompOffBalance(ctx, "emp-alice")
	require.NoError(t, err)
	assert.Equal(t, 1.0, balance.Float64())

	pendingLeave(t, store, "lv-1", engine.LeaveCompOff, engine.FullDay)
	_, err = eng.Approve(ctx, engine.KindLeave, "lv-1", engine.DecisionApprove, "mgr-bob", nil)
	require.NoError(t, err)

	second := engine.Leave{
		ID:         "lv-2",
		EmployeeID: "emp-alice",
		Date:       engine.NewDate(2025, time.June, 11),
		Type:       engine.LeaveCompOff,
		Duration:   engine.FullDay,
		Status:     engine.StatusPending,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, store.CreateLeave(ctx, second))

	_, err = eng.Approve(ctx, engine.KindLeave, "lv-2", engine.DecisionApprove, "mgr-bob", nil)
	var short *engine.InsufficientBalanceError
	assert.ErrorAs(t, err, &short)
}

// =============================================================================
// INPUT VALIDATION TESTS
// =============================================================================

func TestApprove_InvalidInputs_Rejected(t *testing.T) {
	// GIVEN: Bad decision, missing actor, override on leave, unknown kind
	// WHEN: Calling Approve with each
	// THEN: Validation errors before any transition

	eng, store := newTestEngine(t)
	ctx := context.Background()
	pendingLeave(t, store, "lv-1", engine.LeavePaid, engine.FullDay)

	_, err := eng.Approve(ctx, engine.KindLeave, "lv-1", engine.Decision("MAYBE"), "mgr-bob", nil)
	assert.ErrorIs(t, err, engine.ErrValidation)

	_, err = eng.Approve(ctx, engine.KindLeave, "lv-1", engine.DecisionApprove, "", nil)
	assert.ErrorIs(t, err, engine.ErrValidation)

	hrs := engine.NewHours(1)
	_, err = eng.Approve(ctx, engine.KindLeave, "lv-1", engine.DecisionApprove, "mgr-bob", &hrs)
	assert.ErrorIs(t, err, engine.ErrValidation)

	_, err = eng.Approve(ctx, engine.ApprovalKind("EXPENSE"), "x-1", engine.DecisionApprove, "mgr-bob", nil)
	assert.ErrorIs(t, err, engine.ErrValidation)

	entry, err := store.GetLeave(ctx, "lv-1")
	require.NoError(t, err)
	assert.Equal(t, engine.StatusPending, entry.Status)
}

func TestApprove_UnknownEntry_NotFound(t *testing.T) {
	// GIVEN: IDs that don't exist
	// WHEN: Approving them
	// THEN: Not found for both kinds

	eng, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.Approve(ctx, engine.KindLeave, "lv-ghost", engine.DecisionApprove, "mgr-bob", nil)
	assert.True(t, engine.IsNotFound(err), "leave: expected not-found, got %v", err)

	_, err = eng.Approve(ctx, engine.KindOvertime, "ot-ghost", engine.DecisionApprove, "mgr-bob", nil)
	assert.True(t, engine.IsNotFound(err), "overtime: expected not-found, got %v", err)
}

func TestApprove_Overtime_DoubleApproval_Conflict(t *testing.T) {
	// GIVEN: An approved overtime entry
	// WHEN: Approving it again
	// THEN: Conflict via the one-shot transition guard

	eng, store := newTestEngine(t)
	ctx := context.Background()
	pendingOvertime(t, store, "ot-1", engine.NewDate(2025, time.June, 2), 2, engine.CompensationExtraPay)

	_, err := eng.Approve(ctx, engine.KindOvertime, "ot-1", engine.DecisionApprove, "mgr-bob", nil)
	require.NoError(t, err)

	_, err = eng.Approve(ctx, engine.KindOvertime, "ot-1", engine.DecisionApprove, "mgr-carol", nil)
	assert.True(t, errors.Is(err, engine.ErrConflict), "expected conflict, got %v", err)
}
