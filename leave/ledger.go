/*
Package leave tracks time-off requests and the balances they draw on.

PURPOSE:
  The Ledger accepts leave requests, answers the "approved leave blocks this
  date" predicate, and computes balances.

BALANCES ARE DERIVED, NEVER STORED:
  paid_remaining  = yearly allowance - sum(APPROVED PAID leave days this year)
  comp_off        = sum(APPROVED COMP_OFF overtime credits, in day
                    equivalents) - sum(APPROVED COMP_OFF leave days)

  Both are recomputed by replaying approved entries on every read. There is no
  balance column to drift out of sync with the entries that justify it; the
  approval transaction only has to write the entry's status.

REQUEST POLICY:
  Requests are always accepted regardless of balance. Enforcement happens at
  approval time (approval/engine.go), which leaves room for manager override
  between request and decision.

SEE ALSO:
  - approval/engine.go: balance validation and comp-off crediting
  - roster/availability.go: the resolver consuming IsBlocked
*/
package leave

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/warp/shift-engine/engine"
)

// Replay bounds for entries that are not year-scoped (comp-off history).
var (
	ledgerEpoch   = engine.NewDate(1970, time.January, 1)
	ledgerHorizon = engine.NewDate(9999, time.December, 31)
)

// =============================================================================
// LEAVE LEDGER
// =============================================================================

type Ledger struct {
	store engine.Store
	now   func() time.Time
}

func NewLedger(store engine.Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// Request files a PENDING leave entry. Balance is deliberately not checked
// here; an over-balance request is a manager's call to approve or reject.
func (l *Ledger) Request(ctx context.Context, empID engine.EmployeeID, date engine.Date, typ engine.LeaveType, duration engine.LeaveDuration, reason string) (*engine.Leave, error) {
	switch typ {
	case engine.LeavePaid, engine.LeaveUnpaid, engine.LeaveCompOff:
	default:
		return nil, engine.Validationf("unknown leave type %q", typ)
	}
	switch duration {
	case engine.FullDay, engine.HalfDay:
	default:
		return nil, engine.Validationf("unknown leave duration %q", duration)
	}
	if _, err := l.store.GetEmployee(ctx, empID); err != nil {
		return nil, err
	}

	entry := engine.Leave{
		ID:         engine.LeaveID(uuid.NewString()),
		EmployeeID: empID,
		Date:       date,
		Type:       typ,
		Duration:   duration,
		Reason:     reason,
		Status:     engine.StatusPending,
		CreatedAt:  l.now(),
	}
	if err := l.store.CreateLeave(ctx, entry); err != nil {
		return nil, err
	}
	log.Printf("[Ledger] leave requested employee=%s date=%s type=%s duration=%s",
		empID, date, typ, duration)
	return &entry, nil
}

// IsBlocked reports whether an APPROVED leave covers the date. Consumed by
// the availability resolver and the attendance recorder.
func (l *Ledger) IsBlocked(ctx context.Context, empID engine.EmployeeID, date engine.Date) (bool, error) {
	return l.store.HasApprovedLeave(ctx, empID, date)
}

// List returns an employee's leave entries over [from, to] in date order.
func (l *Ledger) List(ctx context.Context, empID engine.EmployeeID, from, to engine.Date) ([]engine.Leave, error) {
	if from.After(to) {
		return nil, engine.Validationf("start date %s is after end date %s", from, to)
	}
	return l.store.ListLeave(ctx, empID, from, to)
}

// =============================================================================
// DERIVED BALANCES
// =============================================================================

type Balances struct {
	PaidRemaining engine.Days
	CompOff       engine.Days
}

// Balances computes both balances for an employee; paid leave is scoped to
// the given calendar year.
func (l *Ledger) Balances(ctx context.Context, empID engine.EmployeeID, year int) (*Balances, error) {
	paid, err := l.PaidRemaining(ctx, empID, year)
	if err != nil {
		return nil, err
	}
	comp, err := l.CompOffBalance(ctx, empID)
	if err != nil {
		return nil, err
	}
	return &Balances{PaidRemaining: paid, CompOff: comp}, nil
}

// PaidRemaining replays the year's APPROVED PAID leave against the
// employee's yearly allowance.
func (l *Ledger) PaidRemaining(ctx context.Context, empID engine.EmployeeID, year int) (engine.Days, error) {
	emp, err := l.store.GetEmployee(ctx, empID)
	if err != nil {
		return engine.ZeroDays(), err
	}
	used, err := l.approvedLeaveDays(ctx, empID, engine.LeavePaid,
		engine.NewDate(year, time.January, 1), engine.NewDate(year, time.December, 31))
	if err != nil {
		return engine.ZeroDays(), err
	}
	return emp.YearlyPaidLeaveAllowance.Sub(used), nil
}

// CompOffBalance replays the full comp-off history: day-equivalent credits
// from APPROVED COMP_OFF-compensated overtime, minus APPROVED COMP_OFF leave.
func (l *Ledger) CompOffBalance(ctx context.Context, empID engine.EmployeeID) (engine.Days, error) {
	accrued, err := l.compOffAccrued(ctx, empID)
	if err != nil {
		return engine.ZeroDays(), err
	}
	consumed, err := l.approvedLeaveDays(ctx, empID, engine.LeaveCompOff, ledgerEpoch, ledgerHorizon)
	if err != nil {
		return engine.ZeroDays(), err
	}
	return accrued.Sub(consumed), nil
}

func (l *Ledger) compOffAccrued(ctx context.Context, empID engine.EmployeeID) (engine.Days, error) {
	emp, err := l.store.GetEmployee(ctx, empID)
	if err != nil {
		return engine.ZeroDays(), err
	}
	role, err := l.store.GetRole(ctx, emp.RoleID)
	if err != nil {
		return engine.ZeroDays(), err
	}
	entries, err := l.store.ListOvertime(ctx, empID, ledgerEpoch, ledgerHorizon)
	if err != nil {
		return engine.ZeroDays(), err
	}

	divisor := role.DayEquivalentDivisor()
	total := engine.ZeroDays()
	for _, o := range entries {
		if o.Status != engine.StatusApproved || o.Compensation != engine.CompensationCompOff {
			continue
		}
		total = total.Add(engine.Days{Value: o.CreditedHours().Div(divisor)})
	}
	return total, nil
}

func (l *Ledger) approvedLeaveDays(ctx context.Context, empID engine.EmployeeID, typ engine.LeaveType, from, to engine.Date) (engine.Days, error) {
	entries, err := l.store.ListLeave(ctx, empID, from, to)
	if err != nil {
		return engine.ZeroDays(), err
	}
	total := engine.ZeroDays()
	for _, entry := range entries {
		if entry.Status == engine.StatusApproved && entry.Type == typ {
			total = total.Add(entry.Duration.DaysValue())
		}
	}
	return total, nil
}
