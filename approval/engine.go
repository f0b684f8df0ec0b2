/*
Package approval implements the one-shot PENDING -> APPROVED/REJECTED
workflow shared by overtime and leave entries.

PURPOSE:
  A single Approve entry point dispatches on entity kind, enforces the
  one-shot transition, and runs the decision's side effects inside one
  transaction:

  - OVERTIME -> APPROVED: optional approved-hours override (never above the
    requested figure); the role's monthly overtime cap is enforced here.
    COMP_OFF-compensated entries start counting toward the comp-off balance
    the moment the status flips, because balances are replayed from approved
    entries rather than stored.
  - LEAVE -> APPROVED: PAID validates against the remaining yearly allowance,
    COMP_OFF against the comp-off balance, UNPAID has no check. A shortfall
    fails the call and the entry stays PENDING.
  - REJECTED (either kind): status write only.

  The status transition and its validation read the same transactional view,
  so a concurrent approval of a sibling entry cannot let a balance go
  negative between check and write.

SEE ALSO:
  - leave/ledger.go: the replayed balances validated here
  - engine/store.go: ResolveOvertime/ResolveLeave one-shot contract
*/
package approval

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/warp/shift-engine/engine"
	"github.com/warp/shift-engine/leave"
)

// =============================================================================
// APPROVAL WORKFLOW ENGINE
// =============================================================================

type Engine struct {
	store engine.TxStore
	now   func() time.Time
}

func NewEngine(store engine.TxStore) *Engine {
	return &Engine{store: store, now: time.Now}
}

// Outcome carries the entity the transition settled; exactly one field is set.
type Outcome struct {
	Overtime *engine.Overtime
	Leave    *engine.Leave
}

// Approve applies a terminal decision to a PENDING entity. approvedHours is
// an optional manager override for OVERTIME approvals only; nil approves the
// requested hours as-is.
func (e *Engine) Approve(ctx context.Context, kind engine.ApprovalKind, id string, decision engine.Decision, actor string, approvedHours *engine.Hours) (*Outcome, error) {
	if decision != engine.DecisionApprove && decision != engine.DecisionReject {
		return nil, engine.Validationf("unknown decision %q", decision)
	}
	if actor == "" {
		return nil, engine.Validationf("approval requires an acting manager")
	}

	var out *Outcome
	err := e.store.WithTx(ctx, func(tx engine.Store) error {
		var txErr error
		switch kind {
		case engine.KindOvertime:
			out, txErr = e.resolveOvertime(ctx, tx, engine.OvertimeID(id), decision, actor, approvedHours)
		case engine.KindLeave:
			if approvedHours != nil {
				return engine.Validationf("approved-hours override applies to overtime only")
			}
			out, txErr = e.resolveLeave(ctx, tx, engine.LeaveID(id), decision, actor)
		default:
			return engine.Validationf("unknown approval kind %q", kind)
		}
		return txErr
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[Approval] %s %s -> %s by %s", kind, id, decision, actor)
	return out, nil
}

// =============================================================================
// OVERTIME
// =============================================================================

func (e *Engine) resolveOvertime(ctx context.Context, tx engine.Store, id engine.OvertimeID, decision engine.Decision, actor string, approvedHours *engine.Hours) (*Outcome, error) {
	entry, err := tx.GetOvertime(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Status != engine.StatusPending {
		return nil, &engine.TransitionError{Kind: engine.KindOvertime, ID: string(id), Current: entry.Status}
	}

	updated := *entry
	if decision == engine.DecisionApprove {
		if approvedHours != nil {
			if !approvedHours.IsPositive() {
				return nil, engine.Validationf("approved hours must be positive, got %s", approvedHours)
			}
			if approvedHours.GreaterThan(entry.ActualHours) {
				return nil, engine.Validationf("approved hours %s exceed requested %s",
					approvedHours, entry.ActualHours)
			}
			h := *approvedHours
			updated.ApprovedHours = &h
		}
		if err := e.checkMonthlyCap(ctx, tx, updated); err != nil {
			return nil, err
		}
		updated.Status = engine.StatusApproved
	} else {
		updated.Status = engine.StatusRejected
	}

	resolvedAt := e.now()
	updated.ResolvedBy = actor
	updated.ResolvedAt = &resolvedAt

	if err := tx.ResolveOvertime(ctx, updated); err != nil {
		return nil, err
	}
	return &Outcome{Overtime: &updated}, nil
}

// checkMonthlyCap rejects an approval that would push the employee's approved
// overtime for the entry's calendar month past the role's cap.
func (e *Engine) checkMonthlyCap(ctx context.Context, tx engine.Store, entry engine.Overtime) error {
	emp, err := tx.GetEmployee(ctx, entry.EmployeeID)
	if err != nil {
		return err
	}
	role, err := tx.GetRole(ctx, emp.RoleID)
	if err != nil {
		return err
	}
	if !role.MonthlyOvertimeLimit.IsPositive() {
		return nil
	}

	first := engine.NewDate(entry.Date.Year(), entry.Date.Time.Month(), 1)
	last := engine.DateOf(first.Time.AddDate(0, 1, -1))
	month, err := tx.ListOvertime(ctx, entry.EmployeeID, first, last)
	if err != nil {
		return err
	}

	approved := engine.ZeroHours()
	for _, o := range month {
		if o.Status == engine.StatusApproved {
			approved = approved.Add(o.CreditedHours())
		}
	}
	if approved.Add(entry.CreditedHours()).GreaterThan(role.MonthlyOvertimeLimit) {
		return fmt.Errorf("%w: approving %sh would exceed the %sh monthly overtime cap (already approved %sh in %s)",
			engine.ErrConstraintViolation, entry.CreditedHours(), role.MonthlyOvertimeLimit, approved,
			first.Time.Format("2006-01"))
	}
	return nil
}

// =============================================================================
// LEAVE
// =============================================================================

func (e *Engine) resolveLeave(ctx context.Context, tx engine.Store, id engine.LeaveID, decision engine.Decision, actor string) (*Outcome, error) {
	entry, err := tx.GetLeave(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Status != engine.StatusPending {
		return nil, &engine.TransitionError{Kind: engine.KindLeave, ID: string(id), Current: entry.Status}
	}

	updated := *entry
	if decision == engine.DecisionApprove {
		if err := e.checkBalance(ctx, tx, *entry); err != nil {
			return nil, err
		}
		updated.Status = engine.StatusApproved
	} else {
		updated.Status = engine.StatusRejected
	}

	resolvedAt := e.now()
	updated.ResolvedBy = actor
	updated.ResolvedAt = &resolvedAt

	if err := tx.ResolveLeave(ctx, updated); err != nil {
		return nil, err
	}
	return &Outcome{Leave: &updated}, nil
}

// checkBalance validates the leave's duration against the balance it draws
// on, using the transaction's view of approved entries.
func (e *Engine) checkBalance(ctx context.Context, tx engine.Store, entry engine.Leave) error {
	ledger := leave.NewLedger(tx)
	requested := entry.Duration.DaysValue()

	var available engine.Days
	var err error
	switch entry.Type {
	case engine.LeavePaid:
		available, err = ledger.PaidRemaining(ctx, entry.EmployeeID, entry.Date.Year())
	case engine.LeaveCompOff:
		available, err = ledger.CompOffBalance(ctx, entry.EmployeeID)
	case engine.LeaveUnpaid:
		return nil
	default:
		return engine.Validationf("unknown leave type %q", entry.Type)
	}
	if err != nil {
		return err
	}

	if requested.GreaterThan(available) {
		return &engine.InsufficientBalanceError{
			EmployeeID: entry.EmployeeID,
			LeaveType:  entry.Type,
			Available:  available,
			Requested:  requested,
		}
	}
	return nil
}
