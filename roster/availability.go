/*
Package roster plans work: it decides who can take a shift and writes the
resulting schedule rows.

PURPOSE:
  Two collaborating pieces live here. The availability resolver answers "who
  is eligible for this role/date/window, in what order". The generator drives
  the resolver across a date range and a role's shift templates, recording a
  skip for every slot it cannot fill instead of aborting the run.

ELIGIBILITY FILTERS (applied in order):
  a. inactive employee
  b. APPROVED leave covering the date
  c. existing schedule with an overlapping window on the date
  d. assignment would exceed the role's weekly hour cap (ISO week)
  e. the role does not work the date's weekday
  f. missing a skill the shift requires

ORDERING:
  Surviving candidates are ordered by the configured CandidateRanker. The
  default ranks by ascending employee ID: deterministic first-eligible-wins,
  not a fairness or cost optimizer. Swap the ranker to change the policy
  without touching generation control flow.

SEE ALSO:
  - generate.go: the schedule generator consuming this resolver
  - leave/ledger.go: the approved-leave predicate behind filter (b)
*/
package roster

import (
	"context"
	"sort"

	"github.com/warp/shift-engine/engine"
)

// =============================================================================
// CANDIDATE RANKING STRATEGY
// =============================================================================

// CandidateRanker orders the employees that survived all eligibility filters.
// Implementations must be deterministic for identical input.
type CandidateRanker interface {
	Rank(candidates []engine.Employee) []engine.Employee
}

// AscendingID is the default ranking policy: lowest employee ID first.
type AscendingID struct{}

func (AscendingID) Rank(candidates []engine.Employee) []engine.Employee {
	out := make([]engine.Employee, len(candidates))
	copy(out, candidates)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// =============================================================================
// AVAILABILITY RESOLVER
// =============================================================================

// Resolver computes the ordered set of employees eligible for a shift slot.
// It is a pure query: no store writes.
type Resolver struct {
	store  engine.Store
	ranker CandidateRanker
}

func NewResolver(store engine.Store, ranker CandidateRanker) *Resolver {
	if ranker == nil {
		ranker = AscendingID{}
	}
	return &Resolver{store: store, ranker: ranker}
}

// Resolve returns the role's employees eligible for window on date, ordered
// by the configured ranker. An empty result is the NoEligibleCandidate
// outcome; it is not an error.
func (r *Resolver) Resolve(ctx context.Context, role engine.Role, date engine.Date, window engine.Window, requiredSkills []string) ([]engine.Employee, error) {
	// Filter (e) is a property of the role/date pair, not of any one
	// employee: a role that doesn't work this weekday has no candidates.
	if !role.WorksOn(date.Weekday()) {
		return nil, nil
	}

	employees, err := r.store.ListEmployeesByRole(ctx, role.ID)
	if err != nil {
		return nil, err
	}

	var eligible []engine.Employee
	for _, emp := range employees {
		ok, err := r.eligible(ctx, role, emp, date, window, requiredSkills)
		if err != nil {
			return nil, err
		}
		if ok {
			eligible = append(eligible, emp)
		}
	}
	return r.ranker.Rank(eligible), nil
}

func (r *Resolver) eligible(ctx context.Context, role engine.Role, emp engine.Employee, date engine.Date, window engine.Window, requiredSkills []string) (bool, error) {
	// (a) inactive
	if !emp.IsActive {
		return false, nil
	}
	// (f) skills
	if !emp.HasSkills(requiredSkills) {
		return false, nil
	}
	// (b) approved leave blocks the date
	blocked, err := r.store.HasApprovedLeave(ctx, emp.ID, date)
	if err != nil {
		return false, err
	}
	if blocked {
		return false, nil
	}
	// (c) overlapping schedule on the date
	sameDay, err := r.store.SchedulesOn(ctx, emp.ID, date)
	if err != nil {
		return false, err
	}
	for _, s := range sameDay {
		if s.Window.Overlaps(window) {
			return false, nil
		}
	}
	// (d) weekly hour cap over the ISO week
	if role.WeeklyHoursLimit.IsPositive() {
		scheduled, err := r.weekScheduledHours(ctx, emp.ID, date)
		if err != nil {
			return false, err
		}
		if scheduled.Add(window.Duration()).GreaterThan(role.WeeklyHoursLimit) {
			return false, nil
		}
	}
	return true, nil
}

// weekScheduledHours sums the employee's scheduled hours across the ISO week
// (Monday through Sunday) containing date.
func (r *Resolver) weekScheduledHours(ctx context.Context, emp engine.EmployeeID, date engine.Date) (engine.Hours, error) {
	week, err := r.store.SchedulesFor(ctx, emp, date.WeekStart(), date.WeekEnd())
	if err != nil {
		return engine.ZeroHours(), err
	}
	total := engine.ZeroHours()
	for _, s := range week {
		total = total.Add(s.Window.Duration())
	}
	return total, nil
}
