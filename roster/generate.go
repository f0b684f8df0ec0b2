package roster

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/warp/shift-engine/engine"
)

// =============================================================================
// GENERATION SUMMARY
// =============================================================================

type SkipReason string

const (
	// SkipHoliday: the date is a holiday applicable to the role; the whole
	// date is skipped without shift-level evaluation.
	SkipHoliday SkipReason = "HOLIDAY"

	// SkipUnstaffed: no eligible candidate for the slot, or an insert-time
	// conflict lost the race for the chosen employee.
	SkipUnstaffed SkipReason = "UNSTAFFED"
)

// Skip records one slot the generator could not fill. ShiftID is nil for
// whole-date skips (holidays).
type Skip struct {
	Date    engine.Date
	ShiftID *engine.ShiftID
	Reason  SkipReason
}

// Summary is the complete outcome of a generation run. It always covers
// every date/shift pair in range; a run never aborts partway.
type Summary struct {
	Created []engine.Schedule
	Skipped []Skip
}

func (s *Summary) CreatedCount() int { return len(s.Created) }
func (s *Summary) SkippedCount() int { return len(s.Skipped) }

// =============================================================================
// SCHEDULE GENERATOR
// =============================================================================

// Generator places schedule rows for a role over a date range using greedy
// first-fit assignment: for each slot, the first candidate the resolver
// returns wins.
type Generator struct {
	store    engine.Store
	resolver *Resolver
	now      func() time.Time
}

func NewGenerator(store engine.Store, resolver *Resolver) *Generator {
	return &Generator{store: store, resolver: resolver, now: time.Now}
}

// Generate iterates each date in [from, to] inclusive and fills the role's
// matching shift templates. Structural errors (unknown role, inverted range)
// fail synchronously before any row is written; per-slot failures become
// UNSTAFFED skips.
func (g *Generator) Generate(ctx context.Context, roleID engine.RoleID, from, to engine.Date) (*Summary, error) {
	if from.After(to) {
		return nil, engine.Validationf("start date %s is after end date %s", from, to)
	}
	role, err := g.store.GetRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	shifts, err := g.store.ListShifts(ctx, roleID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for date := from; date.BeforeOrEqual(to); date = date.AddDays(1) {
		if err := g.generateDate(ctx, *role, shifts, date, summary); err != nil {
			return nil, err
		}
	}

	log.Printf("[Generator] role=%s range=%s..%s created=%d skipped=%d",
		roleID, from, to, summary.CreatedCount(), summary.SkippedCount())
	return summary, nil
}

func (g *Generator) generateDate(ctx context.Context, role engine.Role, shifts []engine.Shift, date engine.Date, summary *Summary) error {
	holiday, err := g.holidayApplies(ctx, role, date)
	if err != nil {
		return err
	}
	if holiday {
		summary.Skipped = append(summary.Skipped, Skip{Date: date, Reason: SkipHoliday})
		return nil
	}

	for _, shift := range shiftsForDay(shifts, date.Weekday()) {
		if err := g.fillSlot(ctx, role, shift, date, summary); err != nil {
			return err
		}
	}
	return nil
}

// fillSlot assigns the first eligible candidate to the shift slot, or records
// an UNSTAFFED skip. An insert-time overlap conflict means another writer won
// the slot's employee; that degrades to UNSTAFFED rather than failing the run.
func (g *Generator) fillSlot(ctx context.Context, role engine.Role, shift engine.Shift, date engine.Date, summary *Summary) error {
	candidates, err := g.resolver.Resolve(ctx, role, date, shift.Window, shift.Skills)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		summary.Skipped = append(summary.Skipped, Skip{Date: date, ShiftID: ref(shift.ID), Reason: SkipUnstaffed})
		return nil
	}

	s := engine.Schedule{
		ID:         engine.ScheduleID(uuid.NewString()),
		EmployeeID: candidates[0].ID,
		ShiftID:    ref(shift.ID),
		Date:       date,
		Window:     shift.Window,
		CreatedAt:  g.now(),
	}
	if err := g.store.CreateSchedule(ctx, s); err != nil {
		if errors.Is(err, engine.ErrConflict) {
			log.Printf("[Generator] insert conflict for %s on %s, slot %s left unstaffed",
				s.EmployeeID, date, shift.ID)
			summary.Skipped = append(summary.Skipped, Skip{Date: date, ShiftID: ref(shift.ID), Reason: SkipUnstaffed})
			return nil
		}
		return err
	}
	summary.Created = append(summary.Created, s)
	return nil
}

func (g *Generator) holidayApplies(ctx context.Context, role engine.Role, date engine.Date) (bool, error) {
	holidays, err := g.store.HolidaysOn(ctx, date)
	if err != nil {
		return false, err
	}
	for _, h := range holidays {
		if h.AppliesTo(role) {
			return true, nil
		}
	}
	return false, nil
}

// shiftsForDay filters templates to the weekday and orders them by descending
// priority, ascending ID for ties.
func shiftsForDay(shifts []engine.Shift, wd time.Weekday) []engine.Shift {
	var out []engine.Shift
	for _, s := range shifts {
		if s.DayOfWeek == wd {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func ref[T any](v T) *T { return &v }
