package roster

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/warp/shift-engine/engine"
)

// =============================================================================
// MANUAL SCHEDULE ENTRY
// =============================================================================

// Service handles manual schedule entries and schedule queries. Manual rows
// go through the same leave / weekly-cap / overlap checks as generated ones;
// the overlap check itself lives in the store insert, so manual entry and the
// generator cannot race past each other.
type Service struct {
	store engine.Store
	now   func() time.Time
}

func NewService(store engine.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// CreateManual inserts a custom schedule row (no shift template reference)
// for an employee on a date.
func (s *Service) CreateManual(ctx context.Context, empID engine.EmployeeID, date engine.Date, window engine.Window) (*engine.Schedule, error) {
	if window.Start == window.End {
		return nil, engine.Validationf("window %s has zero length", window)
	}

	emp, err := s.store.GetEmployee(ctx, empID)
	if err != nil {
		return nil, err
	}
	if !emp.IsActive {
		return nil, fmt.Errorf("%w: employee %s is inactive", engine.ErrConstraintViolation, empID)
	}

	blocked, err := s.store.HasApprovedLeave(ctx, empID, date)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, fmt.Errorf("%w: employee %s has approved leave on %s",
			engine.ErrConstraintViolation, empID, date)
	}

	role, err := s.store.GetRole(ctx, emp.RoleID)
	if err != nil {
		return nil, err
	}
	if role.WeeklyHoursLimit.IsPositive() {
		week, err := s.store.SchedulesFor(ctx, empID, date.WeekStart(), date.WeekEnd())
		if err != nil {
			return nil, err
		}
		scheduled := engine.ZeroHours()
		for _, row := range week {
			scheduled = scheduled.Add(row.Window.Duration())
		}
		if scheduled.Add(window.Duration()).GreaterThan(role.WeeklyHoursLimit) {
			return nil, &engine.WeeklyLimitError{
				EmployeeID: empID,
				Week:       date.WeekStart(),
				Scheduled:  scheduled,
				Adding:     window.Duration(),
				Limit:      role.WeeklyHoursLimit,
			}
		}
	}

	row := engine.Schedule{
		ID:         engine.ScheduleID(uuid.NewString()),
		EmployeeID: empID,
		Date:       date,
		Window:     window,
		IsCustom:   true,
		CreatedAt:  s.now(),
	}
	if err := s.store.CreateSchedule(ctx, row); err != nil {
		return nil, err
	}
	return &row, nil
}

// Delete removes a schedule row. Schedules are never mutated in place; the
// correction path is delete plus re-create.
func (s *Service) Delete(ctx context.Context, id engine.ScheduleID) error {
	return s.store.DeleteSchedule(ctx, id)
}

// List returns an employee's schedules over [from, to] in date order.
func (s *Service) List(ctx context.Context, empID engine.EmployeeID, from, to engine.Date) ([]engine.Schedule, error) {
	if from.After(to) {
		return nil, engine.Validationf("start date %s is after end date %s", from, to)
	}
	return s.store.SchedulesFor(ctx, empID, from, to)
}
