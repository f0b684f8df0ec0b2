package attendance

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/warp/shift-engine/engine"
)

// DefaultNightBand is the 22:00-05:00 window used when no band is configured.
func DefaultNightBand() engine.Window {
	return engine.NewWindow(engine.NewTimeOfDay(22, 0), engine.NewTimeOfDay(5, 0))
}

// =============================================================================
// OVERTIME CLASSIFIER
// =============================================================================

// Classifier types overtime entries and persists them PENDING. The type rule,
// evaluated in order: HOLIDAY if the date is a holiday applicable to the
// employee's role, NIGHT if the excess interval overlaps the night band,
// NORMAL otherwise.
type Classifier struct {
	store     engine.Store
	nightBand engine.Window
	now       func() time.Time
}

func NewClassifier(store engine.Store, nightBand engine.Window) *Classifier {
	if nightBand.Start == nightBand.End {
		nightBand = DefaultNightBand()
	}
	return &Classifier{store: store, nightBand: nightBand, now: time.Now}
}

// withStore rebinds the classifier to a transaction-scoped store so a seed
// can commit or roll back together with the write that produced it.
func (c *Classifier) withStore(s engine.Store) *Classifier {
	bound := *c
	bound.store = s
	return &bound
}

// Detect records auto-detected overtime from a closed attendance record.
// Auto-detected entries default to EXTRA_PAY compensation.
func (c *Classifier) Detect(ctx context.Context, empID engine.EmployeeID, date engine.Date, hours engine.Hours, window engine.Window) (*engine.Overtime, error) {
	if !hours.IsPositive() {
		return nil, nil
	}
	return c.create(ctx, empID, date, hours, window, engine.CompensationExtraPay)
}

// Request records employee-initiated overtime. The requester chooses the
// compensation mode; the type is still derived from the date and interval,
// never supplied by the caller.
func (c *Classifier) Request(ctx context.Context, empID engine.EmployeeID, date engine.Date, hours engine.Hours, window engine.Window, comp engine.CompensationMode) (*engine.Overtime, error) {
	if !hours.IsPositive() {
		return nil, engine.Validationf("overtime hours must be positive, got %s", hours)
	}
	if comp != engine.CompensationExtraPay && comp != engine.CompensationCompOff {
		return nil, engine.Validationf("unknown compensation mode %q", comp)
	}
	if _, err := c.store.GetEmployee(ctx, empID); err != nil {
		return nil, err
	}
	return c.create(ctx, empID, date, hours, window, comp)
}

func (c *Classifier) create(ctx context.Context, empID engine.EmployeeID, date engine.Date, hours engine.Hours, window engine.Window, comp engine.CompensationMode) (*engine.Overtime, error) {
	kind, err := c.typeFor(ctx, empID, date, window)
	if err != nil {
		return nil, err
	}

	entry := engine.Overtime{
		ID:           engine.OvertimeID(uuid.NewString()),
		EmployeeID:   empID,
		Date:         date,
		ActualHours:  hours,
		Type:         kind,
		Compensation: comp,
		Status:       engine.StatusPending,
		CreatedAt:    c.now(),
	}
	if err := c.store.CreateOvertime(ctx, entry); err != nil {
		return nil, err
	}
	log.Printf("[Classifier] overtime employee=%s date=%s hours=%s type=%s comp=%s",
		empID, date, hours, kind, comp)
	return &entry, nil
}

func (c *Classifier) typeFor(ctx context.Context, empID engine.EmployeeID, date engine.Date, window engine.Window) (engine.OvertimeType, error) {
	holiday, err := c.holidayApplies(ctx, empID, date)
	if err != nil {
		return "", err
	}
	if holiday {
		return engine.OvertimeHoliday, nil
	}
	if window.OverlapsBand(c.nightBand) {
		return engine.OvertimeNight, nil
	}
	return engine.OvertimeNormal, nil
}

func (c *Classifier) holidayApplies(ctx context.Context, empID engine.EmployeeID, date engine.Date) (bool, error) {
	holidays, err := c.store.HolidaysOn(ctx, date)
	if err != nil {
		return false, err
	}
	if len(holidays) == 0 {
		return false, nil
	}
	emp, err := c.store.GetEmployee(ctx, empID)
	if err != nil {
		return false, err
	}
	role, err := c.store.GetRole(ctx, emp.RoleID)
	if err != nil {
		return false, err
	}
	for _, h := range holidays {
		if h.AppliesTo(*role) {
			return true, nil
		}
	}
	return false, nil
}

// ListOvertime returns an employee's overtime entries over [from, to].
func (c *Classifier) ListOvertime(ctx context.Context, empID engine.EmployeeID, from, to engine.Date) ([]engine.Overtime, error) {
	if from.After(to) {
		return nil, engine.Validationf("start date %s is after end date %s", from, to)
	}
	return c.store.ListOvertime(ctx, empID, from, to)
}
