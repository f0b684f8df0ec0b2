/*
Package attendance records actual work: the clock-in/clock-out state machine
and the overtime classification that feeds off it.

PURPOSE:
  The Recorder enforces the per-(employee, date) attendance lifecycle:

    no-record -> open (clock_in set) -> closed (clock_out set, worked_hours fixed)

  There is no transition out of closed. Corrections are new, separately
  reviewed entries at a higher layer, never edits to a sealed record.

OVERTIME HANDOFF:
  Closing a record against a scheduled window computes the worked-vs-planned
  delta; a positive delta is handed to the Classifier, which seeds a PENDING
  overtime entry typed HOLIDAY, NIGHT or NORMAL. The close and the seed run
  in one transaction: if the seed fails (say the (employee, date, type) slot
  is already taken by an employee-initiated entry) the record stays open.

SEE ALSO:
  - overtime.go: the Classifier and employee-initiated overtime requests
  - engine/store.go: the (employee, date) uniqueness contract behind ClockIn
*/
package attendance

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/warp/shift-engine/engine"
)

// =============================================================================
// ATTENDANCE RECORDER
// =============================================================================

type Recorder struct {
	store      engine.TxStore
	classifier *Classifier
}

func NewRecorder(store engine.TxStore, classifier *Classifier) *Recorder {
	return &Recorder{store: store, classifier: classifier}
}

// ClockIn opens the attendance record for (employee, date).
//
// Fails with ErrConflict if any record already exists for the pair, and with
// ErrConstraintViolation if an approved leave covers the date. A schedule is
// not required; unplanned presence is still recorded, just without a
// scheduled-window snapshot.
func (r *Recorder) ClockIn(ctx context.Context, empID engine.EmployeeID, date engine.Date, ts time.Time) (*engine.Attendance, error) {
	if _, err := r.store.GetEmployee(ctx, empID); err != nil {
		return nil, err
	}

	blocked, err := r.store.HasApprovedLeave(ctx, empID, date)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, fmt.Errorf("%w: employee %s has approved leave on %s, clock-in refused",
			engine.ErrConstraintViolation, empID, date)
	}

	record := engine.Attendance{
		ID:         engine.AttendanceID(uuid.NewString()),
		EmployeeID: empID,
		Date:       date,
		ClockIn:    ts,
		Status:     engine.AttendancePresent,
	}

	// Snapshot the planned window at clock-in time so a later schedule
	// delete cannot change what this record was measured against.
	schedules, err := r.store.SchedulesOn(ctx, empID, date)
	if err != nil {
		return nil, err
	}
	if len(schedules) > 0 {
		w := schedules[0].Window
		record.ScheduledWindow = &w
	}

	if err := r.store.CreateAttendance(ctx, record); err != nil {
		return nil, err
	}
	log.Printf("[Recorder] clock-in employee=%s date=%s at=%s", empID, date, ts.Format(time.RFC3339))
	return &record, nil
}

// ClockOut seals the open record for (employee, date), fixes worked_hours,
// and hands any positive worked-vs-scheduled delta to the Classifier. The
// returned overtime entry is nil when no excess was detected. The close and
// the overtime seed commit together: any failure rolls both back.
//
// Fails with ErrNotFound if no record exists, ErrConflict if it is already
// closed or the overtime slot is taken, and ErrConstraintViolation if ts is
// at or before the clock-in.
func (r *Recorder) ClockOut(ctx context.Context, empID engine.EmployeeID, date engine.Date, ts time.Time) (*engine.Attendance, *engine.Overtime, error) {
	record, err := r.store.GetAttendance(ctx, empID, date)
	if err != nil {
		return nil, nil, err
	}
	if record.Closed() {
		return nil, nil, fmt.Errorf("%w: employee %s already clocked out on %s",
			engine.ErrConflict, empID, date)
	}
	if !ts.After(record.ClockIn) {
		return nil, nil, fmt.Errorf("%w: clock-out %s is not after clock-in %s",
			engine.ErrConstraintViolation, ts.Format(time.RFC3339), record.ClockIn.Format(time.RFC3339))
	}

	closed := *record
	out := ts
	closed.ClockOut = &out
	closed.WorkedHours = engine.HoursFromDuration(ts.Sub(record.ClockIn))

	var overtime *engine.Overtime
	err = r.store.WithTx(ctx, func(tx engine.Store) error {
		if err := tx.CloseAttendance(ctx, record.ID, closed); err != nil {
			return err
		}
		detected, err := r.detectOvertime(ctx, r.classifier.withStore(tx), closed, ts)
		if err != nil {
			return err
		}
		overtime = detected
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[Recorder] clock-out employee=%s date=%s worked=%sh", empID, date, closed.WorkedHours)
	return &closed, overtime, nil
}

// detectOvertime compares worked hours against the scheduled window snapshot
// and seeds a PENDING overtime entry for any positive excess. Records with no
// snapshot (unplanned presence) produce none; excess against no plan is an
// employee-initiated request, not an auto-detection.
func (r *Recorder) detectOvertime(ctx context.Context, c *Classifier, record engine.Attendance, clockOut time.Time) (*engine.Overtime, error) {
	if record.ScheduledWindow == nil {
		return nil, nil
	}
	excess := record.WorkedHours.Sub(record.ScheduledWindow.Duration())
	if !excess.IsPositive() {
		return nil, nil
	}

	// The excess interval is the tail of the worked period.
	excessStart := clockOut.Add(-time.Duration(excess.Float64() * float64(time.Hour)))
	window := engine.NewWindow(engine.TimeOfDayOf(excessStart), engine.TimeOfDayOf(clockOut))

	return c.Detect(ctx, record.EmployeeID, record.Date, excess, window)
}

// Get returns the attendance record for (employee, date).
func (r *Recorder) Get(ctx context.Context, empID engine.EmployeeID, date engine.Date) (*engine.Attendance, error) {
	return r.store.GetAttendance(ctx, empID, date)
}

// List returns an employee's attendance over [from, to] in date order.
func (r *Recorder) List(ctx context.Context, empID engine.EmployeeID, from, to engine.Date) ([]engine.Attendance, error) {
	if from.After(to) {
		return nil, engine.Validationf("start date %s is after end date %s", from, to)
	}
	return r.store.AttendanceFor(ctx, empID, from, to)
}
