/*
errors.go - Centralized error taxonomy for the engine

PURPOSE:
  All error kinds in one place so callers can classify failures with
  errors.Is and render accurate feedback. Domain packages wrap these
  sentinels with structured context.

ERROR CATEGORIES:
  1. ErrValidation          - malformed or missing input
  2. ErrNotFound            - unknown employee/role/shift/record
  3. ErrConflict            - double clock-in/out, re-approval, overlapping insert
  4. ErrConstraintViolation - weekly cap, insufficient balance, role/day mismatch

  NoEligibleCandidate is NOT an error: generation records it as a skip and
  never surfaces it to the caller.

USAGE:
  if errors.Is(err, engine.ErrConflict) { ... }

SEE ALSO:
  - roster/generate.go: converts insert-time conflicts into skips
  - approval/engine.go: ErrConflict on non-PENDING transitions
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned for malformed or missing input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced entity or record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an operation collides with existing state:
	// a duplicate clock-in, an overlapping schedule insert, or a transition
	// on an entity that is no longer PENDING.
	ErrConflict = errors.New("conflict")

	// ErrConstraintViolation is returned when a business invariant would be
	// broken: weekly hour cap exceeded, insufficient balance, clock-out at or
	// before clock-in.
	ErrConstraintViolation = errors.New("constraint violation")
)

// =============================================================================
// STRUCTURED ERRORS - Carry the violated invariant
// =============================================================================

// NotFoundError identifies which entity was missing.
type NotFoundError struct {
	Kind string // "role", "employee", "overtime", ...
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// OverlapError reports a schedule window collision for an employee/date.
type OverlapError struct {
	EmployeeID EmployeeID
	Date       Date
	Window     Window
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("schedule overlap: employee %s already covers %s on %s",
		e.EmployeeID, e.Window, e.Date)
}

func (e *OverlapError) Unwrap() error { return ErrConflict }

// WeeklyLimitError reports that an assignment would exceed the role's
// weekly hour cap.
type WeeklyLimitError struct {
	EmployeeID EmployeeID
	Week       Date // Monday of the ISO week
	Scheduled  Hours
	Adding     Hours
	Limit      Hours
}

func (e *WeeklyLimitError) Error() string {
	return fmt.Sprintf("weekly limit: employee %s has %sh scheduled in week of %s, adding %sh exceeds %sh",
		e.EmployeeID, e.Scheduled, e.Week, e.Adding, e.Limit)
}

func (e *WeeklyLimitError) Unwrap() error { return ErrConstraintViolation }

// InsufficientBalanceError reports a leave/comp-off balance shortfall at
// approval time.
type InsufficientBalanceError struct {
	EmployeeID EmployeeID
	LeaveType  LeaveType
	Available  Days
	Requested  Days
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s balance: available %s days, requested %s",
		e.LeaveType, e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrConstraintViolation }

// TransitionError reports a second transition attempt on a settled entity.
type TransitionError struct {
	Kind    ApprovalKind
	ID      string
	Current ApprovalStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s %s: already %s, transitions are one-shot", e.Kind, e.ID, e.Current)
}

func (e *TransitionError) Unwrap() error { return ErrConflict }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input or
// a violated business rule, as opposed to a storage failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrConstraintViolation)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict returns true for duplicate/overlap/re-approval collisions.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// Validationf builds an ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}
