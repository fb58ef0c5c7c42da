package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrRecordNotFound      = errors.New("record not found")
	ErrEditConflict        = errors.New("edit conflict")
	ErrValidation          = errors.New("validation failed")
	ErrConflict            = errors.New("conflict")
	ErrPastTime            = errors.New("the show time cannot be in the past")
	ErrTooLate             = errors.New("reservations close shortly before the performance")
	ErrPerformanceMismatch = errors.New("all tickets must be for the same performance")
	ErrPermission          = errors.New("permission denied")
)

// ValidationError reports a malformed or missing field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// RangeError reports a numeric field outside [Min, Max].
type RangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s must be in range [%d, %d], got %d", e.Field, e.Min, e.Max, e.Value)
}

func (e *RangeError) Is(target error) bool {
	return target == ErrValidation
}

// ConflictError reports a violated uniqueness rule.
type ConflictError struct {
	Field  string
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

type PerformanceMismatchError struct {
	TicketID      int
	PerformanceID int
	Expected      int
}

func (e *PerformanceMismatchError) Error() string {
	return fmt.Sprintf("ticket %d belongs to performance %d, not %d", e.TicketID, e.PerformanceID, e.Expected)
}

func (e *PerformanceMismatchError) Is(target error) bool {
	return target == ErrPerformanceMismatch
}
