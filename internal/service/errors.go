package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a service wraps exactly one of these,
// so callers can classify with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrConfiguration = errors.New("configuration error")
	ErrInvalidState  = errors.New("invalid state")
	ErrConflict      = errors.New("conflict")
	ErrPersistence   = errors.New("persistence failure")
	ErrValidation    = errors.New("validation failed")
)

// --- Specific errors ---
var (
	ErrPlanNotFound      = fmt.Errorf("training plan %w", ErrNotFound)
	ErrPlanDayNotFound   = fmt.Errorf("plan day %w", ErrNotFound)
	ErrExerciseNotFound  = fmt.Errorf("exercise %w", ErrNotFound)
	ErrMesocycleNotFound = fmt.Errorf("mesocycle %w", ErrNotFound)
	ErrWorkoutNotFound   = fmt.Errorf("workout %w", ErrNotFound)
	ErrSetNotFound       = fmt.Errorf("workout set %w", ErrNotFound)
	ErrArchiveNotFound   = fmt.Errorf("mesocycle archive %w", ErrNotFound)

	ErrNoPlanDays = fmt.Errorf("%w: plan has no workout days", ErrConfiguration)

	ErrMesocycleNotPending = fmt.Errorf("%w: mesocycle is not pending", ErrInvalidState)
	ErrMesocycleNotActive  = fmt.Errorf("%w: mesocycle is not active", ErrInvalidState)
	ErrWorkoutFinished     = fmt.Errorf("%w: workout is already finished", ErrInvalidState)
	ErrSetFinished         = fmt.Errorf("%w: set is already finished", ErrInvalidState)
	ErrLastWeek            = fmt.Errorf("%w: mesocycle is in its last week", ErrInvalidState)

	ErrActiveMesocycleExists = fmt.Errorf("%w: athlete already has an active mesocycle", ErrConflict)

	ErrStartFailed = fmt.Errorf("%w: failed to start mesocycle", ErrPersistence)
)

// persistenceError wraps a repository failure as ErrPersistence.
func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
