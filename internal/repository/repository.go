package repository

import (
	"alcyxob/training-planner/internal/domain" // Import our defined domain models
	"context"                                  // Standard for request-scoped deadlines, cancellation signals, etc.
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive" // For using ObjectIDs
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrConflict     = RepositoryError("conflict with existing record") // Unique constraint rejected the write
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Transactor runs fn so that every repository call made with the ctx it
// receives commits or rolls back together.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	List(ctx context.Context) ([]domain.Exercise, error)
}

// TrainingPlanRepository defines the interface for plan templates, their days and day exercises.
type TrainingPlanRepository interface {
	Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error)

	CreateDay(ctx context.Context, day *domain.PlanDay) (primitive.ObjectID, error)
	GetDayByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanDay, error)
	GetDaysByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanDay, error) // Sorted by day of week, then sort order

	CreateDayExercise(ctx context.Context, exercise *domain.PlanDayExercise) (primitive.ObjectID, error)
	GetDayExercisesByDayID(ctx context.Context, dayID primitive.ObjectID) ([]domain.PlanDayExercise, error) // Sorted by sort order
}

// MesocycleRepository defines the interface for interacting with mesocycle data.
type MesocycleRepository interface {
	Create(ctx context.Context, mesocycle *domain.Mesocycle) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Mesocycle, error)
	GetActiveByAthleteID(ctx context.Context, athleteID primitive.ObjectID) (*domain.Mesocycle, error) // ErrNotFound when none is active
	GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Mesocycle, error)
	// UpdateStatus moves the mesocycle from one status to another only if it is still in `from`.
	// Returns ErrNotFound if no such mesocycle is in `from`, ErrConflict if the change would
	// give the athlete a second active mesocycle.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.MesocycleStatus, at time.Time) error
	SetCurrentWeek(ctx context.Context, id primitive.ObjectID, week int) error
	SetArchiveKey(ctx context.Context, id primitive.ObjectID, key string) error
}

// WorkoutRepository defines the interface for interacting with workout data.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	GetByMesocycleID(ctx context.Context, mesocycleID primitive.ObjectID) ([]domain.Workout, error) // Sorted by week, then date
	Update(ctx context.Context, workout *domain.Workout) error
}

// WorkoutSetRepository defines the interface for interacting with set rows.
type WorkoutSetRepository interface {
	// CreateMany writes all sets as one logical batch. Implementations may split it
	// into chunks; callers run it inside a transaction to keep it all-or-nothing.
	CreateMany(ctx context.Context, sets []domain.WorkoutSet) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSet, error)
	GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.WorkoutSet, error)
	GetByWorkoutIDs(ctx context.Context, workoutIDs []primitive.ObjectID) ([]domain.WorkoutSet, error)
	Update(ctx context.Context, set *domain.WorkoutSet) error
	UpdateTargets(ctx context.Context, updates []SetTargetUpdate) error
}

// SetTargetUpdate rewrites the target of one pending set.
type SetTargetUpdate struct {
	SetID        primitive.ObjectID
	TargetWeight float64
	TargetReps   int
}
