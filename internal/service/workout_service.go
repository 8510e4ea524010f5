package service

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/logger"
	"alcyxob/training-planner/internal/repository"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutDetail is a workout with its sets in order.
type WorkoutDetail struct {
	domain.Workout
	Sets []domain.WorkoutSet `json:"sets"`
}

// --- Service Interface ---
type WorkoutService interface {
	GetWorkout(ctx context.Context, workoutID primitive.ObjectID) (*WorkoutDetail, error)
	StartWorkout(ctx context.Context, workoutID primitive.ObjectID) (*WorkoutDetail, error)
	LogSet(ctx context.Context, setID primitive.ObjectID, actualReps int, actualWeight float64) (*domain.WorkoutSet, error)
	SkipSet(ctx context.Context, setID primitive.ObjectID) (*domain.WorkoutSet, error)
	CompleteWorkout(ctx context.Context, workoutID primitive.ObjectID) (*WorkoutDetail, error)
	SkipWorkout(ctx context.Context, workoutID primitive.ObjectID) (*WorkoutDetail, error)
}

// workoutService implements WorkoutService.
type workoutService struct {
	mesocycleRepo repository.MesocycleRepository
	workoutRepo   repository.WorkoutRepository
	setRepo       repository.WorkoutSetRepository
	tx            repository.Transactor
	logger        *slog.Logger
	now           func() time.Time
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(
	mesocycleRepo repository.MesocycleRepository,
	workoutRepo repository.WorkoutRepository,
	setRepo repository.WorkoutSetRepository,
	tx repository.Transactor,
	logger *slog.Logger,
) WorkoutService {
	return &workoutService{
		mesocycleRepo: mesocycleRepo,
		workoutRepo:   workoutRepo,
		setRepo:       setRepo,
		tx:            tx,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// GetWorkout returns a workout with its sets.
func (s *workoutService) GetWorkout(ctx context.Context, workoutID primitive.ObjectID) (*WorkoutDetail, error) {
	workout, err := s.getWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, workout)
}

// StartWorkout moves a pending workout to in_progress. Starting a workout
// that is already in progress is a no-op.
func (s *workoutService) StartWorkout(ctx context.Context, workoutID primitive.ObjectID) (*WorkoutDetail, error) {
	workout, err := s.getMutableWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if workout.Status == domain.WorkoutPending {
		if err := s.start(ctx, workout); err != nil {
			return nil, err
		}
	}
	return s.detail(ctx, workout)
}

// LogSet records what the athlete actually did for a set. A pending workout
// is started implicitly.
func (s *workoutService) LogSet(ctx context.Context, setID primitive.ObjectID, actualReps int, actualWeight float64) (*domain.WorkoutSet, error) {
	if actualReps < 0 {
		return nil, fmt.Errorf("%w: actual reps cannot be negative", ErrValidation)
	}
	if actualWeight < 0 {
		return nil, fmt.Errorf("%w: actual weight cannot be negative", ErrValidation)
	}
	set, workout, err := s.getMutableSet(ctx, setID)
	if err != nil {
		return nil, err
	}
	if workout.Status == domain.WorkoutPending {
		if err := s.start(ctx, workout); err != nil {
			return nil, err
		}
	}

	now := s.now()
	set.ActualReps = &actualReps
	set.ActualWeight = &actualWeight
	set.Status = domain.SetCompleted
	set.CompletedAt = &now
	if err := s.setRepo.Update(ctx, set); err != nil {
		return nil, persistenceError("update workout set", err)
	}
	logger.FromContext(ctx, s.logger).Debug("set logged",
		"set_id", set.ID.Hex(),
		"workout_id", workout.ID.Hex(),
		"reps", actualReps,
		"weight", actualWeight,
	)
	return set, nil
}

// SkipSet marks a pending set as skipped.
func (s *workoutService) SkipSet(ctx context.Context, setID primitive.ObjectID) (*domain.WorkoutSet, error) {
	set, _, err := s.getMutableSet(ctx, setID)
	if err != nil {
		return nil, err
	}
	set.Status = domain.SetSkipped
	if err := s.setRepo.Update(ctx, set); err != nil {
		return nil, persistenceError("update workout set", err)
	}
	return set, nil
}

// CompleteWorkout finishes a workout. Sets that were never logged are skipped.
func (s *workoutService) CompleteWorkout(ctx context.Context, workoutID primitive.ObjectID) (*WorkoutDetail, error) {
	return s.finish(ctx, workoutID, domain.WorkoutCompleted)
}

// SkipWorkout skips a whole workout together with its pending sets.
func (s *workoutService) SkipWorkout(ctx context.Context, workoutID primitive.ObjectID) (*WorkoutDetail, error) {
	return s.finish(ctx, workoutID, domain.WorkoutSkipped)
}

func (s *workoutService) finish(ctx context.Context, workoutID primitive.ObjectID, to domain.WorkoutStatus) (*WorkoutDetail, error) {
	workout, err := s.getMutableWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		sets, err := s.setRepo.GetByWorkoutID(txCtx, workout.ID)
		if err != nil {
			return persistenceError("load workout sets", err)
		}
		for i := range sets {
			if sets[i].Status != domain.SetPending {
				continue
			}
			sets[i].Status = domain.SetSkipped
			if err := s.setRepo.Update(txCtx, &sets[i]); err != nil {
				return persistenceError("update workout set", err)
			}
		}

		now := s.now()
		workout.Status = to
		workout.CompletedAt = &now
		if err := s.workoutRepo.Update(txCtx, workout); err != nil {
			return persistenceError("update workout", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.logger).Info("workout finished",
		"workout_id", workout.ID.Hex(),
		"mesocycle_id", workout.MesocycleID.Hex(),
		"week", workout.WeekNumber,
		"status", string(to),
	)
	return s.detail(ctx, workout)
}

func (s *workoutService) start(ctx context.Context, workout *domain.Workout) error {
	now := s.now()
	workout.Status = domain.WorkoutInProgress
	workout.StartedAt = &now
	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		return persistenceError("update workout", err)
	}
	return nil
}

func (s *workoutService) getWorkout(ctx context.Context, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, persistenceError("get workout", err)
	}
	return workout, nil
}

// getMutableWorkout loads a workout that may still change: it must be
// unfinished and belong to an active mesocycle.
func (s *workoutService) getMutableWorkout(ctx context.Context, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.getWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	mesocycle, err := s.mesocycleRepo.GetByID(ctx, workout.MesocycleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMesocycleNotFound
		}
		return nil, persistenceError("get mesocycle", err)
	}
	if mesocycle.Status != domain.MesocycleActive {
		return nil, ErrMesocycleNotActive
	}
	if workout.Status == domain.WorkoutCompleted || workout.Status == domain.WorkoutSkipped {
		return nil, ErrWorkoutFinished
	}
	return workout, nil
}

func (s *workoutService) getMutableSet(ctx context.Context, setID primitive.ObjectID) (*domain.WorkoutSet, *domain.Workout, error) {
	set, err := s.setRepo.GetByID(ctx, setID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrSetNotFound
		}
		return nil, nil, persistenceError("get workout set", err)
	}
	workout, err := s.getMutableWorkout(ctx, set.WorkoutID)
	if err != nil {
		return nil, nil, err
	}
	if set.Status != domain.SetPending {
		return nil, nil, ErrSetFinished
	}
	return set, workout, nil
}

func (s *workoutService) detail(ctx context.Context, workout *domain.Workout) (*WorkoutDetail, error) {
	sets, err := s.setRepo.GetByWorkoutID(ctx, workout.ID)
	if err != nil {
		return nil, persistenceError("load workout sets", err)
	}
	if sets == nil {
		sets = []domain.WorkoutSet{}
	}
	return &WorkoutDetail{Workout: *workout, Sets: sets}, nil
}
