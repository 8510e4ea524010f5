package service

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/progression"
	"alcyxob/training-planner/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanExerciseInput is the prescription for one exercise on a plan day.
type PlanExerciseInput struct {
	ExerciseID      primitive.ObjectID
	BaseSets        int
	BaseReps        int
	BaseWeight      float64
	MinReps         int
	MaxReps         int
	WeightIncrement float64
}

// Validate checks the rep range and loading numbers.
func (in PlanExerciseInput) Validate() error {
	switch {
	case in.ExerciseID == primitive.NilObjectID:
		return fmt.Errorf("%w: exercise id is required", ErrValidation)
	case in.BaseSets < 1:
		return fmt.Errorf("%w: base sets must be at least 1", ErrValidation)
	case in.MinReps < 1:
		return fmt.Errorf("%w: min reps must be at least 1", ErrValidation)
	case in.MinReps > in.BaseReps || in.BaseReps > in.MaxReps:
		return fmt.Errorf("%w: reps must satisfy min <= base <= max (got %d/%d/%d)", ErrValidation, in.MinReps, in.BaseReps, in.MaxReps)
	case in.BaseWeight < 0:
		return fmt.Errorf("%w: base weight cannot be negative", ErrValidation)
	case in.WeightIncrement < 0:
		return fmt.Errorf("%w: weight increment cannot be negative", ErrValidation)
	}
	return nil
}

// PlanDayDetail is a plan day with its exercises in order.
type PlanDayDetail struct {
	domain.PlanDay
	Exercises []domain.PlanDayExercise `json:"exercises"`
}

// PlanDetail is a plan with all days and exercises.
type PlanDetail struct {
	domain.TrainingPlan
	Days []PlanDayDetail `json:"days"`
}

// --- Service Interface ---
type PlanService interface {
	CreatePlan(ctx context.Context, athleteID primitive.ObjectID, name, description string) (*domain.TrainingPlan, error)
	AddDay(ctx context.Context, planID primitive.ObjectID, dayOfWeek int, name string) (*domain.PlanDay, error)
	AddExercise(ctx context.Context, planID, dayID primitive.ObjectID, input PlanExerciseInput) (*domain.PlanDayExercise, error)
	GetPlan(ctx context.Context, planID primitive.ObjectID) (*PlanDetail, error)
}

// planService implements PlanService.
type planService struct {
	planRepo     repository.TrainingPlanRepository
	exerciseRepo repository.ExerciseRepository
}

// NewPlanService creates a new instance of planService.
func NewPlanService(planRepo repository.TrainingPlanRepository, exerciseRepo repository.ExerciseRepository) PlanService {
	return &planService{
		planRepo:     planRepo,
		exerciseRepo: exerciseRepo,
	}
}

// CreatePlan creates an empty plan template for an athlete.
func (s *planService) CreatePlan(ctx context.Context, athleteID primitive.ObjectID, name, description string) (*domain.TrainingPlan, error) {
	name = strings.TrimSpace(name)
	if athleteID == primitive.NilObjectID {
		return nil, fmt.Errorf("%w: athlete id is required", ErrValidation)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: plan name is required", ErrValidation)
	}

	plan := &domain.TrainingPlan{
		AthleteID:     athleteID,
		Name:          name,
		Description:   description,
		DurationWeeks: progression.WeeksPerBlock,
	}
	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, persistenceError("create plan", err)
	}
	plan.ID = planID
	return plan, nil
}

// AddDay appends a training day to the plan.
func (s *planService) AddDay(ctx context.Context, planID primitive.ObjectID, dayOfWeek int, name string) (*domain.PlanDay, error) {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return nil, fmt.Errorf("%w: day of week must be between 0 (Sunday) and 6 (Saturday)", ErrValidation)
	}
	if _, err := s.getPlan(ctx, planID); err != nil {
		return nil, err
	}
	days, err := s.planRepo.GetDaysByPlanID(ctx, planID)
	if err != nil {
		return nil, persistenceError("load plan days", err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Day %d", len(days)+1)
	}
	day := &domain.PlanDay{
		PlanID:    planID,
		DayOfWeek: dayOfWeek,
		Name:      name,
		SortOrder: len(days),
	}
	dayID, err := s.planRepo.CreateDay(ctx, day)
	if err != nil {
		return nil, persistenceError("create plan day", err)
	}
	day.ID = dayID
	return day, nil
}

// AddExercise prescribes an exercise on a day of the plan.
func (s *planService) AddExercise(ctx context.Context, planID, dayID primitive.ObjectID, input PlanExerciseInput) (*domain.PlanDayExercise, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	day, err := s.planRepo.GetDayByID(ctx, dayID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanDayNotFound
		}
		return nil, persistenceError("get plan day", err)
	}
	if day.PlanID != planID {
		return nil, ErrPlanDayNotFound
	}
	if _, err := s.exerciseRepo.GetByID(ctx, input.ExerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, persistenceError("get exercise", err)
	}

	existing, err := s.planRepo.GetDayExercisesByDayID(ctx, dayID)
	if err != nil {
		return nil, persistenceError("load plan day exercises", err)
	}
	pde := &domain.PlanDayExercise{
		PlanDayID:       dayID,
		ExerciseID:      input.ExerciseID,
		BaseSets:        input.BaseSets,
		BaseReps:        input.BaseReps,
		BaseWeight:      input.BaseWeight,
		MinReps:         input.MinReps,
		MaxReps:         input.MaxReps,
		WeightIncrement: input.WeightIncrement,
		SortOrder:       len(existing),
	}
	pdeID, err := s.planRepo.CreateDayExercise(ctx, pde)
	if err != nil {
		return nil, persistenceError("create plan day exercise", err)
	}
	pde.ID = pdeID
	return pde, nil
}

// GetPlan returns the plan with its days and exercises.
func (s *planService) GetPlan(ctx context.Context, planID primitive.ObjectID) (*PlanDetail, error) {
	plan, err := s.getPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	days, err := s.planRepo.GetDaysByPlanID(ctx, planID)
	if err != nil {
		return nil, persistenceError("load plan days", err)
	}

	detail := &PlanDetail{TrainingPlan: *plan, Days: make([]PlanDayDetail, 0, len(days))}
	for _, day := range days {
		exercises, err := s.planRepo.GetDayExercisesByDayID(ctx, day.ID)
		if err != nil {
			return nil, persistenceError("load plan day exercises", err)
		}
		if exercises == nil {
			exercises = []domain.PlanDayExercise{}
		}
		detail.Days = append(detail.Days, PlanDayDetail{PlanDay: day, Exercises: exercises})
	}
	return detail, nil
}

func (s *planService) getPlan(ctx context.Context, planID primitive.ObjectID) (*domain.TrainingPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, persistenceError("get plan", err)
	}
	return plan, nil
}
