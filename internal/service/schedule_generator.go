package service

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/logger"
	"alcyxob/training-planner/internal/progression"
	"alcyxob/training-planner/internal/repository"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerationResult summarises what a schedule generation wrote.
type GenerationResult struct {
	Workouts int `json:"workouts"`
	Sets     int `json:"sets"`
}

// ScheduleGenerator expands a plan template into the workouts and sets of a
// whole mesocycle. It writes through whatever ctx it is given, so callers
// run it inside a transaction to make generation all-or-nothing.
type ScheduleGenerator struct {
	planRepo     repository.TrainingPlanRepository
	exerciseRepo repository.ExerciseRepository
	workoutRepo  repository.WorkoutRepository
	setRepo      repository.WorkoutSetRepository
	logger       *slog.Logger
}

// NewScheduleGenerator creates a ScheduleGenerator.
func NewScheduleGenerator(
	planRepo repository.TrainingPlanRepository,
	exerciseRepo repository.ExerciseRepository,
	workoutRepo repository.WorkoutRepository,
	setRepo repository.WorkoutSetRepository,
	logger *slog.Logger,
) *ScheduleGenerator {
	return &ScheduleGenerator{
		planRepo:     planRepo,
		exerciseRepo: exerciseRepo,
		workoutRepo:  workoutRepo,
		setRepo:      setRepo,
		logger:       logger,
	}
}

// planDayTemplate is a plan day with its validated exercises.
type planDayTemplate struct {
	day       domain.PlanDay
	exercises []domain.PlanDayExercise
}

// Generate creates one workout per (week, plan day) and the set rows of every
// workout. Every exercise reference is resolved before the first write.
func (g *ScheduleGenerator) Generate(ctx context.Context, m *domain.Mesocycle) (*GenerationResult, error) {
	templates, err := g.loadTemplates(ctx, m.PlanID)
	if err != nil {
		return nil, err
	}

	var sets []domain.WorkoutSet
	workouts := 0
	for week := 1; week <= progression.WeeksPerBlock; week++ {
		for _, tmpl := range templates {
			workout := &domain.Workout{
				MesocycleID:   m.ID,
				PlanDayID:     tmpl.day.ID,
				WeekNumber:    week,
				ScheduledDate: ScheduledDate(m.StartDate, tmpl.day.Weekday(), week),
				Status:        domain.WorkoutPending,
			}
			workoutID, err := g.workoutRepo.Create(ctx, workout)
			if err != nil {
				return nil, persistenceError("create workout", err)
			}
			workouts++

			daySets, err := materializeSets(workoutID, week, tmpl.exercises)
			if err != nil {
				return nil, err
			}
			sets = append(sets, daySets...)
		}
	}

	if err := g.setRepo.CreateMany(ctx, sets); err != nil {
		return nil, persistenceError("create workout sets", err)
	}

	logger.FromContext(ctx, g.logger).Info("schedule generated",
		"mesocycle_id", m.ID.Hex(),
		"workouts", workouts,
		"sets", len(sets),
	)
	return &GenerationResult{Workouts: workouts, Sets: len(sets)}, nil
}

// loadTemplates reads the plan days and exercises and checks every exercise
// reference. A plan without days is a configuration error.
func (g *ScheduleGenerator) loadTemplates(ctx context.Context, planID primitive.ObjectID) ([]planDayTemplate, error) {
	days, err := g.planRepo.GetDaysByPlanID(ctx, planID)
	if err != nil {
		return nil, persistenceError("load plan days", err)
	}
	if len(days) == 0 {
		return nil, ErrNoPlanDays
	}

	resolved := make(map[primitive.ObjectID]bool)
	templates := make([]planDayTemplate, 0, len(days))
	for _, day := range days {
		exercises, err := g.planRepo.GetDayExercisesByDayID(ctx, day.ID)
		if err != nil {
			return nil, persistenceError("load plan day exercises", err)
		}
		for _, pde := range exercises {
			if resolved[pde.ExerciseID] {
				continue
			}
			if _, err := g.exerciseRepo.GetByID(ctx, pde.ExerciseID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, fmt.Errorf("%w: %s (plan day %q)", ErrExerciseNotFound, pde.ExerciseID.Hex(), day.Name)
				}
				return nil, persistenceError("load exercise", err)
			}
			resolved[pde.ExerciseID] = true
		}
		templates = append(templates, planDayTemplate{day: day, exercises: exercises})
	}
	return templates, nil
}

// materializeSets builds BaseSets pending rows per exercise, seeded from the
// static ladder. No sets exist yet, so every earlier week counts as completed.
func materializeSets(workoutID primitive.ObjectID, weekNumber int, exercises []domain.PlanDayExercise) ([]domain.WorkoutSet, error) {
	var sets []domain.WorkoutSet
	for _, pde := range exercises {
		target, err := progression.CalculateTargetsForWeek(exerciseProgression(pde), progression.WeekIndex(weekNumber), true)
		if err != nil {
			return nil, err
		}
		for n := 1; n <= pde.BaseSets; n++ {
			sets = append(sets, domain.WorkoutSet{
				WorkoutID:      workoutID,
				ExerciseID:     pde.ExerciseID,
				PlanExerciseID: pde.ID,
				SetNumber:      n,
				TargetReps:     target.TargetReps,
				TargetWeight:   target.TargetWeight,
				Status:         domain.SetPending,
			})
		}
	}
	return sets, nil
}

// ScheduledDate aligns start forward to weekday and adds the week offset.
func ScheduledDate(start time.Time, weekday time.Weekday, weekNumber int) time.Time {
	offset := (int(weekday) - int(start.Weekday()) + 7) % 7
	return start.AddDate(0, 0, offset+(weekNumber-1)*7)
}

// exerciseProgression is the calculator view of a plan exercise.
func exerciseProgression(pde domain.PlanDayExercise) progression.ExerciseProgression {
	return progression.ExerciseProgression{
		ExerciseID:      pde.ExerciseID,
		PlanExerciseID:  pde.ID,
		BaseWeight:      pde.BaseWeight,
		BaseReps:        pde.BaseReps,
		BaseSets:        pde.BaseSets,
		WeightIncrement: pde.WeightIncrement,
		MinReps:         pde.MinReps,
		MaxReps:         pde.MaxReps,
	}
}
