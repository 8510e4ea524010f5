package service

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/logger"
	"alcyxob/training-planner/internal/progression"
	"alcyxob/training-planner/internal/repository"
	"context"
	"errors"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseTarget is the adaptive target of one plan exercise for the coming week.
type ExerciseTarget struct {
	PlanExerciseID primitive.ObjectID                   `json:"plan_exercise_id"`
	ExerciseID     primitive.ObjectID                   `json:"exercise_id"`
	PlanDayID      primitive.ObjectID                   `json:"plan_day_id"`
	Previous       *progression.PreviousWeekPerformance `json:"previous,omitempty"`
	Targets        progression.NextWeekTargets          `json:"targets"`
	Description    string                               `json:"description"`
}

// WeekPreview lists the targets computed for the week after CurrentWeek.
type WeekPreview struct {
	MesocycleID primitive.ObjectID `json:"mesocycle_id"`
	FromWeek    int                `json:"from_week"`
	ToWeek      int                `json:"to_week"`
	IsDeload    bool               `json:"is_deload"`
	Exercises   []ExerciseTarget   `json:"exercises"`
	// UpdatedSets and SkippedSets are only set by AdvanceWeek.
	UpdatedSets int `json:"updated_sets"`
	SkippedSets int `json:"skipped_sets"`
}

// --- Service Interface ---
type ProgressionService interface {
	PreviewNextWeek(ctx context.Context, mesocycleID primitive.ObjectID) (*WeekPreview, error)
	AdvanceWeek(ctx context.Context, mesocycleID primitive.ObjectID) (*WeekPreview, error)
}

// progressionService implements ProgressionService.
type progressionService struct {
	planRepo      repository.TrainingPlanRepository
	mesocycleRepo repository.MesocycleRepository
	workoutRepo   repository.WorkoutRepository
	setRepo       repository.WorkoutSetRepository
	tx            repository.Transactor
	logger        *slog.Logger
}

// NewProgressionService creates a new instance of progressionService.
func NewProgressionService(
	planRepo repository.TrainingPlanRepository,
	mesocycleRepo repository.MesocycleRepository,
	workoutRepo repository.WorkoutRepository,
	setRepo repository.WorkoutSetRepository,
	tx repository.Transactor,
	logger *slog.Logger,
) ProgressionService {
	return &progressionService{
		planRepo:      planRepo,
		mesocycleRepo: mesocycleRepo,
		workoutRepo:   workoutRepo,
		setRepo:       setRepo,
		tx:            tx,
		logger:        logger,
	}
}

// blockState is everything stored for one mesocycle, indexed for the calculators.
type blockState struct {
	mesocycle *domain.Mesocycle
	exercises []planExercise
	workouts  []domain.Workout
	// sets keyed by plan exercise, then 1-based week number.
	sets map[primitive.ObjectID]map[int][]domain.WorkoutSet
}

type planExercise struct {
	dayID primitive.ObjectID
	pde   domain.PlanDayExercise
}

// PreviewNextWeek computes next week's targets without writing anything.
func (s *progressionService) PreviewNextWeek(ctx context.Context, mesocycleID primitive.ObjectID) (*WeekPreview, error) {
	state, err := s.load(ctx, mesocycleID)
	if err != nil {
		return nil, err
	}
	return state.preview(), nil
}

// AdvanceWeek applies next week's adaptive targets to its pending sets and
// moves the mesocycle on. Set rows beyond the target set count are skipped.
func (s *progressionService) AdvanceWeek(ctx context.Context, mesocycleID primitive.ObjectID) (*WeekPreview, error) {
	var preview *WeekPreview
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		state, err := s.load(txCtx, mesocycleID)
		if err != nil {
			return err
		}
		preview = state.preview()

		targets := make(map[primitive.ObjectID]progression.NextWeekTargets, len(preview.Exercises))
		for _, ex := range preview.Exercises {
			targets[ex.PlanExerciseID] = ex.Targets
		}

		var updates []repository.SetTargetUpdate
		for planExerciseID, byWeek := range state.sets {
			target, ok := targets[planExerciseID]
			if !ok {
				continue
			}
			for _, set := range byWeek[preview.ToWeek] {
				if set.Status != domain.SetPending {
					continue
				}
				if set.SetNumber > target.TargetSets {
					set.Status = domain.SetSkipped
					if err := s.setRepo.Update(txCtx, &set); err != nil {
						return persistenceError("skip surplus set", err)
					}
					preview.SkippedSets++
					continue
				}
				updates = append(updates, repository.SetTargetUpdate{
					SetID:        set.ID,
					TargetWeight: target.TargetWeight,
					TargetReps:   target.TargetReps,
				})
			}
		}
		if len(updates) > 0 {
			if err := s.setRepo.UpdateTargets(txCtx, updates); err != nil {
				return persistenceError("update set targets", err)
			}
		}
		preview.UpdatedSets = len(updates)

		if err := s.mesocycleRepo.SetCurrentWeek(txCtx, mesocycleID, preview.ToWeek); err != nil {
			return persistenceError("set current week", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.logger).Info("mesocycle advanced",
		"mesocycle_id", mesocycleID.Hex(),
		"week", preview.ToWeek,
		"deload", preview.IsDeload,
		"updated_sets", preview.UpdatedSets,
		"skipped_sets", preview.SkippedSets,
	)
	return preview, nil
}

func (s *progressionService) load(ctx context.Context, mesocycleID primitive.ObjectID) (*blockState, error) {
	mesocycle, err := s.mesocycleRepo.GetByID(ctx, mesocycleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMesocycleNotFound
		}
		return nil, persistenceError("get mesocycle", err)
	}
	if mesocycle.Status != domain.MesocycleActive {
		return nil, ErrMesocycleNotActive
	}
	if mesocycle.CurrentWeek >= progression.WeeksPerBlock {
		return nil, ErrLastWeek
	}

	days, err := s.planRepo.GetDaysByPlanID(ctx, mesocycle.PlanID)
	if err != nil {
		return nil, persistenceError("load plan days", err)
	}
	state := &blockState{
		mesocycle: mesocycle,
		sets:      make(map[primitive.ObjectID]map[int][]domain.WorkoutSet),
	}
	for _, day := range days {
		exercises, err := s.planRepo.GetDayExercisesByDayID(ctx, day.ID)
		if err != nil {
			return nil, persistenceError("load plan day exercises", err)
		}
		for _, pde := range exercises {
			state.exercises = append(state.exercises, planExercise{dayID: day.ID, pde: pde})
		}
	}

	state.workouts, err = s.workoutRepo.GetByMesocycleID(ctx, mesocycleID)
	if err != nil {
		return nil, persistenceError("load workouts", err)
	}
	weekOf := make(map[primitive.ObjectID]int, len(state.workouts))
	workoutIDs := make([]primitive.ObjectID, 0, len(state.workouts))
	for _, w := range state.workouts {
		weekOf[w.ID] = w.WeekNumber
		workoutIDs = append(workoutIDs, w.ID)
	}
	if len(workoutIDs) == 0 {
		return state, nil
	}
	sets, err := s.setRepo.GetByWorkoutIDs(ctx, workoutIDs)
	if err != nil {
		return nil, persistenceError("load workout sets", err)
	}
	for _, set := range sets {
		byWeek, ok := state.sets[set.PlanExerciseID]
		if !ok {
			byWeek = make(map[int][]domain.WorkoutSet)
			state.sets[set.PlanExerciseID] = byWeek
		}
		week := weekOf[set.WorkoutID]
		byWeek[week] = append(byWeek[week], set)
	}
	return state, nil
}

func (b *blockState) preview() *WeekPreview {
	next := b.mesocycle.CurrentWeek + 1
	preview := &WeekPreview{
		MesocycleID: b.mesocycle.ID,
		FromWeek:    b.mesocycle.CurrentWeek,
		ToWeek:      next,
		IsDeload:    progression.IsDeloadWeekNumber(next),
		Exercises:   make([]ExerciseTarget, 0, len(b.exercises)),
	}
	for _, pe := range b.exercises {
		ex := exerciseProgression(pe.pde)
		target := ExerciseTarget{
			PlanExerciseID: pe.pde.ID,
			ExerciseID:     pe.pde.ExerciseID,
			PlanDayID:      pe.dayID,
			Previous:       b.previousPerformance(pe.pde),
		}
		if target.Previous == nil {
			target.Targets = scheduledTargets(ex, next)
			target.Description = "no logged sets yet, keeping the scheduled target"
		} else {
			target.Targets = progression.CalculateNextWeekTargets(ex, target.Previous, preview.IsDeload)
			target.Description = target.Targets.Reason.Describe()
		}
		preview.Exercises = append(preview.Exercises, target)
	}
	return preview
}

// scheduledTargets is the static ladder target the week was generated with.
func scheduledTargets(ex progression.ExerciseProgression, weekNumber int) progression.NextWeekTargets {
	isDeload := progression.IsDeloadWeekNumber(weekNumber)
	wt, err := progression.CalculateTargetsForWeek(ex, progression.WeekIndex(weekNumber), true)
	if err != nil {
		return progression.CalculateNextWeekTargets(ex, nil, isDeload)
	}
	reason := progression.ReasonFirstWeek
	if wt.IsDeload {
		reason = progression.ReasonDeload
	}
	return progression.NextWeekTargets{
		TargetWeight: wt.TargetWeight,
		TargetReps:   wt.TargetReps,
		TargetSets:   wt.TargetSets,
		IsDeload:     wt.IsDeload,
		Reason:       reason,
	}
}

// previousPerformance condenses the most recent week, up to the current one,
// in which the exercise has completed sets. Older weeks become the failure
// history, most recent first. It returns nil when nothing was ever completed.
func (b *blockState) previousPerformance(pde domain.PlanDayExercise) *progression.PreviousWeekPerformance {
	byWeek := b.sets[pde.ID]

	latestWeek := 0
	var history []progression.PerformanceRecord
	for week := b.mesocycle.CurrentWeek; week >= 1; week-- {
		completed := completedResults(byWeek[week])
		if len(completed) == 0 {
			continue
		}
		if latestWeek == 0 {
			latestWeek = week
			continue
		}
		best := progression.BestSet(completed)
		history = append(history, progression.PerformanceRecord{
			WeekNumber:   week,
			ActualWeight: best.Weight,
			ActualReps:   best.Reps,
		})
	}
	if latestWeek == 0 {
		return nil
	}

	sets := byWeek[latestWeek]
	return progression.BuildPreviousWeekPerformance(
		pde.ExerciseID,
		latestWeek,
		sets[0].TargetWeight,
		sets[0].TargetReps,
		completedResults(sets),
		pde.MinReps,
		history,
	)
}

func completedResults(sets []domain.WorkoutSet) []progression.SetResult {
	var results []progression.SetResult
	for _, set := range sets {
		if set.Status != domain.SetCompleted || set.ActualReps == nil {
			continue
		}
		weight := set.TargetWeight
		if set.ActualWeight != nil {
			weight = *set.ActualWeight
		}
		results = append(results, progression.SetResult{Weight: weight, Reps: *set.ActualReps})
	}
	return results
}
