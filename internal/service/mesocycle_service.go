package service

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/logger"
	"alcyxob/training-planner/internal/progression"
	"alcyxob/training-planner/internal/repository"
	"alcyxob/training-planner/internal/storage"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultStartTimeout bounds a start transition when none is configured.
const DefaultStartTimeout = 30 * time.Second

// WorkoutSummary is one workout of the detail view.
type WorkoutSummary struct {
	ID            primitive.ObjectID   `json:"id"`
	PlanDayID     primitive.ObjectID   `json:"plan_day_id"`
	ScheduledDate time.Time            `json:"scheduled_date"`
	Status        domain.WorkoutStatus `json:"status"`
	TotalSets     int                  `json:"total_sets"`
	CompletedSets int                  `json:"completed_sets"`
}

// WeekSummary groups the workouts of one week.
type WeekSummary struct {
	WeekNumber        int              `json:"week_number"`
	IsDeload          bool             `json:"is_deload"`
	Workouts          []WorkoutSummary `json:"workouts"`
	CompletedWorkouts int              `json:"completed_workouts"`
}

// MesocycleDetail is the read model of a mesocycle, derived from stored rows.
type MesocycleDetail struct {
	ID                primitive.ObjectID     `json:"id"`
	PlanID            primitive.ObjectID     `json:"plan_id"`
	AthleteID         primitive.ObjectID     `json:"athlete_id"`
	Status            domain.MesocycleStatus `json:"status"`
	CurrentWeek       int                    `json:"current_week"`
	PlanName          string                 `json:"plan_name"`
	StartDate         time.Time              `json:"start_date"`
	StartedAt         *time.Time             `json:"started_at,omitempty"`
	EndedAt           *time.Time             `json:"ended_at,omitempty"`
	Weeks             []WeekSummary          `json:"weeks"`
	TotalWorkouts     int                    `json:"total_workouts"`
	CompletedWorkouts int                    `json:"completed_workouts"`
}

// --- Service Interface ---
type MesocycleService interface {
	Create(ctx context.Context, planID primitive.ObjectID, startDate time.Time) (*domain.Mesocycle, error)
	Start(ctx context.Context, mesocycleID primitive.ObjectID) (*MesocycleDetail, error)
	Complete(ctx context.Context, mesocycleID primitive.ObjectID) (*MesocycleDetail, error)
	Cancel(ctx context.Context, mesocycleID primitive.ObjectID) (*MesocycleDetail, error)
	GetActive(ctx context.Context, athleteID primitive.ObjectID) (*MesocycleDetail, error)
	GetByID(ctx context.Context, mesocycleID primitive.ObjectID) (*MesocycleDetail, error)
	ListByAthlete(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Mesocycle, error)
	ArchiveURL(ctx context.Context, mesocycleID primitive.ObjectID) (string, error)
}

// mesocycleService implements MesocycleService.
type mesocycleService struct {
	planRepo      repository.TrainingPlanRepository
	mesocycleRepo repository.MesocycleRepository
	workoutRepo   repository.WorkoutRepository
	setRepo       repository.WorkoutSetRepository
	tx            repository.Transactor
	generator     *ScheduleGenerator
	archive       storage.ArchiveStorage // nil disables archiving
	startTimeout  time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// NewMesocycleService creates a new instance of mesocycleService. archive may be nil.
func NewMesocycleService(
	planRepo repository.TrainingPlanRepository,
	mesocycleRepo repository.MesocycleRepository,
	workoutRepo repository.WorkoutRepository,
	setRepo repository.WorkoutSetRepository,
	tx repository.Transactor,
	generator *ScheduleGenerator,
	archive storage.ArchiveStorage,
	startTimeout time.Duration,
	logger *slog.Logger,
) MesocycleService {
	if startTimeout <= 0 {
		startTimeout = DefaultStartTimeout
	}
	return &mesocycleService{
		planRepo:      planRepo,
		mesocycleRepo: mesocycleRepo,
		workoutRepo:   workoutRepo,
		setRepo:       setRepo,
		tx:            tx,
		generator:     generator,
		archive:       archive,
		startTimeout:  startTimeout,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Create registers a pending mesocycle for the plan's athlete. Nothing is generated yet.
func (s *mesocycleService) Create(ctx context.Context, planID primitive.ObjectID, startDate time.Time) (*domain.Mesocycle, error) {
	if startDate.IsZero() {
		return nil, fmt.Errorf("%w: start date is required", ErrValidation)
	}
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, persistenceError("get plan", err)
	}
	days, err := s.planRepo.GetDaysByPlanID(ctx, planID)
	if err != nil {
		return nil, persistenceError("load plan days", err)
	}
	if len(days) == 0 {
		return nil, ErrNoPlanDays
	}

	y, m, d := startDate.UTC().Date()
	mesocycle := &domain.Mesocycle{
		PlanID:      plan.ID,
		AthleteID:   plan.AthleteID,
		StartDate:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		CurrentWeek: 1,
		Status:      domain.MesocyclePending,
	}
	id, err := s.mesocycleRepo.Create(ctx, mesocycle)
	if err != nil {
		return nil, persistenceError("create mesocycle", err)
	}
	mesocycle.ID = id

	logger.FromContext(ctx, s.logger).Info("mesocycle created",
		"mesocycle_id", id.Hex(),
		"athlete_id", plan.AthleteID.Hex(),
		"plan_id", plan.ID.Hex(),
	)
	return mesocycle, nil
}

// Start generates the schedule and activates the mesocycle in one transaction.
// Either every workout and set is written and the block is active, or nothing is.
func (s *mesocycleService) Start(ctx context.Context, mesocycleID primitive.ObjectID) (*MesocycleDetail, error) {
	log := logger.FromContext(ctx, s.logger).With("mesocycle_id", mesocycleID.Hex())

	mesocycle, err := s.getMesocycle(ctx, mesocycleID)
	if err != nil {
		return nil, err
	}
	if mesocycle.Status != domain.MesocyclePending {
		return nil, ErrMesocycleNotPending
	}

	startCtx, cancel := context.WithTimeout(ctx, s.startTimeout)
	defer cancel()

	var result *GenerationResult
	err = s.tx.WithinTransaction(startCtx, func(txCtx context.Context) error {
		active, err := s.mesocycleRepo.GetActiveByAthleteID(txCtx, mesocycle.AthleteID)
		switch {
		case err == nil && active.ID != mesocycle.ID:
			return ErrActiveMesocycleExists
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return persistenceError("check active mesocycle", err)
		}

		result, err = s.generator.Generate(txCtx, mesocycle)
		if err != nil {
			return err
		}

		// The conditional write enforces a single active block per athlete.
		err = s.mesocycleRepo.UpdateStatus(txCtx, mesocycle.ID, domain.MesocyclePending, domain.MesocycleActive, s.now())
		switch {
		case err == nil:
			return nil
		case errors.Is(err, repository.ErrConflict):
			return ErrActiveMesocycleExists
		case errors.Is(err, repository.ErrNotFound):
			return ErrMesocycleNotPending
		default:
			return fmt.Errorf("%w: %w", ErrStartFailed, err)
		}
	})
	if err != nil {
		// Write failures, commit included, surface as one fatal start error.
		if !isClassified(err) || (errors.Is(err, ErrPersistence) && !errors.Is(err, ErrStartFailed)) {
			err = fmt.Errorf("%w: %w", ErrStartFailed, err)
		}
		log.Error("mesocycle start failed", "athlete_id", mesocycle.AthleteID.Hex(), "error", err)
		return nil, err
	}

	log.Info("mesocycle started",
		"athlete_id", mesocycle.AthleteID.Hex(),
		"workouts", result.Workouts,
		"sets", result.Sets,
	)
	return s.GetByID(ctx, mesocycleID)
}

// Complete ends an active mesocycle normally.
func (s *mesocycleService) Complete(ctx context.Context, mesocycleID primitive.ObjectID) (*MesocycleDetail, error) {
	return s.finish(ctx, mesocycleID, domain.MesocycleCompleted)
}

// Cancel ends an active mesocycle early. Generated rows are kept.
func (s *mesocycleService) Cancel(ctx context.Context, mesocycleID primitive.ObjectID) (*MesocycleDetail, error) {
	return s.finish(ctx, mesocycleID, domain.MesocycleCancelled)
}

func (s *mesocycleService) finish(ctx context.Context, mesocycleID primitive.ObjectID, to domain.MesocycleStatus) (*MesocycleDetail, error) {
	mesocycle, err := s.getMesocycle(ctx, mesocycleID)
	if err != nil {
		return nil, err
	}
	if mesocycle.Status != domain.MesocycleActive {
		return nil, ErrMesocycleNotActive
	}

	err = s.mesocycleRepo.UpdateStatus(ctx, mesocycleID, domain.MesocycleActive, to, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMesocycleNotActive
		}
		return nil, persistenceError("update mesocycle status", err)
	}

	detail, err := s.GetByID(ctx, mesocycleID)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx, s.logger).Info("mesocycle finished",
		"mesocycle_id", mesocycleID.Hex(),
		"athlete_id", mesocycle.AthleteID.Hex(),
		"status", string(to),
		"completed_workouts", detail.CompletedWorkouts,
		"total_workouts", detail.TotalWorkouts,
	)
	s.archiveSnapshot(ctx, detail)
	return detail, nil
}

// archiveSnapshot uploads the detail view as JSON. Failures are logged only:
// the transition has already been committed.
func (s *mesocycleService) archiveSnapshot(ctx context.Context, detail *MesocycleDetail) {
	if s.archive == nil {
		return
	}
	log := logger.FromContext(ctx, s.logger).With("mesocycle_id", detail.ID.Hex())

	body, err := json.Marshal(detail)
	if err != nil {
		log.Error("failed to encode mesocycle archive", "error", err)
		return
	}
	key := ArchiveKey(detail.AthleteID, detail.ID)
	if err := s.archive.PutObject(ctx, key, "application/json", body); err != nil {
		log.Warn("failed to archive mesocycle", "key", key, "error", err)
		return
	}
	if err := s.mesocycleRepo.SetArchiveKey(ctx, detail.ID, key); err != nil {
		log.Warn("failed to record archive key, removing object", "key", key, "error", err)
		if delErr := s.archive.DeleteObject(ctx, key); delErr != nil {
			log.Warn("failed to remove orphaned archive", "key", key, "error", delErr)
		}
		return
	}
	log.Info("mesocycle archived", "key", key, "bytes", len(body))
}

// ArchiveKey builds the object key of a mesocycle snapshot.
func ArchiveKey(athleteID, mesocycleID primitive.ObjectID) string {
	return path.Join("mesocycles", athleteID.Hex(), mesocycleID.Hex(), uuid.NewString()+".json")
}

// ArchiveURL returns a temporary download URL for the mesocycle's snapshot.
func (s *mesocycleService) ArchiveURL(ctx context.Context, mesocycleID primitive.ObjectID) (string, error) {
	mesocycle, err := s.getMesocycle(ctx, mesocycleID)
	if err != nil {
		return "", err
	}
	if s.archive == nil || mesocycle.ArchiveKey == "" {
		return "", ErrArchiveNotFound
	}
	url, err := s.archive.GeneratePresignedDownloadURL(ctx, mesocycle.ArchiveKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", persistenceError("presign archive url", err)
	}
	return url, nil
}

// GetActive returns the athlete's active mesocycle.
func (s *mesocycleService) GetActive(ctx context.Context, athleteID primitive.ObjectID) (*MesocycleDetail, error) {
	mesocycle, err := s.mesocycleRepo.GetActiveByAthleteID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMesocycleNotFound
		}
		return nil, persistenceError("get active mesocycle", err)
	}
	return s.buildDetail(ctx, mesocycle)
}

// GetByID returns the detail view of a mesocycle.
func (s *mesocycleService) GetByID(ctx context.Context, mesocycleID primitive.ObjectID) (*MesocycleDetail, error) {
	mesocycle, err := s.getMesocycle(ctx, mesocycleID)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(ctx, mesocycle)
}

// ListByAthlete returns every mesocycle of an athlete, newest first.
func (s *mesocycleService) ListByAthlete(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Mesocycle, error) {
	mesocycles, err := s.mesocycleRepo.GetByAthleteID(ctx, athleteID)
	if err != nil {
		return nil, persistenceError("list mesocycles", err)
	}
	return mesocycles, nil
}

func (s *mesocycleService) getMesocycle(ctx context.Context, id primitive.ObjectID) (*domain.Mesocycle, error) {
	mesocycle, err := s.mesocycleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMesocycleNotFound
		}
		return nil, persistenceError("get mesocycle", err)
	}
	return mesocycle, nil
}

// buildDetail derives the week summaries from the stored workouts and sets.
func (s *mesocycleService) buildDetail(ctx context.Context, mesocycle *domain.Mesocycle) (*MesocycleDetail, error) {
	detail := &MesocycleDetail{
		ID:          mesocycle.ID,
		PlanID:      mesocycle.PlanID,
		AthleteID:   mesocycle.AthleteID,
		Status:      mesocycle.Status,
		CurrentWeek: mesocycle.CurrentWeek,
		StartDate:   mesocycle.StartDate,
		StartedAt:   mesocycle.StartedAt,
		EndedAt:     mesocycle.EndedAt,
		Weeks:       make([]WeekSummary, progression.WeeksPerBlock),
	}

	plan, err := s.planRepo.GetByID(ctx, mesocycle.PlanID)
	switch {
	case err == nil:
		detail.PlanName = plan.Name
	case !errors.Is(err, repository.ErrNotFound):
		return nil, persistenceError("get plan", err)
	}

	workouts, err := s.workoutRepo.GetByMesocycleID(ctx, mesocycle.ID)
	if err != nil {
		return nil, persistenceError("load workouts", err)
	}
	workoutIDs := make([]primitive.ObjectID, 0, len(workouts))
	for _, w := range workouts {
		workoutIDs = append(workoutIDs, w.ID)
	}
	var sets []domain.WorkoutSet
	if len(workoutIDs) > 0 {
		sets, err = s.setRepo.GetByWorkoutIDs(ctx, workoutIDs)
		if err != nil {
			return nil, persistenceError("load workout sets", err)
		}
	}
	totalSets := make(map[primitive.ObjectID]int)
	completedSets := make(map[primitive.ObjectID]int)
	for _, set := range sets {
		totalSets[set.WorkoutID]++
		if set.Status == domain.SetCompleted {
			completedSets[set.WorkoutID]++
		}
	}

	for i := range detail.Weeks {
		weekNumber := progression.WeekNumber(i)
		detail.Weeks[i] = WeekSummary{
			WeekNumber: weekNumber,
			IsDeload:   progression.IsDeloadWeekNumber(weekNumber),
			Workouts:   []WorkoutSummary{},
		}
	}
	for _, w := range workouts {
		if w.WeekNumber < 1 || w.WeekNumber > progression.WeeksPerBlock {
			continue
		}
		week := &detail.Weeks[progression.WeekIndex(w.WeekNumber)]
		week.Workouts = append(week.Workouts, WorkoutSummary{
			ID:            w.ID,
			PlanDayID:     w.PlanDayID,
			ScheduledDate: w.ScheduledDate,
			Status:        w.Status,
			TotalSets:     totalSets[w.ID],
			CompletedSets: completedSets[w.ID],
		})
		detail.TotalWorkouts++
		if w.Status == domain.WorkoutCompleted {
			week.CompletedWorkouts++
			detail.CompletedWorkouts++
		}
	}
	return detail, nil
}

// isClassified reports whether err already carries a service error kind.
func isClassified(err error) bool {
	for _, kind := range []error{ErrNotFound, ErrConfiguration, ErrInvalidState, ErrConflict, ErrPersistence, ErrValidation} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
