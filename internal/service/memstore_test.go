package service

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/repository"
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory backend for every repository. Transactions run
// one at a time, snapshot the whole store and restore it when fn fails.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	exercises    map[primitive.ObjectID]domain.Exercise
	plans        map[primitive.ObjectID]domain.TrainingPlan
	days         []domain.PlanDay
	dayExercises []domain.PlanDayExercise
	mesocycles   map[primitive.ObjectID]domain.Mesocycle
	workouts     []domain.Workout
	sets         []domain.WorkoutSet

	createManyCalls int
	commits         int
	rollbacks       int

	// Fault injection.
	failCreateMany    error
	failUpdateStatus  error
	failSetArchiveKey error
}

type memSnapshot struct {
	exercises    map[primitive.ObjectID]domain.Exercise
	plans        map[primitive.ObjectID]domain.TrainingPlan
	days         []domain.PlanDay
	dayExercises []domain.PlanDayExercise
	mesocycles   map[primitive.ObjectID]domain.Mesocycle
	workouts     []domain.Workout
	sets         []domain.WorkoutSet
}

func newMemStore() *memStore {
	return &memStore{
		exercises:  make(map[primitive.ObjectID]domain.Exercise),
		plans:      make(map[primitive.ObjectID]domain.TrainingPlan),
		mesocycles: make(map[primitive.ObjectID]domain.Mesocycle),
	}
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		exercises:    maps.Clone(s.exercises),
		plans:        maps.Clone(s.plans),
		days:         slices.Clone(s.days),
		dayExercises: slices.Clone(s.dayExercises),
		mesocycles:   maps.Clone(s.mesocycles),
		workouts:     slices.Clone(s.workouts),
		sets:         slices.Clone(s.sets),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exercises = snap.exercises
	s.plans = snap.plans
	s.days = snap.days
	s.dayExercises = snap.dayExercises
	s.mesocycles = snap.mesocycles
	s.workouts = snap.workouts
	s.sets = snap.sets
}

// WithinTransaction implements repository.Transactor.
func (s *memStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		s.mu.Lock()
		s.rollbacks++
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	s.commits++
	s.mu.Unlock()
	return nil
}

func (s *memStore) workoutsOf(mesocycleID primitive.ObjectID) []domain.Workout {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Workout
	for _, w := range s.workouts {
		if w.MesocycleID == mesocycleID {
			out = append(out, w)
		}
	}
	return out
}

func (s *memStore) setsOf(workoutID primitive.ObjectID) []domain.WorkoutSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.WorkoutSet
	for _, set := range s.sets {
		if set.WorkoutID == workoutID {
			out = append(out, set)
		}
	}
	return out
}

// --- ExerciseRepository ---

type memExerciseRepo struct{ s *memStore }

func (r memExerciseRepo) Create(_ context.Context, e *domain.Exercise) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = primitive.NewObjectID()
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = e.CreatedAt
	r.s.exercises[e.ID] = *e
	return e.ID, nil
}

func (r memExerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r memExerciseRepo) List(_ context.Context) ([]domain.Exercise, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Exercise, 0, len(r.s.exercises))
	for _, e := range r.s.exercises {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b domain.Exercise) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out, nil
}

// --- TrainingPlanRepository ---

type memPlanRepo struct{ s *memStore }

func (r memPlanRepo) Create(_ context.Context, p *domain.TrainingPlan) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = primitive.NewObjectID()
	r.s.plans[p.ID] = *p
	return p.ID, nil
}

func (r memPlanRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r memPlanRepo) CreateDay(_ context.Context, d *domain.PlanDay) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d.ID = primitive.NewObjectID()
	r.s.days = append(r.s.days, *d)
	return d.ID, nil
}

func (r memPlanRepo) GetDayByID(_ context.Context, id primitive.ObjectID) (*domain.PlanDay, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.days {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memPlanRepo) GetDaysByPlanID(_ context.Context, planID primitive.ObjectID) ([]domain.PlanDay, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.PlanDay
	for _, d := range r.s.days {
		if d.PlanID == planID {
			out = append(out, d)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.PlanDay) int {
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek - b.DayOfWeek
		}
		return a.SortOrder - b.SortOrder
	})
	return out, nil
}

func (r memPlanRepo) CreateDayExercise(_ context.Context, e *domain.PlanDayExercise) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = primitive.NewObjectID()
	r.s.dayExercises = append(r.s.dayExercises, *e)
	return e.ID, nil
}

func (r memPlanRepo) GetDayExercisesByDayID(_ context.Context, dayID primitive.ObjectID) ([]domain.PlanDayExercise, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.PlanDayExercise
	for _, e := range r.s.dayExercises {
		if e.PlanDayID == dayID {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.PlanDayExercise) int { return a.SortOrder - b.SortOrder })
	return out, nil
}

// --- MesocycleRepository ---

type memMesocycleRepo struct{ s *memStore }

func (r memMesocycleRepo) Create(_ context.Context, m *domain.Mesocycle) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now().UTC()
	m.UpdatedAt = m.CreatedAt
	r.s.mesocycles[m.ID] = *m
	return m.ID, nil
}

func (r memMesocycleRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Mesocycle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.mesocycles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r memMesocycleRepo) GetActiveByAthleteID(_ context.Context, athleteID primitive.ObjectID) (*domain.Mesocycle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.mesocycles {
		if m.AthleteID == athleteID && m.Status == domain.MesocycleActive {
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memMesocycleRepo) GetByAthleteID(_ context.Context, athleteID primitive.ObjectID) ([]domain.Mesocycle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Mesocycle
	for _, m := range r.s.mesocycles {
		if m.AthleteID == athleteID {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b domain.Mesocycle) int { return b.StartDate.Compare(a.StartDate) })
	return out, nil
}

// UpdateStatus mirrors the Mongo CAS and the unique partial index.
func (r memMesocycleRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to domain.MesocycleStatus, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failUpdateStatus != nil {
		return r.s.failUpdateStatus
	}
	m, ok := r.s.mesocycles[id]
	if !ok || m.Status != from {
		return repository.ErrNotFound
	}
	if to == domain.MesocycleActive {
		for _, other := range r.s.mesocycles {
			if other.ID != id && other.AthleteID == m.AthleteID && other.Status == domain.MesocycleActive {
				return repository.ErrConflict
			}
		}
		m.StartedAt = &at
	}
	if to.IsTerminal() {
		m.EndedAt = &at
	}
	m.Status = to
	m.UpdatedAt = at
	r.s.mesocycles[id] = m
	return nil
}

func (r memMesocycleRepo) SetCurrentWeek(_ context.Context, id primitive.ObjectID, week int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.mesocycles[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.CurrentWeek = week
	r.s.mesocycles[id] = m
	return nil
}

func (r memMesocycleRepo) SetArchiveKey(_ context.Context, id primitive.ObjectID, key string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failSetArchiveKey != nil {
		return r.s.failSetArchiveKey
	}
	m, ok := r.s.mesocycles[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.ArchiveKey = key
	r.s.mesocycles[id] = m
	return nil
}

// --- WorkoutRepository ---

type memWorkoutRepo struct{ s *memStore }

func (r memWorkoutRepo) Create(_ context.Context, w *domain.Workout) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w.ID = primitive.NewObjectID()
	r.s.workouts = append(r.s.workouts, *w)
	return w.ID, nil
}

func (r memWorkoutRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.s.workouts {
		if w.ID == id {
			return &w, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memWorkoutRepo) GetByMesocycleID(_ context.Context, mesocycleID primitive.ObjectID) ([]domain.Workout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Workout
	for _, w := range r.s.workouts {
		if w.MesocycleID == mesocycleID {
			out = append(out, w)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Workout) int {
		if a.WeekNumber != b.WeekNumber {
			return a.WeekNumber - b.WeekNumber
		}
		return a.ScheduledDate.Compare(b.ScheduledDate)
	})
	return out, nil
}

func (r memWorkoutRepo) Update(_ context.Context, w *domain.Workout) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.workouts {
		if r.s.workouts[i].ID == w.ID {
			r.s.workouts[i].Status = w.Status
			r.s.workouts[i].StartedAt = w.StartedAt
			r.s.workouts[i].CompletedAt = w.CompletedAt
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- WorkoutSetRepository ---

type memSetRepo struct{ s *memStore }

func (r memSetRepo) CreateMany(_ context.Context, sets []domain.WorkoutSet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.createManyCalls++
	if r.s.failCreateMany != nil {
		return r.s.failCreateMany
	}
	for i := range sets {
		sets[i].ID = primitive.NewObjectID()
		r.s.sets = append(r.s.sets, sets[i])
	}
	return nil
}

func (r memSetRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutSet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, set := range r.s.sets {
		if set.ID == id {
			return &set, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memSetRepo) GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.WorkoutSet, error) {
	return r.GetByWorkoutIDs(ctx, []primitive.ObjectID{workoutID})
}

func (r memSetRepo) GetByWorkoutIDs(_ context.Context, workoutIDs []primitive.ObjectID) ([]domain.WorkoutSet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.WorkoutSet
	for _, set := range r.s.sets {
		if slices.Contains(workoutIDs, set.WorkoutID) {
			out = append(out, set)
		}
	}
	return out, nil
}

func (r memSetRepo) Update(_ context.Context, set *domain.WorkoutSet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.sets {
		if r.s.sets[i].ID == set.ID {
			r.s.sets[i].ActualReps = set.ActualReps
			r.s.sets[i].ActualWeight = set.ActualWeight
			r.s.sets[i].Status = set.Status
			r.s.sets[i].CompletedAt = set.CompletedAt
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r memSetRepo) UpdateTargets(_ context.Context, updates []repository.SetTargetUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range updates {
		for i := range r.s.sets {
			if r.s.sets[i].ID == u.SetID && r.s.sets[i].Status == domain.SetPending {
				r.s.sets[i].TargetWeight = u.TargetWeight
				r.s.sets[i].TargetReps = u.TargetReps
			}
		}
	}
	return nil
}

// memArchive is an in-memory storage.ArchiveStorage.
type memArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut error
}

func newMemArchive() *memArchive {
	return &memArchive{objects: make(map[string][]byte)}
}

func (a *memArchive) PutObject(_ context.Context, key, _ string, body []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failPut != nil {
		return a.failPut
	}
	a.objects[key] = body
	return nil
}

func (a *memArchive) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://archive.test/" + key, nil
}

func (a *memArchive) DeleteObject(_ context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.objects, key)
	return nil
}

// testEnv wires every service to one memStore.
type testEnv struct {
	store       *memStore
	archive     *memArchive
	exercises   ExerciseService
	plans       PlanService
	mesocycles  MesocycleService
	workouts    WorkoutService
	progression ProgressionService
}

func newTestEnv() *testEnv {
	store := newMemStore()
	archive := newMemArchive()
	log := discardLogger()

	exerciseRepo := memExerciseRepo{store}
	planRepo := memPlanRepo{store}
	mesocycleRepo := memMesocycleRepo{store}
	workoutRepo := memWorkoutRepo{store}
	setRepo := memSetRepo{store}

	generator := NewScheduleGenerator(planRepo, exerciseRepo, workoutRepo, setRepo, log)
	return &testEnv{
		store:       store,
		archive:     archive,
		exercises:   NewExerciseService(exerciseRepo),
		plans:       NewPlanService(planRepo, exerciseRepo),
		mesocycles:  NewMesocycleService(planRepo, mesocycleRepo, workoutRepo, setRepo, store, generator, archive, time.Minute, log),
		workouts:    NewWorkoutService(mesocycleRepo, workoutRepo, setRepo, store, log),
		progression: NewProgressionService(planRepo, mesocycleRepo, workoutRepo, setRepo, store, log),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
