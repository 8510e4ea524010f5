package service

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Service Interface ---
type ExerciseService interface {
	CreateExercise(ctx context.Context, name, description, muscleGroup string) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	ListExercises(ctx context.Context) ([]domain.Exercise, error)
}

// --- Service Implementation ---

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
	}
}

// CreateExercise adds an exercise to the library.
func (s *exerciseService) CreateExercise(ctx context.Context, name, description, muscleGroup string) (*domain.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: exercise name is required", ErrValidation)
	}

	exercise := &domain.Exercise{
		Name:        name,
		Description: description,
		MuscleGroup: muscleGroup,
	}
	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, persistenceError("create exercise", err)
	}
	exercise.ID = exerciseID
	return exercise, nil
}

// GetExerciseByID retrieves a single exercise.
func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, persistenceError("get exercise", err)
	}
	return exercise, nil
}

// ListExercises returns the whole library, sorted by name.
func (s *exerciseService) ListExercises(ctx context.Context) ([]domain.Exercise, error) {
	exercises, err := s.exerciseRepo.List(ctx)
	if err != nil {
		return nil, persistenceError("list exercises", err)
	}
	return exercises, nil
}
