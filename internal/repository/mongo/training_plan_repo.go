// internal/repository/mongo/training_plan_repo.go
package mongo

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	trainingPlanCollectionName    = "training_plans"
	planDayCollectionName         = "plan_days"
	planDayExerciseCollectionName = "plan_day_exercises"
)

// mongoTrainingPlanRepository implements repository.TrainingPlanRepository
type mongoTrainingPlanRepository struct {
	plans        *mongo.Collection
	days         *mongo.Collection
	dayExercises *mongo.Collection
}

// NewMongoTrainingPlanRepository creates a new TrainingPlan repository.
func NewMongoTrainingPlanRepository(db *mongo.Database) repository.TrainingPlanRepository {
	return &mongoTrainingPlanRepository{
		plans:        db.Collection(trainingPlanCollectionName),
		days:         db.Collection(planDayCollectionName),
		dayExercises: db.Collection(planDayExerciseCollectionName),
	}
}

// Create inserts a new training plan.
func (r *mongoTrainingPlanRepository) Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error) {
	if plan.AthleteID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("plan requires athleteId and name")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	return insertOne(ctx, r.plans, plan)
}

// GetByID retrieves a single training plan by its ID.
func (r *mongoTrainingPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error) {
	var plan domain.TrainingPlan
	if err := findOne(ctx, r.plans, bson.M{"_id": id}, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// CreateDay inserts a new plan day.
func (r *mongoTrainingPlanRepository) CreateDay(ctx context.Context, day *domain.PlanDay) (primitive.ObjectID, error) {
	if day.PlanID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("plan day requires planId")
	}
	day.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	day.CreatedAt = now
	day.UpdatedAt = now

	return insertOne(ctx, r.days, day)
}

// GetDayByID retrieves a single plan day.
func (r *mongoTrainingPlanRepository) GetDayByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanDay, error) {
	var day domain.PlanDay
	if err := findOne(ctx, r.days, bson.M{"_id": id}, &day); err != nil {
		return nil, err
	}
	return &day, nil
}

// GetDaysByPlanID retrieves the days of a plan in weekday order.
func (r *mongoTrainingPlanRepository) GetDaysByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanDay, error) {
	var days []domain.PlanDay
	findOptions := options.Find().SetSort(bson.D{{Key: "dayOfWeek", Value: 1}, {Key: "sortOrder", Value: 1}})
	if err := findAll(ctx, r.days, bson.M{"planId": planID}, findOptions, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// CreateDayExercise inserts a new exercise prescription on a plan day.
func (r *mongoTrainingPlanRepository) CreateDayExercise(ctx context.Context, exercise *domain.PlanDayExercise) (primitive.ObjectID, error) {
	if exercise.PlanDayID == primitive.NilObjectID || exercise.ExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("plan day exercise requires planDayId and exerciseId")
	}
	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	return insertOne(ctx, r.dayExercises, exercise)
}

// GetDayExercisesByDayID retrieves the exercises of a plan day in sort order.
func (r *mongoTrainingPlanRepository) GetDayExercisesByDayID(ctx context.Context, dayID primitive.ObjectID) ([]domain.PlanDayExercise, error) {
	var exercises []domain.PlanDayExercise
	findOptions := options.Find().SetSort(bson.D{{Key: "sortOrder", Value: 1}, {Key: "_id", Value: 1}})
	if err := findAll(ctx, r.dayExercises, bson.M{"planDayId": dayID}, findOptions, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// EnsureTrainingPlanIndexes creates indexes for plans, plan days and day exercises.
func EnsureTrainingPlanIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(trainingPlanCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "athleteId", Value: 1}},
	}); err != nil {
		return err
	}
	if _, err := db.Collection(planDayCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "planId", Value: 1}, {Key: "dayOfWeek", Value: 1}, {Key: "sortOrder", Value: 1}},
	}); err != nil {
		return err
	}
	_, err := db.Collection(planDayExerciseCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "planDayId", Value: 1}, {Key: "sortOrder", Value: 1}},
	})
	return err
}
