// internal/repository/mongo/workout_repo.go
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

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.MesocycleID == primitive.NilObjectID || workout.PlanDayID == primitive.NilObjectID || workout.WeekNumber < 1 {
		return primitive.NilObjectID, errors.New("workout requires mesocycleId, planDayId, and weekNumber")
	}
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	return insertOne(ctx, r.collection, workout)
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &workout); err != nil {
		return nil, err
	}
	return &workout, nil
}

// GetByMesocycleID retrieves all workouts of a mesocycle in schedule order.
func (r *mongoWorkoutRepository) GetByMesocycleID(ctx context.Context, mesocycleID primitive.ObjectID) ([]domain.Workout, error) {
	var workouts []domain.Workout
	findOptions := options.Find().SetSort(bson.D{{Key: "weekNumber", Value: 1}, {Key: "scheduledDate", Value: 1}})
	if err := findAll(ctx, r.collection, bson.M{"mesocycleId": mesocycleID}, findOptions, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// Update writes the execution state of a workout.
func (r *mongoWorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	if workout.ID == primitive.NilObjectID {
		return errors.New("workout ID is required for update")
	}

	// MesocycleID, PlanDayID and WeekNumber are fixed at generation time.
	filter := bson.M{"_id": workout.ID}
	updateDoc := bson.M{
		"$set": bson.M{
			"status":        workout.Status,
			"scheduledDate": workout.ScheduledDate,
			"startedAt":     workout.StartedAt,
			"completedAt":   workout.CompletedAt,
			"updatedAt":     time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "mesocycleId", Value: 1}, {Key: "weekNumber", Value: 1}, {Key: "scheduledDate", Value: 1}},
			Options: options.Index(),
		},
		{
			// One workout per plan day per week within a block
			Keys:    bson.D{{Key: "mesocycleId", Value: 1}, {Key: "planDayId", Value: 1}, {Key: "weekNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := db.Collection(workoutCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
