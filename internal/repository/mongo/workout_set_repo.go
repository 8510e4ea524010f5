package mongo

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	workoutSetCollectionName = "workout_sets"
	// DefaultSetBatchSize is the number of set rows written per InsertMany.
	DefaultSetBatchSize = 500
)

// mongoWorkoutSetRepository implements repository.WorkoutSetRepository
type mongoWorkoutSetRepository struct {
	collection *mongo.Collection
	batchSize  int
}

// NewMongoWorkoutSetRepository creates a new WorkoutSet repository. batchSize
// caps the rows per write; non-positive values fall back to DefaultSetBatchSize.
func NewMongoWorkoutSetRepository(db *mongo.Database, batchSize int) repository.WorkoutSetRepository {
	if batchSize <= 0 {
		batchSize = DefaultSetBatchSize
	}
	return &mongoWorkoutSetRepository{
		collection: db.Collection(workoutSetCollectionName),
		batchSize:  batchSize,
	}
}

// CreateMany inserts the sets in ordered chunks. IDs are assigned in slice
// order so reading back by _id returns generation order. A failed chunk
// stops the write; run inside a transaction to discard earlier chunks.
func (r *mongoWorkoutSetRepository) CreateMany(ctx context.Context, sets []domain.WorkoutSet) error {
	if len(sets) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range sets {
		if sets[i].WorkoutID == primitive.NilObjectID || sets[i].ExerciseID == primitive.NilObjectID {
			return errors.New("workout set requires workoutId and exerciseId")
		}
		sets[i].ID = primitive.NewObjectID()
		sets[i].CreatedAt = now
		sets[i].UpdatedAt = now
	}

	for start := 0; start < len(sets); start += r.batchSize {
		end := min(start+r.batchSize, len(sets))
		docs := make([]interface{}, 0, end-start)
		for i := start; i < end; i++ {
			docs = append(docs, sets[i])
		}
		if _, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
			return fmt.Errorf("insert sets %d-%d of %d: %w", start+1, end, len(sets), err)
		}
	}
	return nil
}

// GetByID retrieves a single set.
func (r *mongoWorkoutSetRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSet, error) {
	var set domain.WorkoutSet
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// GetByWorkoutID retrieves the sets of a workout in generation order.
func (r *mongoWorkoutSetRepository) GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.WorkoutSet, error) {
	return r.find(ctx, bson.M{"workoutId": workoutID})
}

// GetByWorkoutIDs retrieves the sets of several workouts in generation order.
func (r *mongoWorkoutSetRepository) GetByWorkoutIDs(ctx context.Context, workoutIDs []primitive.ObjectID) ([]domain.WorkoutSet, error) {
	if len(workoutIDs) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"workoutId": bson.M{"$in": workoutIDs}})
}

func (r *mongoWorkoutSetRepository) find(ctx context.Context, filter bson.M) ([]domain.WorkoutSet, error) {
	var sets []domain.WorkoutSet
	findOptions := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if err := findAll(ctx, r.collection, filter, findOptions, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// Update writes the actual numbers and status of a set.
func (r *mongoWorkoutSetRepository) Update(ctx context.Context, set *domain.WorkoutSet) error {
	if set.ID == primitive.NilObjectID {
		return errors.New("workout set ID is required for update")
	}
	updateDoc := bson.M{
		"$set": bson.M{
			"actualReps":   set.ActualReps,
			"actualWeight": set.ActualWeight,
			"status":       set.Status,
			"completedAt":  set.CompletedAt,
			"updatedAt":    time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": set.ID}, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateTargets rewrites the targets of pending sets with one bulk write per chunk.
// Sets that are no longer pending are left untouched.
func (r *mongoWorkoutSetRepository) UpdateTargets(ctx context.Context, updates []repository.SetTargetUpdate) error {
	now := time.Now().UTC()
	for start := 0; start < len(updates); start += r.batchSize {
		end := min(start+r.batchSize, len(updates))
		models := make([]mongo.WriteModel, 0, end-start)
		for _, u := range updates[start:end] {
			models = append(models, mongo.NewUpdateOneModel().
				SetFilter(bson.M{"_id": u.SetID, "status": domain.SetPending}).
				SetUpdate(bson.M{"$set": bson.M{
					"targetWeight": u.TargetWeight,
					"targetReps":   u.TargetReps,
					"updatedAt":    now,
				}}))
		}
		if _, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
			return fmt.Errorf("update set targets %d-%d of %d: %w", start+1, end, len(updates), err)
		}
	}
	return nil
}

// EnsureWorkoutSetIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutSetIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workoutId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "exerciseId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := db.Collection(workoutSetCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
