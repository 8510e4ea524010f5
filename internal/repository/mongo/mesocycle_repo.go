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
	mesocycleCollectionName = "mesocycles"
	// oneActiveIndexName backs the "one active mesocycle per athlete" invariant.
	oneActiveIndexName = "one_active_mesocycle_per_athlete"
)

// mongoMesocycleRepository implements repository.MesocycleRepository
type mongoMesocycleRepository struct {
	collection *mongo.Collection
}

// NewMongoMesocycleRepository creates a new Mesocycle repository.
func NewMongoMesocycleRepository(db *mongo.Database) repository.MesocycleRepository {
	return &mongoMesocycleRepository{
		collection: db.Collection(mesocycleCollectionName),
	}
}

// Create inserts a new mesocycle.
func (r *mongoMesocycleRepository) Create(ctx context.Context, mesocycle *domain.Mesocycle) (primitive.ObjectID, error) {
	if mesocycle.PlanID == primitive.NilObjectID || mesocycle.AthleteID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("mesocycle requires planId and athleteId")
	}
	mesocycle.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	mesocycle.CreatedAt = now
	mesocycle.UpdatedAt = now

	return insertOne(ctx, r.collection, mesocycle)
}

// GetByID retrieves a single mesocycle by its ID.
func (r *mongoMesocycleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Mesocycle, error) {
	var mesocycle domain.Mesocycle
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &mesocycle); err != nil {
		return nil, err
	}
	return &mesocycle, nil
}

// GetActiveByAthleteID retrieves the athlete's active mesocycle.
func (r *mongoMesocycleRepository) GetActiveByAthleteID(ctx context.Context, athleteID primitive.ObjectID) (*domain.Mesocycle, error) {
	var mesocycle domain.Mesocycle
	filter := bson.M{"athleteId": athleteID, "status": domain.MesocycleActive}
	if err := findOne(ctx, r.collection, filter, &mesocycle); err != nil {
		return nil, err
	}
	return &mesocycle, nil
}

// GetByAthleteID retrieves every mesocycle of an athlete, newest first.
func (r *mongoMesocycleRepository) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Mesocycle, error) {
	var mesocycles []domain.Mesocycle
	findOptions := options.Find().SetSort(bson.D{{Key: "startDate", Value: -1}})
	if err := findAll(ctx, r.collection, bson.M{"athleteId": athleteID}, findOptions, &mesocycles); err != nil {
		return nil, err
	}
	return mesocycles, nil
}

// UpdateStatus is a compare-and-swap on the status field. The unique partial
// index rejects a second active mesocycle for the same athlete.
func (r *mongoMesocycleRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.MesocycleStatus, at time.Time) error {
	set := bson.M{
		"status":    to,
		"updatedAt": at,
	}
	switch {
	case to == domain.MesocycleActive:
		set["startedAt"] = at
	case to.IsTerminal():
		set["endedAt"] = at
	}

	filter := bson.M{"_id": id, "status": from}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) || isWriteConflict(err) {
			return repository.ErrConflict
		}
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// writeConflictCode is returned when two transactions touch the same document
// or index key.
const writeConflictCode = 112

func isWriteConflict(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == writeConflictCode
	}
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			if we.Code == writeConflictCode {
				return true
			}
		}
	}
	return false
}

// SetCurrentWeek records the week the athlete is training in.
func (r *mongoMesocycleRepository) SetCurrentWeek(ctx context.Context, id primitive.ObjectID, week int) error {
	return r.set(ctx, id, bson.M{"currentWeek": week})
}

// SetArchiveKey records where the finished block was archived.
func (r *mongoMesocycleRepository) SetArchiveKey(ctx context.Context, id primitive.ObjectID, key string) error {
	return r.set(ctx, id, bson.M{"archiveKey": key})
}

func (r *mongoMesocycleRepository) set(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureMesocycleIndexes creates the mesocycle indexes, including the unique
// partial index that allows a single active block per athlete.
func EnsureMesocycleIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "athleteId", Value: 1}},
			Options: options.Index().
				SetName(oneActiveIndexName).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": domain.MesocycleActive}),
		},
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}, {Key: "startDate", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := db.Collection(mesocycleCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
