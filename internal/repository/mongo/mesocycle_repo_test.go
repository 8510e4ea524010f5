package mongo

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMesocycleRepository_UpdateStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	now := time.Now().UTC()

	mt.Run("swaps status", func(mt *mtest.T) {
		repo := NewMongoMesocycleRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		err := repo.UpdateStatus(ctx, primitive.NewObjectID(), domain.MesocyclePending, domain.MesocycleActive, now)
		assert.NoError(t, err)
	})

	mt.Run("not in expected status", func(mt *mtest.T) {
		repo := NewMongoMesocycleRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repo.UpdateStatus(ctx, primitive.NewObjectID(), domain.MesocycleActive, domain.MesocycleCompleted, now)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	mt.Run("second active block is a conflict", func(mt *mtest.T) {
		repo := NewMongoMesocycleRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: test.mesocycles index: " + oneActiveIndexName,
		}))

		err := repo.UpdateStatus(ctx, primitive.NewObjectID(), domain.MesocyclePending, domain.MesocycleActive, now)
		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	mt.Run("concurrent transaction is a conflict", func(mt *mtest.T) {
		repo := NewMongoMesocycleRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    writeConflictCode,
			Name:    "WriteConflict",
			Message: "Write conflict during plan execution",
			Labels:  []string{"TransientTransactionError"},
		}))

		err := repo.UpdateStatus(ctx, primitive.NewObjectID(), domain.MesocyclePending, domain.MesocycleActive, now)
		assert.ErrorIs(t, err, repository.ErrConflict)
	})
}

func TestMesocycleRepository_GetActiveByAthleteID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("found", func(mt *mtest.T) {
		repo := NewMongoMesocycleRepository(mt.DB)
		id := primitive.NewObjectID()
		athleteID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.mesocycles", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "athleteId", Value: athleteID},
			{Key: "status", Value: "active"},
			{Key: "currentWeek", Value: 2},
		}))

		got, err := repo.GetActiveByAthleteID(ctx, athleteID)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, domain.MesocycleActive, got.Status)
		assert.Equal(t, 2, got.CurrentWeek)
	})

	mt.Run("none active", func(mt *mtest.T) {
		repo := NewMongoMesocycleRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.mesocycles", mtest.FirstBatch))

		_, err := repo.GetActiveByAthleteID(ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}
