package mongo

import (
	"alcyxob/training-planner/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(uri string) (*mongo.Client, error) {
	// Set context with timeout for the connection attempt
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the primary node to verify the connection.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second) // Shorter timeout for ping
	defer pingCancel()

	err = client.Ping(pingCtx, readpref.Primary())
	if err != nil {
		// If ping fails, disconnect the client before returning the error
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// mongoTransactor implements repository.Transactor with a client session.
// Multi-document transactions need a replica set or sharded cluster.
type mongoTransactor struct {
	client *mongo.Client
}

// NewTransactor creates a Transactor bound to the client.
func NewTransactor(client *mongo.Client) repository.Transactor {
	return &mongoTransactor{client: client}
}

// WithinTransaction runs fn in a single transaction. fn is never re-run: a
// transient commit failure is returned to the caller like any other error.
func (t *mongoTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(context.Background())

	return mongo.WithSession(ctx, session, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(context.Background())
			return err
		}
		return sc.CommitTransaction(context.Background())
	})
}

// EnsureIndexes creates the indexes of every collection. Call during startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ensure := []func(context.Context, *mongo.Database) error{
		EnsureExerciseIndexes,
		EnsureTrainingPlanIndexes,
		EnsureMesocycleIndexes,
		EnsureWorkoutIndexes,
		EnsureWorkoutSetIndexes,
	}
	for _, fn := range ensure {
		if err := fn(ctx, db); err != nil {
			return err
		}
	}
	return nil
}
