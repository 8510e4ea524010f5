package mongo

import (
	"alcyxob/training-planner/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func insertOne(ctx context.Context, collection *mongo.Collection, doc interface{}) (primitive.ObjectID, error) {
	result, err := collection.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// findOne decodes a single document into out, mapping a miss to repository.ErrNotFound.
func findOne(ctx context.Context, collection *mongo.Collection, filter interface{}, out interface{}) error {
	err := collection.FindOne(ctx, filter).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repository.ErrNotFound
		}
		return err
	}
	return nil
}

// findAll decodes every matching document into out. An empty result is not an error.
func findAll(ctx context.Context, collection *mongo.Collection, filter interface{}, opts *options.FindOptions, out interface{}) error {
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, out); err != nil {
		return err
	}
	return cursor.Err()
}
