package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Model is implemented by every persisted aggregate that manages its own
// indexes.
type Model interface {
	// Collection returns the collection name.
	Collection() string

	// EnsureIndexes creates and maintains the model's indexes.
	EnsureIndexes(ctx context.Context, db *mongo.Database) error
}

// EnsureAllIndexes creates indexes for all given models. Called once at
// startup.
func EnsureAllIndexes(ctx context.Context, db *mongo.Database, models ...Model) error {
	for _, model := range models {
		if err := model.EnsureIndexes(ctx, db); err != nil {
			return err
		}
	}
	return nil
}

// CreateIndexes is a helper for model implementations.
func CreateIndexes(ctx context.Context, coll *mongo.Collection, indexes []mongo.IndexModel) error {
	if len(indexes) == 0 {
		return nil
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
