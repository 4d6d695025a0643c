package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"contrapunto/internal/model/composition"
)

// EnsureIndexes creates the indexes for every persisted model. Single entry
// point, called at startup when MongoDB is configured.
func EnsureIndexes(db *mongo.Database) error {
	ctx := context.Background()

	models := []Model{
		&composition.Composition{},
	}

	return EnsureAllIndexes(ctx, db, models...)
}
