package composition

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	model "contrapunto/internal/model/composition"
)

// ErrNotFound is returned when no matching composition exists.
var ErrNotFound = errors.New("composition not found")

// Repository persists composition aggregates.
type Repository interface {
	Save(ctx context.Context, c *model.Composition) error
	FindByID(ctx context.Context, id string) (*model.Composition, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*model.Composition, error)
	SoftDelete(ctx context.Context, id string) error
}

// Repo is the MongoDB implementation.
type Repo struct {
	coll *mongo.Collection
}

// NewRepo creates the repository.
func NewRepo(db *mongo.Database) *Repo {
	var c model.Composition
	return &Repo{coll: db.Collection(c.Collection())}
}

// Save upserts the whole aggregate. The orchestrator always writes complete
// snapshots, never partial updates; that keeps the document consistent with
// the in-memory state it mirrors.
func (r *Repo) Save(ctx context.Context, c *model.Composition) error {
	c.UpdatedAt = time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = c.UpdatedAt
	}

	filter := bson.M{"id": c.ID}
	opts := options.Replace().SetUpsert(true)
	_, err := r.coll.ReplaceOne(ctx, filter, c, opts)
	return err
}

// FindByID loads one aggregate.
func (r *Repo) FindByID(ctx context.Context, id string) (*model.Composition, error) {
	var c model.Composition
	err := r.coll.FindOne(ctx, bson.M{"id": id, "deleted_at": nil}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByOwner lists an operator's compositions, newest first.
func (r *Repo) FindByOwner(ctx context.Context, ownerID string) ([]*model.Composition, error) {
	filter := bson.M{"owner_id": ownerID, "deleted_at": nil}
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comps []*model.Composition
	if err := cursor.All(ctx, &comps); err != nil {
		return nil, err
	}
	return comps, nil
}

// SoftDelete marks the aggregate deleted.
func (r *Repo) SoftDelete(ctx context.Context, id string) error {
	now := time.Now()
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "deleted_at": nil},
		bson.M{"$set": bson.M{"deleted_at": now, "updated_at": now}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
