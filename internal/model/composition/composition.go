package composition

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Segment is one entry of the ordered list submitted to the merge backend.
type Segment struct {
	ID    string `bson:"id" json:"id"`
	Index int    `bson:"index" json:"index"`
	URL   string `bson:"url" json:"url"`
}

// CompositeResult is the derived merge state. MergedURL is present only after
// a successful merge and is cleared whenever a new merge attempt begins.
type CompositeResult struct {
	Segments  []Segment   `bson:"segments,omitempty" json:"segments,omitempty"`
	MergedURL string      `bson:"merged_url,omitempty" json:"merged_url,omitempty"`
	Status    MergeStatus `bson:"status" json:"status"`
	LastError string      `bson:"last_error,omitempty" json:"last_error,omitempty"`
}

// PublishRecord is the derived publish state. PublishedURL is present only
// after a successful publish; a new merge clears it implicitly.
type PublishRecord struct {
	PublishedURL string        `bson:"published_url,omitempty" json:"published_url,omitempty"`
	Status       PublishStatus `bson:"status" json:"status"`
	LastError    string        `bson:"last_error,omitempty" json:"last_error,omitempty"`
}

// Composition is the aggregate the orchestrator owns: the ordered dialog
// units plus the derived merge and publish state.
type Composition struct {
	ID        string          `bson:"id" json:"id"`
	OwnerID   string          `bson:"owner_id" json:"owner_id"`
	Title     string          `bson:"title,omitempty" json:"title,omitempty"`
	Summary   string          `bson:"summary,omitempty" json:"summary,omitempty"`
	Units     []DialogUnit    `bson:"units" json:"units"`
	NextIndex int             `bson:"next_index" json:"next_index"` // next unit index to hand out; indices are never reused
	Merge     CompositeResult `bson:"merge" json:"merge"`
	Publish   PublishRecord   `bson:"publish" json:"publish"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at" json:"updated_at"`
	DeletedAt *time.Time      `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
}

// Collection returns the collection name.
func (c *Composition) Collection() string {
	return "compositions"
}

// EnsureIndexes creates and maintains the collection's indexes.
func (c *Composition) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(c.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_owner_created"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// UnitPos returns the slice position of the unit with the given index.
func (c *Composition) UnitPos(index int) (int, bool) {
	for i := range c.Units {
		if c.Units[i].Index == index {
			return i, true
		}
	}
	return -1, false
}

// Clone returns a deep copy of the aggregate.
func (c *Composition) Clone() *Composition {
	out := *c
	out.Units = make([]DialogUnit, len(c.Units))
	for i := range c.Units {
		out.Units[i] = c.Units[i].Clone()
	}
	if c.Merge.Segments != nil {
		out.Merge.Segments = append([]Segment(nil), c.Merge.Segments...)
	}
	if c.DeletedAt != nil {
		t := *c.DeletedAt
		out.DeletedAt = &t
	}
	return &out
}
