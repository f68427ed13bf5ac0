// internal/app/store/decisions/store.go
package decisions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Decision sources
const (
	SourceAPI     = "api"
	SourceConsole = "console"
)

// Record is one evaluated access decision, kept for review.
type Record struct {
	ID        string    `bson:"_id" json:"id"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`

	Actor     string `bson:"actor" json:"actor"`
	Operation string `bson:"operation" json:"operation"`
	Path      string `bson:"path" json:"path"`

	Allowed bool   `bson:"allowed" json:"allowed"`
	Rule    string `bson:"rule,omitempty" json:"rule,omitempty"`
	Ruleset string `bson:"ruleset,omitempty" json:"ruleset,omitempty"`

	// Source says which surface asked: the decision API or the operator
	// console.
	Source string `bson:"source" json:"source"`
	IP     string `bson:"ip,omitempty" json:"ip,omitempty"`
	// Note is operator-entered context from console what-if runs.
	Note string `bson:"note,omitempty" json:"note,omitempty"`
}

// QueryFilter narrows a decision record query.
type QueryFilter struct {
	Actor     string
	Ruleset   string
	Allowed   *bool
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int64
	Offset    int64
}

// Store manages decision records.
type Store struct {
	c *mongo.Collection
}

// New creates a decision record Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("decisions")}
}

// EnsureIndexes creates the indexes the review queries need.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Recent-first review listing
		{
			Keys: bson.D{{Key: "timestamp", Value: -1}},
		},
		// Per-actor history
		{
			Keys: bson.D{
				{Key: "actor", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		// Denial hunting by rule generation
		{
			Keys: bson.D{
				{Key: "ruleset", Value: 1},
				{Key: "allowed", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Insert stores one decision record, filling ID and Timestamp when unset.
func (s *Store) Insert(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	_, err := s.c.InsertOne(ctx, rec)
	return err
}

// Query retrieves decision records matching the filter, most recent first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Record, error) {
	query := bson.M{}

	if filter.Actor != "" {
		query["actor"] = filter.Actor
	}
	if filter.Ruleset != "" {
		query["ruleset"] = filter.Ruleset
	}
	if filter.Allowed != nil {
		query["allowed"] = *filter.Allowed
	}
	if filter.StartTime != nil || filter.EndTime != nil {
		timeQuery := bson.M{}
		if filter.StartTime != nil {
			timeQuery["$gte"] = *filter.StartTime
		}
		if filter.EndTime != nil {
			timeQuery["$lte"] = *filter.EndTime
		}
		query["timestamp"] = timeQuery
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cursor, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CountByFilter counts decision records matching the filter.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	query := bson.M{}
	if filter.Actor != "" {
		query["actor"] = filter.Actor
	}
	if filter.Ruleset != "" {
		query["ruleset"] = filter.Ruleset
	}
	if filter.Allowed != nil {
		query["allowed"] = *filter.Allowed
	}
	return s.c.CountDocuments(ctx, query)
}

// Recent returns the newest records, for the console review table.
func (s *Store) Recent(ctx context.Context, limit int64) ([]Record, error) {
	return s.Query(ctx, QueryFilter{Limit: limit})
}

// Denials returns recent denied decisions, the usual starting point when a
// user reports a surprise "permission denied".
func (s *Store) Denials(ctx context.Context, since time.Time, limit int64) ([]Record, error) {
	denied := false
	return s.Query(ctx, QueryFilter{
		Allowed:   &denied,
		StartTime: &since,
		Limit:     limit,
	})
}
