// internal/app/store/snapshot/mongo.go
package snapshot

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/dalemusser/classhub/internal/app/policy/rules"
	"github.com/dalemusser/classhub/internal/app/system/txn"
)

// MongoStore reads the mirrored classroom documents from MongoDB.
type MongoStore struct {
	db  *mongo.Database
	log *zap.Logger
}

// NewMongoStore wraps the mirror database.
func NewMongoStore(db *mongo.Database, logger *zap.Logger) *MongoStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MongoStore{db: db, log: logger}
}

// View opens a snapshot-read-concern session so all lookups of one decision
// observe the same point in time. Standalone servers do not support
// snapshot sessions; those degrade to plain reads, which are still
// per-lookup consistent.
func (s *MongoStore) View(ctx context.Context) (rules.Snapshot, func(), error) {
	sess, err := s.db.Client().StartSession(options.Session().SetSnapshot(true))
	if err != nil {
		if txn.IsNotSupported(err) {
			s.log.Debug("snapshot sessions unsupported; using plain reads")
			return &mongoView{store: s}, func() {}, nil
		}
		return nil, nil, err
	}
	release := func() { sess.EndSession(context.Background()) }
	return &mongoView{store: s, sess: sess}, release, nil
}

// mongoView is one decision's read view. A nil sess means plain reads.
type mongoView struct {
	store *MongoStore
	sess  mongo.Session
}

// Lookup resolves a document path against the mirror. Unknown collection
// chains and missing documents are absent (nil, nil); only store failures
// surface as errors, and the policy layer folds those into deny.
func (v *mongoView) Lookup(ctx context.Context, p rules.Path) (rules.Document, error) {
	collection, filter, ok := filterFor(p)
	if !ok {
		return nil, nil
	}

	var raw bson.M
	find := func(c context.Context) error {
		return v.store.db.Collection(collection).FindOne(c, filter).Decode(&raw)
	}

	var err error
	if v.sess != nil {
		err = mongo.WithSession(ctx, v.sess, func(sc mongo.SessionContext) error {
			return find(sc)
		})
		if err != nil && txn.IsNotSupported(err) {
			// Session turned out to be unusable on this deployment; the
			// plain read below is the degraded path.
			err = find(ctx)
		}
	} else {
		err = find(ctx)
	}

	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return Normalize(raw), nil
}

// Normalize converts a decoded bson document into the plain map/slice
// shapes the rules.Document accessors understand. The in-memory fixtures
// reuse it to mirror typed models the same way the mongo view would.
func Normalize(m bson.M) rules.Document {
	doc := make(rules.Document, len(m))
	for k, v := range m {
		doc[k] = normalizeValue(v)
	}
	return doc
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		return map[string]any(Normalize(t))
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = normalizeValue(e.Value)
		}
		return m
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}
