// internal/app/system/ratelimit/mongo.go
package ratelimit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName holds one document per failed attempt.
const CollectionName = "rate_limit_failures"

type failure struct {
	Key string    `bson:"key"`
	At  time.Time `bson:"at"`
}

// MongoStore shares failure counts between server instances. A TTL index on
// "at" lets MongoDB expire old attempts; counts still filter on the window so
// the TTL monitor's lag never extends a lockout.
type MongoStore struct {
	c      *mongo.Collection
	window time.Duration
	max    int
	now    func() time.Time
}

// NewMongoStore allows max failures per window, stored in db.
func NewMongoStore(db *mongo.Database, window time.Duration, max int) *MongoStore {
	if window <= 0 {
		window = DefaultWindow
	}
	if max <= 0 {
		max = DefaultMaxAttempts
	}
	return &MongoStore{
		c:      db.Collection(CollectionName),
		window: window,
		max:    max,
		now:    time.Now,
	}
}

// EnsureIndexes creates the key lookup index and the TTL index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "key", Value: 1}, {Key: "at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(s.window / time.Second)),
		},
	})
	return err
}

func (s *MongoStore) IsLimited(ctx context.Context, key string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"key": key,
		"at":  bson.M{"$gt": s.now().UTC().Add(-s.window)},
	})
	if err != nil {
		return false, err
	}
	return n >= int64(s.max), nil
}

func (s *MongoStore) RecordFailure(ctx context.Context, key string) error {
	_, err := s.c.InsertOne(ctx, failure{Key: key, At: s.now().UTC()})
	return err
}

func (s *MongoStore) Clear(ctx context.Context, key string) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"key": key})
	return err
}
