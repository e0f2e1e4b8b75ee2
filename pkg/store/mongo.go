package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding snapshot entries.
const CollectionName = "snapshots"

const connectTimeout = 10 * time.Second

// MongoStore persists entries in MongoDB.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri, verifies the connection and ensures the
// history index exists.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(database).Collection(CollectionName)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "pipeline", Value: 1}, {Key: "provider", Value: 1}, {Key: "fetchedAt", Value: -1}},
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// Save implements Store.
func (s *MongoStore) Save(ctx context.Context, e *Entry) error {
	ensureID(e)
	if _, err := s.coll.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// History implements Store.
func (s *MongoStore) History(ctx context.Context, pipeline, provider string, limit int) ([]Entry, error) {
	filter := bson.D{{Key: "pipeline", Value: pipeline}, {Key: "provider", Value: provider}}
	opts := options.Find().
		SetSort(bson.D{{Key: "fetchedAt", Value: -1}}).
		SetLimit(int64(normalizeLimit(limit)))

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	entries := []Entry{}
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return entries, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
