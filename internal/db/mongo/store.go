// Package mongo implements db.DocumentStore over MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/cityhealth/directory/internal/db"
)

var (
	_ db.DocumentStore = (*Store)(nil)
	_ db.Indexer       = (*Store)(nil)
)

// Config holds connection parameters for a MongoDB store.
type Config struct {
	URI             string
	Database        string
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
	ConnectTimeout  time.Duration
}

// Store implements db.DocumentStore via the official driver.
type Store struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewStore connects to MongoDB. Connectivity is checked separately with WaitForReady.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("uri is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("database is required")
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime)
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &Store{client: client, database: client.Database(cfg.Database)}, nil
}

// Ping checks connectivity against the primary.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = s.client.Disconnect(ctx)
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// EnsureIndexes creates the given compound indexes.
func (s *Store) EnsureIndexes(ctx context.Context, collection string, indexes []db.Index) error {
	if len(indexes) == 0 {
		return nil
	}
	models := make([]mongo.IndexModel, len(indexes))
	for i, idx := range indexes {
		models[i] = mongo.IndexModel{Keys: sortDoc(idx.Keys, false)}
	}
	if _, err := s.database.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
		return &db.Error{Op: db.OpIndex, Err: err}
	}
	return nil
}

// Find runs a filtered, sorted, limited query.
func (s *Store) Find(ctx context.Context, q *db.Query) (*db.FindResult, error) {
	if err := q.Validate(); err != nil {
		return nil, &db.Error{Op: db.OpFind, Err: err}
	}

	opts := options.Find().
		SetSort(sortDoc(q.Sort, true)).
		SetLimit(int64(q.Limit))
	cur, err := s.database.Collection(q.Collection).Find(ctx, buildFilter(q), opts)
	if err != nil {
		return nil, &db.Error{Op: db.OpFind, Err: err}
	}
	defer cur.Close(ctx)

	res := &db.FindResult{Records: make([]bson.Raw, 0, q.Limit)}
	for cur.Next(ctx) {
		res.Records = append(res.Records, append(bson.Raw(nil), cur.Current...))
	}
	if err := cur.Err(); err != nil {
		return nil, &db.Error{Op: db.OpFind, Err: err}
	}

	if n := len(res.Records); n > 0 && len(q.Sort) == 1 {
		last, err := db.CursorFor(res.Records[n-1], q.Sort[0].Field)
		if err != nil {
			return nil, &db.Error{Op: db.OpDecode, Err: err}
		}
		res.Last = last
	}
	return res, nil
}

// FindByID returns the raw document with the given _id.
func (s *Store) FindByID(ctx context.Context, collection, id string) (bson.Raw, error) {
	raw, err := s.database.Collection(collection).FindOne(ctx, bson.D{{Key: db.IDField, Value: id}}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpFindOne, Err: err}
	}
	return raw, nil
}

// Upsert replaces the document with the given _id or inserts it.
func (s *Store) Upsert(ctx context.Context, collection, id string, doc any) error {
	_, err := s.database.Collection(collection).ReplaceOne(ctx,
		bson.D{{Key: db.IDField, Value: id}}, doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return &db.Error{Op: db.OpReplace, Err: err}
	}
	return nil
}

// Increment adds delta to a numeric field with $inc.
func (s *Store) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	res, err := s.database.Collection(collection).UpdateOne(ctx,
		bson.D{{Key: db.IDField, Value: id}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: field, Value: delta}}}})
	if err != nil {
		return &db.Error{Op: db.OpInc, Err: err}
	}
	if res.MatchedCount == 0 {
		return db.ErrKeyNotFound
	}
	return nil
}
