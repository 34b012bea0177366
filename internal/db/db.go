package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DocumentStore is the provider collection backend.
type DocumentStore interface {
	Pinger
	// Find runs one filtered, sorted, limited query.
	Find(ctx context.Context, q *Query) (*FindResult, error)
	// FindByID returns ErrKeyNotFound when no document has the given _id.
	FindByID(ctx context.Context, collection, id string) (bson.Raw, error)
	// Upsert replaces the document with the given _id or inserts it.
	Upsert(ctx context.Context, collection, id string, doc any) error
	// Increment adds delta to a numeric field. Returns ErrKeyNotFound for a missing document.
	Increment(ctx context.Context, collection, id, field string, delta int64) error
	Close()
}

// KVStore provides simple expiring key-value operations.
type KVStore interface {
	Pinger
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// ProfileStore provides the bounded lists and sets kept per device.
type ProfileStore interface {
	Pinger
	// PushCapped prepends value to the list at key and trims it to capacity entries.
	PushCapped(ctx context.Context, key string, value []byte, capacity int) error
	// Range returns up to n newest list entries, newest first.
	Range(ctx context.Context, key string, n int) ([][]byte, error)
	// AddMember adds member to the set at key. Adding twice is a no-op.
	AddMember(ctx context.Context, key, member string) error
	// Members returns every member of the set at key.
	Members(ctx context.Context, key string) ([]string, error)
	// Del removes the list or set at key.
	Del(ctx context.Context, key string) error
}

// Waiter is implemented by stores that can block until the backend answers.
type Waiter interface {
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Index is a compound index over the given keys.
type Index struct {
	Keys []SortKey
}

// Indexer creates secondary indexes. Creating an existing index is a no-op.
type Indexer interface {
	EnsureIndexes(ctx context.Context, collection string, indexes []Index) error
}
