// Package retry decorates a db.DocumentStore with bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/cityhealth/directory/internal/db"
)

var _ db.DocumentStore = (*Store)(nil)

// Policy bounds the retry loop.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultPolicy is three attempts starting at 100ms.
var DefaultPolicy = Policy{Attempts: 3, BaseDelay: 100 * time.Millisecond, MaxDelay: 2 * time.Second}

// Store retries transient failures of the wrapped store.
// ErrKeyNotFound, malformed queries and context errors are returned immediately.
type Store struct {
	next   db.DocumentStore
	policy Policy
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// New wraps next. A zero policy falls back to DefaultPolicy.
func New(next db.DocumentStore, policy Policy, logger *zap.Logger) *Store {
	if policy.Attempts <= 0 {
		policy = DefaultPolicy
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{next: next, policy: policy, logger: logger, sleep: sleepCtx}
}

// Ping is not retried; health checks should see the raw state.
func (s *Store) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

// Close closes the wrapped store.
func (s *Store) Close() { s.next.Close() }

// Find retries the wrapped Find.
func (s *Store) Find(ctx context.Context, q *db.Query) (*db.FindResult, error) {
	var res *db.FindResult
	err := s.do(ctx, db.OpFind, func() error {
		var err error
		res, err = s.next.Find(ctx, q)
		return err
	})
	return res, err
}

// FindByID retries the wrapped FindByID.
func (s *Store) FindByID(ctx context.Context, collection, id string) (bson.Raw, error) {
	var raw bson.Raw
	err := s.do(ctx, db.OpFindOne, func() error {
		var err error
		raw, err = s.next.FindByID(ctx, collection, id)
		return err
	})
	return raw, err
}

// Upsert retries the wrapped Upsert. Replacement by _id is idempotent.
func (s *Store) Upsert(ctx context.Context, collection, id string, doc any) error {
	return s.do(ctx, db.OpReplace, func() error {
		return s.next.Upsert(ctx, collection, id, doc)
	})
}

// Increment is passed through without retry: a lost acknowledgement would double count.
func (s *Store) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	return s.next.Increment(ctx, collection, id, field, delta)
}

// EnsureIndexes forwards to the wrapped store when it manages indexes.
func (s *Store) EnsureIndexes(ctx context.Context, collection string, indexes []db.Index) error {
	if ix, ok := s.next.(db.Indexer); ok {
		return ix.EnsureIndexes(ctx, collection, indexes)
	}
	return nil
}

// WaitForReady forwards to the wrapped store when it supports waiting.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	if w, ok := s.next.(db.Waiter); ok {
		return w.WaitForReady(ctx, timeout)
	}
	return nil
}

func (s *Store) do(ctx context.Context, op string, fn func() error) error {
	delay := s.policy.BaseDelay
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || !retryable(err) || attempt >= s.policy.Attempts {
			return err
		}
		s.logger.Warn("store call failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		if serr := s.sleep(ctx, delay); serr != nil {
			return err
		}
		delay *= 2
		if s.policy.MaxDelay > 0 && delay > s.policy.MaxDelay {
			delay = s.policy.MaxDelay
		}
	}
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, db.ErrKeyNotFound),
		errors.Is(err, db.ErrUnsupported),
		errors.Is(err, db.ErrBadCursor),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
