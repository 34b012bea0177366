package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/cityhealth/directory/internal/db"
)

// Get returns the value at key, or db.ErrKeyNotFound once it has expired.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.do(ctx, s.b().Get().Key(key).Build()).AsBytes()
	switch {
	case err == nil:
		return data, nil
	case rueidis.IsRedisNil(err):
		return nil, db.ErrKeyNotFound
	default:
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
}

// SetWithTTL stores value under key. Sub-second TTLs use PX; ttl <= 0 stores without expiry.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	set := s.b().Set().Key(key).Value(rueidis.BinaryString(value))
	var cmd rueidis.Completed
	switch {
	case ttl <= 0:
		cmd = set.Build()
	case ttl%time.Second != 0:
		cmd = set.PxMilliseconds(ttl.Milliseconds()).Build()
	default:
		cmd = set.Ex(ttl).Build()
	}
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// Del removes key. A missing key is not an error.
func (s *Store) Del(ctx context.Context, key string) error {
	if err := s.do(ctx, s.b().Del().Key(key).Build()).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}
