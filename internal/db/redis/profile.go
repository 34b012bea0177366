package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/cityhealth/directory/internal/db"
)

// PushCapped runs LPUSH and LTRIM in one round trip.
func (s *Store) PushCapped(ctx context.Context, key string, value []byte, capacity int) error {
	cmds := rueidis.Commands{
		s.b().Lpush().Key(key).Element(string(value)).Build(),
	}
	if capacity > 0 {
		cmds = append(cmds, s.b().Ltrim().Key(key).Start(0).Stop(int64(capacity-1)).Build())
	}
	for _, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpLPush, Err: err}
		}
	}
	return nil
}

// Range returns up to n newest entries.
func (s *Store) Range(ctx context.Context, key string, n int) ([][]byte, error) {
	stop := int64(-1)
	if n > 0 {
		stop = int64(n - 1)
	}
	cmd := s.b().Lrange().Key(key).Start(0).Stop(stop).Build()
	vals, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpLRange, Err: err}
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out, nil
}

// AddMember runs SADD.
func (s *Store) AddMember(ctx context.Context, key, member string) error {
	cmd := s.b().Sadd().Key(key).Member(member).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSAdd, Err: err}
	}
	return nil
}

// Members runs SMEMBERS.
func (s *Store) Members(ctx context.Context, key string) ([]string, error) {
	cmd := s.b().Smembers().Key(key).Build()
	vals, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpSMembers, Err: err}
	}
	return vals, nil
}
