package memory

import (
	"context"
	"time"

	"github.com/cityhealth/directory/internal/db"
)

// Get returns the value at key, or ErrKeyNotFound when absent or expired.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.kv[key]
	now := s.now()
	s.mu.RUnlock()
	if !ok || (!e.expires.IsZero() && !now.Before(e.expires)) {
		return nil, db.ErrKeyNotFound
	}
	return append([]byte(nil), e.value...), nil
}

// SetWithTTL stores value until ttl elapses. A non-positive ttl never expires.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := kvEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.kv[key] = e
	return nil
}

// Del removes key from the key-value, list and set namespaces.
func (s *Store) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.kv, key)
	delete(s.lists, key)
	delete(s.sets, key)
	return nil
}
