package memory

import (
	"context"
	"sort"
)

// PushCapped prepends value and keeps at most capacity entries.
func (s *Store) PushCapped(_ context.Context, key string, value []byte, capacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append([][]byte{append([]byte(nil), value...)}, s.lists[key]...)
	if capacity > 0 && len(list) > capacity {
		list = list[:capacity]
	}
	s.lists[key] = list
	return nil
}

// Range returns up to n entries, newest first.
func (s *Store) Range(_ context.Context, key string, n int) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.lists[key]
	if n > 0 && len(list) > n {
		list = list[:n]
	}
	out := make([][]byte, len(list))
	for i, v := range list {
		out[i] = append([]byte(nil), v...)
	}
	return out, nil
}

// AddMember adds member to the set at key.
func (s *Store) AddMember(_ context.Context, key, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]struct{})
		s.sets[key] = set
	}
	set[member] = struct{}{}
	return nil
}

// Members returns the set at key in lexical order.
func (s *Store) Members(_ context.Context, key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.sets[key]))
	for m := range s.sets[key] {
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}
