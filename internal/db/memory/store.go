// Package memory implements every db store interface in process memory.
// It backs local runs without external services and the repository tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/cityhealth/directory/internal/db"
)

var (
	_ db.DocumentStore = (*Store)(nil)
	_ db.KVStore       = (*Store)(nil)
	_ db.ProfileStore  = (*Store)(nil)
)

type kvEntry struct {
	value   []byte
	expires time.Time
}

// Store keeps documents, expiring keys, lists and sets behind one mutex.
type Store struct {
	mu    sync.RWMutex
	docs  map[string]map[string]bson.Raw
	kv    map[string]kvEntry
	lists map[string][][]byte
	sets  map[string]map[string]struct{}
	now   func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		docs:  make(map[string]map[string]bson.Raw),
		kv:    make(map[string]kvEntry),
		lists: make(map[string][][]byte),
		sets:  make(map[string]map[string]struct{}),
		now:   time.Now,
	}
}

// SetClock replaces the time source used for key expiry.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// Find filters, orders and limits the collection.
func (s *Store) Find(_ context.Context, q *db.Query) (*db.FindResult, error) {
	if err := q.Validate(); err != nil {
		return nil, &db.Error{Op: db.OpFind, Err: err}
	}

	s.mu.RLock()
	rows := make([]row, 0, len(s.docs[q.Collection]))
	for id, rec := range s.docs[q.Collection] {
		if !matches(rec, q) {
			continue
		}
		r := row{id: id, rec: rec, keys: make([]float64, len(q.Sort))}
		for i, k := range q.Sort {
			v, err := db.NumberAt(rec, k.Field)
			if err != nil {
				s.mu.RUnlock()
				return nil, &db.Error{Op: db.OpFind, Err: err}
			}
			r.keys[i] = v
		}
		rows = append(rows, r)
	}
	s.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool { return less(q.Sort, rows[i], rows[j]) })

	if q.After != nil {
		start := len(rows)
		for i, r := range rows {
			if after(q.Sort[0], r, q.After) {
				start = i
				break
			}
		}
		rows = rows[start:]
	}
	if len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}

	res := &db.FindResult{Records: make([]bson.Raw, len(rows))}
	for i, r := range rows {
		res.Records[i] = r.rec
	}
	if len(rows) > 0 && len(q.Sort) == 1 {
		last := rows[len(rows)-1]
		res.Last = &db.Cursor{Value: last.keys[0], ID: last.id}
	}
	return res, nil
}

// FindByID returns a copy of the stored document.
func (s *Store) FindByID(_ context.Context, collection, id string) (bson.Raw, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.docs[collection][id]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return append(bson.Raw(nil), rec...), nil
}

// Upsert stores doc under id. The marshaled document must carry the same _id.
func (s *Store) Upsert(_ context.Context, collection, id string, doc any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return &db.Error{Op: db.OpReplace, Err: err}
	}
	got, err := db.IDOf(raw)
	if err != nil {
		return &db.Error{Op: db.OpReplace, Err: err}
	}
	if got != id {
		return &db.Error{Op: db.OpReplace, Err: fmt.Errorf("_id %q does not match %q", got, id)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	coll, ok := s.docs[collection]
	if !ok {
		coll = make(map[string]bson.Raw)
		s.docs[collection] = coll
	}
	coll[id] = raw
	return nil
}

// Increment adds delta to a top-level numeric field, creating it when absent.
func (s *Store) Increment(_ context.Context, collection, id, field string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.docs[collection][id]
	if !ok {
		return db.ErrKeyNotFound
	}
	var d bson.D
	if err := bson.Unmarshal(rec, &d); err != nil {
		return &db.Error{Op: db.OpInc, Err: err}
	}
	found := false
	for i := range d {
		if d[i].Key != field {
			continue
		}
		found = true
		switch v := d[i].Value.(type) {
		case int32:
			d[i].Value = int64(v) + delta
		case int64:
			d[i].Value = v + delta
		case float64:
			d[i].Value = v + float64(delta)
		default:
			return &db.Error{Op: db.OpInc, Err: fmt.Errorf("field %s is not numeric", field)}
		}
	}
	if !found {
		d = append(d, bson.E{Key: field, Value: delta})
	}
	raw, err := bson.Marshal(d)
	if err != nil {
		return &db.Error{Op: db.OpInc, Err: err}
	}
	s.docs[collection][id] = raw
	return nil
}

type row struct {
	id   string
	rec  bson.Raw
	keys []float64
}

func less(keys []db.SortKey, a, b row) bool {
	for i, k := range keys {
		if a.keys[i] == b.keys[i] {
			continue
		}
		if k.Desc {
			return a.keys[i] > b.keys[i]
		}
		return a.keys[i] < b.keys[i]
	}
	return a.id < b.id
}

func after(k db.SortKey, r row, c *db.Cursor) bool {
	v := r.keys[0]
	if v == c.Value {
		return r.id > c.ID
	}
	if k.Desc {
		return v < c.Value
	}
	return v > c.Value
}

func matches(rec bson.Raw, q *db.Query) bool {
	for _, eq := range q.Must {
		if !equal(rec, eq) {
			return false
		}
	}
	for _, eq := range q.MustNot {
		if equal(rec, eq) {
			return false
		}
	}
	return true
}

func equal(rec bson.Raw, eq db.Eq) bool {
	rv, err := rec.LookupErr(strings.Split(eq.Field, ".")...)
	if err != nil {
		return false
	}
	switch want := eq.Value.(type) {
	case string:
		got, ok := rv.StringValueOK()
		return ok && got == want
	case bool:
		got, ok := rv.BooleanOK()
		return ok && got == want
	default:
		return false
	}
}

// EnsureIndexes is a no-op; scans are always full.
func (s *Store) EnsureIndexes(context.Context, string, []db.Index) error { return nil }
