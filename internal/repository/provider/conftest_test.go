package provider

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/cityhealth/directory/internal/db"
	"github.com/cityhealth/directory/internal/db/memory"
	domprov "github.com/cityhealth/directory/internal/domain/provider"
)

// mockStore implements the consumer interface for failure paths.
type mockStore struct {
	findFn     func(ctx context.Context, q *db.Query) (*db.FindResult, error)
	findByIDFn func(ctx context.Context, collection, id string) (bson.Raw, error)
	upsertFn   func(ctx context.Context, collection, id string, doc any) error
	incFn      func(ctx context.Context, collection, id, field string, delta int64) error
	lastQuery  *db.Query
}

func (m *mockStore) Find(ctx context.Context, q *db.Query) (*db.FindResult, error) {
	m.lastQuery = q
	if m.findFn != nil {
		return m.findFn(ctx, q)
	}
	return &db.FindResult{}, nil
}

func (m *mockStore) FindByID(ctx context.Context, collection, id string) (bson.Raw, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, collection, id)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Upsert(ctx context.Context, collection, id string, doc any) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, collection, id, doc)
	}
	return nil
}

func (m *mockStore) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	if m.incFn != nil {
		return m.incFn(ctx, collection, id, field, delta)
	}
	return nil
}

func testProvider(id string, rating float64, verified bool) domprov.Provider {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return domprov.Provider{
		ID:        id,
		Name:      domprov.LocalizedText{En: "Provider " + id},
		Category:  domprov.Clinic,
		Address:   domprov.Address{City: "Oran"},
		Verified:  verified,
		Rating:    rating,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func seededRepo(t *testing.T, providers ...domprov.Provider) *Repo {
	t.Helper()
	r := New(memory.NewStore())
	for i := range providers {
		if err := r.Save(context.Background(), &providers[i]); err != nil {
			t.Fatalf("save %s: %v", providers[i].ID, err)
		}
	}
	return r
}
