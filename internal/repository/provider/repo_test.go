package provider

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/cityhealth/directory/internal/db"
	"github.com/cityhealth/directory/internal/domain"
	domprov "github.com/cityhealth/directory/internal/domain/provider"
	"github.com/cityhealth/directory/internal/domain/search/filter"
)

func verifiedOnly(t *testing.T) filter.Expression {
	t.Helper()
	var b filter.Builder
	expr, err := b.Flag(domprov.FieldVerified, true).Build()
	if err != nil {
		t.Fatalf("build filter: %v", err)
	}
	return expr
}

func TestList_PaginatesWithCursor(t *testing.T) {
	r := seededRepo(t,
		testProvider("a", 4, true),
		testProvider("b", 5, true),
		testProvider("c", 4, true),
		testProvider("d", 3, true),
		testProvider("hidden", 5, false),
	)
	ctx := context.Background()
	q := domprov.ListQuery{Filter: verifiedOnly(t), Limit: 2}

	first, err := r.List(ctx, q)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := idsOf(first.Providers); got != "b,a" {
		t.Fatalf("page 1 = %s, want b,a", got)
	}
	if !first.HasMore || first.NextCursor == "" {
		t.Fatalf("expected more with cursor, got %+v", first)
	}

	q.After = first.NextCursor
	second, err := r.List(ctx, q)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := idsOf(second.Providers); got != "c,d" {
		t.Fatalf("page 2 = %s, want c,d", got)
	}
	if second.HasMore || second.NextCursor != "" {
		t.Fatalf("last page must not have more: %+v", second)
	}
}

func TestList_Popularity(t *testing.T) {
	a := testProvider("a", 5, true)
	a.Views = 3
	b := testProvider("b", 5, true)
	b.Views = 30
	r := seededRepo(t, a, b, testProvider("c", 4.9, true))

	res, err := r.List(context.Background(), domprov.ListQuery{
		Filter: verifiedOnly(t), Order: domprov.ByPopularity, Limit: 5,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := idsOf(res.Providers); got != "b,a,c" {
		t.Fatalf("got %s, want b,a,c", got)
	}

	_, err = r.List(context.Background(), domprov.ListQuery{
		Order: domprov.ByPopularity, Limit: 5, After: db.Cursor{ID: "x"}.Encode(),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for popularity cursor, got %v", err)
	}
}

func TestList_BadCursor(t *testing.T) {
	r := New(&mockStore{})
	_, err := r.List(context.Background(), domprov.ListQuery{Limit: 1, After: "%%%"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "cursor" {
		t.Fatalf("expected cursor validation error, got %v", err)
	}
}

func TestList_TranslatesFilter(t *testing.T) {
	m := &mockStore{}
	r := New(m)
	var b filter.Builder
	expr, _ := b.Flag(domprov.FieldVerified, true).
		Match(domprov.FieldCity, "Oran").
		Exclude(domprov.FieldID, "p1").
		Build()

	if _, err := r.List(context.Background(), domprov.ListQuery{Filter: expr, Limit: 3}); err != nil {
		t.Fatalf("List: %v", err)
	}
	q := m.lastQuery
	if q.Collection != domain.ProvidersCollection || q.Limit != 4 {
		t.Errorf("collection=%q limit=%d", q.Collection, q.Limit)
	}
	if len(q.Must) != 2 || q.Must[1] != (db.Eq{Field: "address.city", Value: "Oran"}) {
		t.Errorf("must = %+v", q.Must)
	}
	if len(q.MustNot) != 1 || q.MustNot[0].Value != "p1" {
		t.Errorf("mustNot = %+v", q.MustNot)
	}
	if len(q.Sort) != 1 || q.Sort[0] != (db.SortKey{Field: "rating", Desc: true}) {
		t.Errorf("sort = %+v", q.Sort)
	}
}

func TestList_StoreError(t *testing.T) {
	boom := errors.New("boom")
	r := New(&mockStore{findFn: func(context.Context, *db.Query) (*db.FindResult, error) {
		return nil, boom
	}})
	if _, err := r.List(context.Background(), domprov.ListQuery{Limit: 1}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestGet(t *testing.T) {
	p := testProvider("p1", 4.2, true)
	p.Location = &domprov.Location{Lat: 35.19, Lon: -0.63}
	p.Specialty = domprov.LocalizedText{Fr: "Cardiologie"}
	r := seededRepo(t, p)

	got, err := r.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Rating != 4.2 || got.Specialty.Fr != "Cardiologie" || got.Address.City != "Oran" {
		t.Errorf("got %+v", got)
	}
	if got.Location == nil || got.Location.Lat != 35.19 || got.Location.Lon != -0.63 {
		t.Errorf("location = %+v", got.Location)
	}
	if !got.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("created_at = %v", got.CreatedAt)
	}

	if _, err := r.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSave_Validates(t *testing.T) {
	called := false
	r := New(&mockStore{upsertFn: func(context.Context, string, string, any) error {
		called = true
		return nil
	}})
	p := testProvider("p1", 9, true)
	if err := r.Save(context.Background(), &p); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if called {
		t.Error("invalid provider must not reach the store")
	}
}

func TestIncrementViews(t *testing.T) {
	r := seededRepo(t, testProvider("p1", 4, true))
	ctx := context.Background()
	for range 2 {
		if err := r.IncrementViews(ctx, "p1"); err != nil {
			t.Fatalf("IncrementViews: %v", err)
		}
	}
	got, _ := r.Get(ctx, "p1")
	if got.Views != 2 {
		t.Errorf("views = %d, want 2", got.Views)
	}
	if err := r.IncrementViews(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEnsureIndexes(t *testing.T) {
	var got []db.Index
	ix := indexerFunc(func(_ context.Context, coll string, idx []db.Index) error {
		if coll != domain.ProvidersCollection {
			t.Errorf("collection = %q", coll)
		}
		got = idx
		return nil
	})
	if err := New(&mockStore{}).EnsureIndexes(context.Background(), ix); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}
	if len(got) != len(Indexes()) {
		t.Errorf("indexes = %d", len(got))
	}
}

func TestDecode_Malformed(t *testing.T) {
	raw, _ := bson.Marshal(bson.D{{Key: "_id", Value: "x"}, {Key: "rating", Value: "high"}})
	if _, err := decode(raw); err == nil {
		t.Fatal("expected decode error")
	}
}

type indexerFunc func(ctx context.Context, collection string, indexes []db.Index) error

func (f indexerFunc) EnsureIndexes(ctx context.Context, collection string, indexes []db.Index) error {
	return f(ctx, collection, indexes)
}

func idsOf(ps []domprov.Provider) string {
	out := ""
	for i, p := range ps {
		if i > 0 {
			out += ","
		}
		out += p.ID
	}
	return out
}
