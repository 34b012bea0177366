package provider

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/cityhealth/directory/internal/db"
	"github.com/cityhealth/directory/internal/domain"
	domprov "github.com/cityhealth/directory/internal/domain/provider"
	"github.com/cityhealth/directory/internal/domain/search/filter"
)

// store is the consumer interface for provider persistence (ISP).
type store interface {
	Find(ctx context.Context, q *db.Query) (*db.FindResult, error)
	FindByID(ctx context.Context, collection, id string) (bson.Raw, error)
	Upsert(ctx context.Context, collection, id string, doc any) error
	Increment(ctx context.Context, collection, id, field string, delta int64) error
}

// Repo implements provider reads and writes over a document store.
type Repo struct {
	store      store
	collection string
}

// New creates a provider repository over the providers collection.
func New(s store) *Repo {
	return &Repo{store: s, collection: domain.ProvidersCollection}
}

// Indexes lists the secondary indexes the query shapes need.
func Indexes() []db.Index {
	desc := func(f string) db.SortKey { return db.SortKey{Field: f, Desc: true} }
	asc := func(f string) db.SortKey { return db.SortKey{Field: f} }
	return []db.Index{
		{Keys: []db.SortKey{asc(domprov.FieldVerified), desc(domprov.FieldRating)}},
		{Keys: []db.SortKey{asc(domprov.FieldVerified), asc(domprov.FieldCategory), desc(domprov.FieldRating)}},
		{Keys: []db.SortKey{asc(domprov.FieldVerified), asc(domprov.FieldCity), desc(domprov.FieldRating)}},
		{Keys: []db.SortKey{asc(domprov.FieldVerified), asc(domprov.FieldEmergency), desc(domprov.FieldRating)}},
	}
}

// EnsureIndexes creates the provider indexes on ix.
func (r *Repo) EnsureIndexes(ctx context.Context, ix db.Indexer) error {
	if err := ix.EnsureIndexes(ctx, r.collection, Indexes()); err != nil {
		return fmt.Errorf("ensure provider indexes: %w", err)
	}
	return nil
}

// List fetches one page in server order. It reads one extra record to
// decide HasMore, and the cursor points at the last returned provider.
func (r *Repo) List(ctx context.Context, q domprov.ListQuery) (domprov.ListResult, error) {
	if q.Limit <= 0 {
		return domprov.ListResult{}, domain.NewValidationError("limit", "must be positive")
	}
	dq := &db.Query{
		Collection: r.collection,
		Must:       toEq(q.Filter.Must()),
		MustNot:    toEq(q.Filter.MustNot()),
		Limit:      q.Limit + 1,
	}
	switch q.Order {
	case domprov.ByRating:
		dq.Sort = []db.SortKey{{Field: domprov.FieldRating, Desc: true}}
	case domprov.ByPopularity:
		dq.Sort = []db.SortKey{
			{Field: domprov.FieldRating, Desc: true},
			{Field: domprov.FieldViews, Desc: true},
		}
	default:
		return domprov.ListResult{}, domain.NewValidationError("order", "unknown order %d", q.Order)
	}
	if q.After != "" {
		if q.Order != domprov.ByRating {
			return domprov.ListResult{}, domain.NewValidationError("cursor", "only rating order supports cursors")
		}
		c, err := db.DecodeCursor(q.After)
		if err != nil {
			return domprov.ListResult{}, domain.NewValidationError("cursor", "%v", err)
		}
		dq.After = c
	}

	res, err := r.store.Find(ctx, dq)
	if err != nil {
		return domprov.ListResult{}, fmt.Errorf("find providers: %w", err)
	}

	out := domprov.ListResult{Providers: make([]domprov.Provider, 0, len(res.Records))}
	for _, rec := range res.Records {
		p, err := decode(rec)
		if err != nil {
			return domprov.ListResult{}, err
		}
		out.Providers = append(out.Providers, p)
	}
	if len(out.Providers) > q.Limit {
		out.Providers = out.Providers[:q.Limit]
		out.HasMore = true
	}
	if out.HasMore && q.Order == domprov.ByRating {
		last := out.Providers[len(out.Providers)-1]
		out.NextCursor = db.Cursor{Value: last.Rating, ID: last.ID}.Encode()
	}
	return out, nil
}

// Get returns a provider by ID or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, id string) (domprov.Provider, error) {
	raw, err := r.store.FindByID(ctx, r.collection, id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domprov.Provider{}, fmt.Errorf("provider %s: %w", id, domain.ErrNotFound)
		}
		return domprov.Provider{}, fmt.Errorf("get provider %s: %w", id, err)
	}
	return decode(raw)
}

// Save validates and upserts p.
func (r *Repo) Save(ctx context.Context, p *domprov.Provider) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	if err := r.store.Upsert(ctx, r.collection, p.ID, toDoc(p)); err != nil {
		return fmt.Errorf("save provider %s: %w", p.ID, err)
	}
	return nil
}

// IncrementViews adds one to the provider's view counter.
func (r *Repo) IncrementViews(ctx context.Context, id string) error {
	err := r.store.Increment(ctx, r.collection, id, domprov.FieldViews, 1)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return fmt.Errorf("provider %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("increment views %s: %w", id, err)
	}
	return nil
}

func decode(raw bson.Raw) (domprov.Provider, error) {
	var d providerDoc
	if err := bson.Unmarshal(raw, &d); err != nil {
		return domprov.Provider{}, &db.Error{Op: db.OpDecode, Err: err}
	}
	return fromDoc(&d), nil
}

func toEq(conds []filter.Condition) []db.Eq {
	if len(conds) == 0 {
		return nil
	}
	out := make([]db.Eq, len(conds))
	for i, c := range conds {
		out[i] = db.Eq{Field: c.Key(), Value: c.Value()}
	}
	return out
}
