package mongo

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/cityhealth/directory/internal/db"
)

// buildFilter translates equality conditions and the resume cursor into a
// single $and document. An empty query matches everything.
func buildFilter(q *db.Query) bson.D {
	clauses := make(bson.A, 0, len(q.Must)+len(q.MustNot)+1)
	for _, eq := range q.Must {
		clauses = append(clauses, bson.D{{Key: eq.Field, Value: eq.Value}})
	}
	for _, eq := range q.MustNot {
		clauses = append(clauses, bson.D{{Key: eq.Field, Value: bson.D{{Key: "$ne", Value: eq.Value}}}})
	}
	if q.After != nil && len(q.Sort) == 1 {
		clauses = append(clauses, afterClause(q.Sort[0], q.After))
	}
	if len(clauses) == 0 {
		return bson.D{}
	}
	return bson.D{{Key: "$and", Value: clauses}}
}

// afterClause selects records strictly past c in (key, _id asc) order.
func afterClause(key db.SortKey, c *db.Cursor) bson.D {
	op := "$gt"
	if key.Desc {
		op = "$lt"
	}
	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: key.Field, Value: bson.D{{Key: op, Value: c.Value}}}},
		bson.D{
			{Key: key.Field, Value: c.Value},
			{Key: db.IDField, Value: bson.D{{Key: "$gt", Value: c.ID}}},
		},
	}}}
}

// sortDoc renders sort keys. withID appends the _id tiebreak used by queries.
func sortDoc(keys []db.SortKey, withID bool) bson.D {
	out := make(bson.D, 0, len(keys)+1)
	for _, k := range keys {
		dir := 1
		if k.Desc {
			dir = -1
		}
		out = append(out, bson.E{Key: k.Field, Value: dir})
	}
	if withID {
		out = append(out, bson.E{Key: db.IDField, Value: 1})
	}
	return out
}
