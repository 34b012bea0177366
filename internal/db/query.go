package db

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// IDField is the primary key of every document.
const IDField = "_id"

// Eq is an equality condition on a (possibly dotted) field path.
// Value is a string or a bool.
type Eq struct {
	Field string
	Value any
}

// SortKey orders results by a numeric field.
type SortKey struct {
	Field string
	Desc  bool
}

// Query is a single page request. Results are always ordered by Sort and
// then by _id ascending, so equal sort values have a stable order.
type Query struct {
	Collection string
	Must       []Eq
	MustNot    []Eq
	Sort       []SortKey
	Limit      int
	// After resumes strictly after the given position. Requires exactly one sort key.
	After *Cursor
}

// Validate checks the query shape shared by every backend.
func (q *Query) Validate() error {
	if q.Collection == "" {
		return fmt.Errorf("%w: collection is required", ErrUnsupported)
	}
	if q.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive", ErrUnsupported)
	}
	if q.After != nil && len(q.Sort) != 1 {
		return fmt.Errorf("%w: cursor requires exactly one sort key", ErrUnsupported)
	}
	return nil
}

// FindResult is one page of raw records.
type FindResult struct {
	Records []bson.Raw
	// Last is the position of the final record, nil when the page is empty
	// or the query has no single sort key.
	Last *Cursor
}

// Cursor is the position of a record in a single-key ordering.
type Cursor struct {
	Value float64 `json:"v"`
	ID    string  `json:"id"`
}

// Encode returns the opaque URL-safe form of c.
func (c Cursor) Encode() string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeCursor parses a cursor produced by Encode.
func DecodeCursor(s string) (*Cursor, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadCursor, err)
	}
	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadCursor, err)
	}
	if c.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrBadCursor)
	}
	return &c, nil
}

// CursorFor returns the position of rec in an ordering by field.
func CursorFor(rec bson.Raw, field string) (*Cursor, error) {
	id, err := IDOf(rec)
	if err != nil {
		return nil, err
	}
	v, err := NumberAt(rec, field)
	if err != nil {
		return nil, err
	}
	return &Cursor{Value: v, ID: id}, nil
}

// IDOf returns the string _id of rec.
func IDOf(rec bson.Raw) (string, error) {
	rv, err := rec.LookupErr(IDField)
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", IDField, err)
	}
	id, ok := rv.StringValueOK()
	if !ok {
		return "", fmt.Errorf("%s is %s, want string", IDField, rv.Type)
	}
	return id, nil
}

// NumberAt reads a numeric field at a dotted path. Missing fields read as 0.
func NumberAt(rec bson.Raw, path string) (float64, error) {
	rv, err := rec.LookupErr(strings.Split(path, ".")...)
	if err != nil {
		return 0, nil //nolint:nilerr // absent numeric fields sort as zero
	}
	switch rv.Type {
	case bsontype.Double:
		return rv.Double(), nil
	case bsontype.Int32:
		return float64(rv.Int32()), nil
	case bsontype.Int64:
		return float64(rv.Int64()), nil
	case bsontype.Null, bsontype.Undefined:
		return 0, nil
	default:
		return 0, fmt.Errorf("field %s is %s, want number", path, rv.Type)
	}
}
