package request

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/cityhealth/directory/internal/domain"
	"github.com/cityhealth/directory/internal/domain/provider"
	"github.com/cityhealth/directory/internal/domain/search/filter"
)

// MaxQueryLength is the maximum allowed search query length in bytes.
const MaxQueryLength = 512

// Params are the raw, unvalidated search inputs.
type Params struct {
	Query      string
	Category   string
	Location   string
	Accessible bool
	HomeVisit  bool
	Emergency  bool
	Page       int
	Cursor     string
}

// Request is a validated search query.
type Request struct {
	query      string
	tokens     []string
	category   provider.Category
	location   string
	accessible bool
	homeVisit  bool
	emergency  bool
	page       int
	cursor     string
}

// New validates and normalizes search parameters.
// An empty query is valid and matches every verified provider.
func New(p Params) (Request, error) {
	query := strings.TrimSpace(p.Query)
	if len(query) > MaxQueryLength {
		return Request{}, domain.NewValidationError("query", "too long (max %d chars)", MaxQueryLength)
	}
	cat := provider.Category(strings.ToLower(strings.TrimSpace(p.Category)))
	if cat != "" && !cat.IsValid() {
		return Request{}, domain.NewValidationError("category", "unknown category %q", p.Category)
	}
	if p.Page < 1 {
		return Request{}, domain.NewValidationError("page", "must be >= 1, got %d", p.Page)
	}

	return Request{
		query:      query,
		tokens:     strings.Fields(strings.ToLower(query)),
		category:   cat,
		location:   strings.TrimSpace(p.Location),
		accessible: p.Accessible,
		homeVisit:  p.HomeVisit,
		emergency:  p.Emergency,
		page:       p.Page,
		cursor:     strings.TrimSpace(p.Cursor),
	}, nil
}

// Query returns the trimmed free-text query.
func (r *Request) Query() string { return r.query }

// Tokens returns the lowercased whitespace-split query tokens.
func (r *Request) Tokens() []string { return r.tokens }

// HasText reports whether a free-text query is present.
func (r *Request) HasText() bool { return len(r.tokens) > 0 }

// Category returns the category filter ("" when unset).
func (r *Request) Category() provider.Category { return r.category }

// Location returns the city filter ("" when unset).
func (r *Request) Location() string { return r.location }

// Accessible reports whether the accessibility filter is enabled.
func (r *Request) Accessible() bool { return r.accessible }

// HomeVisit reports whether the home-visit filter is enabled.
func (r *Request) HomeVisit() bool { return r.homeVisit }

// Emergency reports whether the 24/7 filter is enabled.
func (r *Request) Emergency() bool { return r.emergency }

// Page returns the 1-based page number.
func (r *Request) Page() int { return r.page }

// Cursor returns the explicit cursor for this page ("" when the caller has none).
func (r *Request) Cursor() string { return r.cursor }

// AtPage returns a copy positioned at page n without an explicit cursor.
func (r Request) AtPage(n int) Request {
	r.page = n
	r.cursor = ""
	return r
}

// WithCursor returns a copy carrying cursor.
func (r Request) WithCursor(cursor string) Request {
	r.cursor = cursor
	return r
}

// Filter builds the server-side equality filter. Verified is always required.
func (r *Request) Filter() (filter.Expression, error) {
	var b filter.Builder
	b.Flag(provider.FieldVerified, true).
		Match(provider.FieldCategory, string(r.category)).
		Match(provider.FieldCity, r.location)
	if r.accessible {
		b.Flag(provider.FieldAccessible, true)
	}
	if r.homeVisit {
		b.Flag(provider.FieldHomeVisit, true)
	}
	if r.emergency {
		b.Flag(provider.FieldEmergency, true)
	}
	return b.Build()
}

// Applied is the echo of the filters a page was built with.
type Applied struct {
	Query      string `json:"query,omitempty"`
	Category   string `json:"category,omitempty"`
	Location   string `json:"location,omitempty"`
	Accessible bool   `json:"accessible,omitempty"`
	HomeVisit  bool   `json:"home_visit,omitempty"`
	Emergency  bool   `json:"emergency,omitempty"`
	Page       int    `json:"page"`
}

// Applied returns the echo of this request.
func (r *Request) Applied() Applied {
	return Applied{
		Query:      r.query,
		Category:   string(r.category),
		Location:   r.location,
		Accessible: r.accessible,
		HomeVisit:  r.homeVisit,
		Emergency:  r.emergency,
		Page:       r.page,
	}
}

// CacheKey identifies this exact page of results.
func (r *Request) CacheKey() string {
	return digest(struct {
		Applied
		Cursor string `json:"cursor,omitempty"`
	}{r.Applied(), r.cursor})
}

// BaseKey identifies the result set regardless of page, used to remember cursors.
func (r *Request) BaseKey() string {
	a := r.Applied()
	a.Page = 0
	return digest(a)
}

func digest(v any) string {
	// Marshal of a flat struct of strings, bools and ints cannot fail.
	b, _ := json.Marshal(v)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
