package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/cityhealth/directory/internal/domain"
	"github.com/cityhealth/directory/internal/domain/provider"
)

func TestNew_Normalizes(t *testing.T) {
	r, err := New(Params{Query: "  Cardiology  Clinic ", Category: "Clinic", Location: " Oran ", Page: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "Cardiology  Clinic" {
		t.Errorf("Query() = %q", r.Query())
	}
	if got := r.Tokens(); len(got) != 2 || got[0] != "cardiology" || got[1] != "clinic" {
		t.Errorf("Tokens() = %v", got)
	}
	if r.Category() != provider.Clinic {
		t.Errorf("Category() = %q", r.Category())
	}
	if r.Location() != "Oran" {
		t.Errorf("Location() = %q", r.Location())
	}
	if !r.HasText() {
		t.Error("HasText() = false")
	}
}

func TestNew_EmptyQueryIsValid(t *testing.T) {
	r, err := New(Params{Page: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.HasText() {
		t.Error("empty query should have no tokens")
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name  string
		p     Params
		field string
	}{
		{"unknown category", Params{Category: "spa", Page: 1}, "category"},
		{"page zero", Params{Page: 0}, "page"},
		{"negative page", Params{Page: -2}, "page"},
		{"query too long", Params{Query: strings.Repeat("a", MaxQueryLength+1), Page: 1}, "query"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.p)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("expected field %q, got %v", tt.field, err)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	r, err := New(Params{Category: "lab", Location: "Oran", Emergency: true, Accessible: true, Page: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expr, err := r.Filter()
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	got := map[string]any{}
	for _, c := range expr.Must() {
		got[c.Key()] = c.Value()
	}
	want := map[string]any{
		provider.FieldVerified:   true,
		provider.FieldCategory:   "lab",
		provider.FieldCity:       "Oran",
		provider.FieldAccessible: true,
		provider.FieldEmergency:  true,
	}
	if len(got) != len(want) {
		t.Fatalf("conditions = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
	if _, ok := got[provider.FieldHomeVisit]; ok {
		t.Error("disabled flag must not produce a condition")
	}
}

func TestFilter_VerifiedOnlyByDefault(t *testing.T) {
	r, _ := New(Params{Page: 1})
	expr, err := r.Filter()
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(expr.Must()) != 1 || expr.Must()[0].Key() != provider.FieldVerified {
		t.Fatalf("must = %+v", expr.Must())
	}
}

func TestKeys(t *testing.T) {
	p1, _ := New(Params{Query: "dent", Location: "Oran", Page: 1})
	p2, _ := New(Params{Query: "dent", Location: "Oran", Page: 2, Cursor: "abc"})
	other, _ := New(Params{Query: "dent", Location: "Tlemcen", Page: 1})

	if p1.CacheKey() == p2.CacheKey() {
		t.Error("pages must have distinct cache keys")
	}
	if p1.BaseKey() != p2.BaseKey() {
		t.Error("pages of the same request must share a base key")
	}
	if p1.BaseKey() == other.BaseKey() {
		t.Error("different filters must have distinct base keys")
	}
	if len(p1.CacheKey()) != 64 {
		t.Errorf("expected hex sha256, got %q", p1.CacheKey())
	}

	again, _ := New(Params{Query: " dent ", Location: "Oran", Page: 1})
	if again.CacheKey() != p1.CacheKey() {
		t.Error("normalized requests must share a cache key")
	}
}

func TestAtPage(t *testing.T) {
	r, _ := New(Params{Query: "x", Page: 4, Cursor: "c4"})
	first := r.AtPage(1)
	if first.Page() != 1 || first.Cursor() != "" {
		t.Errorf("AtPage(1) = page %d cursor %q", first.Page(), first.Cursor())
	}
	if r.Page() != 4 || r.Cursor() != "c4" {
		t.Error("AtPage must not mutate the receiver")
	}
	if c := first.WithCursor("z"); c.Cursor() != "z" {
		t.Errorf("WithCursor = %q", c.Cursor())
	}
}
