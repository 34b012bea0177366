package provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/cityhealth/directory/internal/domain/geo"
	"github.com/cityhealth/directory/internal/domain/lang"
)

// Category is the closed provider enumeration.
type Category string

const (
	Clinic   Category = "clinic"
	Hospital Category = "hospital"
	Doctor   Category = "doctor"
	Pharmacy Category = "pharmacy"
	Lab      Category = "lab"
)

// Categories lists every valid category.
var Categories = []Category{Clinic, Hospital, Doctor, Pharmacy, Lab}

// IsValid checks if the category belongs to the closed enumeration.
func (c Category) IsValid() bool {
	switch c {
	case Clinic, Hospital, Doctor, Pharmacy, Lab:
		return true
	}
	return false
}

// Stored field paths used by filters and sort keys.
const (
	FieldID         = "_id"
	FieldVerified   = "verified"
	FieldCategory   = "category"
	FieldCity       = "address.city"
	FieldAccessible = "accessible"
	FieldHomeVisit  = "home_visit"
	FieldEmergency  = "emergency_24x7"
	FieldRating     = "rating"
	FieldViews      = "views"
)

// MaxRating is the upper bound of the rating scale.
const MaxRating = 5.0

// LocalizedText carries one value per supported language.
type LocalizedText struct {
	Ar string `json:"ar,omitempty"`
	Fr string `json:"fr,omitempty"`
	En string `json:"en,omitempty"`
}

// Get returns the text for code, falling back to English and then to any non-empty value.
func (t LocalizedText) Get(code lang.Code) string {
	var v string
	switch code {
	case lang.Arabic:
		v = t.Ar
	case lang.French:
		v = t.Fr
	case lang.English:
		v = t.En
	}
	if v != "" {
		return v
	}
	for _, s := range []string{t.En, t.Fr, t.Ar} {
		if s != "" {
			return s
		}
	}
	return ""
}

// Values returns the non-empty translations.
func (t LocalizedText) Values() []string {
	out := make([]string, 0, 3)
	for _, s := range []string{t.Ar, t.Fr, t.En} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// IsZero reports whether no translation is set.
func (t LocalizedText) IsZero() bool { return t.Ar == "" && t.Fr == "" && t.En == "" }

// Address is a street address.
type Address struct {
	Street string `json:"street,omitempty"`
	City   string `json:"city"`
}

// Location is a WGS84 point.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Point converts the location for distance math.
func (l Location) Point() geo.Point { return geo.Point{Lat: l.Lat, Lon: l.Lon} }

// Provider is a healthcare entity listed in the directory.
type Provider struct {
	ID            string        `json:"id"`
	Name          LocalizedText `json:"name"`
	Specialty     LocalizedText `json:"specialty"`
	Category      Category      `json:"category"`
	Address       Address       `json:"address"`
	Location      *Location     `json:"location,omitempty"`
	Accessible    bool          `json:"accessible"`
	HomeVisit     bool          `json:"home_visit"`
	Emergency24x7 bool          `json:"emergency_24x7"`
	Verified      bool          `json:"verified"`
	Claimed       bool          `json:"claimed"`
	Rating        float64       `json:"rating"`
	Views         int64         `json:"views"`
	Images        []string      `json:"images,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Validate checks the invariants enforced before a provider is written.
func (p *Provider) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("provider id is required")
	}
	if p.Name.IsZero() {
		return fmt.Errorf("provider %s: name is required", p.ID)
	}
	if !p.Category.IsValid() {
		return fmt.Errorf("provider %s: invalid category %q", p.ID, p.Category)
	}
	if p.Rating < 0 || p.Rating > MaxRating {
		return fmt.Errorf("provider %s: rating must be between 0 and %g", p.ID, MaxRating)
	}
	if p.Views < 0 {
		return fmt.Errorf("provider %s: views must not be negative", p.ID)
	}
	if p.Location != nil && !p.Location.Point().Valid() {
		return fmt.Errorf("provider %s: coordinates out of range", p.ID)
	}
	return nil
}

// SearchText is the lowercased concatenation of every field the text filter inspects.
func (p *Provider) SearchText() string {
	parts := make([]string, 0, 9)
	parts = append(parts, p.Name.Values()...)
	parts = append(parts, p.Specialty.Values()...)
	parts = append(parts, p.Address.Street, p.Address.City, string(p.Category))
	return strings.ToLower(strings.Join(parts, " "))
}
