package provider

import (
	"time"

	domprov "github.com/cityhealth/directory/internal/domain/provider"
)

type localizedDoc struct {
	Ar string `bson:"ar,omitempty"`
	Fr string `bson:"fr,omitempty"`
	En string `bson:"en,omitempty"`
}

type addressDoc struct {
	Street string `bson:"street,omitempty"`
	City   string `bson:"city"`
}

// geoPoint is a GeoJSON point so a 2dsphere index can be added later.
type geoPoint struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

type providerDoc struct {
	ID            string       `bson:"_id"`
	Name          localizedDoc `bson:"name"`
	Specialty     localizedDoc `bson:"specialty"`
	Category      string       `bson:"category"`
	Address       addressDoc   `bson:"address"`
	Location      *geoPoint    `bson:"location,omitempty"`
	Accessible    bool         `bson:"accessible"`
	HomeVisit     bool         `bson:"home_visit"`
	Emergency24x7 bool         `bson:"emergency_24x7"`
	Verified      bool         `bson:"verified"`
	Claimed       bool         `bson:"claimed"`
	Rating        float64      `bson:"rating"`
	Views         int64        `bson:"views"`
	Images        []string     `bson:"images,omitempty"`
	CreatedAt     time.Time    `bson:"created_at"`
	UpdatedAt     time.Time    `bson:"updated_at"`
}

func toDoc(p *domprov.Provider) providerDoc {
	d := providerDoc{
		ID:            p.ID,
		Name:          localizedDoc(p.Name),
		Specialty:     localizedDoc(p.Specialty),
		Category:      string(p.Category),
		Address:       addressDoc(p.Address),
		Accessible:    p.Accessible,
		HomeVisit:     p.HomeVisit,
		Emergency24x7: p.Emergency24x7,
		Verified:      p.Verified,
		Claimed:       p.Claimed,
		Rating:        p.Rating,
		Views:         p.Views,
		Images:        p.Images,
		CreatedAt:     p.CreatedAt.UTC(),
		UpdatedAt:     p.UpdatedAt.UTC(),
	}
	if p.Location != nil {
		d.Location = &geoPoint{Type: "Point", Coordinates: []float64{p.Location.Lon, p.Location.Lat}}
	}
	return d
}

func fromDoc(d *providerDoc) domprov.Provider {
	p := domprov.Provider{
		ID:            d.ID,
		Name:          domprov.LocalizedText(d.Name),
		Specialty:     domprov.LocalizedText(d.Specialty),
		Category:      domprov.Category(d.Category),
		Address:       domprov.Address(d.Address),
		Accessible:    d.Accessible,
		HomeVisit:     d.HomeVisit,
		Emergency24x7: d.Emergency24x7,
		Verified:      d.Verified,
		Claimed:       d.Claimed,
		Rating:        d.Rating,
		Views:         d.Views,
		Images:        d.Images,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if d.Location != nil && len(d.Location.Coordinates) == 2 {
		p.Location = &domprov.Location{Lat: d.Location.Coordinates[1], Lon: d.Location.Coordinates[0]}
	}
	return p
}
