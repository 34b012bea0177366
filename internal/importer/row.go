// Package importer loads provider records from YAML and spreadsheet files into the directory.
package importer

import (
	"strings"

	domprov "github.com/cityhealth/directory/internal/domain/provider"
)

// Row is one provider record as read from an import file.
type Row struct {
	// Source is the 1-based position of the record in its file, used in reports.
	Source     int          `yaml:"-"`
	ID         string       `yaml:"id"`
	Name       localizedRow `yaml:"name"`
	Specialty  localizedRow `yaml:"specialty"`
	Category   string       `yaml:"category"`
	Address    addressRow   `yaml:"address"`
	Location   *locationRow `yaml:"location"`
	Accessible bool         `yaml:"accessible"`
	HomeVisit  bool         `yaml:"home_visit"`
	Emergency  bool         `yaml:"emergency_24x7"`
	Verified   bool         `yaml:"verified"`
	Claimed    bool         `yaml:"claimed"`
	Rating     float64      `yaml:"rating"`
	Images     []string     `yaml:"images"`
}

type localizedRow struct {
	Ar string `yaml:"ar"`
	Fr string `yaml:"fr"`
	En string `yaml:"en"`
}

type addressRow struct {
	Street string `yaml:"street"`
	City   string `yaml:"city"`
}

type locationRow struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

func (l localizedRow) text() domprov.LocalizedText {
	return domprov.LocalizedText{
		Ar: strings.TrimSpace(l.Ar),
		Fr: strings.TrimSpace(l.Fr),
		En: strings.TrimSpace(l.En),
	}
}

// provider converts the row. ID and timestamps are filled in by the importer.
func (r *Row) provider() domprov.Provider {
	p := domprov.Provider{
		ID:        strings.TrimSpace(r.ID),
		Name:      r.Name.text(),
		Specialty: r.Specialty.text(),
		Category:  domprov.Category(strings.ToLower(strings.TrimSpace(r.Category))),
		Address: domprov.Address{
			Street: strings.TrimSpace(r.Address.Street),
			City:   strings.TrimSpace(r.Address.City),
		},
		Accessible:    r.Accessible,
		HomeVisit:     r.HomeVisit,
		Emergency24x7: r.Emergency,
		Verified:      r.Verified,
		Claimed:       r.Claimed,
		Rating:        r.Rating,
	}
	if r.Location != nil {
		p.Location = &domprov.Location{Lat: r.Location.Lat, Lon: r.Location.Lon}
	}
	for _, img := range r.Images {
		if img = strings.TrimSpace(img); img != "" {
			p.Images = append(p.Images, img)
		}
	}
	return p
}
