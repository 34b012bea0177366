package geo

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	sba := Point{Lat: 35.1899, Lon: -0.6309}
	oran := Point{Lat: 35.6971, Lon: -0.6308}

	tests := []struct {
		name string
		a, b Point
		want float64
		eps  float64
	}{
		{"same point", sba, sba, 0, 0},
		{"Sidi Bel Abbes to Oran", sba, oran, 56_400, 2_000},
		{"symmetric", oran, sba, 56_400, 2_000},
		{"antipodal", Point{0, 0}, Point{0, 180}, math.Round(math.Pi * earthRadiusMeters), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.eps {
				t.Fatalf("Distance = %.0fm, want %.0f±%.0f", got, tt.want, tt.eps)
			}
			if got != math.Round(got) {
				t.Errorf("distance %v not rounded to meters", got)
			}
		})
	}
}

func TestPointValid(t *testing.T) {
	tests := []struct {
		p    Point
		want bool
	}{
		{Point{0, 0}, true},
		{Point{90, 180}, true},
		{Point{-90, -180}, true},
		{Point{90.1, 0}, false},
		{Point{0, -180.5}, false},
	}
	for _, tt := range tests {
		if got := tt.p.Valid(); got != tt.want {
			t.Errorf("%+v.Valid() = %v, want %v", tt.p, got, tt.want)
		}
	}
}
