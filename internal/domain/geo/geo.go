// Package geo holds the great-circle math used to annotate suggestions with distances.
package geo

import "math"

// earthRadiusMeters is the mean Earth radius.
const earthRadiusMeters = 6_371_000.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether the latitude is in [-90,90] and the longitude in [-180,180].
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Distance returns the haversine distance between a and b in whole meters.
func Distance(a, b Point) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return math.Round(2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h))))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
