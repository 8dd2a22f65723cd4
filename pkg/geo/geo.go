// Package geo provides WGS84 coordinates and great-circle distance math for
// the establishment search engine.
package geo

import "math"

// earthRadiusMeters is the mean Earth radius used for great-circle distances.
const earthRadiusMeters = 6_371_000

// Coordinate is a WGS84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate is within WGS84 bounds.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// DistanceMeters returns the great-circle distance between a and b, rounded to
// the nearest meter. It is symmetric and returns 0 for coincident points.
func DistanceMeters(a, b Coordinate) int {
	if a == b {
		return 0
	}

	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	// Haversine keeps precision for the short distances typical of a
	// radius search, where the law of cosines degrades.
	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	// Float rounding can push h past 1 for near-antipodal points, which
	// would make Asin return NaN.
	h = math.Min(1, h)
	d := 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))

	return int(math.Round(d))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
