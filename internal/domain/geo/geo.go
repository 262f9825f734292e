package geo

import "math"

// EarthRadiusMiles is the mean radius of Earth used for Haversine distance.
const EarthRadiusMiles = 3958.8

// MetersPerMile converts statute miles to meters.
const MetersPerMile = 1609.344

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// HaversineMiles returns the great-circle distance in miles between a and b.
func HaversineMiles(a, b Point) float64 {
	lat1r := a.Lat * math.Pi / 180
	lat2r := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMiles * c
}

// MilesToMeters converts miles to meters (PostGIS geography units).
func MilesToMeters(miles float64) float64 {
	return miles * MetersPerMile
}

// ValidLat reports whether lat is within [-90,90].
func ValidLat(lat float64) bool { return lat >= -90 && lat <= 90 }

// ValidLng reports whether lng is within [-180,180].
func ValidLng(lng float64) bool { return lng >= -180 && lng <= 180 }
