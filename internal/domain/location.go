package domain

import "math"

// Earth radius used by the spherical-Earth approximation, in kilometers.
const earthRadiusKm = 6371.0

// Immutable geographic point (latitude, longitude in decimal degrees).
// Marked is an operator flag carried through from ingestion; it has no
// effect on distance math.
type Location struct {
	ID     int64
	Lat    float64
	Lng    float64
	Marked bool
}

// DistanceTo returns the great-circle distance to another location in
// kilometers using the Haversine formula. Symmetric and non-negative.
func (l Location) DistanceTo(other Location) float64 {
	lat1 := radians(l.Lat)
	lat2 := radians(other.Lat)
	dLat := radians(other.Lat - l.Lat)
	dLng := radians(other.Lng - l.Lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Valid reports whether both coordinates are finite and within
// [-90,90] / [-180,180].
func (l Location) Valid() bool {
	if math.IsNaN(l.Lat) || math.IsInf(l.Lat, 0) {
		return false
	}
	if math.IsNaN(l.Lng) || math.IsInf(l.Lng, 0) {
		return false
	}
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// PathDistance returns the summed leg distances along an ordered list of
// locations. Fewer than two points yields zero.
func PathDistance(points []Location) float64 {
	total := 0.0
	for i := 0; i+1 < len(points); i++ {
		total += points[i].DistanceTo(points[i+1])
	}
	return total
}
