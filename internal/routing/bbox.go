package routing

import (
	"fmt"
	"math"

	"freight-matching-service/internal/domain"
)

// Kilometers per degree of latitude; longitude degrees shrink with
// cos(latitude).
const kmPerDegreeLat = 111.0

// Axis-aligned latitude/longitude rectangle used to scope a road-network
// fetch.
type BoundingBox struct {
	North float64
	South float64
	East  float64
	West  float64
}

// Key returns the cache key for the box, rounded to 4 decimal places so
// near-identical boxes collide intentionally.
func (b BoundingBox) Key() string {
	return fmt.Sprintf("%.4f,%.4f,%.4f,%.4f", b.South, b.West, b.North, b.East)
}

// Validate checks the structural invariants: south<north, west<east, and
// all edges inside [-90,90]/[-180,180].
func (b BoundingBox) Validate() error {
	if b.South >= b.North {
		return fmt.Errorf("bounding box: south %.4f must be below north %.4f", b.South, b.North)
	}
	if b.West >= b.East {
		return fmt.Errorf("bounding box: west %.4f must be left of east %.4f", b.West, b.East)
	}
	if b.South < -90 || b.North > 90 {
		return fmt.Errorf("bounding box: latitude range [%.4f, %.4f] outside [-90, 90]", b.South, b.North)
	}
	if b.West < -180 || b.East > 180 {
		return fmt.Errorf("bounding box: longitude range [%.4f, %.4f] outside [-180, 180]", b.West, b.East)
	}
	return nil
}

// AreaKm2 returns the approximate box area in square kilometers.
func (b BoundingBox) AreaKm2() float64 {
	heightKm := (b.North - b.South) * kmPerDegreeLat
	avgLat := radians((b.North + b.South) / 2)
	widthKm := (b.East - b.West) * kmPerDegreeLat * math.Cos(avgLat)
	return math.Abs(heightKm * widthKm)
}

// Intersects reports whether two boxes overlap (axis-aligned rectangle
// test).
func (b BoundingBox) Intersects(other BoundingBox) bool {
	if b.East < other.West || other.East < b.West {
		return false
	}
	if b.North < other.South || other.North < b.South {
		return false
	}
	return true
}

// Contains reports whether a location lies inside the box.
func (b BoundingBox) Contains(loc domain.Location) bool {
	return loc.Lat >= b.South && loc.Lat <= b.North &&
		loc.Lng >= b.West && loc.Lng <= b.East
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// BoxFromLocations builds the minimal box around the locations and expands
// it by a padding distance in kilometers.
func BoxFromLocations(locs []domain.Location, paddingKm float64) (BoundingBox, error) {
	if len(locs) == 0 {
		return BoundingBox{}, ErrNoLocations
	}

	minLat, maxLat := locs[0].Lat, locs[0].Lat
	minLng, maxLng := locs[0].Lng, locs[0].Lng
	for _, l := range locs[1:] {
		minLat = math.Min(minLat, l.Lat)
		maxLat = math.Max(maxLat, l.Lat)
		minLng = math.Min(minLng, l.Lng)
		maxLng = math.Max(maxLng, l.Lng)
	}

	latPad := paddingKm / kmPerDegreeLat

	// Longitude degrees shrink towards the poles; clamp the cosine so the
	// padding stays finite at high latitudes.
	avgLat := radians((minLat + maxLat) / 2)
	cosLat := math.Max(math.Cos(avgLat), 0.01)
	lngPad := paddingKm / (kmPerDegreeLat * cosLat)

	box := BoundingBox{
		North: maxLat + latPad,
		South: minLat - latPad,
		East:  maxLng + lngPad,
		West:  minLng - lngPad,
	}

	if err := box.Validate(); err != nil {
		return BoundingBox{}, err
	}
	return box, nil
}

// AdaptivePaddingKm chooses a fetch padding from the route span: short
// routes get a fixed 10km margin, medium routes 15% of their length, long
// routes 15% clamped to the 30-50km band.
func AdaptivePaddingKm(locs []domain.Location) float64 {
	dist := domain.PathDistance(locs)
	switch {
	case dist < 50:
		return 10
	case dist <= 200:
		return math.Max(10, 0.15*dist)
	default:
		return math.Min(50, math.Max(30, 0.15*dist))
	}
}

// BoxWithAdaptivePadding combines AdaptivePaddingKm and BoxFromLocations.
func BoxWithAdaptivePadding(locs []domain.Location) (BoundingBox, error) {
	return BoxFromLocations(locs, AdaptivePaddingKm(locs))
}
