package ports

import (
	"context"

	"freight-matching-service/internal/domain"
)

// Calculation method tags so callers can distinguish road-accurate results
// from geometric estimates.
const (
	MethodNetwork   = "network"
	MethodHaversine = "haversine"
	MethodMixed     = "mixed"
)

// Distance and estimated travel time between two locations. Note carries a
// non-fatal degradation reason when the road network could not be used.
type DistanceResult struct {
	Km     float64
	Hours  float64
	Method string
	Note   string
}

// Aggregated result for an ordered multi-waypoint path.
type RouteResult struct {
	TotalKm    float64
	TotalHours float64
	LegKm      []float64
	Method     string
}

// Contract for resolving distances between locations, preferring a road
// network and degrading to great-circle math. Implementations only return
// an error for caller bugs (invalid coordinates, too few waypoints), never
// for provider failures.
type DistanceService interface {
	DistanceBetween(ctx context.Context, a, b domain.Location) (DistanceResult, error)
	RouteDistance(ctx context.Context, waypoints []domain.Location) (RouteResult, error)
}
