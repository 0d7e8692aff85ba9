package matching

import (
	"fmt"

	"freight-matching-service/internal/domain"
)

// ReasonCode identifies which business rule rejected an order.
type ReasonCode string

const (
	ReasonProximity    ReasonCode = "proximity_exceeded"
	ReasonCapacity     ReasonCode = "capacity_exceeded"
	ReasonWeight       ReasonCode = "weight_exceeded"
	ReasonTime         ReasonCode = "time_exceeded"
	ReasonIncompatible ReasonCode = "incompatible_cargo"
	ReasonNoCandidates ReasonCode = "no_candidates"
)

// Reason describes a rejected validation with the measured values that
// caused it, so callers can act on the numbers rather than parse messages.
type Reason struct {
	Code    ReasonCode
	Message string
	Details map[string]float64
}

func (r *Reason) Error() string { return r.Message }

// Validator checks one order against one route and truck pair. It is
// stateless; all tunables are the package-level business constants.
type Validator struct{}

// Validate runs the proximity, capacity, weight, time, and cargo
// compatibility rules in order, returning nil when the order can be
// assigned or the first failing rule's reason.
func (v Validator) Validate(order domain.Order, route domain.Route, truck *domain.Truck) *Reason {
	if r := v.checkProximity(order, route); r != nil {
		return r
	}
	if r := v.checkCapacity(order, truck); r != nil {
		return r
	}
	if r := v.checkTime(order, route); r != nil {
		return r
	}
	return v.checkCargoCompatibility(order, truck)
}

func (v Validator) checkProximity(order domain.Order, route domain.Route) *Reason {
	points := route.Points()

	pickup := minDistanceToPoints(order.Pickup, points)
	if pickup > domain.MaxProximityKm {
		return &Reason{
			Code: ReasonProximity,
			Message: fmt.Sprintf("pickup too far from route: %.3fkm > %.1fkm",
				pickup, domain.MaxProximityKm),
			Details: map[string]float64{
				"pickup_deviation_km": pickup,
				"max_deviation_km":    domain.MaxProximityKm,
			},
		}
	}

	dropoff := minDistanceToPoints(order.Dropoff, points)
	if dropoff > domain.MaxProximityKm {
		return &Reason{
			Code: ReasonProximity,
			Message: fmt.Sprintf("dropoff too far from route: %.3fkm > %.1fkm",
				dropoff, domain.MaxProximityKm),
			Details: map[string]float64{
				"dropoff_deviation_km": dropoff,
				"max_deviation_km":     domain.MaxProximityKm,
			},
		}
	}

	return nil
}

func (v Validator) checkCapacity(order domain.Order, truck *domain.Truck) *Reason {
	needVolume := order.TotalVolume()
	availVolume := truck.AvailableCapacity()
	if needVolume > availVolume {
		return &Reason{
			Code: ReasonCapacity,
			Message: fmt.Sprintf("insufficient volume capacity: need %.1fm3, available %.1fm3, short %.1fm3",
				needVolume, availVolume, needVolume-availVolume),
			Details: map[string]float64{
				"required_volume_m3":  needVolume,
				"available_volume_m3": availVolume,
				"deficit_volume_m3":   needVolume - availVolume,
			},
		}
	}

	needWeight := order.TotalWeight()
	availWeight := domain.MaxWeightKg - truck.LoadedWeight()
	if needWeight > availWeight {
		return &Reason{
			Code: ReasonWeight,
			Message: fmt.Sprintf("insufficient weight capacity: need %.1fkg, available %.1fkg",
				needWeight, availWeight),
			Details: map[string]float64{
				"required_weight_kg":  needWeight,
				"available_weight_kg": availWeight,
				"max_weight_kg":       domain.MaxWeightKg,
			},
		}
	}

	return nil
}

func (v Validator) checkTime(order domain.Order, route domain.Route) *Reason {
	current := route.TotalTime(domain.AvgSpeedKmh)
	stops := 2 * domain.StopTimeMinutes / 60.0
	deviation := deviationDistance(order, route) / domain.AvgSpeedKmh

	total := current + stops + deviation
	if total > domain.MaxRouteHours {
		return &Reason{
			Code: ReasonTime,
			Message: fmt.Sprintf("route would exceed maximum time: %.2fh > %.1fh",
				total, domain.MaxRouteHours),
			Details: map[string]float64{
				"current_time_hours":   current,
				"projected_time_hours": total,
				"max_hours":            domain.MaxRouteHours,
			},
		}
	}

	return nil
}

func (v Validator) checkCargoCompatibility(order domain.Order, truck *domain.Truck) *Reason {
	for _, c := range order.Cargo {
		if !c.InternallyCompatible() {
			return &Reason{
				Code:    ReasonIncompatible,
				Message: "incompatible cargo types within a single shipment",
			}
		}
	}

	for _, c := range order.Cargo {
		for _, loaded := range truck.Loads {
			if !c.CompatibleWith(loaded) {
				return &Reason{
					Code:    ReasonIncompatible,
					Message: "order cargo conflicts with cargo already loaded on truck",
				}
			}
		}
	}

	return nil
}

// minDistanceToPoints returns the smallest great-circle distance from a
// location to any route point.
func minDistanceToPoints(loc domain.Location, points []domain.Location) float64 {
	min := -1.0
	for _, p := range points {
		d := loc.DistanceTo(p)
		if min < 0 || d < min {
			min = d
		}
	}
	if min < 0 {
		return 0
	}
	return min
}

// deviationDistance approximates the extra distance added to a route by
// serving the order: a round trip to the pickup and dropoff deviations.
func deviationDistance(order domain.Order, route domain.Route) float64 {
	points := route.Points()
	pickup := minDistanceToPoints(order.Pickup, points)
	dropoff := minDistanceToPoints(order.Dropoff, points)
	return 2 * (pickup + dropoff)
}
