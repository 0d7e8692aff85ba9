package domain

// Freight order: move one or more cargo from a pickup location to a
// dropoff location. An order starts unmatched and is assigned a route by
// the matching engine; RouteID stays zero until then. Routes are referenced
// by identifier only, never embedded, so orders and routes cannot form
// ownership cycles.
type Order struct {
	ID       int64
	Pickup   Location
	Dropoff  Location
	ClientID int64 // zero when the order has no client reference
	RouteID  int64 // zero while unmatched
	Cargo    []Cargo
}

// IsMatched reports whether the order has been assigned to a route.
func (o Order) IsMatched() bool { return o.RouteID != 0 }

// Distance returns the pickup-to-dropoff great-circle distance in km.
func (o Order) Distance() float64 {
	return o.Pickup.DistanceTo(o.Dropoff)
}

// TotalVolume sums cargo volumes in cubic meters.
func (o Order) TotalVolume() float64 {
	total := 0.0
	for _, c := range o.Cargo {
		total += c.TotalVolume()
	}
	return total
}

// TotalWeight sums cargo weights in kilograms.
func (o Order) TotalWeight() float64 {
	total := 0.0
	for _, c := range o.Cargo {
		total += c.TotalWeight()
	}
	return total
}

// CargoTypes returns the union of cargo types across all cargo.
func (o Order) CargoTypes() map[CargoType]struct{} {
	types := make(map[CargoType]struct{}, 2)
	for _, c := range o.Cargo {
		for t := range c.Types() {
			types[t] = struct{}{}
		}
	}
	return types
}
