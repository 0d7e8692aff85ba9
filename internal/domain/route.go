package domain

import "math"

// Per-stop loading/unloading overhead in hours, and the union break rule:
// a 30 minute rest after every full 4 hours of driving. The break rule is
// applied in every elapsed-time computation, never selectively.
const (
	StopOverheadHours  = 0.25
	breakAfterDriveHrs = 4.0
	breakDurationHours = 0.5
)

// Truck route: origin to destiny through an ordered list of intermediate
// waypoints. Orders and the truck are referenced by identifier; zero means
// unassigned. Profitability is revenue minus cost, signed.
type Route struct {
	ID            int64
	Origin        Location
	Destiny       Location
	Path          []Location
	TruckID       int64
	OrderIDs      []int64
	Profitability float64
}

// Points returns the full ordered point list: origin, waypoints, destiny.
func (r Route) Points() []Location {
	points := make([]Location, 0, len(r.Path)+2)
	points = append(points, r.Origin)
	points = append(points, r.Path...)
	points = append(points, r.Destiny)
	return points
}

// BaseDistance returns the direct origin-to-destiny distance in km.
func (r Route) BaseDistance() float64 {
	return r.Origin.DistanceTo(r.Destiny)
}

// TotalDistance returns the driven distance along all points in km.
func (r Route) TotalDistance() float64 {
	return PathDistance(r.Points())
}

// TotalTime returns the route's elapsed time in hours at the given average
// speed: driving time, mandatory breaks, and two stop overheads (pickup and
// dropoff) per assigned order.
func (r Route) TotalTime(baseSpeedKmh float64) float64 {
	if baseSpeedKmh <= 0 {
		return 0
	}
	return ElapsedTime(r.TotalDistance()/baseSpeedKmh, len(r.OrderIDs))
}

// ElapsedTime converts driving hours into total elapsed hours: mandatory
// breaks plus two stop overheads (pickup and dropoff) per order served.
func ElapsedTime(driveHours float64, orders int) float64 {
	breaks := math.Floor(driveHours/breakAfterDriveHrs) * breakDurationHours
	stops := float64(orders) * 2 * StopOverheadHours
	return driveHours + breaks + stops
}

// HasOrder reports whether an order is already assigned to the route.
func (r Route) HasOrder(orderID int64) bool {
	for _, id := range r.OrderIDs {
		if id == orderID {
			return true
		}
	}
	return false
}
