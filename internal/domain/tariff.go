package domain

// Business tariff constants. Cost rates are per mile driven; the fuel rate
// is gas price divided by fleet fuel economy (2.43 / 6.5).
const (
	TruckerCostPerMile     = 0.78
	FuelCostPerMile        = 0.373846153846154
	LeasingCostPerMile     = 0.27
	MaintenanceCostPerMile = 0.17
	InsuranceCostPerMile   = 0.10

	TotalCostPerMile = TruckerCostPerMile + FuelCostPerMile +
		LeasingCostPerMile + MaintenanceCostPerMile + InsuranceCostPerMile

	// Revenue components per order.
	BaseRatePerOrder  = 100.0
	RatePerMile       = 1.50
	RatePerCubicMeter = 15.0
	RatePerKg         = 0.50

	// Fleet operating limits.
	MaxWeightLbs  = 9180.0
	MaxRouteHours = 10.0
	AvgSpeedMph   = 50.0

	// Matching constraints.
	MaxProximityKm  = 1.0
	StopTimeMinutes = 15.0

	// Unit conversions.
	LbsToKg   = 0.453592
	MilesToKm = 1.609344
	KmToMiles = 0.621371
)

// MaxWeightKg is the weight ceiling expressed in kilograms.
const MaxWeightKg = MaxWeightLbs * LbsToKg

// AvgSpeedKmh is the planning speed used for elapsed-time estimates.
const AvgSpeedKmh = AvgSpeedMph * MilesToKm

// RouteCost returns the operating cost in USD of driving the given distance.
func RouteCost(distanceKm float64) float64 {
	return distanceKm * KmToMiles * TotalCostPerMile
}

// OrderRevenue returns the revenue in USD earned by serving one order: a
// flat base rate plus distance, volume, and weight components.
func OrderRevenue(o Order) float64 {
	miles := o.Distance() * KmToMiles
	return BaseRatePerOrder +
		miles*RatePerMile +
		o.TotalVolume()*RatePerCubicMeter +
		o.TotalWeight()*RatePerKg
}

// OrdersRevenue sums OrderRevenue over a set of orders.
func OrdersRevenue(orders []Order) float64 {
	total := 0.0
	for _, o := range orders {
		total += OrderRevenue(o)
	}
	return total
}
