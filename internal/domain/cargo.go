package domain

// Classification tag carried by every package; drives truck compatibility
// rules.
type CargoType string

const (
	CargoStandard     CargoType = "standard"
	CargoFragile      CargoType = "fragile"
	CargoHazmat       CargoType = "hazmat"
	CargoRefrigerated CargoType = "refrigerated"
)

// Cargo type pairs that must never share a truck. The check is symmetric.
var forbiddenCargoPairs = [][2]CargoType{
	{CargoHazmat, CargoFragile},
	{CargoHazmat, CargoRefrigerated},
}

// Smallest unit of freight: a single package owned by exactly one cargo.
// Volume in cubic meters, weight in kilograms.
type Package struct {
	ID     int64
	Volume float64
	Weight float64
	Type   CargoType
}

// Cargo groups the packages of one order leg. A cargo belongs to exactly
// one order and, once matched, is loaded onto one truck.
type Cargo struct {
	ID       int64
	OrderID  int64
	TruckID  int64 // zero until loaded
	Packages []Package
}

// TotalVolume sums package volumes in cubic meters.
func (c Cargo) TotalVolume() float64 {
	total := 0.0
	for _, p := range c.Packages {
		total += p.Volume
	}
	return total
}

// TotalWeight sums package weights in kilograms.
func (c Cargo) TotalWeight() float64 {
	total := 0.0
	for _, p := range c.Packages {
		total += p.Weight
	}
	return total
}

// Types returns the set of cargo types present across the packages.
func (c Cargo) Types() map[CargoType]struct{} {
	types := make(map[CargoType]struct{}, 2)
	for _, p := range c.Packages {
		types[p.Type] = struct{}{}
	}
	return types
}

// InternallyCompatible reports whether the cargo's own packages can legally
// travel together.
func (c Cargo) InternallyCompatible() bool {
	return TypesCompatible(c.Types())
}

// CompatibleWith reports whether this cargo may share a truck with another
// cargo under the forbidden-pair rules.
func (c Cargo) CompatibleWith(other Cargo) bool {
	mine := c.Types()
	theirs := other.Types()

	for _, pair := range forbiddenCargoPairs {
		_, aMine := mine[pair[0]]
		_, bTheirs := theirs[pair[1]]
		if aMine && bTheirs {
			return false
		}
		_, bMine := mine[pair[1]]
		_, aTheirs := theirs[pair[0]]
		if bMine && aTheirs {
			return false
		}
	}
	return true
}

// TypesCompatible reports whether a set of cargo types contains no
// forbidden pair.
func TypesCompatible(types map[CargoType]struct{}) bool {
	for _, pair := range forbiddenCargoPairs {
		_, a := types[pair[0]]
		_, b := types[pair[1]]
		if a && b {
			return false
		}
	}
	return true
}
