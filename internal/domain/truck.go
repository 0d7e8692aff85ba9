package domain

import "fmt"

// Delivery truck. Capacity is volume in cubic meters, autonomy is range in
// kilometers. Loads holds the cargo currently on board; the sum of loaded
// volumes never exceeds Capacity.
type Truck struct {
	ID       int64
	Capacity float64
	Autonomy float64
	Type     string
	Loads    []Cargo
}

// UsedCapacity returns the volume currently loaded, in cubic meters.
func (t *Truck) UsedCapacity() float64 {
	used := 0.0
	for _, c := range t.Loads {
		used += c.TotalVolume()
	}
	return used
}

// AvailableCapacity returns the remaining volume, in cubic meters.
func (t *Truck) AvailableCapacity() float64 {
	return t.Capacity - t.UsedCapacity()
}

// LoadedWeight returns the weight currently on board, in kilograms.
func (t *Truck) LoadedWeight() float64 {
	total := 0.0
	for _, c := range t.Loads {
		total += c.TotalWeight()
	}
	return total
}

// CanFit reports whether the truck can take the additional volume.
func (t *Truck) CanFit(volume float64) bool {
	return volume <= t.AvailableCapacity()
}

// CanReach reports whether a distance is within the truck's range.
func (t *Truck) CanReach(distanceKm float64) bool {
	return distanceKm <= t.Autonomy
}

// UtilizationPercent returns how much of the volume capacity is in use.
func (t *Truck) UtilizationPercent() float64 {
	if t.Capacity == 0 {
		return 0
	}
	return t.UsedCapacity() / t.Capacity * 100
}

// Load places a cargo onto the truck, enforcing the capacity invariant.
func (t *Truck) Load(cargo Cargo) error {
	if !t.CanFit(cargo.TotalVolume()) {
		return fmt.Errorf(
			"load truck %d: cargo volume %.2fm3 exceeds available capacity %.2fm3",
			t.ID, cargo.TotalVolume(), t.AvailableCapacity(),
		)
	}
	cargo.TruckID = t.ID
	t.Loads = append(t.Loads, cargo)
	return nil
}

// LoadTypes returns the cargo types currently on board.
func (t *Truck) LoadTypes() map[CargoType]struct{} {
	types := make(map[CargoType]struct{}, 2)
	for _, c := range t.Loads {
		for ct := range c.Types() {
			types[ct] = struct{}{}
		}
	}
	return types
}

// Unload removes all cargo from the truck.
func (t *Truck) Unload() { t.Loads = nil }
