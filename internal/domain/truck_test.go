package domain

import "testing"

func TestTruckLoadCapacityInvariant(t *testing.T) {
	truck := &Truck{ID: 1, Capacity: 10}

	ok := Cargo{Packages: []Package{{Volume: 6, Weight: 100, Type: CargoStandard}}}
	if err := truck.Load(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tooBig := Cargo{Packages: []Package{{Volume: 5, Weight: 100, Type: CargoStandard}}}
	if err := truck.Load(tooBig); err == nil {
		t.Fatal("expected capacity error, got nil")
	}

	if used := truck.UsedCapacity(); used != 6 {
		t.Errorf("used capacity = %f, want 6 (failed load must not mutate)", used)
	}
}

func TestTruckLoadSetsTruckID(t *testing.T) {
	truck := &Truck{ID: 7, Capacity: 48}
	cargo := Cargo{ID: 3, Packages: []Package{{Volume: 1, Type: CargoStandard}}}

	if err := truck.Load(cargo); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if truck.Loads[0].TruckID != 7 {
		t.Errorf("loaded cargo truck id = %d, want 7", truck.Loads[0].TruckID)
	}
}

func TestTruckUtilizationPercent(t *testing.T) {
	truck := &Truck{Capacity: 48}
	truck.Loads = []Cargo{{Packages: []Package{{Volume: 12, Type: CargoStandard}}}}

	if u := truck.UtilizationPercent(); u != 25 {
		t.Errorf("utilization = %f, want 25", u)
	}

	empty := &Truck{}
	if u := empty.UtilizationPercent(); u != 0 {
		t.Errorf("zero-capacity utilization = %f, want 0", u)
	}
}
