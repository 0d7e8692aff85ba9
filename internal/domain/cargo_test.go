package domain

import "testing"

func cargoOf(types ...CargoType) Cargo {
	pkgs := make([]Package, 0, len(types))
	for i, ct := range types {
		pkgs = append(pkgs, Package{ID: int64(i + 1), Volume: 1, Weight: 10, Type: ct})
	}
	return Cargo{Packages: pkgs}
}

func TestCargoCompatibility(t *testing.T) {
	cases := []struct {
		name string
		a, b Cargo
		want bool
	}{
		{"standard with standard", cargoOf(CargoStandard), cargoOf(CargoStandard), true},
		{"hazmat with fragile", cargoOf(CargoHazmat), cargoOf(CargoFragile), false},
		{"fragile with hazmat", cargoOf(CargoFragile), cargoOf(CargoHazmat), false},
		{"hazmat with refrigerated", cargoOf(CargoHazmat), cargoOf(CargoRefrigerated), false},
		{"fragile with refrigerated", cargoOf(CargoFragile), cargoOf(CargoRefrigerated), true},
		{"hazmat with hazmat", cargoOf(CargoHazmat), cargoOf(CargoHazmat), true},
	}

	for _, tc := range cases {
		if got := tc.a.CompatibleWith(tc.b); got != tc.want {
			t.Errorf("%s: CompatibleWith = %v, want %v", tc.name, got, tc.want)
		}
		// The rule is symmetric.
		if got := tc.b.CompatibleWith(tc.a); got != tc.want {
			t.Errorf("%s (reversed): CompatibleWith = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCargoInternallyCompatible(t *testing.T) {
	if cargoOf(CargoHazmat, CargoFragile).InternallyCompatible() {
		t.Error("hazmat+fragile in one cargo should be incompatible")
	}
	if !cargoOf(CargoStandard, CargoRefrigerated).InternallyCompatible() {
		t.Error("standard+refrigerated in one cargo should be compatible")
	}
}

func TestCargoTotals(t *testing.T) {
	c := Cargo{Packages: []Package{
		{Volume: 2.5, Weight: 100, Type: CargoStandard},
		{Volume: 1.5, Weight: 50, Type: CargoFragile},
	}}

	if v := c.TotalVolume(); v != 4.0 {
		t.Errorf("total volume = %f, want 4.0", v)
	}
	if w := c.TotalWeight(); w != 150.0 {
		t.Errorf("total weight = %f, want 150.0", w)
	}
	if n := len(c.Types()); n != 2 {
		t.Errorf("types count = %d, want 2", n)
	}
}

func TestTypesCompatibleUnion(t *testing.T) {
	// The forbidden pair stays forbidden regardless of how many other
	// types join the set.
	union := map[CargoType]struct{}{
		CargoStandard:     {},
		CargoHazmat:       {},
		CargoRefrigerated: {},
	}
	if TypesCompatible(union) {
		t.Error("union containing hazmat+refrigerated should be incompatible")
	}
}
