package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"freight-matching-service/internal/domain"
)

// Initialize the freight database schema. The DDL is kept portable across
// sqlite and postgres: explicit ids, no serial columns.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS locations (
			id BIGINT PRIMARY KEY,
			lat DOUBLE PRECISION NOT NULL,
			lng DOUBLE PRECISION NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS trucks (
			id BIGINT PRIMARY KEY,
			capacity_m3 DOUBLE PRECISION NOT NULL,
			autonomy_km DOUBLE PRECISION NOT NULL,
			truck_type TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS routes (
			id BIGINT PRIMARY KEY,
			origin_id BIGINT NOT NULL REFERENCES locations(id),
			destiny_id BIGINT NOT NULL REFERENCES locations(id),
			truck_id BIGINT,
			profitability DOUBLE PRECISION NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS route_waypoints (
			route_id BIGINT NOT NULL REFERENCES routes(id),
			seq INTEGER NOT NULL,
			location_id BIGINT NOT NULL REFERENCES locations(id),
			PRIMARY KEY (route_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGINT PRIMARY KEY,
			pickup_id BIGINT NOT NULL REFERENCES locations(id),
			dropoff_id BIGINT NOT NULL REFERENCES locations(id),
			client_id BIGINT,
			route_id BIGINT REFERENCES routes(id)
		);`,
		`CREATE TABLE IF NOT EXISTS cargo (
			id BIGINT PRIMARY KEY,
			order_id BIGINT NOT NULL REFERENCES orders(id),
			truck_id BIGINT
		);`,
		`CREATE TABLE IF NOT EXISTS packages (
			id BIGINT PRIMARY KEY,
			cargo_id BIGINT NOT NULL REFERENCES cargo(id),
			volume_m3 DOUBLE PRECISION NOT NULL,
			weight_kg DOUBLE PRECISION NOT NULL,
			cargo_type TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_orders_route ON orders(route_id);`,
		`CREATE INDEX IF NOT EXISTS idx_cargo_order ON cargo(order_id);`,
		`CREATE INDEX IF NOT EXISTS idx_cargo_truck ON cargo(truck_id);`,
		`CREATE INDEX IF NOT EXISTS idx_packages_cargo ON packages(cargo_id);`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type locationSeed struct {
	ID  int64   `json:"id"`
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type truckSeed struct {
	ID         int64   `json:"id"`
	CapacityM3 float64 `json:"capacity_m3"`
	AutonomyKm float64 `json:"autonomy_km"`
	Type       string  `json:"type"`
}

type routeSeed struct {
	ID        int64   `json:"id"`
	OriginID  int64   `json:"origin_id"`
	DestinyID int64   `json:"destiny_id"`
	TruckID   int64   `json:"truck_id"`
	Waypoints []int64 `json:"waypoints"`
}

type packageSeed struct {
	ID       int64   `json:"id"`
	VolumeM3 float64 `json:"volume_m3"`
	WeightKg float64 `json:"weight_kg"`
	Type     string  `json:"type"`
}

type cargoSeed struct {
	ID       int64         `json:"id"`
	Packages []packageSeed `json:"packages"`
}

type orderSeed struct {
	ID        int64       `json:"id"`
	PickupID  int64       `json:"pickup_id"`
	DropoffID int64       `json:"dropoff_id"`
	ClientID  int64       `json:"client_id"`
	Cargo     []cargoSeed `json:"cargo"`
}

type seedFile struct {
	Locations []locationSeed `json:"locations"`
	Trucks    []truckSeed    `json:"trucks"`
	Routes    []routeSeed    `json:"routes"`
	Orders    []orderSeed    `json:"orders"`
}

// Populate the database with freight data from a JSON file.
func SeedFromJSON(db *sql.DB, dialect Dialect, jsonPath string) error {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed freight: read %q: %w", jsonPath, err)
	}

	var data seedFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("seed freight: parse json: %w", err)
	}

	for i, l := range data.Locations {
		if l.ID <= 0 {
			return fmt.Errorf("seed freight: invalid location id at index %d: %d", i, l.ID)
		}
		if !(domain.Location{Lat: l.Lat, Lng: l.Lng}).Valid() {
			return fmt.Errorf("seed freight: invalid coordinates for location %d", l.ID)
		}
	}
	for i, t := range data.Trucks {
		if t.ID <= 0 || t.CapacityM3 <= 0 {
			return fmt.Errorf("seed freight: invalid truck at index %d", i)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed freight: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, l := range data.Locations {
		if _, err := tx.Exec(Rebind(dialect, `INSERT INTO locations (id, lat, lng) VALUES (?, ?, ?);`),
			l.ID, l.Lat, l.Lng); err != nil {
			return fmt.Errorf("seed freight: insert location %d: %w", l.ID, err)
		}
	}

	for _, t := range data.Trucks {
		if _, err := tx.Exec(Rebind(dialect, `INSERT INTO trucks (id, capacity_m3, autonomy_km, truck_type) VALUES (?, ?, ?, ?);`),
			t.ID, t.CapacityM3, t.AutonomyKm, t.Type); err != nil {
			return fmt.Errorf("seed freight: insert truck %d: %w", t.ID, err)
		}
	}

	for _, r := range data.Routes {
		truckID := sql.NullInt64{Int64: r.TruckID, Valid: r.TruckID != 0}
		if _, err := tx.Exec(Rebind(dialect, `INSERT INTO routes (id, origin_id, destiny_id, truck_id) VALUES (?, ?, ?, ?);`),
			r.ID, r.OriginID, r.DestinyID, truckID); err != nil {
			return fmt.Errorf("seed freight: insert route %d: %w", r.ID, err)
		}
		for seq, locID := range r.Waypoints {
			if _, err := tx.Exec(Rebind(dialect, `INSERT INTO route_waypoints (route_id, seq, location_id) VALUES (?, ?, ?);`),
				r.ID, seq, locID); err != nil {
				return fmt.Errorf("seed freight: insert waypoint %d of route %d: %w", seq, r.ID, err)
			}
		}
	}

	for _, o := range data.Orders {
		clientID := sql.NullInt64{Int64: o.ClientID, Valid: o.ClientID != 0}
		if _, err := tx.Exec(Rebind(dialect, `INSERT INTO orders (id, pickup_id, dropoff_id, client_id, route_id) VALUES (?, ?, ?, ?, NULL);`),
			o.ID, o.PickupID, o.DropoffID, clientID); err != nil {
			return fmt.Errorf("seed freight: insert order %d: %w", o.ID, err)
		}
		for _, c := range o.Cargo {
			if _, err := tx.Exec(Rebind(dialect, `INSERT INTO cargo (id, order_id, truck_id) VALUES (?, ?, NULL);`),
				c.ID, o.ID); err != nil {
				return fmt.Errorf("seed freight: insert cargo %d: %w", c.ID, err)
			}
			for _, p := range c.Packages {
				if _, err := tx.Exec(Rebind(dialect, `INSERT INTO packages (id, cargo_id, volume_m3, weight_kg, cargo_type) VALUES (?, ?, ?, ?, ?);`),
					p.ID, c.ID, p.VolumeM3, p.WeightKg, p.Type); err != nil {
					return fmt.Errorf("seed freight: insert package %d: %w", p.ID, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed freight: commit tx: %w", err)
	}

	return nil
}
