package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"freight-matching-service/internal/domain"
)

// Dialect selects placeholder syntax. Queries are written with ? and
// rebound to $n for postgres.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Rebind converts ? placeholders to the dialect's syntax.
func Rebind(d Dialect, query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// SQL-backed implementation of the FreightRepository port. One
// implementation serves both backends; only placeholder syntax differs.
type SQLFreightRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLFreightRepository(db *sql.DB, dialect Dialect) *SQLFreightRepository {
	return &SQLFreightRepository{db: db, dialect: dialect}
}

func (r *SQLFreightRepository) q(query string) string {
	return Rebind(r.dialect, query)
}

// ListOrders returns every order with its locations and cargo attached.
func (r *SQLFreightRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return r.listOrders(ctx, "")
}

// ListUnassignedOrders returns orders not yet placed on a route.
func (r *SQLFreightRepository) ListUnassignedOrders(ctx context.Context) ([]domain.Order, error) {
	return r.listOrders(ctx, "WHERE o.route_id IS NULL")
}

func (r *SQLFreightRepository) listOrders(ctx context.Context, where string) ([]domain.Order, error) {
	if r.db == nil {
		return nil, errors.New("freight repository: DB is nil")
	}

	query := `
	SELECT
		o.id, o.client_id, o.route_id,
		pu.id, pu.lat, pu.lng,
		df.id, df.lat, df.lng
	FROM orders o
	JOIN locations pu ON pu.id = o.pickup_id
	JOIN locations df ON df.id = o.dropoff_id
	` + where + `
	ORDER BY o.id;
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list orders: query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, 64)
	index := make(map[int64]int)
	for rows.Next() {
		var o domain.Order
		var clientID, routeID sql.NullInt64
		err := rows.Scan(
			&o.ID, &clientID, &routeID,
			&o.Pickup.ID, &o.Pickup.Lat, &o.Pickup.Lng,
			&o.Dropoff.ID, &o.Dropoff.Lat, &o.Dropoff.Lng,
		)
		if err != nil {
			return nil, fmt.Errorf("list orders: scan row: %w", err)
		}
		o.ClientID = clientID.Int64
		o.RouteID = routeID.Int64
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: row iteration: %w", err)
	}

	if err := r.attachCargo(ctx, orders, index); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// attachCargo loads cargo and packages for the given orders in one pass.
func (r *SQLFreightRepository) attachCargo(ctx context.Context, orders []domain.Order, index map[int64]int) error {
	if len(orders) == 0 {
		return nil
	}

	query := `
	SELECT
		c.id, c.order_id, c.truck_id,
		p.id, p.volume_m3, p.weight_kg, p.cargo_type
	FROM cargo c
	JOIN packages p ON p.cargo_id = c.id
	ORDER BY c.order_id, c.id, p.id;
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("query cargo: %w", err)
	}
	defer rows.Close()

	var current *domain.Cargo
	var currentOrder int
	flush := func() {
		if current != nil {
			orders[currentOrder].Cargo = append(orders[currentOrder].Cargo, *current)
			current = nil
		}
	}

	for rows.Next() {
		var cargoID, orderID int64
		var truckID sql.NullInt64
		var pkg domain.Package
		var cargoType string
		err := rows.Scan(&cargoID, &orderID, &truckID,
			&pkg.ID, &pkg.Volume, &pkg.Weight, &cargoType)
		if err != nil {
			return fmt.Errorf("scan cargo row: %w", err)
		}
		pkg.Type = domain.CargoType(cargoType)

		idx, ok := index[orderID]
		if !ok {
			continue
		}
		if current == nil || current.ID != cargoID || currentOrder != idx {
			flush()
			current = &domain.Cargo{ID: cargoID, OrderID: orderID, TruckID: truckID.Int64}
			currentOrder = idx
		}
		current.Packages = append(current.Packages, pkg)
	}
	flush()

	if err := rows.Err(); err != nil {
		return fmt.Errorf("cargo row iteration: %w", err)
	}
	return nil
}

// ListRoutes returns every route with waypoints and assigned order ids.
func (r *SQLFreightRepository) ListRoutes(ctx context.Context) ([]domain.Route, error) {
	if r.db == nil {
		return nil, errors.New("freight repository: DB is nil")
	}

	query := `
	SELECT
		rt.id, rt.truck_id, rt.profitability,
		og.id, og.lat, og.lng,
		ds.id, ds.lat, ds.lng
	FROM routes rt
	JOIN locations og ON og.id = rt.origin_id
	JOIN locations ds ON ds.id = rt.destiny_id
	ORDER BY rt.id;
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list routes: query routes: %w", err)
	}
	defer rows.Close()

	routes := make([]domain.Route, 0, 16)
	index := make(map[int64]int)
	for rows.Next() {
		var rt domain.Route
		var truckID sql.NullInt64
		err := rows.Scan(
			&rt.ID, &truckID, &rt.Profitability,
			&rt.Origin.ID, &rt.Origin.Lat, &rt.Origin.Lng,
			&rt.Destiny.ID, &rt.Destiny.Lat, &rt.Destiny.Lng,
		)
		if err != nil {
			return nil, fmt.Errorf("list routes: scan row: %w", err)
		}
		rt.TruckID = truckID.Int64
		index[rt.ID] = len(routes)
		routes = append(routes, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: row iteration: %w", err)
	}
	if len(routes) == 0 {
		return routes, nil
	}

	wpQuery := `
	SELECT w.route_id, l.id, l.lat, l.lng
	FROM route_waypoints w
	JOIN locations l ON l.id = w.location_id
	ORDER BY w.route_id, w.seq;
	`
	wpRows, err := r.db.QueryContext(ctx, wpQuery)
	if err != nil {
		return nil, fmt.Errorf("list routes: query waypoints: %w", err)
	}
	defer wpRows.Close()

	for wpRows.Next() {
		var routeID int64
		var loc domain.Location
		if err := wpRows.Scan(&routeID, &loc.ID, &loc.Lat, &loc.Lng); err != nil {
			return nil, fmt.Errorf("list routes: scan waypoint: %w", err)
		}
		if idx, ok := index[routeID]; ok {
			routes[idx].Path = append(routes[idx].Path, loc)
		}
	}
	if err := wpRows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: waypoint iteration: %w", err)
	}

	ordQuery := `SELECT id, route_id FROM orders WHERE route_id IS NOT NULL ORDER BY id;`
	ordRows, err := r.db.QueryContext(ctx, ordQuery)
	if err != nil {
		return nil, fmt.Errorf("list routes: query assigned orders: %w", err)
	}
	defer ordRows.Close()

	for ordRows.Next() {
		var orderID, routeID int64
		if err := ordRows.Scan(&orderID, &routeID); err != nil {
			return nil, fmt.Errorf("list routes: scan assigned order: %w", err)
		}
		if idx, ok := index[routeID]; ok {
			routes[idx].OrderIDs = append(routes[idx].OrderIDs, orderID)
		}
	}
	if err := ordRows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: assigned order iteration: %w", err)
	}

	return routes, nil
}

// ListTrucks returns every truck with its loaded cargo attached.
func (r *SQLFreightRepository) ListTrucks(ctx context.Context) ([]domain.Truck, error) {
	if r.db == nil {
		return nil, errors.New("freight repository: DB is nil")
	}

	query := `
	SELECT id, capacity_m3, autonomy_km, truck_type
	FROM trucks
	ORDER BY id;
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list trucks: query trucks: %w", err)
	}
	defer rows.Close()

	trucks := make([]domain.Truck, 0, 16)
	index := make(map[int64]int)
	for rows.Next() {
		var t domain.Truck
		if err := rows.Scan(&t.ID, &t.Capacity, &t.Autonomy, &t.Type); err != nil {
			return nil, fmt.Errorf("list trucks: scan row: %w", err)
		}
		index[t.ID] = len(trucks)
		trucks = append(trucks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trucks: row iteration: %w", err)
	}
	if len(trucks) == 0 {
		return trucks, nil
	}

	loadQuery := `
	SELECT
		c.id, c.order_id, c.truck_id,
		p.id, p.volume_m3, p.weight_kg, p.cargo_type
	FROM cargo c
	JOIN packages p ON p.cargo_id = c.id
	WHERE c.truck_id IS NOT NULL
	ORDER BY c.truck_id, c.id, p.id;
	`
	loadRows, err := r.db.QueryContext(ctx, loadQuery)
	if err != nil {
		return nil, fmt.Errorf("list trucks: query loads: %w", err)
	}
	defer loadRows.Close()

	var current *domain.Cargo
	flush := func() {
		if current != nil {
			if idx, ok := index[current.TruckID]; ok {
				trucks[idx].Loads = append(trucks[idx].Loads, *current)
			}
			current = nil
		}
	}
	for loadRows.Next() {
		var cargoID, orderID int64
		var truckID sql.NullInt64
		var pkg domain.Package
		var cargoType string
		err := loadRows.Scan(&cargoID, &orderID, &truckID,
			&pkg.ID, &pkg.Volume, &pkg.Weight, &cargoType)
		if err != nil {
			return nil, fmt.Errorf("list trucks: scan load row: %w", err)
		}
		pkg.Type = domain.CargoType(cargoType)

		if current == nil || current.ID != cargoID {
			flush()
			current = &domain.Cargo{ID: cargoID, OrderID: orderID, TruckID: truckID.Int64}
		}
		current.Packages = append(current.Packages, pkg)
	}
	flush()

	if err := loadRows.Err(); err != nil {
		return nil, fmt.Errorf("list trucks: load iteration: %w", err)
	}

	return trucks, nil
}

// AssignOrderToRoute records a match: the order's route reference and its
// cargo's truck reference are updated together.
func (r *SQLFreightRepository) AssignOrderToRoute(ctx context.Context, orderID, routeID int64) error {
	if r.db == nil {
		return errors.New("freight repository: DB is nil")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("assign order: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		r.q(`UPDATE orders SET route_id = ? WHERE id = ?;`), routeID, orderID)
	if err != nil {
		return fmt.Errorf("assign order %d: %w", orderID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("assign order %d: order not found", orderID)
	}

	_, err = tx.ExecContext(ctx, r.q(`
	UPDATE cargo SET truck_id = (SELECT truck_id FROM routes WHERE id = ?)
	WHERE order_id = ?;`), routeID, orderID)
	if err != nil {
		return fmt.Errorf("assign order %d: update cargo truck: %w", orderID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("assign order %d: commit tx: %w", orderID, err)
	}
	return nil
}

// SaveRoute persists a generated route with its locations and waypoints,
// allocating ids inside the transaction, and returns the new route id.
func (r *SQLFreightRepository) SaveRoute(ctx context.Context, route domain.Route) (int64, error) {
	if r.db == nil {
		return 0, errors.New("freight repository: DB is nil")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("save route: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	nextLoc, err := nextID(ctx, tx, "locations")
	if err != nil {
		return 0, fmt.Errorf("save route: %w", err)
	}

	saveLocation := func(loc domain.Location) (int64, error) {
		if loc.ID != 0 {
			return loc.ID, nil
		}
		id := nextLoc
		nextLoc++
		_, err := tx.ExecContext(ctx,
			r.q(`INSERT INTO locations (id, lat, lng) VALUES (?, ?, ?);`),
			id, loc.Lat, loc.Lng)
		if err != nil {
			return 0, fmt.Errorf("insert location: %w", err)
		}
		return id, nil
	}

	originID, err := saveLocation(route.Origin)
	if err != nil {
		return 0, fmt.Errorf("save route: %w", err)
	}
	destinyID, err := saveLocation(route.Destiny)
	if err != nil {
		return 0, fmt.Errorf("save route: %w", err)
	}

	routeID, err := nextID(ctx, tx, "routes")
	if err != nil {
		return 0, fmt.Errorf("save route: %w", err)
	}

	truckID := sql.NullInt64{Int64: route.TruckID, Valid: route.TruckID != 0}
	_, err = tx.ExecContext(ctx, r.q(`
	INSERT INTO routes (id, origin_id, destiny_id, truck_id, profitability)
	VALUES (?, ?, ?, ?, ?);`),
		routeID, originID, destinyID, truckID, route.Profitability)
	if err != nil {
		return 0, fmt.Errorf("save route: insert route: %w", err)
	}

	for seq, wp := range route.Path {
		locID, err := saveLocation(wp)
		if err != nil {
			return 0, fmt.Errorf("save route: waypoint %d: %w", seq, err)
		}
		_, err = tx.ExecContext(ctx,
			r.q(`INSERT INTO route_waypoints (route_id, seq, location_id) VALUES (?, ?, ?);`),
			routeID, seq, locID)
		if err != nil {
			return 0, fmt.Errorf("save route: insert waypoint %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save route: commit tx: %w", err)
	}
	return routeID, nil
}

// UpdateRouteProfitability stores a recalculated profitability figure.
func (r *SQLFreightRepository) UpdateRouteProfitability(ctx context.Context, routeID int64, profitability float64) error {
	if r.db == nil {
		return errors.New("freight repository: DB is nil")
	}

	res, err := r.db.ExecContext(ctx,
		r.q(`UPDATE routes SET profitability = ? WHERE id = ?;`),
		profitability, routeID)
	if err != nil {
		return fmt.Errorf("update route %d profitability: %w", routeID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update route %d profitability: route not found", routeID)
	}
	return nil
}

// nextID allocates the next id for a table. Callers must hold a
// transaction; the read and subsequent insert are atomic within it.
func nextID(ctx context.Context, tx *sql.Tx, table string) (int64, error) {
	var id sql.NullInt64
	row := tx.QueryRowContext(ctx, `SELECT MAX(id) FROM `+table+`;`)
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("next id for %s: %w", table, err)
	}
	return id.Int64 + 1, nil
}
