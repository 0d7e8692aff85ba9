package ports

import (
	"context"

	"freight-matching-service/internal/domain"
)

// Port: boundary for loading and persisting freight entities. The core
// services operate on values fetched through this interface and hand
// mutated state back; they never touch storage directly.
type FreightRepository interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	// ListUnassignedOrders returns orders whose RouteID is still zero.
	ListUnassignedOrders(ctx context.Context) ([]domain.Order, error)
	ListRoutes(ctx context.Context) ([]domain.Route, error)
	ListTrucks(ctx context.Context) ([]domain.Truck, error)
	// AssignOrderToRoute records a successful match.
	AssignOrderToRoute(ctx context.Context, orderID, routeID int64) error
	// SaveRoute persists a newly generated route and returns its id.
	SaveRoute(ctx context.Context, route domain.Route) (int64, error)
	// UpdateRouteProfitability stores a recalculated profitability figure.
	UpdateRouteProfitability(ctx context.Context, routeID int64, profitability float64) error
}
