package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"freight-matching-service/internal/api/dto"
	"freight-matching-service/internal/domain"
	"freight-matching-service/internal/ports"
)

// FreightHandler exposes read-only listing endpoints over the repository.
type FreightHandler struct {
	Repo ports.FreightRepository
}

func (h *FreightHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	var orders []domain.Order
	var err error
	if r.URL.Query().Get("unassigned") == "true" {
		orders, err = h.Repo.ListUnassignedOrders(r.Context())
	} else {
		orders, err = h.Repo.ListOrders(r.Context())
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list orders failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListOrdersResponse{Orders: make([]dto.OrderResponse, 0, len(orders))}
	for _, o := range orders {
		res.Orders = append(res.Orders, toOrderResponse(o))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *FreightHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	routes, err := h.Repo.ListRoutes(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list routes failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListRoutesResponse{Routes: make([]dto.RouteResponse, 0, len(routes))}
	for _, rt := range routes {
		res.Routes = append(res.Routes, toRouteResponse(rt))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *FreightHandler) ListTrucks(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	trucks, err := h.Repo.ListTrucks(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list trucks failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListTrucksResponse{Trucks: make([]dto.TruckResponse, 0, len(trucks))}
	for _, t := range trucks {
		res.Trucks = append(res.Trucks, toTruckResponse(t))
	}
	writeJSON(w, r, http.StatusOK, res)
}

// loadWorld fetches the unassigned orders, routes, and trucks the matching
// stages operate on, as pointer slices the services can mutate in place.
func loadWorld(ctx context.Context, repo ports.FreightRepository) ([]*domain.Order, []*domain.Route, []*domain.Truck, error) {
	orderVals, err := repo.ListUnassignedOrders(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	routeVals, err := repo.ListRoutes(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	truckVals, err := repo.ListTrucks(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	orders := make([]*domain.Order, len(orderVals))
	for i := range orderVals {
		orders[i] = &orderVals[i]
	}
	routes := make([]*domain.Route, len(routeVals))
	for i := range routeVals {
		routes[i] = &routeVals[i]
	}
	trucks := make([]*domain.Truck, len(truckVals))
	for i := range truckVals {
		trucks[i] = &truckVals[i]
	}
	return orders, routes, trucks, nil
}
