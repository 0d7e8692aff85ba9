package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"freight-matching-service/internal/aggregation"
	"freight-matching-service/internal/api/dto"
	"freight-matching-service/internal/domain"
	"freight-matching-service/internal/generation"
	"freight-matching-service/internal/ports"
)

const defaultGenerateMaxRoutes = 10

// GenerateHandler builds new routes for orders no existing route can
// serve, and persists the profitable ones.
type GenerateHandler struct {
	Repo       ports.FreightRepository
	Aggregator *aggregation.Service
	Generator  *generation.Service
}

func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req dto.GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	maxRoutes := req.MaxRoutes
	if maxRoutes == 0 {
		maxRoutes = defaultGenerateMaxRoutes
	}
	if maxRoutes < 1 || maxRoutes > 100 {
		writeError(w, r, http.StatusBadRequest, "max_routes must be between 1 and 100")
		return
	}

	ctx := r.Context()
	log := zerolog.Ctx(ctx)

	orderPtrs, routes, trucks, err := loadWorld(ctx, h.Repo)
	if err != nil {
		log.Error().Err(err).Msg("load freight state failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	orders := make([]domain.Order, 0, len(orderPtrs))
	for _, o := range orderPtrs {
		orders = append(orders, *o)
	}

	unmatched := h.Aggregator.FindUnmatched(orders, routes, trucks)
	combos := h.Aggregator.FindCombinations(unmatched, 0)
	free := trucksWithoutRoute(trucks, routes)

	results := h.Generator.GenerateMultiple(ctx, combos, free, maxRoutes)

	res := dto.GenerateResponse{Routes: make([]dto.GeneratedRouteResponse, 0, len(results))}
	placed := make(map[int64]struct{})
	for _, gen := range results {
		item := dto.GeneratedRouteResponse{
			Success:          gen.Success,
			EstimatedProfit:  gen.EstimatedProfit,
			EstimatedCost:    gen.EstimatedCost,
			EstimatedRevenue: gen.EstimatedRevenue,
			TotalKm:          gen.TotalKm,
			TotalHours:       gen.TotalHours,
			OrdersIncluded:   gen.OrdersIncluded,
			ErrorReason:      gen.ErrorReason,
		}
		if gen.Success && gen.Route != nil && !overlaps(placed, gen.Route.OrderIDs) {
			id, err := h.Repo.SaveRoute(ctx, *gen.Route)
			if err != nil {
				log.Error().Err(err).Msg("save generated route failed")
				writeError(w, r, http.StatusInternalServerError, "internal server error")
				return
			}
			gen.Route.ID = id
			for _, orderID := range gen.Route.OrderIDs {
				placed[orderID] = struct{}{}
				if err := h.Repo.AssignOrderToRoute(ctx, orderID, id); err != nil {
					log.Error().Err(err).Msg("assign order to generated route failed")
					writeError(w, r, http.StatusInternalServerError, "internal server error")
					return
				}
			}
			rt := toRouteResponse(*gen.Route)
			item.Route = &rt
		}
		res.Routes = append(res.Routes, item)
	}

	writeJSON(w, r, http.StatusOK, res)
}

// trucksWithoutRoute filters out trucks already committed to a route.
func trucksWithoutRoute(trucks []*domain.Truck, routes []*domain.Route) []*domain.Truck {
	busy := make(map[int64]struct{}, len(routes))
	for _, rt := range routes {
		if rt.TruckID != 0 {
			busy[rt.TruckID] = struct{}{}
		}
	}
	free := make([]*domain.Truck, 0, len(trucks))
	for _, t := range trucks {
		if _, ok := busy[t.ID]; !ok {
			free = append(free, t)
		}
	}
	return free
}

func overlaps(placed map[int64]struct{}, ids []int64) bool {
	for _, id := range ids {
		if _, ok := placed[id]; ok {
			return true
		}
	}
	return false
}
