package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"freight-matching-service/internal/api/dto"
	"freight-matching-service/internal/pipeline"
	"freight-matching-service/internal/ports"
)

// PipelineHandler runs the full three-stage pass: match against existing
// routes, aggregate the leftovers, generate new routes. Persistence happens
// inside the pipeline.
type PipelineHandler struct {
	Repo     ports.FreightRepository
	Pipeline *pipeline.Pipeline
}

func (h *PipelineHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	ctx := r.Context()
	log := zerolog.Ctx(ctx)

	orders, routes, trucks, err := loadWorld(ctx, h.Repo)
	if err != nil {
		log.Error().Err(err).Msg("load freight state failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	result, err := h.Pipeline.Run(ctx, orders, routes, trucks)
	if err != nil {
		log.Error().Err(err).Msg("pipeline run failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.PipelineResponse{
		TotalOrders:        result.TotalOrders,
		MatchedToExisting:  result.MatchedToExisting,
		NewRoutesGenerated: result.NewRoutesGenerated,
		OrdersInNewRoutes:  result.OrdersInNewRoutes,
		AdditionalProfit:   result.AdditionalProfit,
		NewRoutes:          make([]dto.RouteResponse, 0, len(result.NewRoutes)),
		UnmatchedOrderIDs:  make([]int64, 0, len(result.Unmatched)),
		Results:            toMatchResultList(result.MatchResults),
	}
	for _, rt := range result.NewRoutes {
		res.NewRoutes = append(res.NewRoutes, toRouteResponse(*rt))
	}
	for _, o := range result.Unmatched {
		res.UnmatchedOrderIDs = append(res.UnmatchedOrderIDs, o.ID)
	}
	writeJSON(w, r, http.StatusOK, res)
}
