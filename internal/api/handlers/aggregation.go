package handlers

import (
	"net/http"
	"sort"

	"github.com/rs/zerolog"

	"freight-matching-service/internal/aggregation"
	"freight-matching-service/internal/api/dto"
	"freight-matching-service/internal/domain"
	"freight-matching-service/internal/ports"
)

// AggregationHandler reports consolidation opportunities among orders no
// existing route can serve. Read-only: nothing is persisted.
type AggregationHandler struct {
	Repo       ports.FreightRepository
	Aggregator *aggregation.Service
}

func (h *AggregationHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	ctx := r.Context()
	orderPtrs, routes, trucks, err := loadWorld(ctx, h.Repo)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("load freight state failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	orders := make([]domain.Order, 0, len(orderPtrs))
	for _, o := range orderPtrs {
		orders = append(orders, *o)
	}

	result := h.Aggregator.Analyze(orders, routes, trucks)

	res := dto.AggregationResponse{
		UnmatchedOrderIDs: make([]int64, 0, len(result.Unmatched)),
		Combinations:      make([]dto.CombinationResponse, 0, len(result.Combinations)),
		TotalVolumeM3:     result.TotalVolume,
		TotalWeightKg:     result.TotalWeight,
		Opportunities:     result.Opportunities,
	}
	for _, o := range result.Unmatched {
		res.UnmatchedOrderIDs = append(res.UnmatchedOrderIDs, o.ID)
	}
	for _, combo := range result.Combinations {
		res.Combinations = append(res.Combinations, toCombinationResponse(combo))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func toCombinationResponse(combo aggregation.Combination) dto.CombinationResponse {
	ids := make([]int64, 0, len(combo.Orders))
	for _, o := range combo.Orders {
		ids = append(ids, o.ID)
	}
	types := make([]string, 0, len(combo.CargoTypes))
	for t := range combo.CargoTypes {
		types = append(types, string(t))
	}
	sort.Strings(types)

	return dto.CombinationResponse{
		OrderIDs:      ids,
		TotalVolumeM3: combo.TotalVolume,
		TotalWeightKg: combo.TotalWeight,
		CargoTypes:    types,
		EstimatedKm:   combo.EstimatedKm,
		Score:         combo.Score,
	}
}
