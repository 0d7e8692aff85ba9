package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"freight-matching-service/internal/api/dto"
	"freight-matching-service/internal/domain"
	"freight-matching-service/internal/matching"
	"freight-matching-service/internal/ports"
)

// MatchHandler runs a matching batch over unassigned orders and persists
// the assignments it makes.
type MatchHandler struct {
	Repo    ports.FreightRepository
	Matcher *matching.Service
}

func (h *MatchHandler) MatchBatch(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req dto.MatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
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

	if len(req.OrderIDs) > 0 {
		orders = filterOrders(orders, req.OrderIDs)
		if len(orders) != len(req.OrderIDs) {
			writeError(w, r, http.StatusBadRequest, "order_ids contains unknown or already assigned orders")
			return
		}
	}

	results := h.Matcher.ProcessBatch(ctx, orders, routes, trucks)

	// Failures are reported in the response; drained here so they cannot
	// linger in the matcher queue and resurface in a later pipeline pass.
	h.Matcher.DrainPending()

	if err := persistMatches(ctx, h.Repo, results, routes); err != nil {
		log.Error().Err(err).Msg("persist matches failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.MatchBatchResponse{Results: toMatchResultList(results)}
	for _, mr := range res.Results {
		if mr.Matched {
			res.Matched++
		} else {
			res.Unmatched++
		}
	}
	writeJSON(w, r, http.StatusOK, res)
}

func filterOrders(orders []*domain.Order, ids []int64) []*domain.Order {
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]*domain.Order, 0, len(ids))
	for _, o := range orders {
		if _, ok := want[o.ID]; ok {
			out = append(out, o)
		}
	}
	return out
}

// persistMatches writes each successful assignment and refreshes the
// profitability of every route the batch touched.
func persistMatches(ctx context.Context, repo ports.FreightRepository, results map[int64]matching.Result, routes []*domain.Route) error {
	touched := make(map[int64]struct{})
	for _, res := range results {
		if !res.Matched {
			continue
		}
		if err := repo.AssignOrderToRoute(ctx, res.OrderID, res.RouteID); err != nil {
			return err
		}
		touched[res.RouteID] = struct{}{}
	}

	for _, rt := range routes {
		if _, ok := touched[rt.ID]; !ok {
			continue
		}
		if err := repo.UpdateRouteProfitability(ctx, rt.ID, rt.Profitability); err != nil {
			return err
		}
	}
	return nil
}
