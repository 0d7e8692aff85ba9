package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"freight-matching-service/internal/aggregation"
	"freight-matching-service/internal/domain"
	"freight-matching-service/internal/generation"
	"freight-matching-service/internal/matching"
	"freight-matching-service/internal/platform/obs"
	"freight-matching-service/internal/ports"
)

// Result summarizes one integrated matching pass.
type Result struct {
	TotalOrders        int
	MatchedToExisting  int
	NewRoutesGenerated int
	OrdersInNewRoutes  int
	AdditionalProfit   float64
	NewRoutes          []*domain.Route
	Unmatched          []domain.Order
	MatchResults       map[int64]matching.Result
}

// Pipeline chains the three matching stages: place orders on existing
// routes, group what remains into feasible combinations, and generate new
// profitable routes for the best combinations. When a repository is wired,
// accepted state changes are persisted at the end of the pass.
type Pipeline struct {
	matcher    *matching.Service
	aggregator *aggregation.Service
	generator  *generation.Service
	repo       ports.FreightRepository // optional
	maxRoutes  int
	log        zerolog.Logger
}

func New(matcher *matching.Service, aggregator *aggregation.Service, generator *generation.Service, repo ports.FreightRepository, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		matcher:    matcher,
		aggregator: aggregator,
		generator:  generator,
		repo:       repo,
		maxRoutes:  10,
		log:        log,
	}
}

// Run executes the full pass over the given orders, routes, and trucks.
// Routes and trucks are mutated in place by successful matches; generated
// routes are appended to the returned result, not to the input slice.
func (p *Pipeline) Run(ctx context.Context, orders []*domain.Order, routes []*domain.Route, trucks []*domain.Truck) (_ Result, err error) {
	defer obs.Time(ctx, p.log, "pipeline.Run")(&err)

	p.log.Info().
		Int("orders", len(orders)).
		Int("routes", len(routes)).
		Int("trucks", len(trucks)).
		Msg("integrated matching pass started")

	res := Result{TotalOrders: len(orders)}

	// Stage 1: match against existing routes.
	res.MatchResults = p.matcher.ProcessBatch(ctx, orders, routes, trucks)
	for _, mr := range res.MatchResults {
		if mr.Matched {
			res.MatchedToExisting++
			res.AdditionalProfit += mr.ProfitDelta
		}
	}

	// Stage 2: aggregate the leftovers. The set comes from this run's
	// results only; the matcher queue is drained and discarded so entries
	// left over from earlier standalone batches cannot re-enter a pass and
	// duplicate an order.
	p.matcher.DrainPending()
	var pending []domain.Order
	for _, o := range orders {
		if mr, ok := res.MatchResults[o.ID]; ok && !mr.Matched {
			pending = append(pending, *o)
		}
	}
	if len(pending) < 2 {
		res.Unmatched = pending
		return p.finish(ctx, res, routes)
	}

	combos := p.aggregator.FindCombinations(pending, 0)
	if len(combos) == 0 {
		res.Unmatched = pending
		return p.finish(ctx, res, routes)
	}

	// Stage 3: generate new routes using trucks not already on a route.
	free := freeTrucks(trucks, routes)
	generated := p.generator.GenerateMultiple(ctx, combos, free, p.maxRoutes)

	placed := make(map[int64]bool)
	for _, g := range generated {
		overlap := false
		for _, id := range g.Route.OrderIDs {
			if placed[id] {
				overlap = true
				break
			}
		}
		if overlap {
			continue
		}
		for _, id := range g.Route.OrderIDs {
			placed[id] = true
		}
		res.NewRoutes = append(res.NewRoutes, g.Route)
		res.NewRoutesGenerated++
		res.OrdersInNewRoutes += g.OrdersIncluded
		res.AdditionalProfit += g.EstimatedProfit
	}

	for _, o := range pending {
		if !placed[o.ID] {
			res.Unmatched = append(res.Unmatched, o)
		}
	}

	return p.finish(ctx, res, routes)
}

// finish persists the pass outcome when a repository is wired and logs the
// summary.
func (p *Pipeline) finish(ctx context.Context, res Result, routes []*domain.Route) (Result, error) {
	if p.repo != nil {
		if err := p.persist(ctx, res, routes); err != nil {
			return res, fmt.Errorf("persist matching pass: %w", err)
		}
	}

	p.log.Info().
		Int("matched_existing", res.MatchedToExisting).
		Int("new_routes", res.NewRoutesGenerated).
		Int("orders_in_new_routes", res.OrdersInNewRoutes).
		Int("unmatched", len(res.Unmatched)).
		Float64("additional_profit_usd", res.AdditionalProfit).
		Msg("integrated matching pass complete")
	return res, nil
}

func (p *Pipeline) persist(ctx context.Context, res Result, routes []*domain.Route) error {
	touched := make(map[int64]struct{})
	for _, mr := range res.MatchResults {
		if !mr.Matched {
			continue
		}
		if err := p.repo.AssignOrderToRoute(ctx, mr.OrderID, mr.RouteID); err != nil {
			return fmt.Errorf("assign order %d: %w", mr.OrderID, err)
		}
		touched[mr.RouteID] = struct{}{}
	}

	// Matching folded marginal profit into the routes in memory; the stored
	// figure must follow for every route that gained an order.
	for _, route := range routes {
		if _, ok := touched[route.ID]; !ok {
			continue
		}
		if err := p.repo.UpdateRouteProfitability(ctx, route.ID, route.Profitability); err != nil {
			return fmt.Errorf("update route %d profitability: %w", route.ID, err)
		}
	}

	for _, route := range res.NewRoutes {
		id, err := p.repo.SaveRoute(ctx, *route)
		if err != nil {
			return fmt.Errorf("save generated route: %w", err)
		}
		route.ID = id
		for _, orderID := range route.OrderIDs {
			if err := p.repo.AssignOrderToRoute(ctx, orderID, id); err != nil {
				return fmt.Errorf("assign order %d to generated route %d: %w", orderID, id, err)
			}
		}
	}
	return nil
}

// freeTrucks returns trucks not assigned to any existing route.
func freeTrucks(trucks []*domain.Truck, routes []*domain.Route) []*domain.Truck {
	taken := make(map[int64]bool, len(routes))
	for _, r := range routes {
		if r.TruckID != 0 {
			taken[r.TruckID] = true
		}
	}
	var free []*domain.Truck
	for _, t := range trucks {
		if !taken[t.ID] {
			free = append(free, t)
		}
	}
	return free
}
