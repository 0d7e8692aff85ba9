package matching

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"freight-matching-service/internal/domain"
)

// Result reports the outcome of matching one order.
type Result struct {
	OrderID     int64
	Matched     bool
	RouteID     int64
	TruckID     int64
	ProfitDelta float64
	Reason      *Reason // set when Matched is false
}

// Service assigns orders to existing route and truck pairs. Routes pair
// with trucks through Route.TruckID; routes without an assigned truck are
// skipped. Orders that cannot be placed anywhere accumulate in a pending
// queue owned by the service, from which the aggregation stage drains them.
type Service struct {
	validator Validator
	log       zerolog.Logger

	mu      sync.Mutex
	pending []domain.Order
}

func NewService(log zerolog.Logger) *Service {
	return &Service{log: log}
}

// candidate is one validated route and truck pair with its marginal profit.
type candidate struct {
	route *domain.Route
	truck *domain.Truck
	delta float64
}

// MatchOrder validates the order against every route and truck pair and
// applies the assignment that adds the most profit. Ties keep the first
// candidate in route order, so results are deterministic for a given input.
// On failure the order joins the pending queue and the reason from the
// first rejected pair is returned.
func (s *Service) MatchOrder(ctx context.Context, order *domain.Order, routes []*domain.Route, trucks []*domain.Truck) Result {
	if err := ctx.Err(); err != nil {
		return Result{OrderID: order.ID, Reason: &Reason{Code: ReasonNoCandidates, Message: err.Error()}}
	}

	candidates, firstReason := s.scoreOrder(*order, routes, trucks)
	if len(candidates) == 0 {
		s.addPending(*order)
		return Result{OrderID: order.ID, Reason: firstReason}
	}

	best := candidates[0]
	if err := s.apply(order, best.route, best.truck, best.delta); err != nil {
		s.addPending(*order)
		return Result{OrderID: order.ID, Reason: &Reason{Code: ReasonCapacity, Message: err.Error()}}
	}

	s.log.Info().
		Int64("order_id", order.ID).
		Int64("route_id", best.route.ID).
		Int64("truck_id", best.truck.ID).
		Float64("profit_delta", best.delta).
		Msg("order matched")

	return Result{
		OrderID:     order.ID,
		Matched:     true,
		RouteID:     best.route.ID,
		TruckID:     best.truck.ID,
		ProfitDelta: best.delta,
	}
}

// ProcessBatch matches every order in the batch. Validation and scoring run
// concurrently over a read-only view of the routes and trucks; assignments
// are then applied by a single coordinator in input order, revalidating each
// candidate against the mutated state so earlier assignments cannot be
// overcommitted by later ones.
func (s *Service) ProcessBatch(ctx context.Context, orders []*domain.Order, routes []*domain.Route, trucks []*domain.Truck) map[int64]Result {
	results := make(map[int64]Result, len(orders))
	if len(orders) == 0 {
		return results
	}

	type scored struct {
		candidates []candidate
		reason     *Reason
	}
	scoredByIdx := make([]scored, len(orders))

	workers := 4
	if len(orders) < workers {
		workers = len(orders)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				candidates, reason := s.scoreOrder(*orders[i], routes, trucks)
				scoredByIdx[i] = scored{candidates: candidates, reason: reason}
			}
		}()
	}
	for i := range orders {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// Coordinator: apply in input order. Earlier assignments change truck
	// load and route time, so each candidate is rechecked before applying.
	for i, order := range orders {
		if err := ctx.Err(); err != nil {
			results[order.ID] = Result{OrderID: order.ID, Reason: &Reason{Code: ReasonNoCandidates, Message: err.Error()}}
			continue
		}

		sc := scoredByIdx[i]
		var applied *candidate
		for j := range sc.candidates {
			c := sc.candidates[j]
			if reason := s.validator.Validate(*order, *c.route, c.truck); reason != nil {
				if sc.reason == nil {
					sc.reason = reason
				}
				continue
			}
			if err := s.apply(order, c.route, c.truck, c.delta); err != nil {
				continue
			}
			applied = &c
			break
		}

		if applied == nil {
			if sc.reason == nil {
				sc.reason = &Reason{Code: ReasonNoCandidates, Message: "no route and truck pairs available"}
			}
			s.addPending(*order)
			results[order.ID] = Result{OrderID: order.ID, Reason: sc.reason}
			continue
		}

		results[order.ID] = Result{
			OrderID:     order.ID,
			Matched:     true,
			RouteID:     applied.route.ID,
			TruckID:     applied.truck.ID,
			ProfitDelta: applied.delta,
		}
	}

	s.log.Info().
		Int("orders", len(orders)).
		Int("matched", countMatched(results)).
		Msg("batch processed")

	return results
}

// scoreOrder validates the order against each route and its assigned truck,
// returning passing candidates sorted by marginal profit descending. The
// sort is stable so equal-profit candidates keep route input order.
func (s *Service) scoreOrder(order domain.Order, routes []*domain.Route, trucks []*domain.Truck) ([]candidate, *Reason) {
	trucksByID := make(map[int64]*domain.Truck, len(trucks))
	for _, t := range trucks {
		trucksByID[t.ID] = t
	}

	var candidates []candidate
	var firstReason *Reason

	for _, route := range routes {
		truck, ok := trucksByID[route.TruckID]
		if !ok {
			continue
		}
		if reason := s.validator.Validate(order, *route, truck); reason != nil {
			if firstReason == nil {
				firstReason = reason
			}
			continue
		}
		candidates = append(candidates, candidate{
			route: route,
			truck: truck,
			delta: profitDelta(order, *route),
		})
	}

	if len(candidates) == 0 && firstReason == nil {
		firstReason = &Reason{Code: ReasonNoCandidates, Message: "no route and truck pairs available"}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].delta > candidates[j].delta
	})
	return candidates, firstReason
}

// profitDelta is the route's profitability after adding the order minus its
// profitability before: the order's revenue less the cost of the extra
// distance driven to serve it.
func profitDelta(order domain.Order, route domain.Route) float64 {
	return domain.OrderRevenue(order) - domain.RouteCost(deviationDistance(order, route))
}

// apply commits a validated assignment: loads the order's cargo onto the
// truck, records the order on the route, and folds the marginal profit into
// the route's profitability.
func (s *Service) apply(order *domain.Order, route *domain.Route, truck *domain.Truck, delta float64) error {
	loadedBefore := len(truck.Loads)
	for _, c := range order.Cargo {
		if err := truck.Load(c); err != nil {
			truck.Loads = truck.Loads[:loadedBefore]
			return fmt.Errorf("load cargo %d: %w", c.ID, err)
		}
	}
	order.RouteID = route.ID
	route.OrderIDs = append(route.OrderIDs, order.ID)
	route.Profitability += delta
	return nil
}

// addPending stores a failed order, replacing any earlier copy with the
// same id so repeated failures never queue an order twice.
func (s *Service) addPending(order domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.pending {
		if s.pending[i].ID == order.ID {
			s.pending[i] = order
			return
		}
	}
	s.pending = append(s.pending, order)
}

// Pending returns a copy of the orders waiting for aggregation.
func (s *Service) Pending() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Order, len(s.pending))
	copy(out, s.pending)
	return out
}

// DrainPending empties the pending queue and returns its contents, in the
// order the orders failed to match.
func (s *Service) DrainPending() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	return out
}

func countMatched(results map[int64]Result) int {
	n := 0
	for _, r := range results {
		if r.Matched {
			n++
		}
	}
	return n
}
