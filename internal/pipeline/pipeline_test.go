package pipeline

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"freight-matching-service/internal/aggregation"
	"freight-matching-service/internal/domain"
	"freight-matching-service/internal/generation"
	"freight-matching-service/internal/matching"
	"freight-matching-service/internal/ports"
)

var (
	atlanta  = domain.Location{Lat: 33.7490, Lng: -84.3880}
	marietta = domain.Location{Lat: 33.9526, Lng: -84.5499}
	savannah = domain.Location{Lat: 32.0809, Lng: -81.0912}
	pooler   = domain.Location{Lat: 32.1155, Lng: -81.2354}
)

type fakeRepo struct {
	assigned map[int64]int64
	saved    []domain.Route
	profit   map[int64]float64
	nextID   int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		assigned: make(map[int64]int64),
		profit:   make(map[int64]float64),
		nextID:   100,
	}
}

func (f *fakeRepo) ListOrders(ctx context.Context) ([]domain.Order, error)           { return nil, nil }
func (f *fakeRepo) ListUnassignedOrders(ctx context.Context) ([]domain.Order, error) { return nil, nil }
func (f *fakeRepo) ListRoutes(ctx context.Context) ([]domain.Route, error)           { return nil, nil }
func (f *fakeRepo) ListTrucks(ctx context.Context) ([]domain.Truck, error)           { return nil, nil }

func (f *fakeRepo) AssignOrderToRoute(ctx context.Context, orderID, routeID int64) error {
	f.assigned[orderID] = routeID
	return nil
}

func (f *fakeRepo) SaveRoute(ctx context.Context, route domain.Route) (int64, error) {
	f.nextID++
	f.saved = append(f.saved, route)
	return f.nextID, nil
}

func (f *fakeRepo) UpdateRouteProfitability(ctx context.Context, routeID int64, profitability float64) error {
	f.profit[routeID] = profitability
	return nil
}

func order(id int64, pickup, dropoff domain.Location, volume, weight float64) *domain.Order {
	return &domain.Order{
		ID:      id,
		Pickup:  pickup,
		Dropoff: dropoff,
		Cargo: []domain.Cargo{{
			ID:      id * 10,
			OrderID: id,
			Packages: []domain.Package{
				{ID: id * 100, Volume: volume, Weight: weight, Type: domain.CargoStandard},
			},
		}},
	}
}

func newPipeline(repo ports.FreightRepository) *Pipeline {
	log := zerolog.Nop()
	return New(matching.NewService(log), aggregation.NewService(log),
		generation.NewService(nil, generation.Config{}, log), repo, log)
}

func TestRunMatchesAndGenerates(t *testing.T) {
	// One order sits on the existing Atlanta route; two more cluster near
	// Savannah, far from every route, and should end up on a new route.
	existing := &domain.Route{ID: 1, Origin: atlanta, Destiny: marietta, TruckID: 1}
	trucks := []*domain.Truck{
		{ID: 1, Capacity: 48},
		{ID: 2, Capacity: 48},
	}
	orders := []*domain.Order{
		order(1, atlanta, marietta, 10, 500),
		order(2, savannah, pooler, 12, 600),
		order(3, savannah, pooler, 12, 600),
	}

	p := newPipeline(nil)
	res, err := p.Run(context.Background(), orders, []*domain.Route{existing}, trucks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.TotalOrders != 3 {
		t.Errorf("total orders = %d, want 3", res.TotalOrders)
	}
	if res.MatchedToExisting != 1 {
		t.Fatalf("matched to existing = %d, want 1", res.MatchedToExisting)
	}
	if res.NewRoutesGenerated != 1 {
		t.Fatalf("new routes = %d, want 1 (got unmatched %v)", res.NewRoutesGenerated, res.Unmatched)
	}
	if res.OrdersInNewRoutes != 2 {
		t.Errorf("orders in new routes = %d, want 2", res.OrdersInNewRoutes)
	}
	if len(res.Unmatched) != 0 {
		t.Errorf("unmatched = %v, want none", res.Unmatched)
	}
	if res.AdditionalProfit <= 0 {
		t.Errorf("additional profit = %f, want > 0", res.AdditionalProfit)
	}

	// The generated route gets the free truck, not the one already
	// serving the Atlanta route.
	if got := res.NewRoutes[0].TruckID; got != 2 {
		t.Errorf("generated route truck = %d, want 2", got)
	}
}

func TestRunDoesNotPlaceOrderTwice(t *testing.T) {
	// Three mutually compatible stranded orders produce overlapping
	// combinations; each order may appear in at most one accepted route.
	trucks := []*domain.Truck{
		{ID: 1, Capacity: 48},
		{ID: 2, Capacity: 48},
		{ID: 3, Capacity: 48},
	}
	orders := []*domain.Order{
		order(1, savannah, pooler, 10, 500),
		order(2, savannah, pooler, 10, 500),
		order(3, savannah, pooler, 10, 500),
	}

	p := newPipeline(nil)
	res, err := p.Run(context.Background(), orders, nil, trucks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[int64]int{}
	for _, r := range res.NewRoutes {
		for _, id := range r.OrderIDs {
			seen[id]++
		}
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("order %d placed on %d routes", id, n)
		}
	}
	if res.OrdersInNewRoutes+len(res.Unmatched) != 3 {
		t.Errorf("placed %d + unmatched %d, want total 3",
			res.OrdersInNewRoutes, len(res.Unmatched))
	}
}

func TestRunPersistsThroughRepository(t *testing.T) {
	repo := newFakeRepo()
	existing := &domain.Route{ID: 1, Origin: atlanta, Destiny: marietta, TruckID: 1}
	trucks := []*domain.Truck{
		{ID: 1, Capacity: 48},
		{ID: 2, Capacity: 48},
	}
	orders := []*domain.Order{
		order(1, atlanta, marietta, 10, 500),
		order(2, savannah, pooler, 12, 600),
		order(3, savannah, pooler, 12, 600),
	}

	p := newPipeline(repo)
	res, err := p.Run(context.Background(), orders, []*domain.Route{existing}, trucks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.assigned[1] != 1 {
		t.Errorf("order 1 assigned to route %d, want existing route 1", repo.assigned[1])
	}
	if len(repo.saved) != 1 {
		t.Fatalf("saved routes = %d, want 1", len(repo.saved))
	}

	newID := res.NewRoutes[0].ID
	if newID == 0 {
		t.Fatal("generated route should carry its persisted id")
	}
	if repo.assigned[2] != newID || repo.assigned[3] != newID {
		t.Errorf("orders 2,3 assigned to %d,%d, want generated route %d",
			repo.assigned[2], repo.assigned[3], newID)
	}
}

func TestRunIgnoresStalePendingFromEarlierBatch(t *testing.T) {
	// A standalone batch can leave an unmatched order in the matcher queue.
	// A later pipeline pass over the same order must work from its own
	// results, not combine the order with the stale copy.
	log := zerolog.Nop()
	matcher := matching.NewService(log)
	p := New(matcher, aggregation.NewService(log),
		generation.NewService(nil, generation.Config{}, log), nil, log)

	trucks := []*domain.Truck{
		{ID: 1, Capacity: 48},
		{ID: 2, Capacity: 48},
	}
	o := order(5, savannah, pooler, 12, 600)

	stale := *o
	matcher.ProcessBatch(context.Background(), []*domain.Order{&stale}, nil, trucks)
	if len(matcher.Pending()) != 1 {
		t.Fatal("setup: batch should leave the order pending")
	}

	res, err := p.Run(context.Background(), []*domain.Order{o}, nil, trucks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.NewRoutesGenerated != 0 {
		t.Fatalf("new routes = %d, want 0 for a single stranded order", res.NewRoutesGenerated)
	}
	for _, r := range res.NewRoutes {
		seen := map[int64]int{}
		for _, id := range r.OrderIDs {
			if seen[id]++; seen[id] > 1 {
				t.Errorf("order %d appears twice on route %d", id, r.ID)
			}
		}
	}
	if len(res.Unmatched) != 1 || res.Unmatched[0].ID != 5 {
		t.Errorf("unmatched = %v, want order 5 exactly once", res.Unmatched)
	}
	if len(matcher.Pending()) != 0 {
		t.Errorf("pipeline pass should leave the matcher queue empty, got %v", matcher.Pending())
	}
}

func TestRunRecordsRouteProfitability(t *testing.T) {
	repo := newFakeRepo()
	existing := &domain.Route{ID: 1, Origin: atlanta, Destiny: marietta, TruckID: 1}
	trucks := []*domain.Truck{{ID: 1, Capacity: 48}}
	orders := []*domain.Order{order(1, atlanta, marietta, 10, 500)}

	p := newPipeline(repo)
	res, err := p.Run(context.Background(), orders, []*domain.Route{existing}, trucks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.MatchedToExisting != 1 {
		t.Fatalf("matched to existing = %d, want 1", res.MatchedToExisting)
	}

	got, ok := repo.profit[1]
	if !ok {
		t.Fatal("existing route gained an order but its stored profitability was not refreshed")
	}
	if got != existing.Profitability {
		t.Errorf("stored profitability = %f, want %f", got, existing.Profitability)
	}
	if got <= 0 {
		t.Errorf("stored profitability = %f, want > 0", got)
	}
}

func TestRunWithNoOrders(t *testing.T) {
	p := newPipeline(nil)
	res, err := p.Run(context.Background(), nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalOrders != 0 || res.MatchedToExisting != 0 || res.NewRoutesGenerated != 0 {
		t.Errorf("empty pass should be a no-op, got %+v", res)
	}
}
