package matching

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"freight-matching-service/internal/domain"
)

func TestMatchOrderAssignsNearbyRoute(t *testing.T) {
	atlanta := domain.Location{Lat: 33.7490, Lng: -84.3880}
	marietta := domain.Location{Lat: 33.9526, Lng: -84.5499}
	savannah := domain.Location{Lat: 32.0809, Lng: -81.0912}
	macon := domain.Location{Lat: 32.8407, Lng: -83.6324}

	near := domain.Route{ID: 1, Origin: atlanta, Destiny: marietta, TruckID: 1}
	far := domain.Route{ID: 2, Origin: savannah, Destiny: macon, TruckID: 2}
	trucks := []*domain.Truck{
		{ID: 1, Capacity: 48},
		{ID: 2, Capacity: 48},
	}

	order := simpleOrder(7, atlanta, marietta, 10, 500, domain.CargoStandard)

	svc := NewService(zerolog.Nop())
	res := svc.MatchOrder(context.Background(), &order, []*domain.Route{&far, &near}, trucks)

	if !res.Matched {
		t.Fatalf("expected match, got reason: %v", res.Reason)
	}
	if res.RouteID != 1 || res.TruckID != 1 {
		t.Fatalf("matched route %d truck %d, want route 1 truck 1", res.RouteID, res.TruckID)
	}
	if order.RouteID != 1 {
		t.Errorf("order.RouteID = %d, want 1", order.RouteID)
	}
	if len(trucks[0].Loads) != 1 {
		t.Errorf("truck loads = %d, want 1", len(trucks[0].Loads))
	}
	if !near.HasOrder(7) {
		t.Error("route should record the assigned order")
	}
	if near.Profitability <= 0 {
		t.Errorf("route profitability = %f, want > 0 after assignment", near.Profitability)
	}
}

func TestMatchOrderPrefersSmallerDeviation(t *testing.T) {
	atlanta := domain.Location{Lat: 33.7490, Lng: -84.3880}
	marietta := domain.Location{Lat: 33.9526, Lng: -84.5499}

	// Route 2's points sit about 900m off the order's pickup and dropoff,
	// so serving it costs extra deviation distance.
	exact := domain.Route{ID: 1, Origin: atlanta, Destiny: marietta, TruckID: 1}
	offset := domain.Route{
		ID:      2,
		Origin:  locationAtKm(atlanta, 0.9),
		Destiny: locationAtKm(marietta, 0.9),
		TruckID: 2,
	}
	trucks := []*domain.Truck{
		{ID: 1, Capacity: 48},
		{ID: 2, Capacity: 48},
	}

	order := simpleOrder(3, atlanta, marietta, 10, 500, domain.CargoStandard)

	svc := NewService(zerolog.Nop())
	// Offset route listed first: selection must be by profit, not position.
	res := svc.MatchOrder(context.Background(), &order, []*domain.Route{&offset, &exact}, trucks)

	if !res.Matched {
		t.Fatalf("expected match, got reason: %v", res.Reason)
	}
	if res.RouteID != 1 {
		t.Fatalf("matched route %d, want zero-deviation route 1", res.RouteID)
	}
}

func TestMatchOrderUnmatchedEntersPending(t *testing.T) {
	atlanta := domain.Location{Lat: 33.7490, Lng: -84.3880}
	marietta := domain.Location{Lat: 33.9526, Lng: -84.5499}
	savannah := domain.Location{Lat: 32.0809, Lng: -81.0912}
	macon := domain.Location{Lat: 32.8407, Lng: -83.6324}

	route := domain.Route{ID: 1, Origin: savannah, Destiny: macon, TruckID: 1}
	trucks := []*domain.Truck{{ID: 1, Capacity: 48}}

	order := simpleOrder(5, atlanta, marietta, 10, 500, domain.CargoStandard)

	svc := NewService(zerolog.Nop())
	res := svc.MatchOrder(context.Background(), &order, []*domain.Route{&route}, trucks)

	if res.Matched {
		t.Fatal("order far from every route should not match")
	}
	if res.Reason == nil || res.Reason.Code != ReasonProximity {
		t.Fatalf("reason = %v, want proximity rejection", res.Reason)
	}
	if order.RouteID != 0 {
		t.Errorf("failed match must not mutate the order, RouteID = %d", order.RouteID)
	}

	pending := svc.Pending()
	if len(pending) != 1 || pending[0].ID != 5 {
		t.Fatalf("pending = %v, want the one unmatched order", pending)
	}
}

func TestPendingKeepsSingleCopyOnRepeatedFailure(t *testing.T) {
	atlanta := domain.Location{Lat: 33.7490, Lng: -84.3880}
	marietta := domain.Location{Lat: 33.9526, Lng: -84.5499}
	savannah := domain.Location{Lat: 32.0809, Lng: -81.0912}
	macon := domain.Location{Lat: 32.8407, Lng: -83.6324}

	route := domain.Route{ID: 1, Origin: savannah, Destiny: macon, TruckID: 1}
	trucks := []*domain.Truck{{ID: 1, Capacity: 48}}

	order := simpleOrder(5, atlanta, marietta, 10, 500, domain.CargoStandard)

	svc := NewService(zerolog.Nop())
	for i := 0; i < 3; i++ {
		o := order
		svc.ProcessBatch(context.Background(), []*domain.Order{&o}, []*domain.Route{&route}, trucks)
	}

	pending := svc.Pending()
	if len(pending) != 1 || pending[0].ID != 5 {
		t.Fatalf("pending = %v, want one entry for order 5 after repeated failures", pending)
	}
}

func TestMatchOrderSkipsRoutesWithoutTruck(t *testing.T) {
	atlanta := domain.Location{Lat: 33.7490, Lng: -84.3880}
	marietta := domain.Location{Lat: 33.9526, Lng: -84.5499}

	route := domain.Route{ID: 1, Origin: atlanta, Destiny: marietta} // no truck assigned
	order := simpleOrder(1, atlanta, marietta, 10, 500, domain.CargoStandard)

	svc := NewService(zerolog.Nop())
	res := svc.MatchOrder(context.Background(), &order, []*domain.Route{&route}, nil)

	if res.Matched {
		t.Fatal("route without an assigned truck must not receive orders")
	}
	if res.Reason.Code != ReasonNoCandidates {
		t.Fatalf("code = %s, want %s", res.Reason.Code, ReasonNoCandidates)
	}
}

func TestProcessBatchRevalidatesAfterMutation(t *testing.T) {
	atlanta := domain.Location{Lat: 33.7490, Lng: -84.3880}
	marietta := domain.Location{Lat: 33.9526, Lng: -84.5499}

	route := domain.Route{ID: 1, Origin: atlanta, Destiny: marietta, TruckID: 1}
	trucks := []*domain.Truck{{ID: 1, Capacity: 48}}

	// Both fit individually, but together they exceed the truck.
	first := simpleOrder(1, atlanta, marietta, 30, 200, domain.CargoStandard)
	second := simpleOrder(2, atlanta, marietta, 30, 200, domain.CargoStandard)

	svc := NewService(zerolog.Nop())
	results := svc.ProcessBatch(context.Background(),
		[]*domain.Order{&first, &second},
		[]*domain.Route{&route}, trucks)

	if !results[1].Matched {
		t.Fatalf("first order should match, got %v", results[1].Reason)
	}
	if results[2].Matched {
		t.Fatal("second order must be rejected once the truck is committed")
	}
	if results[2].Reason.Code != ReasonCapacity {
		t.Fatalf("code = %s, want %s", results[2].Reason.Code, ReasonCapacity)
	}
	if got := trucks[0].UsedCapacity(); got != 30 {
		t.Errorf("truck used capacity = %f, want 30", got)
	}

	pending := svc.DrainPending()
	if len(pending) != 1 || pending[0].ID != 2 {
		t.Fatalf("pending = %v, want the rejected order", pending)
	}
	if len(svc.Pending()) != 0 {
		t.Error("drain should empty the pending queue")
	}
}

func TestProcessBatchManyOrders(t *testing.T) {
	atlanta := domain.Location{Lat: 33.7490, Lng: -84.3880}
	marietta := domain.Location{Lat: 33.9526, Lng: -84.5499}

	route := domain.Route{ID: 1, Origin: atlanta, Destiny: marietta, TruckID: 1}
	trucks := []*domain.Truck{{ID: 1, Capacity: 48}}

	orders := make([]*domain.Order, 10)
	for i := range orders {
		o := simpleOrder(int64(i+1), atlanta, marietta, 4, 100, domain.CargoStandard)
		orders[i] = &o
	}

	svc := NewService(zerolog.Nop())
	results := svc.ProcessBatch(context.Background(), orders, []*domain.Route{&route}, trucks)

	matched := 0
	for _, r := range results {
		if r.Matched {
			matched++
		}
	}
	// 48m3 capacity fits twelve 4m3 orders by volume, but the 10h ceiling
	// caps stop overhead well before that. Every result must be accounted.
	if len(results) != 10 {
		t.Fatalf("results = %d, want 10", len(results))
	}
	if matched == 0 {
		t.Fatal("expected at least one order to match")
	}
	if got := trucks[0].UsedCapacity(); got != float64(matched)*4 {
		t.Errorf("used capacity %f inconsistent with %d matches", got, matched)
	}
}
