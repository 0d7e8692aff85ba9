package generation

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"freight-matching-service/internal/aggregation"
	"freight-matching-service/internal/domain"
	"freight-matching-service/internal/ports"
)

// Result of one route generation attempt. Economic rejection is a normal
// negative result, reported through Success and ErrorReason rather than an
// error.
type Result struct {
	Success          bool
	Route            *domain.Route
	EstimatedProfit  float64
	EstimatedCost    float64
	EstimatedRevenue float64
	TotalKm          float64
	TotalHours       float64
	OrdersIncluded   int
	ErrorReason      string
}

// Viability is the quick pre-check estimate computed before committing to
// full path ordering and distance resolution.
type Viability struct {
	EstimatedKm      float64
	EstimatedCost    float64
	EstimatedRevenue float64
	MarginPercent    float64
}

type Config struct {
	// MinMarginPercent is the profitability gate a generated route must
	// clear. Below it the route is rejected outright. Zero means unset and
	// takes the default; a negative value requests an actual 0% gate.
	MinMarginPercent float64
	MaxRoutes        int
}

const defaultMinMarginPercent = 20.0

func (c Config) withDefaults() Config {
	switch {
	case c.MinMarginPercent == 0:
		c.MinMarginPercent = defaultMinMarginPercent
	case c.MinMarginPercent < 0:
		c.MinMarginPercent = 0
	}
	if c.MaxRoutes <= 0 {
		c.MaxRoutes = 10
	}
	return c
}

// Service turns winning cargo combinations into candidate routes with full
// cost and revenue economics. Generated routes are returned, never
// persisted; storing an accepted route is the caller's concern.
type Service struct {
	distances ports.DistanceService
	cfg       Config
	log       zerolog.Logger
}

// NewService builds a generation service. The distance service is optional;
// without one, path distances degrade to great-circle sums.
func NewService(distances ports.DistanceService, cfg Config, log zerolog.Logger) *Service {
	return &Service{distances: distances, cfg: cfg.withDefaults(), log: log}
}

// Generate builds a candidate route serving every order in the combination
// and accepts it only if the profit margin clears the configured gate.
func (s *Service) Generate(ctx context.Context, combo aggregation.Combination, truck *domain.Truck) Result {
	orders := combo.Orders
	path := orderedPath(orders)
	if len(path) < 2 {
		return Result{
			OrdersIncluded: len(orders),
			ErrorReason:    "not enough distinct locations to form a route",
		}
	}

	totalKm, driveHours := s.pathDistance(ctx, path)
	totalHours := domain.ElapsedTime(driveHours, len(orders))

	cost := domain.RouteCost(totalKm)
	revenue := domain.OrdersRevenue(orders)
	profit := revenue - cost
	margin := -100.0
	if revenue > 0 {
		margin = profit / revenue * 100
	}

	if margin < s.cfg.MinMarginPercent {
		s.log.Debug().
			Float64("margin_percent", margin).
			Int("orders", len(orders)).
			Msg("route rejected below margin gate")
		return Result{
			EstimatedProfit:  profit,
			EstimatedCost:    cost,
			EstimatedRevenue: revenue,
			TotalKm:          totalKm,
			TotalHours:       totalHours,
			OrdersIncluded:   len(orders),
			ErrorReason: fmt.Sprintf("route not profitable: %.1f%% margin < %.1f%%",
				margin, s.cfg.MinMarginPercent),
		}
	}

	route := &domain.Route{
		Origin:        path[0],
		Destiny:       path[len(path)-1],
		Path:          path[1 : len(path)-1],
		Profitability: profit,
	}
	if truck != nil {
		route.TruckID = truck.ID
	}
	for _, o := range orders {
		route.OrderIDs = append(route.OrderIDs, o.ID)
	}

	s.log.Info().
		Float64("margin_percent", margin).
		Float64("profit_usd", profit).
		Int("orders", len(orders)).
		Msg("profitable route generated")

	return Result{
		Success:          true,
		Route:            route,
		EstimatedProfit:  profit,
		EstimatedCost:    cost,
		EstimatedRevenue: revenue,
		TotalKm:          totalKm,
		TotalHours:       totalHours,
		OrdersIncluded:   len(orders),
	}
}

// ValidateEconomicViability estimates margin from the combination's rough
// distance without path ordering or provider lookups. Used as a cheap
// filter before the full Generate call.
func (s *Service) ValidateEconomicViability(combo aggregation.Combination) (bool, Viability) {
	cost := domain.RouteCost(combo.EstimatedKm)
	revenue := domain.OrdersRevenue(combo.Orders)

	margin := -100.0
	if revenue > 0 {
		margin = (revenue - cost) / revenue * 100
	}

	return margin >= s.cfg.MinMarginPercent, Viability{
		EstimatedKm:      combo.EstimatedKm,
		EstimatedCost:    cost,
		EstimatedRevenue: revenue,
		MarginPercent:    margin,
	}
}

// GenerateMultiple runs Generate over the combinations, assigning one truck
// per accepted route in order, until maxRoutes are produced or trucks run
// out. Combinations failing the cheap viability check never reach the full
// generation step. Successful results come back sorted by profit
// descending.
func (s *Service) GenerateMultiple(ctx context.Context, combos []aggregation.Combination, trucks []*domain.Truck, maxRoutes int) []Result {
	if maxRoutes <= 0 {
		maxRoutes = s.cfg.MaxRoutes
	}

	var accepted []Result
	for _, combo := range combos {
		if len(accepted) >= maxRoutes {
			break
		}
		if viable, v := s.ValidateEconomicViability(combo); !viable {
			s.log.Debug().
				Float64("margin_percent", v.MarginPercent).
				Msg("combination skipped, not economically viable")
			continue
		}

		var truck *domain.Truck
		if len(accepted) < len(trucks) {
			truck = trucks[len(accepted)]
		}

		if res := s.Generate(ctx, combo, truck); res.Success {
			accepted = append(accepted, res)
		}
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].EstimatedProfit > accepted[j].EstimatedProfit
	})

	s.log.Info().
		Int("combinations", len(combos)).
		Int("routes", len(accepted)).
		Msg("route generation pass complete")
	return accepted
}

// pathDistance resolves the driven distance and drive time along the path,
// through the distance service when one is wired and by great-circle sum
// otherwise.
func (s *Service) pathDistance(ctx context.Context, path []domain.Location) (km, hours float64) {
	if s.distances != nil {
		if res, err := s.distances.RouteDistance(ctx, path); err == nil {
			return res.TotalKm, res.TotalHours
		}
	}
	km = domain.PathDistance(path)
	return km, km / domain.AvgSpeedKmh
}

// orderedPath returns the distinct pickup and dropoff locations of the
// orders in visiting order: nearest-neighbor from the southwestern-most
// location. Deterministic for a given order set; ties fall back to
// coordinate order.
func orderedPath(orders []domain.Order) []domain.Location {
	var distinct []domain.Location
	seen := make(map[[2]float64]struct{}, len(orders)*2)
	add := func(l domain.Location) {
		key := [2]float64{l.Lat, l.Lng}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		distinct = append(distinct, l)
	}
	for _, o := range orders {
		add(o.Pickup)
		add(o.Dropoff)
	}
	if len(distinct) < 2 {
		return distinct
	}

	sort.SliceStable(distinct, func(i, j int) bool {
		if distinct[i].Lat != distinct[j].Lat {
			return distinct[i].Lat < distinct[j].Lat
		}
		return distinct[i].Lng < distinct[j].Lng
	})

	path := make([]domain.Location, 0, len(distinct))
	remaining := distinct
	current := remaining[0]
	path = append(path, current)
	remaining = remaining[1:]

	for len(remaining) > 0 {
		best := 0
		bestDist := current.DistanceTo(remaining[0])
		for i := 1; i < len(remaining); i++ {
			if d := current.DistanceTo(remaining[i]); d < bestDist {
				best = i
				bestDist = d
			}
		}
		current = remaining[best]
		path = append(path, current)
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return path
}
