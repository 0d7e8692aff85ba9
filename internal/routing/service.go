package routing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"freight-matching-service/internal/domain"
	"freight-matching-service/internal/ports"
)

// Optional persistent cache of coordinate-pair distance results, sitting
// in front of both the network path and the geometric fallback. Lookup
// failures are logged and treated as misses.
type ResultCache interface {
	Get(ctx context.Context, a, b domain.Location) (ports.DistanceResult, bool, error)
	Put(ctx context.Context, a, b domain.Location, result ports.DistanceResult) error
}

// Tunables for the distance service. Zero values fall back to defaults.
type Config struct {
	FetchTimeout     time.Duration // routing-provider fetch deadline
	FallbackSpeedKmh float64       // drive-speed assumption for geometric estimates
	MaxAreaKm2       float64       // reject network fetches above this box area
	CacheCapacity    int
	CacheTTL         time.Duration
}

func (c Config) withDefaults() Config {
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 30 * time.Second
	}
	if c.FallbackSpeedKmh <= 0 {
		c.FallbackSpeedKmh = 80
	}
	if c.MaxAreaKm2 <= 0 {
		c.MaxAreaKm2 = 50000
	}
	if c.CacheCapacity <= 0 {
		c.CacheCapacity = 16
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 24 * time.Hour
	}
	return c
}

// Service resolves distances between locations, preferring the road
// network reached through the injected provider and degrading to
// great-circle math whenever the network path is unavailable.
type Service struct {
	provider NetworkProvider
	cache    *NetworkCache
	results  ResultCache
	cfg      Config
	log      zerolog.Logger
}

// NewService wires a distance service. provider and results may be nil;
// without a provider every lookup uses the geometric fallback.
func NewService(provider NetworkProvider, results ResultCache, cfg Config, log zerolog.Logger) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		provider: provider,
		cache:    NewNetworkCache(cfg.CacheCapacity, cfg.CacheTTL),
		results:  results,
		cfg:      cfg,
		log:      log,
	}
}

// Cache exposes the network cache for stats and maintenance endpoints.
func (s *Service) Cache() *NetworkCache { return s.cache }

// DistanceBetween resolves the distance between two locations. Invalid
// coordinates are a caller bug and return an error; every provider-side
// failure downgrades to the haversine fallback with a Note explaining why.
func (s *Service) DistanceBetween(ctx context.Context, a, b domain.Location) (ports.DistanceResult, error) {
	if !a.Valid() {
		return ports.DistanceResult{}, fmt.Errorf("distance between: invalid origin (%f, %f)", a.Lat, a.Lng)
	}
	if !b.Valid() {
		return ports.DistanceResult{}, fmt.Errorf("distance between: invalid destination (%f, %f)", b.Lat, b.Lng)
	}

	if s.results != nil {
		cached, ok, err := s.results.Get(ctx, a, b)
		if err != nil {
			s.log.Warn().Err(err).Msg("distance result cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	result, err := s.networkDistance(ctx, a, b)
	if err != nil {
		km := a.DistanceTo(b)
		result = ports.DistanceResult{
			Km:     km,
			Hours:  km / s.cfg.FallbackSpeedKmh,
			Method: ports.MethodHaversine,
			Note:   err.Error(),
		}
		s.log.Debug().Err(err).Msg("road network unavailable, using haversine fallback")
	}

	if s.results != nil {
		if err := s.results.Put(ctx, a, b, result); err != nil {
			s.log.Warn().Err(err).Msg("distance result cache write failed")
		}
	}

	return result, nil
}

// RouteDistance sums pairwise distances along an ordered waypoint list.
// Methods are tagged "mixed" when legs resolved differently.
func (s *Service) RouteDistance(ctx context.Context, waypoints []domain.Location) (ports.RouteResult, error) {
	if len(waypoints) < 2 {
		return ports.RouteResult{}, errors.New("route distance: need at least 2 waypoints")
	}

	legs := make([]float64, 0, len(waypoints)-1)
	totalKm := 0.0
	totalHours := 0.0
	method := ""

	for i := 0; i+1 < len(waypoints); i++ {
		leg, err := s.DistanceBetween(ctx, waypoints[i], waypoints[i+1])
		if err != nil {
			return ports.RouteResult{}, fmt.Errorf("route distance: leg %d: %w", i, err)
		}

		legs = append(legs, leg.Km)
		totalKm += leg.Km
		totalHours += leg.Hours

		switch {
		case method == "":
			method = leg.Method
		case method != leg.Method:
			method = ports.MethodMixed
		}
	}

	return ports.RouteResult{
		TotalKm:    totalKm,
		TotalHours: totalHours,
		LegKm:      legs,
		Method:     method,
	}, nil
}

// networkDistance attempts the road-network path: bounded-area bbox,
// cached or freshly fetched graph, then shortest path between the nearest
// intersections.
func (s *Service) networkDistance(ctx context.Context, a, b domain.Location) (ports.DistanceResult, error) {
	if s.provider == nil {
		return ports.DistanceResult{}, errors.New("no routing provider configured")
	}

	box, err := BoxWithAdaptivePadding([]domain.Location{a, b})
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("build bounding box: %w", err)
	}
	if area := box.AreaKm2(); area > s.cfg.MaxAreaKm2 {
		return ports.DistanceResult{}, fmt.Errorf("%w: %.0fkm2 > %.0fkm2", ErrBoxTooLarge, area, s.cfg.MaxAreaKm2)
	}

	graph, ok := s.cache.Get(box)
	if !ok {
		fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()

		graph, err = s.provider.FetchNetwork(fetchCtx, box)
		if err != nil {
			return ports.DistanceResult{}, fmt.Errorf("fetch road network: %w", err)
		}
		s.cache.Put(box, graph)
		s.log.Debug().
			Str("bbox", box.Key()).
			Int("nodes", graph.NodeCount()).
			Int("edges", graph.EdgeCount()).
			Msg("road network fetched")
	}

	from, err := graph.NearestNode(a)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("nearest node to origin: %w", err)
	}
	to, err := graph.NearestNode(b)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("nearest node to destination: %w", err)
	}

	km, hours, err := graph.ShortestPath(from.ID, to.ID)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("shortest path: %w", err)
	}

	return ports.DistanceResult{Km: km, Hours: hours, Method: ports.MethodNetwork}, nil
}
