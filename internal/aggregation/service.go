package aggregation

import (
	"sort"

	"github.com/rs/zerolog"

	"freight-matching-service/internal/domain"
	"freight-matching-service/internal/matching"
)

// Capacity limits a combination must fit within, matching the largest
// truck in the fleet.
const (
	MaxCombinationVolumeM3 = 48.0
	MaxCombinationWeightKg = domain.MaxWeightKg
)

const (
	defaultMaxCombinationSize = 5

	// Subset enumeration is combinatorial, so the input set is bounded.
	// The highest-volume orders are kept when the bound is exceeded.
	defaultMaxInputOrders = 15
)

// Combination is a candidate grouping of unmatched orders that could share
// a newly generated route. Transient: produced and consumed within one
// analysis pass, never persisted.
type Combination struct {
	Orders      []domain.Order
	TotalVolume float64
	TotalWeight float64
	CargoTypes  map[domain.CargoType]struct{}
	EstimatedKm float64
	Score       float64
}

// Result of one aggregation analysis pass.
type Result struct {
	Unmatched     []domain.Order
	Combinations  []Combination
	TotalVolume   float64
	TotalWeight   float64
	Opportunities int
}

// Service finds orders no existing route can serve and groups them into
// capacity- and compatibility-feasible combinations, scored by how well
// they would fill a truck.
type Service struct {
	validator matching.Validator
	maxSize   int
	maxInput  int
	log       zerolog.Logger
}

func NewService(log zerolog.Logger) *Service {
	return &Service{
		maxSize:  defaultMaxCombinationSize,
		maxInput: defaultMaxInputOrders,
		log:      log,
	}
}

// FindUnmatched returns the orders that have no route assignment and fail
// validation against every route and its assigned truck.
func (s *Service) FindUnmatched(orders []domain.Order, routes []*domain.Route, trucks []*domain.Truck) []domain.Order {
	trucksByID := make(map[int64]*domain.Truck, len(trucks))
	for _, t := range trucks {
		trucksByID[t.ID] = t
	}

	var unmatched []domain.Order
	for _, order := range orders {
		if order.IsMatched() {
			continue
		}

		placeable := false
		for _, route := range routes {
			truck, ok := trucksByID[route.TruckID]
			if !ok {
				continue
			}
			if s.validator.Validate(order, *route, truck) == nil {
				placeable = true
				break
			}
		}
		if !placeable {
			unmatched = append(unmatched, order)
		}
	}

	s.log.Debug().
		Int("orders", len(orders)).
		Int("unmatched", len(unmatched)).
		Msg("unmatched scan complete")
	return unmatched
}

// FindCombinations enumerates subsets of 2 to maxSize orders, keeping those
// that fit the capacity limits with a compatible cargo-type union. Subsets
// whose running volume or weight already exceeds a limit are pruned without
// expanding, and the input set is capped to keep enumeration bounded.
// Results are sorted by score descending; equal scores keep enumeration
// order, so output is deterministic for a given input.
func (s *Service) FindCombinations(unmatched []domain.Order, maxSize int) []Combination {
	if maxSize <= 0 {
		maxSize = s.maxSize
	}
	if len(unmatched) < 2 {
		return nil
	}

	input := unmatched
	if len(input) > s.maxInput {
		input = topByVolume(input, s.maxInput)
	}

	var combos []Combination
	subset := make([]domain.Order, 0, maxSize)
	var expand func(start int, volume, weight float64)
	expand = func(start int, volume, weight float64) {
		if len(subset) >= 2 {
			if combo, ok := s.evaluate(subset); ok {
				combos = append(combos, combo)
			}
		}
		if len(subset) == maxSize {
			return
		}
		for i := start; i < len(input); i++ {
			o := input[i]
			v := volume + o.TotalVolume()
			w := weight + o.TotalWeight()
			if v > MaxCombinationVolumeM3 || w > MaxCombinationWeightKg {
				continue
			}
			subset = append(subset, o)
			expand(i+1, v, w)
			subset = subset[:len(subset)-1]
		}
	}
	expand(0, 0, 0)

	sort.SliceStable(combos, func(i, j int) bool {
		return combos[i].Score > combos[j].Score
	})

	s.log.Debug().
		Int("input", len(input)).
		Int("combinations", len(combos)).
		Msg("combination search complete")
	return combos
}

// Analyze runs the full aggregation pass: find the unplaceable orders,
// enumerate their feasible combinations, and summarize the stranded volume
// and weight.
func (s *Service) Analyze(orders []domain.Order, routes []*domain.Route, trucks []*domain.Truck) Result {
	unmatched := s.FindUnmatched(orders, routes, trucks)
	if len(unmatched) == 0 {
		return Result{}
	}

	combos := s.FindCombinations(unmatched, s.maxSize)

	totalVolume := 0.0
	totalWeight := 0.0
	for _, o := range unmatched {
		totalVolume += o.TotalVolume()
		totalWeight += o.TotalWeight()
	}

	s.log.Info().
		Int("unmatched", len(unmatched)).
		Int("combinations", len(combos)).
		Float64("stranded_volume_m3", totalVolume).
		Msg("aggregation analysis complete")

	return Result{
		Unmatched:     unmatched,
		Combinations:  combos,
		TotalVolume:   totalVolume,
		TotalWeight:   totalWeight,
		Opportunities: len(combos),
	}
}

// evaluate checks a subset already known to fit the capacity limits for
// cargo-type compatibility and scores it.
func (s *Service) evaluate(orders []domain.Order) (Combination, bool) {
	volume := 0.0
	weight := 0.0
	distance := 0.0
	types := make(map[domain.CargoType]struct{}, 2)
	for _, o := range orders {
		volume += o.TotalVolume()
		weight += o.TotalWeight()
		distance += o.Distance()
		for t := range o.CargoTypes() {
			types[t] = struct{}{}
		}
	}

	if !domain.TypesCompatible(types) {
		return Combination{}, false
	}

	kept := make([]domain.Order, len(orders))
	copy(kept, orders)

	return Combination{
		Orders:      kept,
		TotalVolume: volume,
		TotalWeight: weight,
		CargoTypes:  types,
		EstimatedKm: distance,
		Score:       score(kept, volume, weight),
	}, true
}

// score rates a combination from 0 to 100: utilization of truck volume and
// weight dominate, with geographic clustering and a small bonus for
// consolidating more orders.
func score(orders []domain.Order, volume, weight float64) float64 {
	volumeUtil := volume / MaxCombinationVolumeM3 * 100
	if volumeUtil > 100 {
		volumeUtil = 100
	}
	weightUtil := weight / MaxCombinationWeightKg * 100
	if weightUtil > 100 {
		weightUtil = 100
	}

	countBonus := float64(len(orders)) * 5
	if countBonus > 20 {
		countBonus = 20
	}

	total := 0.3*volumeUtil + 0.3*weightUtil + 0.25*clusteringScore(orders) + 0.15*countBonus
	if total > 100 {
		total = 100
	}
	return total
}

// clusteringScore rates how geographically tight a combination is from the
// average pairwise distance over all pickup and dropoff locations: 100 at
// or under 100km, falling linearly to 10 at 500km.
func clusteringScore(orders []domain.Order) float64 {
	if len(orders) < 2 {
		return 100
	}

	locations := make([]domain.Location, 0, len(orders)*2)
	for _, o := range orders {
		locations = append(locations, o.Pickup, o.Dropoff)
	}
	if len(locations) < 2 {
		return 50
	}

	total := 0.0
	pairs := 0
	for i := 0; i < len(locations); i++ {
		for j := i + 1; j < len(locations); j++ {
			total += locations[i].DistanceTo(locations[j])
			pairs++
		}
	}
	avg := total / float64(pairs)

	switch {
	case avg <= 100:
		return 100
	case avg >= 500:
		return 10
	default:
		return 100 - (avg-100)/400*90
	}
}

// topByVolume returns the n highest-volume orders, preserving input order
// among the kept ones.
func topByVolume(orders []domain.Order, n int) []domain.Order {
	idx := make([]int, len(orders))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return orders[idx[a]].TotalVolume() > orders[idx[b]].TotalVolume()
	})
	idx = idx[:n]
	sort.Ints(idx)

	kept := make([]domain.Order, 0, n)
	for _, i := range idx {
		kept = append(kept, orders[i])
	}
	return kept
}
