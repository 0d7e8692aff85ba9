package handlers

import (
	"sort"

	"freight-matching-service/internal/api/dto"
	"freight-matching-service/internal/domain"
	"freight-matching-service/internal/matching"
)

func toLocationResponse(l domain.Location) dto.LocationResponse {
	return dto.LocationResponse{ID: l.ID, Lat: l.Lat, Lng: l.Lng}
}

func toOrderResponse(o domain.Order) dto.OrderResponse {
	cargo := make([]dto.CargoResponse, 0, len(o.Cargo))
	for _, c := range o.Cargo {
		pkgs := make([]dto.PackageResponse, 0, len(c.Packages))
		for _, p := range c.Packages {
			pkgs = append(pkgs, dto.PackageResponse{
				ID:       p.ID,
				VolumeM3: p.Volume,
				WeightKg: p.Weight,
				Type:     string(p.Type),
			})
		}
		cargo = append(cargo, dto.CargoResponse{ID: c.ID, Packages: pkgs})
	}

	return dto.OrderResponse{
		ID:            o.ID,
		Pickup:        toLocationResponse(o.Pickup),
		Dropoff:       toLocationResponse(o.Dropoff),
		ClientID:      o.ClientID,
		RouteID:       o.RouteID,
		TotalVolumeM3: o.TotalVolume(),
		TotalWeightKg: o.TotalWeight(),
		Cargo:         cargo,
	}
}

func toRouteResponse(rt domain.Route) dto.RouteResponse {
	waypoints := make([]dto.LocationResponse, 0, len(rt.Path))
	for _, wp := range rt.Path {
		waypoints = append(waypoints, toLocationResponse(wp))
	}

	return dto.RouteResponse{
		ID:            rt.ID,
		Origin:        toLocationResponse(rt.Origin),
		Destiny:       toLocationResponse(rt.Destiny),
		Waypoints:     waypoints,
		TruckID:       rt.TruckID,
		OrderIDs:      rt.OrderIDs,
		Profitability: rt.Profitability,
		TotalKm:       rt.TotalDistance(),
		TotalHours:    rt.TotalTime(domain.AvgSpeedKmh),
	}
}

func toTruckResponse(t domain.Truck) dto.TruckResponse {
	return dto.TruckResponse{
		ID:             t.ID,
		CapacityM3:     t.Capacity,
		AutonomyKm:     t.Autonomy,
		Type:           t.Type,
		UsedCapacityM3: t.UsedCapacity(),
		LoadedWeightKg: t.LoadedWeight(),
	}
}

func toMatchResultResponse(res matching.Result) dto.MatchResultResponse {
	out := dto.MatchResultResponse{
		OrderID:     res.OrderID,
		Matched:     res.Matched,
		RouteID:     res.RouteID,
		TruckID:     res.TruckID,
		ProfitDelta: res.ProfitDelta,
	}
	if res.Reason != nil {
		out.Reason = &dto.MatchReasonResponse{
			Code:    string(res.Reason.Code),
			Message: res.Reason.Message,
			Details: res.Reason.Details,
		}
	}
	return out
}

// toMatchResultList flattens a result map into a response slice ordered by
// order id, so batch results are stable across calls.
func toMatchResultList(results map[int64]matching.Result) []dto.MatchResultResponse {
	out := make([]dto.MatchResultResponse, 0, len(results))
	for _, res := range results {
		out = append(out, toMatchResultResponse(res))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out
}
