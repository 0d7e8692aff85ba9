package dto

type LocationResponse struct {
	ID  int64   `json:"id,omitempty"`
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type PackageResponse struct {
	ID       int64   `json:"id"`
	VolumeM3 float64 `json:"volume_m3"`
	WeightKg float64 `json:"weight_kg"`
	Type     string  `json:"type"`
}

type CargoResponse struct {
	ID       int64             `json:"id"`
	Packages []PackageResponse `json:"packages"`
}

type OrderResponse struct {
	ID            int64            `json:"id"`
	Pickup        LocationResponse `json:"pickup"`
	Dropoff       LocationResponse `json:"dropoff"`
	ClientID      int64            `json:"client_id,omitempty"`
	RouteID       int64            `json:"route_id,omitempty"`
	TotalVolumeM3 float64          `json:"total_volume_m3"`
	TotalWeightKg float64          `json:"total_weight_kg"`
	Cargo         []CargoResponse  `json:"cargo"`
}

type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
}

type RouteResponse struct {
	ID            int64              `json:"id,omitempty"`
	Origin        LocationResponse   `json:"origin"`
	Destiny       LocationResponse   `json:"destiny"`
	Waypoints     []LocationResponse `json:"waypoints,omitempty"`
	TruckID       int64              `json:"truck_id,omitempty"`
	OrderIDs      []int64            `json:"order_ids,omitempty"`
	Profitability float64            `json:"profitability"`
	TotalKm       float64            `json:"total_km"`
	TotalHours    float64            `json:"total_hours"`
}

type ListRoutesResponse struct {
	Routes []RouteResponse `json:"routes"`
}

type TruckResponse struct {
	ID             int64   `json:"id"`
	CapacityM3     float64 `json:"capacity_m3"`
	AutonomyKm     float64 `json:"autonomy_km"`
	Type           string  `json:"type"`
	UsedCapacityM3 float64 `json:"used_capacity_m3"`
	LoadedWeightKg float64 `json:"loaded_weight_kg"`
}

type ListTrucksResponse struct {
	Trucks []TruckResponse `json:"trucks"`
}

type MatchRequest struct {
	// OrderIDs narrows the batch to specific unassigned orders. Empty means
	// every unassigned order.
	OrderIDs []int64 `json:"order_ids"`
}

type MatchReasonResponse struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Details map[string]float64 `json:"details,omitempty"`
}

type MatchResultResponse struct {
	OrderID     int64                `json:"order_id"`
	Matched     bool                 `json:"matched"`
	RouteID     int64                `json:"route_id,omitempty"`
	TruckID     int64                `json:"truck_id,omitempty"`
	ProfitDelta float64              `json:"profit_delta,omitempty"`
	Reason      *MatchReasonResponse `json:"reason,omitempty"`
}

type MatchBatchResponse struct {
	Results   []MatchResultResponse `json:"results"`
	Matched   int                   `json:"matched"`
	Unmatched int                   `json:"unmatched"`
}

type CombinationResponse struct {
	OrderIDs      []int64  `json:"order_ids"`
	TotalVolumeM3 float64  `json:"total_volume_m3"`
	TotalWeightKg float64  `json:"total_weight_kg"`
	CargoTypes    []string `json:"cargo_types"`
	EstimatedKm   float64  `json:"estimated_km"`
	Score         float64  `json:"score"`
}

type AggregationResponse struct {
	UnmatchedOrderIDs []int64               `json:"unmatched_order_ids"`
	Combinations      []CombinationResponse `json:"combinations"`
	TotalVolumeM3     float64               `json:"total_volume_m3"`
	TotalWeightKg     float64               `json:"total_weight_kg"`
	Opportunities     int                   `json:"opportunities"`
}

type GenerateRequest struct {
	MaxRoutes int `json:"max_routes"`
}

type GeneratedRouteResponse struct {
	Success          bool           `json:"success"`
	Route            *RouteResponse `json:"route,omitempty"`
	EstimatedProfit  float64        `json:"estimated_profit"`
	EstimatedCost    float64        `json:"estimated_cost"`
	EstimatedRevenue float64        `json:"estimated_revenue"`
	TotalKm          float64        `json:"total_km"`
	TotalHours       float64        `json:"total_hours"`
	OrdersIncluded   int            `json:"orders_included"`
	ErrorReason      string         `json:"error_reason,omitempty"`
}

type GenerateResponse struct {
	Routes []GeneratedRouteResponse `json:"routes"`
}

type PipelineResponse struct {
	TotalOrders        int                   `json:"total_orders"`
	MatchedToExisting  int                   `json:"matched_to_existing"`
	NewRoutesGenerated int                   `json:"new_routes_generated"`
	OrdersInNewRoutes  int                   `json:"orders_in_new_routes"`
	AdditionalProfit   float64               `json:"additional_profit"`
	NewRoutes          []RouteResponse       `json:"new_routes"`
	UnmatchedOrderIDs  []int64               `json:"unmatched_order_ids"`
	Results            []MatchResultResponse `json:"results"`
}
