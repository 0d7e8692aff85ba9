package provider

import (
	"context"

	"freight-matching-service/internal/routing"
)

// MockNetworkProvider serves a fixed road network for every query. Used in
// tests and local runs where no external routing service is reachable.
type MockNetworkProvider struct {
	graph *routing.RoadNetwork
	err   error
}

func NewMockNetworkProvider(nodes []routing.NetworkNode, edges []routing.NetworkEdge) *MockNetworkProvider {
	return &MockNetworkProvider{graph: routing.NewRoadNetwork(nodes, edges)}
}

// NewFailingNetworkProvider always returns err, for exercising the
// geometric fallback path.
func NewFailingNetworkProvider(err error) *MockNetworkProvider {
	return &MockNetworkProvider{err: err}
}

func (p *MockNetworkProvider) FetchNetwork(ctx context.Context, box routing.BoundingBox) (*routing.RoadNetwork, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.graph, nil
}
