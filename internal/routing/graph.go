package routing

import (
	"container/heap"
	"context"

	"freight-matching-service/internal/domain"
)

// Speed assumed for edges whose metadata carries no speed.
const defaultEdgeSpeedKmh = 50.0

// Single intersection in a road network.
type NetworkNode struct {
	ID  int64
	Lat float64
	Lng float64
}

// Directed road segment between two intersections. LengthM is meters;
// SpeedKmh may be zero when the source data has no speed limit.
type NetworkEdge struct {
	From     int64
	To       int64
	LengthM  float64
	SpeedKmh float64
}

// In-memory road-network graph for one bounding box.
type RoadNetwork struct {
	nodes map[int64]NetworkNode
	adj   map[int64][]NetworkEdge
}

// NewRoadNetwork builds a graph from node and edge lists. Edges referring
// to unknown nodes are dropped.
func NewRoadNetwork(nodes []NetworkNode, edges []NetworkEdge) *RoadNetwork {
	g := &RoadNetwork{
		nodes: make(map[int64]NetworkNode, len(nodes)),
		adj:   make(map[int64][]NetworkEdge, len(nodes)),
	}
	for _, n := range nodes {
		g.nodes[n.ID] = n
	}
	for _, e := range edges {
		if _, ok := g.nodes[e.From]; !ok {
			continue
		}
		if _, ok := g.nodes[e.To]; !ok {
			continue
		}
		g.adj[e.From] = append(g.adj[e.From], e)
	}
	return g
}

// NodeCount returns the number of intersections in the graph.
func (g *RoadNetwork) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of road segments in the graph.
func (g *RoadNetwork) EdgeCount() int {
	n := 0
	for _, edges := range g.adj {
		n += len(edges)
	}
	return n
}

// NearestNode returns the graph node closest to a location by great-circle
// distance.
func (g *RoadNetwork) NearestNode(loc domain.Location) (NetworkNode, error) {
	if len(g.nodes) == 0 {
		return NetworkNode{}, ErrEmptyNetwork
	}

	var best NetworkNode
	bestDist := -1.0
	for _, n := range g.nodes {
		d := loc.DistanceTo(domain.Location{Lat: n.Lat, Lng: n.Lng})
		if bestDist < 0 || d < bestDist || (d == bestDist && n.ID < best.ID) {
			bestDist = d
			best = n
		}
	}
	return best, nil
}

// ShortestPath runs Dijkstra from one node to another over edge lengths
// and returns the driven distance in kilometers plus the estimated drive
// time from edge speed metadata.
func (g *RoadNetwork) ShortestPath(from, to int64) (km float64, hours float64, err error) {
	if _, ok := g.nodes[from]; !ok {
		return 0, 0, ErrNoPath
	}
	if _, ok := g.nodes[to]; !ok {
		return 0, 0, ErrNoPath
	}
	if from == to {
		return 0, 0, nil
	}

	type visit struct {
		meters float64
		hours  float64
	}
	settled := make(map[int64]visit, len(g.nodes))

	pq := &nodeQueue{}
	heap.Init(pq)
	heap.Push(pq, nodeItem{id: from})

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(nodeItem)
		if _, done := settled[cur.id]; done {
			continue
		}
		settled[cur.id] = visit{meters: cur.meters, hours: cur.hours}

		if cur.id == to {
			return cur.meters / 1000, cur.hours, nil
		}

		for _, e := range g.adj[cur.id] {
			if _, done := settled[e.To]; done {
				continue
			}
			speed := e.SpeedKmh
			if speed <= 0 {
				speed = defaultEdgeSpeedKmh
			}
			heap.Push(pq, nodeItem{
				id:     e.To,
				meters: cur.meters + e.LengthM,
				hours:  cur.hours + (e.LengthM/1000)/speed,
			})
		}
	}

	return 0, 0, ErrNoPath
}

// Contract for fetching a road-network graph covering a bounding box from
// an external routing provider. Implementations live in adapters and are
// injected so the provider can be swapped or mocked.
type NetworkProvider interface {
	FetchNetwork(ctx context.Context, box BoundingBox) (*RoadNetwork, error)
}

type nodeItem struct {
	id     int64
	meters float64
	hours  float64
}

type nodeQueue []nodeItem

func (q nodeQueue) Len() int           { return len(q) }
func (q nodeQueue) Less(i, j int) bool { return q[i].meters < q[j].meters }
func (q nodeQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x any)        { *q = append(*q, x.(nodeItem)) }
func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
