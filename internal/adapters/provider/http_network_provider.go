package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"freight-matching-service/internal/routing"
)

// HTTPNetworkProvider fetches road-network graphs for a bounding box from
// an external routing service over HTTP. Responses carry the network as a
// flat node and edge list. The provider is safe for concurrent use.
type HTTPNetworkProvider struct {
	session *http.Client
	baseURL string
	apiKey  string
	log     zerolog.Logger
}

type networkResponse struct {
	Nodes []nodeJSON `json:"nodes"`
	Edges []edgeJSON `json:"edges"`
}

type nodeJSON struct {
	ID  int64   `json:"id"`
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type edgeJSON struct {
	From     int64   `json:"from"`
	To       int64   `json:"to"`
	LengthM  float64 `json:"length_m"`
	SpeedKmh float64 `json:"speed_kmh"`
}

func NewHTTPNetworkProvider(baseURL, apiKey string, log zerolog.Logger) (*HTTPNetworkProvider, error) {
	if baseURL == "" {
		return nil, errors.New("network provider base URL is empty")
	}
	return &HTTPNetworkProvider{
		session: &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		log:     log,
	}, nil
}

// FetchNetwork retrieves the road network covering the box.
func (p *HTTPNetworkProvider) FetchNetwork(ctx context.Context, box routing.BoundingBox) (*routing.RoadNetwork, error) {
	if err := box.Validate(); err != nil {
		return nil, fmt.Errorf("fetch network: %w", err)
	}

	resp, err := p.doWithRetry(ctx, func() (*http.Request, error) {
		return p.newRequest(ctx, box)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch network %s: %w", box.Key(), err)
	}
	defer resp.Body.Close()

	var body networkResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode network response: %w", err)
	}
	if len(body.Nodes) == 0 {
		return nil, routing.ErrEmptyNetwork
	}

	nodes := make([]routing.NetworkNode, 0, len(body.Nodes))
	for _, n := range body.Nodes {
		nodes = append(nodes, routing.NetworkNode{ID: n.ID, Lat: n.Lat, Lng: n.Lng})
	}
	edges := make([]routing.NetworkEdge, 0, len(body.Edges))
	for _, e := range body.Edges {
		edges = append(edges, routing.NetworkEdge{
			From:     e.From,
			To:       e.To,
			LengthM:  e.LengthM,
			SpeedKmh: e.SpeedKmh,
		})
	}

	graph := routing.NewRoadNetwork(nodes, edges)
	p.log.Debug().
		Str("bbox", box.Key()).
		Int("nodes", graph.NodeCount()).
		Int("edges", graph.EdgeCount()).
		Msg("road network fetched")
	return graph, nil
}

func (p *HTTPNetworkProvider) newRequest(ctx context.Context, box routing.BoundingBox) (*http.Request, error) {
	q := url.Values{}
	q.Set("north", strconv.FormatFloat(box.North, 'f', 6, 64))
	q.Set("south", strconv.FormatFloat(box.South, 'f', 6, 64))
	q.Set("east", strconv.FormatFloat(box.East, 'f', 6, 64))
	q.Set("west", strconv.FormatFloat(box.West, 'f', 6, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/network?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", p.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

func (p *HTTPNetworkProvider) do(req *http.Request) (*http.Response, error) {
	resp, err := p.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b := make([]byte, 512)
		n, _ := resp.Body.Read(b)
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b[:n])),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 5xx responses)
// using exponential backoff while respecting context cancellation.
func (p *HTTPNetworkProvider) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	const maxAttempts = 4
	backoff := 200 * time.Millisecond

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := p.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}

		if !retry || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}
