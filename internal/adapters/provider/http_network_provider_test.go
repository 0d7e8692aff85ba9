package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"freight-matching-service/internal/routing"
)

const sampleNetwork = `{
	"nodes": [
		{"id": 1, "lat": 33.7490, "lng": -84.3880},
		{"id": 2, "lat": 33.7600, "lng": -84.3900}
	],
	"edges": [
		{"from": 1, "to": 2, "length_m": 1500, "speed_kmh": 50},
		{"from": 2, "to": 1, "length_m": 1500, "speed_kmh": 50}
	]
}`

func testBox() routing.BoundingBox {
	return routing.BoundingBox{North: 34.0, South: 33.5, East: -84.0, West: -84.8}
}

func TestFetchNetworkParsesResponse(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleNetwork))
	}))
	defer srv.Close()

	p, err := NewHTTPNetworkProvider(srv.URL, "test-key", zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	graph, err := p.FetchNetwork(context.Background(), testBox())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if graph.NodeCount() != 2 {
		t.Errorf("nodes = %d, want 2", graph.NodeCount())
	}
	if graph.EdgeCount() != 2 {
		t.Errorf("edges = %d, want 2", graph.EdgeCount())
	}
	for _, param := range []string{"north=", "south=", "east=", "west="} {
		if !strings.Contains(gotQuery, param) {
			t.Errorf("query %q missing %q", gotQuery, param)
		}
	}
}

func TestFetchNetworkRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "try again", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(sampleNetwork))
	}))
	defer srv.Close()

	p, _ := NewHTTPNetworkProvider(srv.URL, "", zerolog.Nop())
	graph, err := p.FetchNetwork(context.Background(), testBox())
	if err != nil {
		t.Fatalf("expected retry to recover, got: %v", err)
	}
	if graph.NodeCount() != 2 {
		t.Errorf("nodes = %d, want 2", graph.NodeCount())
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestFetchNetworkDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad box", http.StatusBadRequest)
	}))
	defer srv.Close()

	p, _ := NewHTTPNetworkProvider(srv.URL, "", zerolog.Nop())
	if _, err := p.FetchNetwork(context.Background(), testBox()); err == nil {
		t.Fatal("expected error for 400 response")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (400 must not retry)", calls.Load())
	}
}

func TestFetchNetworkEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"nodes": [], "edges": []}`))
	}))
	defer srv.Close()

	p, _ := NewHTTPNetworkProvider(srv.URL, "", zerolog.Nop())
	if _, err := p.FetchNetwork(context.Background(), testBox()); err != routing.ErrEmptyNetwork {
		t.Fatalf("err = %v, want ErrEmptyNetwork", err)
	}
}

func TestFetchNetworkRejectsInvalidBox(t *testing.T) {
	p, _ := NewHTTPNetworkProvider("http://localhost:9", "", zerolog.Nop())
	bad := routing.BoundingBox{North: 33.0, South: 34.0, East: -84.0, West: -84.8}
	if _, err := p.FetchNetwork(context.Background(), bad); err == nil {
		t.Fatal("expected validation error for inverted box")
	}
}
