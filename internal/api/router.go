package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"freight-matching-service/internal/aggregation"
	"freight-matching-service/internal/api/handlers"
	"freight-matching-service/internal/generation"
	"freight-matching-service/internal/matching"
	"freight-matching-service/internal/pipeline"
	"freight-matching-service/internal/ports"
)

// Services groups the freight engines the API exposes.
type Services struct {
	Matcher    *matching.Service
	Aggregator *aggregation.Service
	Generator  *generation.Service
	Pipeline   *pipeline.Pipeline
}

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root; handlers stay unaware of
// concrete adapters.
func NewRouter(repo ports.FreightRepository, svc Services, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	freight := &handlers.FreightHandler{Repo: repo}
	match := &handlers.MatchHandler{Repo: repo, Matcher: svc.Matcher}
	agg := &handlers.AggregationHandler{Repo: repo, Aggregator: svc.Aggregator}
	gen := &handlers.GenerateHandler{Repo: repo, Aggregator: svc.Aggregator, Generator: svc.Generator}
	pipe := &handlers.PipelineHandler{Repo: repo, Pipeline: svc.Pipeline}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/orders", freight.ListOrders)
	mux.HandleFunc("/routes", freight.ListRoutes)
	mux.HandleFunc("/trucks", freight.ListTrucks)
	mux.HandleFunc("/match/batch", match.MatchBatch)
	mux.HandleFunc("/aggregation/analyze", agg.Analyze)
	mux.HandleFunc("/routes/generate", gen.Generate)
	mux.HandleFunc("/pipeline/run", pipe.Run)

	return requestMiddleware(log, mux)
}
