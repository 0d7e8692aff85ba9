package main

import (
	"database/sql"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"freight-matching-service/internal/adapters/cache"
	"freight-matching-service/internal/adapters/provider"
	"freight-matching-service/internal/adapters/repositories"
	"freight-matching-service/internal/aggregation"
	"freight-matching-service/internal/api"
	"freight-matching-service/internal/config"
	"freight-matching-service/internal/generation"
	"freight-matching-service/internal/matching"
	"freight-matching-service/internal/pipeline"
	"freight-matching-service/internal/platform/db"
	"freight-matching-service/internal/platform/obs"
	"freight-matching-service/internal/ports"
	"freight-matching-service/internal/routing"
)

// main is the application composition root. It wires concrete adapters
// (SQL storage, redis cache, road network provider) behind ports and
// starts the HTTP server.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		boot := bootLog()
		boot.Fatal().Err(err).Msg("configuration failed")
	}
	log := obs.NewLogger(cfg.Env, cfg.LogLevel)

	conn, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database open failed")
	}
	defer conn.Close()

	dialect := dialectFor(cfg.Database.Driver)
	if err := prepareStorage(conn, cfg); err != nil {
		log.Fatal().Err(err).Msg("storage preparation failed")
	}
	repo := repositories.NewSQLFreightRepository(conn, dialect)

	distances := buildDistanceService(conn, cfg, dialect, log)

	matcher := matching.NewService(log)
	aggregator := aggregation.NewService(log)
	// A configured zero margin means no gate; generation reserves zero for
	// "unset" and reads the request for 0% from a negative value.
	minMargin := cfg.Generation.MinMarginPercent
	if minMargin == 0 {
		minMargin = -1
	}
	generator := generation.NewService(distances, generation.Config{
		MinMarginPercent: minMargin,
		MaxRoutes:        cfg.Generation.MaxRoutes,
	}, log)
	pipe := pipeline.New(matcher, aggregator, generator, repo, log)

	router := api.NewRouter(repo, api.Services{
		Matcher:    matcher,
		Aggregator: aggregator,
		Generator:  generator,
		Pipeline:   pipe,
	}, log)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Info().Str("addr", cfg.HTTPAddr).Msg("server listening")
	log.Fatal().Err(srv.ListenAndServe()).Msg("server stopped")
}

// bootLog covers failures before the configured logger exists.
func bootLog() zerolog.Logger {
	return obs.NewLogger("development", "info")
}

func dialectFor(driver string) repositories.Dialect {
	if driver == "pgx" {
		return repositories.DialectPostgres
	}
	return repositories.DialectSQLite
}

// prepareStorage creates the schema and seeds demo data for local runs.
func prepareStorage(conn *sql.DB, cfg config.Config) error {
	if err := repositories.InitSchema(conn); err != nil {
		return err
	}
	if err := cache.InitSQLDistanceCache(conn); err != nil {
		return err
	}
	if cfg.Database.SeedPath != "" {
		if err := repositories.SeedFromJSON(conn, dialectFor(cfg.Database.Driver), cfg.Database.SeedPath); err != nil {
			return err
		}
	}
	return nil
}

// buildDistanceService assembles the routing stack: road network provider
// when configured, redis result cache when available, SQL cache otherwise.
func buildDistanceService(conn *sql.DB, cfg config.Config, dialect repositories.Dialect, log zerolog.Logger) ports.DistanceService {
	var networkProvider routing.NetworkProvider
	if cfg.Routing.BaseURL != "" {
		p, err := provider.NewHTTPNetworkProvider(cfg.Routing.BaseURL, cfg.Routing.APIKey, log)
		if err != nil {
			log.Fatal().Err(err).Msg("network provider setup failed")
		}
		networkProvider = p
	} else {
		log.Warn().Msg("no routing provider configured, distances use great-circle estimates")
	}

	var results routing.ResultCache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		results = cache.NewRedisDistanceCache(client, cfg.Redis.TTL)
	} else {
		results = cache.NewSQLDistanceCache(conn, dialect)
	}

	return routing.NewService(networkProvider, results, routing.Config{
		MaxAreaKm2: cfg.Routing.MaxAreaKm2,
	}, log)
}
