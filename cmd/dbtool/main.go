package main

import (
	"flag"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"freight-matching-service/internal/adapters/cache"
	"freight-matching-service/internal/adapters/repositories"
	"freight-matching-service/internal/config"
	"freight-matching-service/internal/platform/db"
	"freight-matching-service/internal/platform/obs"
)

// dbtool initializes the freight schema and optionally seeds it from a
// JSON file. It reads the same configuration as the server.
func main() {
	seedFlag := flag.String("seed", "", "path to a seed JSON file (overrides FREIGHT_DATABASE_SEED_PATH)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		boot := obs.NewLogger("development", "info")
		boot.Fatal().Err(err).Msg("configuration failed")
	}
	log := obs.NewLogger(cfg.Env, cfg.LogLevel)

	conn, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database open failed")
	}
	defer conn.Close()

	log.Info().Str("driver", cfg.Database.Driver).Msg("initializing schema")
	if err := repositories.InitSchema(conn); err != nil {
		log.Fatal().Err(err).Msg("schema initialization failed")
	}
	if err := cache.InitSQLDistanceCache(conn); err != nil {
		log.Fatal().Err(err).Msg("distance cache initialization failed")
	}
	log.Info().Msg("schema ready")

	seedPath := cfg.Database.SeedPath
	if *seedFlag != "" {
		seedPath = *seedFlag
	}
	if seedPath == "" {
		log.Info().Msg("no seed path configured, skipping seed")
		return
	}

	log.Info().Str("path", seedPath).Msg("seeding database")
	dialect := repositories.DialectSQLite
	if cfg.Database.Driver == "pgx" {
		dialect = repositories.DialectPostgres
	}
	if err := repositories.SeedFromJSON(conn, dialect, seedPath); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	log.Info().Msg("seeding complete")
}
