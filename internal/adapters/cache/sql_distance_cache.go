package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"freight-matching-service/internal/adapters/repositories"
	"freight-matching-service/internal/domain"
	"freight-matching-service/internal/ports"
)

// SQLDistanceCache persists pair distance results in the main database.
// It serves deployments without a redis instance; entries never expire and
// are refreshed by upsert.
type SQLDistanceCache struct {
	db      *sql.DB
	dialect repositories.Dialect
}

func NewSQLDistanceCache(db *sql.DB, dialect repositories.Dialect) *SQLDistanceCache {
	return &SQLDistanceCache{db: db, dialect: dialect}
}

// InitSQLDistanceCache creates the backing table when it does not exist.
func InitSQLDistanceCache(db *sql.DB) error {
	if db == nil {
		return errors.New("distance cache: DB is nil")
	}
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS distance_cache (
		from_lat DOUBLE PRECISION NOT NULL,
		from_lng DOUBLE PRECISION NOT NULL,
		to_lat DOUBLE PRECISION NOT NULL,
		to_lng DOUBLE PRECISION NOT NULL,
		km DOUBLE PRECISION NOT NULL,
		hours DOUBLE PRECISION NOT NULL,
		method TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (from_lat, from_lng, to_lat, to_lng)
	);`)
	if err != nil {
		return fmt.Errorf("distance cache: create table: %w", err)
	}
	return nil
}

// Coordinates are rounded to 5 decimals (about a meter) so float noise
// does not fragment the key space.
func round5(v float64) float64 { return math.Round(v*1e5) / 1e5 }

func (s *SQLDistanceCache) Get(ctx context.Context, a, b domain.Location) (ports.DistanceResult, bool, error) {
	if s.db == nil {
		return ports.DistanceResult{}, false, errors.New("distance cache: DB is nil")
	}

	q := repositories.Rebind(s.dialect, `
	SELECT km, hours, method, note
	FROM distance_cache
	WHERE from_lat = ? AND from_lng = ? AND to_lat = ? AND to_lng = ?;
	`)

	var res ports.DistanceResult
	row := s.db.QueryRowContext(ctx, q, round5(a.Lat), round5(a.Lng), round5(b.Lat), round5(b.Lng))
	err := row.Scan(&res.Km, &res.Hours, &res.Method, &res.Note)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.DistanceResult{}, false, nil
	}
	if err != nil {
		return ports.DistanceResult{}, false, fmt.Errorf("get distance cache: %w", err)
	}
	return res, true, nil
}

func (s *SQLDistanceCache) Put(ctx context.Context, a, b domain.Location, result ports.DistanceResult) error {
	if s.db == nil {
		return errors.New("distance cache: DB is nil")
	}

	q := repositories.Rebind(s.dialect, `
	INSERT INTO distance_cache (from_lat, from_lng, to_lat, to_lng, km, hours, method, note)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (from_lat, from_lng, to_lat, to_lng) DO UPDATE
	SET km = EXCLUDED.km,
		hours = EXCLUDED.hours,
		method = EXCLUDED.method,
		note = EXCLUDED.note;
	`)

	_, err := s.db.ExecContext(ctx, q,
		round5(a.Lat), round5(a.Lng), round5(b.Lat), round5(b.Lng),
		result.Km, result.Hours, result.Method, result.Note)
	if err != nil {
		return fmt.Errorf("insert distance cache: %w", err)
	}
	return nil
}
