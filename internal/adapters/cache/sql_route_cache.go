package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hospital-route-service/internal/platform/obs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	geojson "github.com/paulmach/go.geojson"
)

// DBPool is the subset of pgxpool.Pool used by the cache, so tests can mock it.
type DBPool interface {
	Ping(ctx context.Context) error
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SQLRouteCache is a Postgres-backed cache for resolved route geometries.
// Rows older than TTL are treated as misses and removed by Purge.
type SQLRouteCache struct {
	DB  DBPool
	TTL time.Duration
	now func() time.Time
}

func NewSQLRouteCache(db DBPool, ttl time.Duration) *SQLRouteCache {
	return &SQLRouteCache{DB: db, TTL: ttl, now: time.Now}
}

const (
	createRouteCacheQuery = `
	CREATE TABLE IF NOT EXISTS route_cache (
		cache_key TEXT PRIMARY KEY,
		geometry JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);`

	createRouteCacheIndexQuery = `
	CREATE INDEX IF NOT EXISTS idx_route_cache_created_at
	ON route_cache(created_at);`

	selectRouteQuery = `
	SELECT geometry
	FROM route_cache
	WHERE cache_key = $1
		AND created_at > $2;`

	upsertRouteQuery = `
	INSERT INTO route_cache (cache_key, geometry, created_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (cache_key) DO UPDATE
	SET geometry = EXCLUDED.geometry,
		created_at = EXCLUDED.created_at;`

	purgeRoutesQuery = `
	DELETE FROM route_cache
	WHERE created_at <= $1;`
)

// InitSchema creates the route_cache table and its expiry index.
func (s *SQLRouteCache) InitSchema(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("init schema: DB is nil")
	}

	for i, stmt := range []string{createRouteCacheQuery, createRouteCacheIndexQuery} {
		if _, err := s.DB.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}
	return nil
}

func (s *SQLRouteCache) Get(ctx context.Context, key string) (_ *geojson.Geometry, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.sql.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("route cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get route cache: key must not be empty")
	}

	var raw []byte
	err = s.DB.QueryRow(ctx, selectRouteQuery, key, s.cutoff()).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: decode geometry: %w", err)
	}
	return g, true, nil
}

func (s *SQLRouteCache) Put(ctx context.Context, key string, geometry *geojson.Geometry) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert route cache: key must not be empty")
	}
	if geometry == nil {
		return errors.New("insert route cache: geometry is nil")
	}

	b, err := geometry.MarshalJSON()
	if err != nil {
		return fmt.Errorf("insert route cache: encode geometry: %w", err)
	}

	if _, err := s.DB.Exec(ctx, upsertRouteQuery, key, b, s.now().UTC()); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}
	return nil
}

// Purge deletes expired rows and returns how many were removed.
func (s *SQLRouteCache) Purge(ctx context.Context) (int64, error) {
	if s.DB == nil {
		return 0, errors.New("route cache: db is nil")
	}

	tag, err := s.DB.Exec(ctx, purgeRoutesQuery, s.cutoff())
	if err != nil {
		return 0, fmt.Errorf("purge route cache: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *SQLRouteCache) cutoff() time.Time {
	return s.now().UTC().Add(-s.TTL)
}
