package ports

import (
	"context"

	geojson "github.com/paulmach/go.geojson"
)

// Cache of resolved route geometries keyed by a normalized coordinate sequence.
// Entries expire after the backend's TTL.
type RouteCache interface {
	Get(ctx context.Context, key string) (*geojson.Geometry, bool, error)
	Put(ctx context.Context, key string, geometry *geojson.Geometry) error
}
