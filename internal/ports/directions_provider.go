package ports

import (
	"context"
	"hospital-route-service/internal/domain"

	geojson "github.com/paulmach/go.geojson"
)

// Contract for resolving the road geometry of a route visiting points in order.
type DirectionsProvider interface {
	// Return the line geometry of the first route candidate.
	// Failures are reported as classified *domain.Error values.
	Directions(ctx context.Context, points []domain.Coordinates) (*geojson.Geometry, error)
}
