package services

import (
	"context"
	"fmt"

	"hospital-route-service/internal/domain"
	"hospital-route-service/internal/platform/obs"
	"hospital-route-service/internal/ports"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"go.uber.org/zap"
)

const resolveOp = "resolve route"

// RouteResolver turns an ordered list of stops into the driving route
// geometry. It keeps no per-request state and is safe for concurrent use.
// Cache is optional; with a nil cache every request reaches the provider.
type RouteResolver struct {
	Provider ports.DirectionsProvider
	Cache    ports.RouteCache
	Profile  string
}

func NewRouteResolver(provider ports.DirectionsProvider, routeCache ports.RouteCache, profile string) *RouteResolver {
	return &RouteResolver{Provider: provider, Cache: routeCache, Profile: profile}
}

// Resolve validates req, then returns the geometry of the first route the
// provider proposes for visiting the points in order. Failures are always
// classified *domain.Error values.
func (r *RouteResolver) Resolve(ctx context.Context, req domain.RouteRequest) (_ *domain.RouteResult, err error) {
	defer obs.Time(ctx, "services.RouteResolver.Resolve")(&err)

	if err := ValidateRouteRequest(req); err != nil {
		return nil, err
	}

	logger := obs.FromContext(ctx)

	var key string
	if r.Cache != nil {
		key = domain.RouteKey(r.Profile, req.Coordinates)

		g, ok, err := r.Cache.Get(ctx, key)
		if err != nil {
			logger.Warn("route cache read failed", zap.Error(err))
		} else if ok {
			return &domain.RouteResult{Geometry: g, Cached: true}, nil
		}
	}

	g, err := r.Provider.Directions(ctx, req.Coordinates)
	if err != nil {
		if domain.KindOf(err) == "" {
			return nil, domain.InternalError(resolveOp, err)
		}
		return nil, err
	}
	if g == nil {
		return nil, domain.NoRouteFound(resolveOp)
	}

	logger.Debug("route resolved",
		zap.Int("stops", len(req.Coordinates)),
		zap.Float64("length_m", lineLength(g)),
	)

	if r.Cache != nil {
		if err := r.Cache.Put(ctx, key, g); err != nil {
			logger.Warn("route cache write failed", zap.Error(err))
		}
	}

	return &domain.RouteResult{Geometry: g}, nil
}

// ValidateRouteRequest requires at least two finite WGS84 points.
func ValidateRouteRequest(req domain.RouteRequest) error {
	if len(req.Coordinates) < 2 {
		return domain.ValidationError(resolveOp, "At least 2 coordinates required")
	}
	for i, c := range req.Coordinates {
		if err := c.Validate(); err != nil {
			return domain.ValidationError(resolveOp, fmt.Sprintf("coordinate %d: %v", i, err))
		}
	}
	return nil
}

// lineLength is the haversine length in meters of a LineString, 0 otherwise.
func lineLength(g *geojson.Geometry) float64 {
	if g == nil || !g.IsLineString() {
		return 0
	}
	ls := make(orb.LineString, 0, len(g.LineString))
	for _, p := range g.LineString {
		if len(p) >= 2 {
			ls = append(ls, orb.Point{p[0], p[1]})
		}
	}
	return geo.Length(ls)
}
