package domain

import geojson "github.com/paulmach/go.geojson"

// Ordered sequence of stops a driving route must visit, in the given order.
type RouteRequest struct {
	Coordinates []Coordinates
}

// RouteResult is the line geometry of the first route candidate returned by the provider.
type RouteResult struct {
	Geometry *geojson.Geometry
	Cached   bool
}
