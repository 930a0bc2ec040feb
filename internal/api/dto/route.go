package dto

import geojson "github.com/paulmach/go.geojson"

// RouteRequest is the body of POST /api/route: an ordered list of
// [longitude, latitude] pairs.
type RouteRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type RouteResponse struct {
	Type     string            `json:"type"`
	Geometry *geojson.Geometry `json:"geometry"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// ProviderErrorResponse forwards an upstream non-success answer.
type ProviderErrorResponse struct {
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}
