package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"hospital-route-service/internal/domain"
	"hospital-route-service/internal/platform/obs"

	geojson "github.com/paulmach/go.geojson"
)

type directionsRequest struct {
	Coordinates  [][]float64 `json:"coordinates"`
	Instructions bool        `json:"instructions"`
	Geometry     bool        `json:"geometry"`
}

// Directions resolves the driving route visiting points in the given order
// and returns the geometry of the first feature. It is not retried: provider
// status errors are surfaced to the caller as-is.
func (o *Provider) Directions(
	ctx context.Context,
	points []domain.Coordinates,
) (_ *geojson.Geometry, err error) {
	const op = "ors.Directions"
	defer obs.Time(ctx, op)(&err)

	if len(points) < 2 {
		return nil, domain.ValidationError(op, "at least 2 coordinates required")
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, o.profile)

	bodyObj := directionsRequest{
		Coordinates:  make([][]float64, 0, len(points)),
		Instructions: false,
		Geometry:     true,
	}
	for _, p := range points {
		bodyObj.Coordinates = append(bodyObj.Coordinates, p.CoordsToList())
	}

	payload, err := json.Marshal(bodyObj)
	if err != nil {
		return nil, domain.InternalError(op, fmt.Errorf("marshal directions request: %w", err))
	}

	req, err := o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, domain.InternalError(op, err)
	}

	resp, err := o.do(o.directionsSession, req)
	if err != nil {
		return nil, classify(op, err)
	}

	b, err := readBody(resp)
	if err != nil {
		return nil, classify(op, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, domain.InternalError(op, fmt.Errorf("decode directions response: %w", err))
	}

	if len(fc.Features) == 0 || fc.Features[0] == nil || fc.Features[0].Geometry == nil {
		return nil, domain.NoRouteFound(op)
	}

	return fc.Features[0].Geometry, nil
}
