package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"hospital-route-service/internal/domain"
	"hospital-route-service/internal/platform/obs"
	"hospital-route-service/internal/ports"
)

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
	Units     string      `json:"units"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// Matrix requests the full locations×locations distance and duration matrix
// in a single call, so every cell comes from the same provider snapshot.
// The response is returned as decoded; shape checks belong to the caller.
func (o *Provider) Matrix(
	ctx context.Context,
	locations []domain.Coordinates,
) (_ *ports.MatrixResult, err error) {
	const op = "ors.Matrix"
	defer obs.Time(ctx, op)(&err)

	if len(locations) < 2 {
		return nil, domain.ValidationError(op, fmt.Sprintf("need at least 2 locations, got %d", len(locations)))
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	bodyObj := matrixRequest{
		Locations: make([][]float64, 0, len(locations)),
		Metrics:   []string{"distance", "duration"},
		Units:     "m",
	}
	for _, c := range locations {
		bodyObj.Locations = append(bodyObj.Locations, c.CoordsToList())
	}

	payload, err := json.Marshal(bodyObj)
	if err != nil {
		return nil, domain.InternalError(op, fmt.Errorf("marshal matrix request: %w", err))
	}

	resp, err := o.doWithRetry(ctx, o.matrixSession, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, classify(op, err)
	}

	b, err := readBody(resp)
	if err != nil {
		return nil, classify(op, err)
	}

	var mr matrixResponse
	if err := json.Unmarshal(b, &mr); err != nil {
		return nil, domain.InternalError(op, fmt.Errorf("decode matrix response: %w", err))
	}

	return &ports.MatrixResult{
		Distances: mr.Distances,
		Durations: mr.Durations,
	}, nil
}
