package ports

import (
	"context"
	"hospital-route-service/internal/domain"
)

// Raw pairwise matrices as returned by a provider.
// A nil top-level slice means the field was missing from the response;
// a nil cell means the provider could not compute that pair.
type MatrixResult struct {
	Distances [][]*float64
	Durations [][]*float64
}

// Contract for computing a full N×N distance/duration matrix in a single call.
type MatrixProvider interface {
	// Return distances (meters) and durations (seconds) between every pair of locations.
	Matrix(ctx context.Context, locations []domain.Coordinates) (*MatrixResult, error)
}
