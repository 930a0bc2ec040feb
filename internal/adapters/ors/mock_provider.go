package ors

import (
	"context"
	"sync"

	"hospital-route-service/internal/domain"
	"hospital-route-service/internal/ports"

	geojson "github.com/paulmach/go.geojson"
)

// MockProvider serves canned matrix and directions answers and counts calls.
type MockProvider struct {
	mu sync.Mutex

	MatrixResult  *ports.MatrixResult
	MatrixErr     error
	Geometry      *geojson.Geometry
	DirectionsErr error

	MatrixCalls     int
	DirectionsCalls int
	LastLocations   []domain.Coordinates
}

func NewMockProvider(distances, durations [][]float64) *MockProvider {
	return &MockProvider{
		MatrixResult: &ports.MatrixResult{
			Distances: Cells(distances),
			Durations: Cells(durations),
		},
	}
}

func (p *MockProvider) Matrix(ctx context.Context, locations []domain.Coordinates) (*ports.MatrixResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.MatrixCalls++
	p.LastLocations = append([]domain.Coordinates(nil), locations...)
	if p.MatrixErr != nil {
		return nil, p.MatrixErr
	}
	return p.MatrixResult, nil
}

func (p *MockProvider) Directions(ctx context.Context, points []domain.Coordinates) (*geojson.Geometry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.DirectionsCalls++
	p.LastLocations = append([]domain.Coordinates(nil), points...)
	if p.DirectionsErr != nil {
		return nil, p.DirectionsErr
	}
	if p.Geometry == nil {
		return nil, domain.NoRouteFound("mock.Directions")
	}
	return p.Geometry, nil
}

// Cells converts a dense matrix into the pointer form used by MatrixResult.
// A nil input yields nil, which reads as a missing field.
func Cells(m [][]float64) [][]*float64 {
	if m == nil {
		return nil
	}
	out := make([][]*float64, len(m))
	for i, row := range m {
		out[i] = make([]*float64, len(row))
		for j := range row {
			v := row[j]
			out[i][j] = &v
		}
	}
	return out
}
