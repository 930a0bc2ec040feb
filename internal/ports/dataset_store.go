package ports

import (
	"context"
	"hospital-route-service/internal/domain"
)

// Persists a dataset together with its tabular mirrors, all or nothing.
type DatasetWriter interface {
	WriteAll(ctx context.Context, ds *domain.Dataset) error
}

// Read-only access to the persisted dataset document.
type DatasetReader interface {
	// Return the stored document verbatim. Errors wrap domain.ErrDatasetNotFound
	// or domain.ErrDatasetCorrupt.
	ReadRaw(ctx context.Context) ([]byte, error)
}
