package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"hospital-route-service/internal/domain"

	"github.com/pkg/errors"
)

// FileDatasetRepository serves the dataset document produced by the matrix build.
// It never triggers regeneration.
type FileDatasetRepository struct {
	Path string
}

func NewFileDatasetRepository(path string) *FileDatasetRepository {
	return &FileDatasetRepository{Path: path}
}

// ReadRaw returns the document bytes verbatim once they are known to decode
// into a Dataset that satisfies its shape invariants.
func (r *FileDatasetRepository) ReadRaw(ctx context.Context) ([]byte, error) {
	b, err := os.ReadFile(r.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read dataset %q: %w", r.Path, domain.ErrDatasetNotFound)
		}
		return nil, fmt.Errorf("read dataset %q: %w", r.Path, err)
	}

	var ds domain.Dataset
	if err := json.Unmarshal(b, &ds); err != nil {
		return nil, fmt.Errorf("read dataset %q: %w: %v", r.Path, domain.ErrDatasetCorrupt, err)
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("read dataset %q: %w: %v", r.Path, domain.ErrDatasetCorrupt, err)
	}

	return b, nil
}

// Load decodes the stored dataset.
func (r *FileDatasetRepository) Load(ctx context.Context) (*domain.Dataset, error) {
	b, err := r.ReadRaw(ctx)
	if err != nil {
		return nil, err
	}
	var ds domain.Dataset
	if err := json.Unmarshal(b, &ds); err != nil {
		return nil, fmt.Errorf("load dataset: %w: %v", domain.ErrDatasetCorrupt, err)
	}
	return &ds, nil
}
