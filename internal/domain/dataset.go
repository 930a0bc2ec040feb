package domain

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrDatasetCorrupt  = errors.New("dataset corrupt")
)

// Meta carries generation provenance for a Dataset.
type Meta struct {
	GeneratedBy string               `json:"generated_by"`
	GeneratedAt time.Time            `json:"generated_at"`
	RunID       string               `json:"run_id"`
	Profile     string               `json:"profile"`
	NLocations  int                  `json:"n_locations"`
	Notes       string               `json:"notes"`
	RoadClasses map[RoadClass]string `json:"road_classes"`
	BBox        []float64            `json:"bbox,omitempty"`
}

// Matrices holds the two N×N pairwise matrices, indexed [origin][destination].
// They are not assumed symmetric.
type Matrices struct {
	DistancesM [][]float64 `json:"distances_m"`
	DurationsS [][]float64 `json:"durations_s"`
}

// Dataset is the persisted aggregate produced by the matrix build and served read-only.
type Dataset struct {
	Meta      Meta            `json:"meta"`
	Hospitals map[string]Node `json:"hospitals"`
	Matrices  Matrices        `json:"matrices"`
}

// Validate checks len(hospitals) == len(distances) == len(durations) == N,
// square matrices, and that every hospital key matches its id.
func (d *Dataset) Validate() error {
	n := len(d.Hospitals)
	if n == 0 {
		return errors.New("dataset has no hospitals")
	}
	if d.Meta.NLocations != 0 && d.Meta.NLocations != n {
		return fmt.Errorf("meta n_locations=%d but %d hospitals", d.Meta.NLocations, n)
	}
	for i := 0; i < n; i++ {
		h, ok := d.Hospitals[strconv.Itoa(i)]
		if !ok {
			return fmt.Errorf("missing hospital with id %d", i)
		}
		if h.ID != i {
			return fmt.Errorf("hospital key %d holds id %d", i, h.ID)
		}
	}
	if err := checkSquare("distances_m", d.Matrices.DistancesM, n); err != nil {
		return err
	}
	if err := checkSquare("durations_s", d.Matrices.DurationsS, n); err != nil {
		return err
	}
	return nil
}

func checkSquare(name string, m [][]float64, n int) error {
	if len(m) != n {
		return fmt.Errorf("%s has %d rows, want %d", name, len(m), n)
	}
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("%s row %d has %d columns, want %d", name, i, len(row), n)
		}
	}
	return nil
}
