// Package registry holds the hand-curated list of facilities that the
// matrix build runs over. Order is significant: index i is node i in
// every matrix row and column.
package registry

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"hospital-route-service/internal/domain"

	"github.com/paulmach/orb"
)

//go:embed kupang_hospitals.json
var kupangHospitals []byte

const Notes = "Kupang hospital network - input data for TSP optimization with GA, SA and DE"

// RoadClassLegend describes each road class for the dataset meta block.
var RoadClassLegend = map[domain.RoadClass]string{
	domain.RoadArterialPrimary:   "Main city road with fast access (Jl. El Tari, Jl. Timor Raya)",
	domain.RoadArterialSecondary: "Connector road between districts",
	domain.RoadLocal:             "Neighbourhood/residential road",
}

// Default returns the embedded Kupang hospital registry.
func Default() ([]domain.Node, error) {
	nodes, err := parse(kupangHospitals)
	if err != nil {
		return nil, fmt.Errorf("registry: embedded data: %w", err)
	}
	return nodes, nil
}

// LoadFile reads a registry from a JSON file in the embedded format.
func LoadFile(path string) ([]domain.Node, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: read %q: %w", path, err)
	}
	nodes, err := parse(b)
	if err != nil {
		return nil, fmt.Errorf("registry: %q: %w", path, err)
	}
	return nodes, nil
}

func parse(b []byte) ([]domain.Node, error) {
	var nodes []domain.Node
	if err := json.Unmarshal(b, &nodes); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if err := Validate(nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// Validate enforces the registry invariants: at least two nodes, ids equal
// to their index, non-empty names, valid coordinates and road classes.
func Validate(nodes []domain.Node) error {
	if len(nodes) < 2 {
		return fmt.Errorf("validate registry: need at least 2 nodes, got %d", len(nodes))
	}

	var errs []error
	for i, n := range nodes {
		if n.ID != i {
			errs = append(errs, fmt.Errorf("index %d: id %d is not dense/ordered", i, n.ID))
		}
		if strings.TrimSpace(n.Name) == "" {
			errs = append(errs, fmt.Errorf("index %d: name is empty", i))
		}
		if err := n.Coordinates().Validate(); err != nil {
			errs = append(errs, fmt.Errorf("index %d, %s: %w", i, n, err))
		}
		if !n.RoadClass.Valid() {
			errs = append(errs, fmt.Errorf("index %d, %s: unknown road class %q", i, n, n.RoadClass))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("validate registry: %w", errors.Join(errs...))
	}
	return nil
}

// Locations projects nodes to their coordinates, preserving index order.
func Locations(nodes []domain.Node) []domain.Coordinates {
	out := make([]domain.Coordinates, len(nodes))
	for i, n := range nodes {
		out[i] = n.Coordinates()
	}
	return out
}

// BBox returns [minLon, minLat, maxLon, maxLat] over all nodes.
func BBox(nodes []domain.Node) []float64 {
	if len(nodes) == 0 {
		return nil
	}
	mp := make(orb.MultiPoint, 0, len(nodes))
	for _, n := range nodes {
		mp = append(mp, n.Coordinates().Point())
	}
	b := mp.Bound()
	return []float64{b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()}
}
