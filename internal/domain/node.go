package domain

import "fmt"

// RoadClass describes the classification of the road nearest to a facility.
// Informational only.
type RoadClass string

const (
	RoadArterialPrimary   RoadClass = "arterial_primary"
	RoadArterialSecondary RoadClass = "arterial_secondary"
	RoadLocal             RoadClass = "local_road"
)

func (rc RoadClass) Valid() bool {
	switch rc {
	case RoadArterialPrimary, RoadArterialSecondary, RoadLocal:
		return true
	}
	return false
}

// Represents a single facility in the registry.
// ID is dense (0..N-1) and doubles as the row/column index of every matrix.
type Node struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lng"`
	Category  string    `json:"type"`
	RoadClass RoadClass `json:"road_class"`
}

func (n Node) Coordinates() Coordinates { return Coordinates{Lon: n.Lon, Lat: n.Lat} }

func (n Node) String() string {
	return fmt.Sprintf("node %d (%s)", n.ID, n.Name)
}
