package domain

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Immutable geographic coordinates (longitude, latitude), WGS84 decimal degrees.
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

func (c Coordinates) Point() orb.Point { return orb.Point{c.Lon, c.Lat} }

// Validate reports whether the pair is finite and inside WGS84 bounds.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) || math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) {
		return fmt.Errorf("coordinate (%v, %v) is not finite", c.Lon, c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Lon)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Lat)
	}
	return nil
}

// CoordinatesFromList converts a [lon, lat] pair.
func CoordinatesFromList(pair []float64) (Coordinates, error) {
	if len(pair) != 2 {
		return Coordinates{}, fmt.Errorf("coordinate pair must have 2 values, got %d", len(pair))
	}
	return Coordinates{Lon: pair[0], Lat: pair[1]}, nil
}
