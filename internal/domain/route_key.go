package domain

import (
	"math"
	"strconv"
	"strings"
)

const routeKeyPrefix = "route:v1:"

// RouteKey normalizes a profile and an ordered coordinate sequence into a
// cache key. Coordinates are rounded to 6 decimals (~0.1 m); order is kept
// because A→B→C and C→B→A are different routes.
func RouteKey(profile string, points []Coordinates) string {
	var b strings.Builder
	b.WriteString(routeKeyPrefix)
	b.WriteString(profile)
	b.WriteByte(':')
	for i, p := range points {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(formatCoord(p.Lon))
		b.WriteByte(',')
		b.WriteString(formatCoord(p.Lat))
	}
	return b.String()
}

func formatCoord(v float64) string {
	r := math.Round(v*1e6) / 1e6
	if r == 0 {
		r = 0 // fold -0
	}
	return strconv.FormatFloat(r, 'f', 6, 64)
}
