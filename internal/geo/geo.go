// Package geo holds the small amount of spherical geometry the dashboard
// needs: great-circle distances and viewport bounding boxes.
package geo

import (
	"fmt"
	"math"

	"parkview-dashboard/internal/model"
)

const earthRadiusMeters = 6371000

// Haversine returns the great-circle distance between two points in meters.
func Haversine(a, b model.Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// BoundingBox is an axis-aligned lat/lon box, typically the map viewport.
type BoundingBox struct {
	MinLat float64 `json:"minLat"`
	MinLon float64 `json:"minLon"`
	MaxLat float64 `json:"maxLat"`
	MaxLon float64 `json:"maxLon"`
}

// Viewbox renders the box in Nominatim's viewbox parameter order
// (left, top, right, bottom).
func (b BoundingBox) Viewbox() string {
	return fmt.Sprintf("%f,%f,%f,%f", b.MinLon, b.MaxLat, b.MaxLon, b.MinLat)
}
