package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"parkview-dashboard/internal/model"
)

func TestHaversine(t *testing.T) {
	// Ahmedabad railway station to the airport, roughly 5.8 km.
	station := model.Coordinates{Latitude: 23.0270, Longitude: 72.6010}
	airport := model.Coordinates{Latitude: 23.0734, Longitude: 72.6266}

	d := Haversine(station, airport)
	assert.InDelta(t, 5770, d, 300)

	assert.Zero(t, Haversine(station, station))
}

func TestViewbox(t *testing.T) {
	box := BoundingBox{MinLat: 1, MinLon: 2, MaxLat: 3, MaxLon: 4}
	// Nominatim order: left, top, right, bottom.
	assert.Equal(t, "2.000000,3.000000,4.000000,1.000000", box.Viewbox())
}
