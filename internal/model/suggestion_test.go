package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func lotSuggestion(id, name string, lat, lng float64) Suggestion {
	lot := ParkingLot{
		ID:       id,
		Name:     name,
		Location: GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}},
	}
	return Suggestion{
		Label:    name,
		Position: Coordinates{Latitude: lat, Longitude: lng},
		Origin:   OriginLot,
		Lot:      &lot,
	}
}

func geoSuggestion(label string, lat, lng float64) Suggestion {
	return Suggestion{
		Label:    label,
		Position: Coordinates{Latitude: lat, Longitude: lng},
		Origin:   OriginGeocode,
	}
}

func TestMergeSuggestions(t *testing.T) {
	l1 := lotSuggestion("a1", "Central Garage", 23.03, 72.58)
	l2 := lotSuggestion("b2", "Station Lot", 23.04, 72.59)
	g1 := geoSuggestion("Navrangpura, Ahmedabad", 23.05, 72.56)
	l1dup := lotSuggestion("a1", "Central Garage (osm)", 23.03, 72.58)

	merged := MergeSuggestions([]Suggestion{l1, l2}, []Suggestion{g1, l1dup})

	assert.Len(t, merged, 3)
	assert.Equal(t, "Central Garage", merged[0].Label)
	assert.Equal(t, "Station Lot", merged[1].Label)
	assert.Equal(t, "Navrangpura, Ahmedabad", merged[2].Label)
}

func TestMergeSuggestions_GeocodeDedupByCoordinate(t *testing.T) {
	g1 := geoSuggestion("One", 23.050000, 72.560000)
	g2 := geoSuggestion("Two", 23.050000, 72.560000)
	g3 := geoSuggestion("Three", 23.051000, 72.560000)

	merged := MergeSuggestions(nil, []Suggestion{g1, g2, g3})

	assert.Len(t, merged, 2)
	assert.Equal(t, "One", merged[0].Label)
	assert.Equal(t, "Three", merged[1].Label)
}

func TestSuggestionKey(t *testing.T) {
	l := lotSuggestion("abc", "Lot", 1, 2)
	assert.Equal(t, "lot:abc", l.Key())

	g := geoSuggestion("Somewhere", 1.5, 2.25)
	assert.Equal(t, "1.500000,2.250000", g.Key())
}
