package model

import (
	"fmt"
	"net/url"
)

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GeoPoint is the GeoJSON-style point attached to a lot by the backend.
// Coordinates are ordered [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// LatLng converts the GeoJSON ordering into a Coordinates value.
func (p GeoPoint) LatLng() Coordinates {
	if len(p.Coordinates) < 2 {
		return Coordinates{}
	}
	return Coordinates{Latitude: p.Coordinates[1], Longitude: p.Coordinates[0]}
}

// Address is the structured address of a parking lot.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
}

// ParkingLot is a parking facility record as served by the backend.
// It is read-only on this side; each fetch replaces the previous list
// wholesale.
type ParkingLot struct {
	ID             string   `json:"_id"`
	Name           string   `json:"name"`
	Address        Address  `json:"address"`
	Location       GeoPoint `json:"location"`
	TotalSlots     int      `json:"totalSlots"`
	AvailableSlots int      `json:"availableSlots"`
	Distance       float64  `json:"distance"` // meters, server-supplied
	CarsParked     int      `json:"carsParked"`
}

// DirectionsURL builds the external maps handoff URL for driving directions
// from origin to the lot.
func (l ParkingLot) DirectionsURL(origin Coordinates) string {
	dest := l.Location.LatLng()
	q := url.Values{}
	q.Set("api", "1")
	q.Set("origin", fmt.Sprintf("%f,%f", origin.Latitude, origin.Longitude))
	q.Set("destination", fmt.Sprintf("%f,%f", dest.Latitude, dest.Longitude))
	q.Set("travelmode", "driving")
	return "https://www.google.com/maps/dir/?" + q.Encode()
}
