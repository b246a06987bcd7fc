package backend

import "parkview-dashboard/internal/model"

// lotsResponse is the envelope every lot-listing endpoint replies with.
type lotsResponse struct {
	ParkingLots []model.ParkingLot `json:"parkingLots"`
}

// APIError carries a backend-provided failure message so callers can surface
// it verbatim (booking errors in particular).
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "parking service request failed"
}
