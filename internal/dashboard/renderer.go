package dashboard

import "parkview-dashboard/internal/model"

// MapRenderer is the rendering engine seam. The session drives it with the
// full desired marker state; how pins, popups, and viewport fitting are drawn
// is entirely the renderer's business.
type MapRenderer interface {
	// SetMarkers replaces the whole parking-lot marker layer.
	SetMarkers(lots []model.ParkingLot)
	// SetUserPosition moves the persistent user marker.
	SetUserPosition(pos model.Coordinates)
	// SetSearchMarker moves the search-result marker, or removes it when nil.
	SetSearchMarker(pos *model.Coordinates)
	// FitToMarkers fits the viewport to the current marker layer.
	FitToMarkers()
}

// NopRenderer discards all rendering calls. Used when the thin client does
// its own map drawing from view snapshots.
type NopRenderer struct{}

func (NopRenderer) SetMarkers([]model.ParkingLot)      {}
func (NopRenderer) SetUserPosition(model.Coordinates)  {}
func (NopRenderer) SetSearchMarker(*model.Coordinates) {}
func (NopRenderer) FitToMarkers()                      {}
