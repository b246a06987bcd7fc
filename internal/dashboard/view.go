package dashboard

import (
	"time"

	"parkview-dashboard/internal/model"
)

// BookingPhase labels a step of the booking state machine.
type BookingPhase string

const (
	BookingIdle         BookingPhase = "idle"
	BookingHourSelected BookingPhase = "hour-selected"
	BookingSubmitting   BookingPhase = "submitting"
	BookingSucceeded    BookingPhase = "succeeded"
	BookingFailed       BookingPhase = "failed"
)

// BookingState is the in-progress booking attached to the expanded card.
type BookingState struct {
	Phase BookingPhase `json:"phase"`
	Hour  *int         `json:"hour,omitempty"`
	Error string       `json:"error,omitempty"`
	// NavigateTo is set once on success; the client leaves the view.
	NavigateTo string `json:"navigateTo,omitempty"`
}

// Area is a selectable city filter derived from the all-lots list.
type Area struct {
	Name            string  `json:"name"`
	NearestDistance float64 `json:"nearestDistance"` // meters from current center
}

// SuggestionView pairs a suggestion with the key the client sends back to
// select it.
type SuggestionView struct {
	model.Suggestion
	Key string `json:"key"`
}

// LotView decorates a lot with the derived presentation values the cards
// show.
type LotView struct {
	model.ParkingLot
	DistanceLabel  string                 `json:"distanceLabel"`
	Availability   model.AvailabilityBand `json:"availability"`
	OccupancyRatio float64                `json:"occupancyRatio"`
}

// View is the complete state snapshot handed to the rendering client.
type View struct {
	Center         model.Coordinates `json:"center"`
	LocationNotice string            `json:"locationNotice,omitempty"`
	Lots           []LotView         `json:"lots"`
	Areas          []Area            `json:"areas"`
	Filters        model.Filters     `json:"filters"`
	Query          string            `json:"query"`
	Suggestions    []SuggestionView  `json:"suggestions"`
	Selected       *LotView          `json:"selected,omitempty"`
	Booking        BookingState      `json:"booking"`
	Loading        bool              `json:"loading"`
	Error          string            `json:"error,omitempty"`
	LastUpdated    *time.Time        `json:"lastUpdated,omitempty"`
}

func newLotView(lot model.ParkingLot) LotView {
	return LotView{
		ParkingLot:     lot,
		DistanceLabel:  model.FormatDistance(lot.Distance),
		Availability:   model.BandFor(lot.TotalSlots, lot.AvailableSlots),
		OccupancyRatio: model.OccupancyRatio(lot.TotalSlots, lot.AvailableSlots),
	}
}

// View builds a consistent snapshot of the session state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Center:         s.center,
		LocationNotice: s.locationNotice,
		Filters:        s.filters,
		Query:          s.query,
		Booking:        s.booking,
		Loading:        s.loading,
		Error:          s.fetchErr,
		Areas:          append([]Area(nil), s.areas...),
	}
	if s.lastUpdated != nil {
		t := *s.lastUpdated
		v.LastUpdated = &t
	}

	v.Suggestions = make([]SuggestionView, 0, len(s.suggestions))
	for _, sug := range s.suggestions {
		v.Suggestions = append(v.Suggestions, SuggestionView{Suggestion: sug, Key: sug.Key()})
	}

	v.Lots = make([]LotView, 0, len(s.lots))
	for _, lot := range s.lots {
		if s.filters.Area != model.AreaAll && lot.Address.City != s.filters.Area {
			continue
		}
		v.Lots = append(v.Lots, newLotView(lot))
	}

	if s.selected != nil {
		sel := newLotView(*s.selected)
		v.Selected = &sel
	}
	return v
}
