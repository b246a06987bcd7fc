package model

import "fmt"

// SuggestionOrigin tags where a search suggestion came from.
type SuggestionOrigin string

const (
	OriginLot     SuggestionOrigin = "lot"
	OriginGeocode SuggestionOrigin = "geocode"
)

// Suggestion is a unified entry in the search dropdown, either a lot-name
// match from the backend or a free-text geocoder hit. Suggestions are
// transient and rebuilt on every debounce cycle.
type Suggestion struct {
	Label    string           `json:"label"`
	Position Coordinates      `json:"position"`
	Origin   SuggestionOrigin `json:"origin"`
	Lot      *ParkingLot      `json:"lot,omitempty"`
}

// Key returns the stable dedup key: the backend lot ID when the suggestion is
// lot-backed, otherwise a coordinate-pair string.
func (s Suggestion) Key() string {
	if s.Lot != nil {
		return "lot:" + s.Lot.ID
	}
	return fmt.Sprintf("%.6f,%.6f", s.Position.Latitude, s.Position.Longitude)
}

// MergeSuggestions combines lot matches and geocode matches into one list,
// lot-first, dropping any entry whose key was already seen. Input order is
// preserved on both sides of the merge.
func MergeSuggestions(lots, geocoded []Suggestion) []Suggestion {
	merged := make([]Suggestion, 0, len(lots)+len(geocoded))
	seen := make(map[string]struct{}, len(lots)+len(geocoded))
	for _, s := range lots {
		if _, dup := seen[s.Key()]; dup {
			continue
		}
		seen[s.Key()] = struct{}{}
		merged = append(merged, s)
	}
	for _, s := range geocoded {
		if _, dup := seen[s.Key()]; dup {
			continue
		}
		seen[s.Key()] = struct{}{}
		merged = append(merged, s)
	}
	return merged
}
