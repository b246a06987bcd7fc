package model

import "math"

const (
	// AreaAll disables area filtering.
	AreaAll = "all"

	MinRadiusKm     = 1.0
	MaxRadiusKm     = 25.0
	DefaultRadiusKm = 5.0

	// MinRadiusMeters is the floor applied to the radius sent to the backend.
	MinRadiusMeters = 500
)

// Filters are the user-tunable nearby filters, persisted across sessions.
type Filters struct {
	RadiusKm float64 `json:"radiusKm"`
	Area     string  `json:"area"`
}

// DefaultFilters returns the initial filter set.
func DefaultFilters() Filters {
	return Filters{RadiusKm: DefaultRadiusKm, Area: AreaAll}
}

// Normalize clamps the radius into [MinRadiusKm, MaxRadiusKm] and falls back
// to AreaAll for an empty area name.
func (f Filters) Normalize() Filters {
	if f.RadiusKm < MinRadiusKm {
		f.RadiusKm = MinRadiusKm
	}
	if f.RadiusKm > MaxRadiusKm {
		f.RadiusKm = MaxRadiusKm
	}
	if f.Area == "" {
		f.Area = AreaAll
	}
	return f
}

// RadiusMeters converts the radius for the backend query, never below
// MinRadiusMeters.
func (f Filters) RadiusMeters() int {
	m := int(math.Round(f.RadiusKm * 1000))
	if m < MinRadiusMeters {
		m = MinRadiusMeters
	}
	return m
}
