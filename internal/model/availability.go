package model

import "fmt"

// AvailabilityBand is the coarse label shown for a lot's fill level.
type AvailabilityBand string

const (
	BandPlenty      AvailabilityBand = "Plenty"
	BandAvailable   AvailabilityBand = "Available"
	BandModerate    AvailabilityBand = "Moderate"
	BandBusy        AvailabilityBand = "Busy"
	BandLimited     AvailabilityBand = "Limited"
	BandFillingFast AvailabilityBand = "Filling fast"
	BandAlmostFull  AvailabilityBand = "Almost full"
	BandSoldOut     AvailabilityBand = "Sold out"
)

// bandThresholds maps a lower bound of available/total to its band,
// checked in descending order.
var bandThresholds = []struct {
	min  float64
	band AvailabilityBand
}{
	{0.8, BandPlenty},
	{0.55, BandAvailable},
	{0.35, BandModerate},
	{0.22, BandBusy},
	{0.12, BandLimited},
	{0.05, BandFillingFast},
	{0, BandAlmostFull},
}

// BandFor returns the availability band for the given slot counts.
// Sold out whenever no slot is available.
func BandFor(total, available int) AvailabilityBand {
	if available <= 0 {
		return BandSoldOut
	}
	if total <= 0 {
		total = 1
	}
	ratio := float64(available) / float64(total)
	for _, t := range bandThresholds {
		if ratio >= t.min {
			return t.band
		}
	}
	return BandAlmostFull
}

// OccupancyRatio returns (total-available)/total clamped to [0,1].
// A zero or negative total counts as 1 and negative availability as 0, so a
// malformed record still renders.
func OccupancyRatio(total, available int) float64 {
	if total <= 0 {
		total = 1
	}
	if available < 0 {
		available = 0
	}
	ratio := float64(total-available) / float64(total)
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

// FormatDistance renders a distance in meters the way the lot cards show it:
// integer meters under a kilometer, kilometers to two decimals beyond.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.2f km", meters/1000)
}
