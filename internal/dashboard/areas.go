package dashboard

import (
	"sort"

	"parkview-dashboard/internal/geo"
	"parkview-dashboard/internal/model"
)

// areaRadiusMeters bounds which lots contribute to the area filter list.
const areaRadiusMeters = 20000

// deriveAreas groups the all-lots list by city, keeping only lots within
// areaRadiusMeters of the current center, and orders areas by the distance of
// each city's nearest lot.
func deriveAreas(lots []model.ParkingLot, center model.Coordinates) []Area {
	nearest := make(map[string]float64)
	for _, lot := range lots {
		city := lot.Address.City
		if city == "" {
			continue
		}
		d := geo.Haversine(center, lot.Location.LatLng())
		if d > areaRadiusMeters {
			continue
		}
		if cur, ok := nearest[city]; !ok || d < cur {
			nearest[city] = d
		}
	}

	areas := make([]Area, 0, len(nearest))
	for name, d := range nearest {
		areas = append(areas, Area{Name: name, NearestDistance: d})
	}
	sort.Slice(areas, func(i, j int) bool {
		if areas[i].NearestDistance == areas[j].NearestDistance {
			return areas[i].Name < areas[j].Name
		}
		return areas[i].NearestDistance < areas[j].NearestDistance
	})
	return areas
}
