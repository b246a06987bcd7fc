package dashboard

import (
	"context"
	"sync"
	"time"

	"parkview-dashboard/config"
	"parkview-dashboard/internal/geo"
	"parkview-dashboard/internal/geocode"
	"parkview-dashboard/internal/geoloc"
	"parkview-dashboard/internal/model"
	"parkview-dashboard/internal/prefs"
)

// fakeLots is a scriptable LotService that counts calls.
type fakeLots struct {
	mu sync.Mutex

	nearby      []model.ParkingLot
	nearbyErr   error
	nearbyCalls int
	lastRadius  int

	all    []model.ParkingLot
	allErr error

	searchResults []model.ParkingLot
	searchErr     error

	bookErr  error
	bookings []string
}

func (f *fakeLots) NearbyLots(ctx context.Context, center model.Coordinates, radiusMeters int) ([]model.ParkingLot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nearbyCalls++
	f.lastRadius = radiusMeters
	if f.nearbyErr != nil {
		return nil, f.nearbyErr
	}
	return append([]model.ParkingLot(nil), f.nearby...), nil
}

func (f *fakeLots) AllLots(ctx context.Context) ([]model.ParkingLot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.allErr != nil {
		return nil, f.allErr
	}
	return append([]model.ParkingLot(nil), f.all...), nil
}

func (f *fakeLots) SearchLots(ctx context.Context, query string, limit int) ([]model.ParkingLot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	results := append([]model.ParkingLot(nil), f.searchResults...)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (f *fakeLots) Book(ctx context.Context, lotID string, hour int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bookErr != nil {
		return f.bookErr
	}
	f.bookings = append(f.bookings, lotID)
	return nil
}

func (f *fakeLots) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nearbyCalls
}

// fakeGeocoder is a scriptable GeocodeService.
type fakeGeocoder struct {
	mu           sync.Mutex
	places       []geocode.Place
	err          error
	lastViewport *geo.BoundingBox
}

func (f *fakeGeocoder) Search(ctx context.Context, query string, limit int, viewport *geo.BoundingBox) ([]geocode.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastViewport = viewport
	if f.err != nil {
		return nil, f.err
	}
	places := append([]geocode.Place(nil), f.places...)
	if len(places) > limit {
		places = places[:limit]
	}
	return places, nil
}

// recordingRenderer captures marker layer calls for assertions.
type recordingRenderer struct {
	mu            sync.Mutex
	markerSets    int
	userPositions []model.Coordinates
	searchMarkers []model.Coordinates
	fits          int
}

func (r *recordingRenderer) SetMarkers(lots []model.ParkingLot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markerSets++
}

func (r *recordingRenderer) SetUserPosition(pos model.Coordinates) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userPositions = append(r.userPositions, pos)
}

func (r *recordingRenderer) SetSearchMarker(pos *model.Coordinates) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pos != nil {
		r.searchMarkers = append(r.searchMarkers, *pos)
	}
}

func (r *recordingRenderer) FitToMarkers() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fits++
}

func (r *recordingRenderer) fitCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fits
}

func (r *recordingRenderer) markerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.markerSets
}

func lotAt(id, name, city string, lat, lng float64, total, available int) model.ParkingLot {
	return model.ParkingLot{
		ID:   id,
		Name: name,
		Address: model.Address{
			Street: "1 Test Road",
			City:   city,
			State:  "Gujarat",
		},
		Location: model.GeoPoint{
			Type:        "Point",
			Coordinates: []float64{lng, lat},
		},
		TotalSlots:     total,
		AvailableSlots: available,
	}
}

func sessViewport() geo.BoundingBox {
	return geo.BoundingBox{MinLat: 22.9, MinLon: 72.4, MaxLat: 23.1, MaxLon: 72.7}
}

func newTestSession(lots *fakeLots, geocoder *fakeGeocoder) (*Session, *recordingRenderer, *prefs.MemoryStore) {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.Search.Debounce = 5 * time.Millisecond
	cfg.Location.FallbackLatitude = 23.0225
	cfg.Location.FallbackLongitude = 72.5714

	center := model.Coordinates{Latitude: 23.0225, Longitude: 72.5714}
	renderer := &recordingRenderer{}
	store := prefs.NewMemoryStore()
	sess := NewSession("test-session", Deps{
		Config:   cfg,
		Lots:     lots,
		Geocoder: geocoder,
		Locator:  geoloc.New(geoloc.Static{Position: center}, cfg.Location),
		Prefs:    store,
		Renderer: renderer,
	})
	return sess, renderer, store
}
