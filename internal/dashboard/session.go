// Package dashboard owns the view-state logic of the parking map dashboard:
// location acquisition, nearby-lot refresh, search and suggestions, marker
// synchronization, filters, and the booking flow. Rendering and persistence
// are injected, so all of it is testable without a map engine or a browser.
package dashboard

import (
	"context"
	"log"
	"sync"
	"time"

	"parkview-dashboard/config"
	"parkview-dashboard/internal/geo"
	"parkview-dashboard/internal/geocode"
	"parkview-dashboard/internal/geoloc"
	"parkview-dashboard/internal/model"
	"parkview-dashboard/internal/prefs"
)

// LotService is the slice of the backend client the session needs.
type LotService interface {
	NearbyLots(ctx context.Context, center model.Coordinates, radiusMeters int) ([]model.ParkingLot, error)
	AllLots(ctx context.Context) ([]model.ParkingLot, error)
	SearchLots(ctx context.Context, query string, limit int) ([]model.ParkingLot, error)
	Book(ctx context.Context, lotID string, hour int) error
}

// GeocodeService is the free-text geocoder seam.
type GeocodeService interface {
	Search(ctx context.Context, query string, limit int, viewport *geo.BoundingBox) ([]geocode.Place, error)
}

// Deps are the collaborators a session is built from.
type Deps struct {
	Config   *config.Config
	Lots     LotService
	Geocoder GeocodeService
	Locator  *geoloc.Acquirer
	Feed     *geoloc.DeviceFeed
	Prefs    prefs.Store
	Renderer MapRenderer
}

// Session is one user's dashboard. All mutable state is behind mu; renderer
// calls are made outside the lock.
type Session struct {
	id       string
	cfg      *config.Config
	lotsAPI  LotService
	geocoder GeocodeService
	locator  *geoloc.Acquirer
	feed     *geoloc.DeviceFeed
	store    prefs.Store
	renderer MapRenderer

	mu             sync.Mutex
	center         model.Coordinates
	locationNotice string
	filters        model.Filters
	lots           []model.ParkingLot
	allLots        []model.ParkingLot
	areas          []Area
	selected       *model.ParkingLot
	query          string
	suggestions    []model.Suggestion
	suggestGen     int
	debounce       *time.Timer
	viewport       *geo.BoundingBox
	loading        bool
	fetchErr       string
	lastUpdated    *time.Time
	hasFitOnce     bool
	booking        BookingState
}

// NewSession builds a session with persisted filters loaded and the center
// parked on the fallback coordinate until acquisition settles.
func NewSession(id string, deps Deps) *Session {
	renderer := deps.Renderer
	if renderer == nil {
		renderer = NopRenderer{}
	}
	s := &Session{
		id:       id,
		cfg:      deps.Config,
		lotsAPI:  deps.Lots,
		geocoder: deps.Geocoder,
		locator:  deps.Locator,
		feed:     deps.Feed,
		store:    deps.Prefs,
		renderer: renderer,
		filters:  prefs.LoadFilters(context.Background(), deps.Prefs),
		center:   deps.Locator.Fallback(),
		booking:  BookingState{Phase: BookingIdle},
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Start performs the initial load: acquire a position, then fetch the nearby
// list and the all-lots list.
func (s *Session) Start(ctx context.Context) {
	s.applyFix(s.locator.Locate(ctx))
	s.RefreshNearby(ctx, false)
	s.RefreshAllLots(ctx)
}

// Run drives the background refresh loop until ctx is done. Background
// refreshes are always silent.
func (s *Session) Run(ctx context.Context) {
	timer := time.NewTimer(s.cfg.Refresh.Interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			s.teardown()
			return
		case <-timer.C:
			s.RefreshNearby(ctx, true)
			timer.Reset(s.cfg.Refresh.Interval)
		}
	}
}

// Locate re-runs the two-phase acquisition and refetches around the result.
func (s *Session) Locate(ctx context.Context) geoloc.Fix {
	fix := s.applyFix(s.locator.Locate(ctx))
	s.RefreshNearby(ctx, false)
	return fix
}

func (s *Session) applyFix(fix geoloc.Fix) geoloc.Fix {
	s.mu.Lock()
	s.center = fix.Position
	s.locationNotice = fix.Reason
	s.mu.Unlock()
	s.renderer.SetUserPosition(fix.Position)
	return fix
}

// ReportPosition records a device fix pushed by the rendering client and
// recenters on it.
func (s *Session) ReportPosition(ctx context.Context, pos model.Coordinates) {
	if s.feed != nil {
		s.feed.Report(pos)
	}
	s.mu.Lock()
	s.center = pos
	s.locationNotice = ""
	s.mu.Unlock()
	s.renderer.SetUserPosition(pos)
	s.RefreshNearby(ctx, true)
}

// ReportViewport records the map viewport used to bias geocoding.
func (s *Session) ReportViewport(b geo.BoundingBox) {
	s.mu.Lock()
	s.viewport = &b
	s.mu.Unlock()
}

// RefreshNearby fetches lots around the current center. Silent mode leaves
// the loading flag and the surfaced error untouched; a silent failure is only
// logged. An overlapping slower response can still land after a newer one;
// that race is accepted, see DESIGN.md.
func (s *Session) RefreshNearby(ctx context.Context, silent bool) {
	s.mu.Lock()
	if !silent {
		s.loading = true
		s.fetchErr = ""
	}
	center := s.center
	radius := s.filters.RadiusMeters()
	s.mu.Unlock()

	lots, err := s.lotsAPI.NearbyLots(ctx, center, radius)
	now := time.Now().UTC()

	s.mu.Lock()
	if !silent {
		s.loading = false
	}
	if err != nil {
		if silent {
			log.Printf("session %s: silent nearby refresh failed: %v", s.id, err)
		} else {
			s.fetchErr = "Could not load nearby parking. Tap retry to try again."
		}
		s.mu.Unlock()
		return
	}
	s.lots = lots
	s.lastUpdated = &now
	s.mu.Unlock()

	s.renderer.SetUserPosition(center)
}

// RefreshAllLots fetches the unfiltered lot list, rebuilds the marker layer,
// derives the area filter options, and fits the viewport on the very first
// population only. Failures keep the previous markers and are logged, never
// surfaced.
func (s *Session) RefreshAllLots(ctx context.Context) {
	lots, err := s.lotsAPI.AllLots(ctx)
	if err != nil {
		log.Printf("session %s: all-lots fetch failed: %v", s.id, err)
		return
	}

	s.mu.Lock()
	s.allLots = lots
	s.areas = deriveAreas(lots, s.center)
	firstFit := !s.hasFitOnce && len(lots) > 0
	if firstFit {
		s.hasFitOnce = true
	}
	s.mu.Unlock()

	s.renderer.SetMarkers(lots)
	if firstFit {
		s.renderer.FitToMarkers()
	}
}

// SetFilters normalizes, persists, and applies the filters. A radius change
// triggers a silent refetch; area filtering is purely client-side.
func (s *Session) SetFilters(ctx context.Context, f model.Filters) model.Filters {
	f = f.Normalize()
	s.mu.Lock()
	radiusChanged := f.RadiusKm != s.filters.RadiusKm
	s.filters = f
	s.mu.Unlock()

	if err := prefs.SaveFilters(ctx, s.store, f); err != nil {
		log.Printf("session %s: failed to persist filters: %v", s.id, err)
	}
	if radiusChanged {
		s.RefreshNearby(ctx, true)
	}
	return f
}

// SelectLot marks a lot as selected, resetting any booking in progress.
// Returns false when the ID matches nothing the session knows about.
func (s *Session) SelectLot(lotID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	lot := s.findLot(lotID)
	if lot == nil {
		return false
	}
	s.selected = lot
	s.booking = BookingState{Phase: BookingIdle}
	return true
}

// Deselect closes the expanded card, discarding booking state.
func (s *Session) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
	s.booking = BookingState{Phase: BookingIdle}
}

// findLot looks up a lot in the nearby list first, then the all-lots list.
// Callers hold mu.
func (s *Session) findLot(lotID string) *model.ParkingLot {
	for i := range s.lots {
		if s.lots[i].ID == lotID {
			lot := s.lots[i]
			return &lot
		}
	}
	for i := range s.allLots {
		if s.allLots[i].ID == lotID {
			lot := s.allLots[i]
			return &lot
		}
	}
	return nil
}

// DirectionsURL builds the external maps handoff URL for a known lot, with
// the current center as the origin.
func (s *Session) DirectionsURL(lotID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lot := s.findLot(lotID)
	if lot == nil {
		return "", false
	}
	return lot.DirectionsURL(s.center), true
}

// DismissError clears the surfaced fetch error.
func (s *Session) DismissError() {
	s.mu.Lock()
	s.fetchErr = ""
	s.mu.Unlock()
}

func (s *Session) teardown() {
	s.mu.Lock()
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
	s.mu.Unlock()
}
