package dashboard

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"parkview-dashboard/internal/model"
)

// ErrNoResults is returned by an explicit search that matched neither a lot
// nor a geocodable place.
var ErrNoResults = errors.New("no matches found")

// suggestFetchTimeout bounds one background suggestion cycle.
const suggestFetchTimeout = 10 * time.Second

// UpdateQuery records a keystroke. Any pending suggestion task is cancelled
// and, when the query is long enough, a new one is scheduled after the
// debounce interval. Short queries clear the list immediately.
func (s *Session) UpdateQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.query = query
	s.suggestGen++
	gen := s.suggestGen
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
	if len(strings.TrimSpace(query)) < s.cfg.Search.MinQueryChars {
		s.suggestions = nil
		return
	}
	s.debounce = time.AfterFunc(s.cfg.Search.Debounce, func() {
		s.suggest(gen, query)
	})
}

// suggest runs one suggestion cycle: a backend lot-name search and a geocoder
// lookup in parallel, merged lot-first and deduplicated. A cycle that was
// superseded by later keystrokes is dropped on arrival. Lookup failures
// contribute nothing, so a fully failed cycle silently clears the list.
func (s *Session) suggest(gen int, query string) {
	ctx, cancel := context.WithTimeout(context.Background(), suggestFetchTimeout)
	defer cancel()

	s.mu.Lock()
	viewport := s.viewport
	limit := s.cfg.Search.MaxSuggestions
	s.mu.Unlock()

	var (
		wg      sync.WaitGroup
		lotSugs []model.Suggestion
		geoSugs []model.Suggestion
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		lots, err := s.lotsAPI.SearchLots(ctx, query, limit)
		if err != nil {
			log.Printf("session %s: lot suggestion lookup failed: %v", s.id, err)
			return
		}
		for i := range lots {
			lot := lots[i]
			lotSugs = append(lotSugs, model.Suggestion{
				Label:    lot.Name,
				Position: lot.Location.LatLng(),
				Origin:   model.OriginLot,
				Lot:      &lot,
			})
		}
	}()
	go func() {
		defer wg.Done()
		places, err := s.geocoder.Search(ctx, query, limit, viewport)
		if err != nil {
			log.Printf("session %s: geocode suggestion lookup failed: %v", s.id, err)
			return
		}
		for _, p := range places {
			geoSugs = append(geoSugs, model.Suggestion{
				Label:    p.DisplayName,
				Position: p.Position,
				Origin:   model.OriginGeocode,
			})
		}
	}()
	wg.Wait()

	merged := model.MergeSuggestions(lotSugs, geoSugs)

	s.mu.Lock()
	if gen == s.suggestGen {
		s.suggestions = merged
	}
	s.mu.Unlock()
}

// Search is the explicit search action: the single best lot match wins,
// otherwise the single best geocode match. Either way the terminal effect is
// a recenter plus a nearby refetch; a lot match also preselects the lot.
func (s *Session) Search(ctx context.Context, query string) error {
	s.cancelPendingSuggest()

	lots, err := s.lotsAPI.SearchLots(ctx, query, 1)
	if err != nil {
		log.Printf("session %s: lot search failed, falling back to geocoder: %v", s.id, err)
	}
	if len(lots) > 0 {
		lot := lots[0]
		s.applySearchResult(ctx, lot.Location.LatLng(), &lot)
		return nil
	}

	s.mu.Lock()
	viewport := s.viewport
	s.mu.Unlock()

	places, err := s.geocoder.Search(ctx, query, 1, viewport)
	if err != nil {
		return err
	}
	if len(places) == 0 {
		return ErrNoResults
	}
	s.applySearchResult(ctx, places[0].Position, nil)
	return nil
}

// SelectSuggestion resolves a suggestion from the current list by its dedup
// key and applies the same recenter-and-refetch effect as an explicit search.
func (s *Session) SelectSuggestion(ctx context.Context, key string) error {
	s.mu.Lock()
	var picked *model.Suggestion
	for i := range s.suggestions {
		if s.suggestions[i].Key() == key {
			sug := s.suggestions[i]
			picked = &sug
			break
		}
	}
	s.mu.Unlock()

	if picked == nil {
		return ErrNoResults
	}
	s.applySearchResult(ctx, picked.Position, picked.Lot)
	return nil
}

func (s *Session) applySearchResult(ctx context.Context, pos model.Coordinates, lot *model.ParkingLot) {
	s.mu.Lock()
	s.center = pos
	s.suggestions = nil
	if lot != nil {
		l := *lot
		s.selected = &l
		s.booking = BookingState{Phase: BookingIdle}
	}
	s.mu.Unlock()

	p := pos
	s.renderer.SetSearchMarker(&p)
	s.RefreshNearby(ctx, false)
}

func (s *Session) cancelPendingSuggest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestGen++
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
}
