package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkview-dashboard/config"
	"parkview-dashboard/internal/backend"
	"parkview-dashboard/internal/dashboard"
	"parkview-dashboard/internal/geo"
	"parkview-dashboard/internal/geocode"
	"parkview-dashboard/internal/model"
	"parkview-dashboard/internal/prefs"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeParkingAPI emulates the external parking REST service.
func fakeParkingAPI(t *testing.T) *httptest.Server {
	lots := []model.ParkingLot{
		{
			ID:             "lot-1",
			Name:           "Central Plaza",
			Address:        model.Address{Street: "1 CG Road", City: "Ahmedabad", State: "Gujarat"},
			Location:       model.GeoPoint{Type: "Point", Coordinates: []float64{72.58, 23.03}},
			TotalSlots:     100,
			AvailableSlots: 60,
			Distance:       820,
		},
		{
			ID:             "lot-2",
			Name:           "Riverfront East",
			Address:        model.Address{Street: "4 Ashram Road", City: "Ahmedabad", State: "Gujarat"},
			Location:       model.GeoPoint{Type: "Point", Coordinates: []float64{72.57, 23.01}},
			TotalSlots:     50,
			AvailableSlots: 2,
			Distance:       1630,
		},
	}

	writeLots := func(w http.ResponseWriter, list []model.ParkingLot) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string][]model.ParkingLot{"parkingLots": list})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/parkinglots", func(w http.ResponseWriter, r *http.Request) {
		writeLots(w, lots)
	})
	mux.HandleFunc("GET /api/parkinglots/all", func(w http.ResponseWriter, r *http.Request) {
		writeLots(w, lots)
	})
	mux.HandleFunc("GET /api/parkinglots/search", func(w http.ResponseWriter, r *http.Request) {
		q := strings.ToLower(r.URL.Query().Get("q"))
		var matched []model.ParkingLot
		for _, lot := range lots {
			if strings.Contains(strings.ToLower(lot.Name), q) {
				matched = append(matched, lot)
			}
		}
		writeLots(w, matched)
	})
	mux.HandleFunc("POST /api/parkinglots/{id}/book", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "lot-2" {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"message": "Slot already booked for this hour"})
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// stubGeocoder satisfies dashboard.GeocodeService without the network.
type stubGeocoder struct {
	places []geocode.Place
}

func (s stubGeocoder) Search(ctx context.Context, query string, limit int, viewport *geo.BoundingBox) ([]geocode.Place, error) {
	return s.places, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, prefs.Store) {
	parking := fakeParkingAPI(t)

	cfg := &config.Config{}
	cfg.Backend.BaseURL = parking.URL
	cfg.ApplyDefaults()
	cfg.Server.RateLimitPerSec = 1000

	store := prefs.NewMemoryStore()
	lots := backend.New(cfg.Backend, func() string { return prefs.Token(context.Background(), store) })
	geocoder := stubGeocoder{places: []geocode.Place{{
		DisplayName: "Ellisbridge, Ahmedabad",
		City:        "Ahmedabad",
		Position:    model.Coordinates{Latitude: 23.02, Longitude: 72.56},
	}}}

	sessions := dashboard.NewManager(cfg, lots, geocoder, store)
	t.Cleanup(sessions.Close)
	return NewRouter(cfg, sessions, store), store
}

func do(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := do(t, router, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)

	// Feed the device position so the initial acquisition settles.
	w = do(t, router, http.MethodPost, "/api/sessions/"+resp.SessionID+"/position",
		gin.H{"latitude": 23.0225, "longitude": 72.5714})
	require.Equal(t, http.StatusOK, w.Code)
	return resp.SessionID
}

func getView(t *testing.T, router *gin.Engine, id string) dashboard.View {
	t.Helper()
	w := do(t, router, http.MethodGet, "/api/sessions/"+id+"/view", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var v dashboard.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestSessionLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router)

	require.Eventually(t, func() bool {
		return len(getView(t, router, id).Lots) == 2
	}, 2*time.Second, 20*time.Millisecond)

	v := getView(t, router, id)
	assert.Equal(t, "Central Plaza", v.Lots[0].Name)
	assert.Equal(t, "820 m", v.Lots[0].DistanceLabel)
	assert.Equal(t, "1.63 km", v.Lots[1].DistanceLabel)
	assert.NotNil(t, v.LastUpdated)

	w := do(t, router, http.MethodDelete, "/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, http.MethodGet, "/api/sessions/"+id+"/view", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownSession(t *testing.T) {
	router, _ := newTestRouter(t)
	w := do(t, router, http.MethodGet, "/api/sessions/ghost/view", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFiltersEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router)

	w := do(t, router, http.MethodPut, "/api/sessions/"+id+"/filters",
		gin.H{"radiusKm": 10, "area": "Ahmedabad"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Filters model.Filters `json:"filters"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 10.0, resp.Filters.RadiusKm)
	assert.Equal(t, "Ahmedabad", resp.Filters.Area)
}

func TestSearchEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router)

	w := do(t, router, http.MethodPost, "/api/sessions/"+id+"/search",
		gin.H{"query": "riverfront"})
	require.Equal(t, http.StatusOK, w.Code)

	var v dashboard.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	require.NotNil(t, v.Selected)
	assert.Equal(t, "lot-2", v.Selected.ID)
	// The lot match recentered the map on the lot.
	assert.InDelta(t, 23.01, v.Center.Latitude, 1e-9)
}

func TestBookingFlow(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router)

	require.Eventually(t, func() bool {
		return len(getView(t, router, id).Lots) == 2
	}, 2*time.Second, 20*time.Millisecond)

	// Submitting before selecting anything is rejected as a no-op.
	w := do(t, router, http.MethodPost, "/api/sessions/"+id+"/booking", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, http.MethodPost, "/api/sessions/"+id+"/select", gin.H{"lotId": "lot-1"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodPut, "/api/sessions/"+id+"/booking/hour", gin.H{"hour": 14})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodPost, "/api/sessions/"+id+"/booking", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var v dashboard.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, dashboard.BookingSucceeded, v.Booking.Phase)
	assert.Equal(t, "/bookings", v.Booking.NavigateTo)

	// The cross-view flag reads true once, then clears.
	w = do(t, router, http.MethodGet, "/api/bookings/changed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"changed": true}`, w.Body.String())

	w = do(t, router, http.MethodGet, "/api/bookings/changed", nil)
	assert.JSONEq(t, `{"changed": false}`, w.Body.String())
}

func TestBookingFlow_ServerRejection(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router)

	require.Eventually(t, func() bool {
		return len(getView(t, router, id).Lots) == 2
	}, 2*time.Second, 20*time.Millisecond)

	w := do(t, router, http.MethodPost, "/api/sessions/"+id+"/select", gin.H{"lotId": "lot-2"})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, router, http.MethodPut, "/api/sessions/"+id+"/booking/hour", gin.H{"hour": 9})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodPost, "/api/sessions/"+id+"/booking", nil)
	require.Equal(t, http.StatusBadGateway, w.Code)
	var v dashboard.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, dashboard.BookingFailed, v.Booking.Phase)
	assert.Equal(t, "Slot already booked for this hour", v.Booking.Error)
	// The selection survives for a retry.
	require.NotNil(t, v.Selected)
}

func TestDirectionsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router)

	require.Eventually(t, func() bool {
		return len(getView(t, router, id).Lots) == 2
	}, 2*time.Second, 20*time.Millisecond)

	w := do(t, router, http.MethodGet, fmt.Sprintf("/api/sessions/%s/lots/lot-1/directions", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.URL, "https://www.google.com/maps/dir/")

	w = do(t, router, http.MethodGet, fmt.Sprintf("/api/sessions/%s/lots/ghost/directions", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHourValidation(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router)

	require.Eventually(t, func() bool {
		return len(getView(t, router, id).Lots) == 2
	}, 2*time.Second, 20*time.Millisecond)

	w := do(t, router, http.MethodPost, "/api/sessions/"+id+"/select", gin.H{"lotId": "lot-1"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodPut, "/api/sessions/"+id+"/booking/hour", gin.H{"hour": 99})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
