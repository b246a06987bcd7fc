package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"parkview-dashboard/config"
	"parkview-dashboard/internal/geoloc"
	"parkview-dashboard/internal/prefs"
)

// Manager owns the live dashboard sessions. Sessions expire after the
// configured idle TTL; expiry or deletion cancels the session's background
// refresh loop.
type Manager struct {
	cfg      *config.Config
	lots     LotService
	geocoder GeocodeService
	store    prefs.Store
	sessions *cache.Cache
}

type managedSession struct {
	sess   *Session
	cancel context.CancelFunc
}

// NewManager creates a session manager.
func NewManager(cfg *config.Config, lots LotService, geocoder GeocodeService, store prefs.Store) *Manager {
	ttl := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	sessions := cache.New(ttl, ttl/2)
	sessions.OnEvicted(func(id string, v interface{}) {
		v.(*managedSession).cancel()
	})
	return &Manager{
		cfg:      cfg,
		lots:     lots,
		geocoder: geocoder,
		store:    store,
		sessions: sessions,
	}
}

// Create builds a session, kicks off its initial load, and starts its
// background refresher.
func (m *Manager) Create() *Session {
	id := uuid.NewString()
	feed := geoloc.NewDeviceFeed()
	sess := NewSession(id, Deps{
		Config:   m.cfg,
		Lots:     m.lots,
		Geocoder: m.geocoder,
		Locator:  geoloc.New(feed, m.cfg.Location),
		Feed:     feed,
		Prefs:    m.store,
		Renderer: NopRenderer{},
	})

	runCtx, cancel := context.WithCancel(context.Background())
	m.sessions.Set(id, &managedSession{sess: sess, cancel: cancel}, cache.DefaultExpiration)

	go func() {
		sess.Start(runCtx)
		sess.Run(runCtx)
	}()
	return sess
}

// Get returns a live session and refreshes its idle TTL.
func (m *Manager) Get(id string) (*Session, bool) {
	v, found := m.sessions.Get(id)
	if !found {
		return nil, false
	}
	ms := v.(*managedSession)
	m.sessions.Set(id, ms, cache.DefaultExpiration)
	return ms.sess, true
}

// Delete tears a session down. Eviction handles the refresher cancellation.
func (m *Manager) Delete(id string) {
	m.sessions.Delete(id)
}

// Close cancels every live session. Flush skips eviction callbacks, so
// delete one by one.
func (m *Manager) Close() {
	for id := range m.sessions.Items() {
		m.sessions.Delete(id)
	}
}
