// Package prefs is the persisted key-value state the dashboard keeps across
// sessions: nearby filters, the API bearer token, and the cross-view
// "bookings changed" signal flag.
package prefs

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parkview-dashboard/internal/model"
)

// Storage keys.
const (
	KeyRadiusKm        = "filter.radius_km"
	KeyArea            = "filter.area"
	KeyToken           = "auth.token"
	KeyBookingsChanged = "signal.bookings_changed"
)

// Store is the injected key-value abstraction over persistent storage.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Preference is one persisted key-value row.
type Preference struct {
	Key       string    `gorm:"primaryKey;size:128"`
	Value     string    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// gormStore implements Store on a gorm database.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a database-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Get(ctx context.Context, key string) (string, bool, error) {
	var p Preference
	err := s.db.WithContext(ctx).First(&p, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return p.Value, true, nil
}

func (s *gormStore) Set(ctx context.Context, key, value string) error {
	p := Preference{Key: key, Value: value}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&p).Error
}

func (s *gormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&Preference{}, "key = ?", key).Error
}

// MemoryStore is an in-process Store for tests and single-shot runs.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]string)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// LoadFilters reads the persisted filters, falling back to defaults for
// missing or malformed values.
func LoadFilters(ctx context.Context, s Store) model.Filters {
	f := model.DefaultFilters()
	if raw, ok, err := s.Get(ctx, KeyRadiusKm); err == nil && ok {
		if km, err := strconv.ParseFloat(raw, 64); err == nil {
			f.RadiusKm = km
		}
	}
	if raw, ok, err := s.Get(ctx, KeyArea); err == nil && ok && raw != "" {
		f.Area = raw
	}
	return f.Normalize()
}

// SaveFilters persists the filters under their storage keys.
func SaveFilters(ctx context.Context, s Store, f model.Filters) error {
	if err := s.Set(ctx, KeyRadiusKm, strconv.FormatFloat(f.RadiusKm, 'f', -1, 64)); err != nil {
		return err
	}
	return s.Set(ctx, KeyArea, f.Area)
}

// Token returns the stored bearer token, or "".
func Token(ctx context.Context, s Store) string {
	v, _, _ := s.Get(ctx, KeyToken)
	return v
}

// SignalBookingsChanged raises the cross-view refresh flag. Other views poll
// and clear it.
func SignalBookingsChanged(ctx context.Context, s Store) error {
	return s.Set(ctx, KeyBookingsChanged, "1")
}

// ConsumeBookingsChanged reports and clears the refresh flag.
func ConsumeBookingsChanged(ctx context.Context, s Store) (bool, error) {
	_, ok, err := s.Get(ctx, KeyBookingsChanged)
	if err != nil || !ok {
		return false, err
	}
	return true, s.Delete(ctx, KeyBookingsChanged)
}
