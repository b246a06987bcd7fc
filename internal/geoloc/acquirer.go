// Package geoloc acquires the device position. The actual position source is
// an injected Provider; the two-phase strategy (one-shot fix, then a
// continuous watch raced against a timeout) lives here.
package geoloc

import (
	"context"
	"errors"
	"time"

	"parkview-dashboard/config"
	"parkview-dashboard/internal/model"
)

// Failure taxonomy. Each maps to a distinct user-facing reason and every one
// of them degrades to the fallback coordinate, never a hard failure.
var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrUnavailable      = errors.New("location unavailable")
	ErrTimeout          = errors.New("location request timed out")
	ErrUnsupported      = errors.New("location not supported")
)

// Provider is a source of device positions.
type Provider interface {
	// Current returns a single high-accuracy fix, honoring ctx cancellation.
	Current(ctx context.Context) (model.Coordinates, error)
	// Watch streams position updates until ctx is done.
	Watch(ctx context.Context) (<-chan model.Coordinates, error)
}

// Fix is the settled result of an acquisition attempt.
type Fix struct {
	Position model.Coordinates `json:"position"`
	Fallback bool              `json:"fallback"`
	Reason   string            `json:"reason,omitempty"`
}

// Acquirer runs the two-phase acquisition strategy over a Provider.
type Acquirer struct {
	provider          Provider
	singleShotTimeout time.Duration
	watchTimeout      time.Duration
	fallback          model.Coordinates
}

// New creates an Acquirer. provider may be nil, in which case every
// acquisition settles on the fallback with an "unsupported" reason.
func New(provider Provider, cfg config.LocationConfig) *Acquirer {
	return &Acquirer{
		provider:          provider,
		singleShotTimeout: time.Duration(cfg.SingleShotTimeoutSeconds) * time.Second,
		watchTimeout:      time.Duration(cfg.WatchTimeoutSeconds) * time.Second,
		fallback: model.Coordinates{
			Latitude:  cfg.FallbackLatitude,
			Longitude: cfg.FallbackLongitude,
		},
	}
}

// Fallback returns the configured default coordinate.
func (a *Acquirer) Fallback() model.Coordinates {
	return a.fallback
}

// Locate attempts a one-shot fix and, if that fails, races a continuous
// watch against the overall watch timeout. The watch is torn down on
// settlement regardless of outcome.
func (a *Acquirer) Locate(ctx context.Context) Fix {
	if a.provider == nil {
		return a.fail(ErrUnsupported)
	}

	shotCtx, cancel := context.WithTimeout(ctx, a.singleShotTimeout)
	pos, err := a.provider.Current(shotCtx)
	cancel()
	if err == nil {
		return Fix{Position: pos}
	}

	return a.locateViaWatch(ctx, err)
}

func (a *Acquirer) locateViaWatch(ctx context.Context, shotErr error) Fix {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates, err := a.provider.Watch(watchCtx)
	if err != nil {
		return a.fail(err)
	}

	timer := time.NewTimer(a.watchTimeout)
	defer timer.Stop()

	select {
	case pos, ok := <-updates:
		if !ok {
			return a.fail(shotErr)
		}
		return Fix{Position: pos}
	case <-timer.C:
		return a.fail(ErrTimeout)
	case <-ctx.Done():
		return a.fail(ctx.Err())
	}
}

func (a *Acquirer) fail(err error) Fix {
	return Fix{Position: a.fallback, Fallback: true, Reason: Reason(err)}
}

// Reason maps an acquisition error to the message shown to the user.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "Location permission denied. Showing the default area."
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "Locating you took too long. Showing the default area."
	case errors.Is(err, ErrUnsupported):
		return "Location is not supported here. Showing the default area."
	default:
		return "Your location is unavailable. Showing the default area."
	}
}
