package geoloc

import (
	"context"
	"sync"

	"parkview-dashboard/internal/model"
)

// Static is a Provider pinned to one coordinate, for deployments that serve a
// single venue or kiosks without a position source.
type Static struct {
	Position model.Coordinates
}

func (s Static) Current(ctx context.Context) (model.Coordinates, error) {
	return s.Position, nil
}

func (s Static) Watch(ctx context.Context) (<-chan model.Coordinates, error) {
	ch := make(chan model.Coordinates, 1)
	ch <- s.Position
	return ch, nil
}

// DeviceFeed is a Provider fed by position reports arriving from the
// rendering client. Current blocks until a report is available.
type DeviceFeed struct {
	mu   sync.Mutex
	last *model.Coordinates
	subs map[chan model.Coordinates]struct{}
}

// NewDeviceFeed creates an empty feed.
func NewDeviceFeed() *DeviceFeed {
	return &DeviceFeed{subs: make(map[chan model.Coordinates]struct{})}
}

// Report records a device fix and fans it out to any active watches. Slow
// watchers miss intermediate updates rather than blocking the report.
func (f *DeviceFeed) Report(pos model.Coordinates) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := pos
	f.last = &p
	for ch := range f.subs {
		select {
		case ch <- pos:
		default:
		}
	}
}

// Current returns the last reported fix, or waits for the first one.
func (f *DeviceFeed) Current(ctx context.Context) (model.Coordinates, error) {
	f.mu.Lock()
	if f.last != nil {
		pos := *f.last
		f.mu.Unlock()
		return pos, nil
	}
	f.mu.Unlock()

	updates, err := f.Watch(ctx)
	if err != nil {
		return model.Coordinates{}, err
	}
	select {
	case pos := <-updates:
		return pos, nil
	case <-ctx.Done():
		return model.Coordinates{}, ctx.Err()
	}
}

// Watch subscribes to incoming reports until ctx is done.
func (f *DeviceFeed) Watch(ctx context.Context) (<-chan model.Coordinates, error) {
	ch := make(chan model.Coordinates, 1)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs, ch)
		f.mu.Unlock()
	}()

	return ch, nil
}
