package tracker

import (
	"context"
	"sync"

	"memomap/internal/models"
)

// Reading is one sample from a device's geolocation stream.
type Reading struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Loading   bool    `json:"loading"`
}

// NameResolver resolves a coordinate to a location name.
type NameResolver interface {
	Resolve(ctx context.Context, lat, lon float64) (string, error)
}

// Tracker follows one device's readings and keeps the current named location.
// It only resolves when the coordinate values change, so a stream of fresh but
// identical readings costs a single lookup.
type Tracker struct {
	names NameResolver

	mu      sync.Mutex
	last    *coordinate
	current *models.Location
}

// New creates a Tracker.
func New(names NameResolver) *Tracker {
	return &Tracker{names: names}
}

// Current returns the last resolved location, or nil until one exists.
func (t *Tracker) Current() *models.Location {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.copyCurrent()
}

// Update feeds a reading and returns the current location. Loading readings and
// readings without coordinates leave the state untouched. When ctx is done
// before the name arrives, nothing is recorded.
func (t *Tracker) Update(ctx context.Context, r Reading) (*models.Location, error) {
	if r.Loading || !models.HasCoordinates(r.Latitude, r.Longitude) {
		return t.Current(), nil
	}

	point := coordinate{lat: r.Latitude, lon: r.Longitude}
	t.mu.Lock()
	if t.last != nil && *t.last == point {
		loc := t.copyCurrent()
		t.mu.Unlock()
		return loc, nil
	}
	t.mu.Unlock()

	name, err := t.names.Resolve(ctx, point.lat, point.lon)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = &point
	if name == "" {
		t.current = nil
	} else {
		t.current = &models.Location{Name: name, Latitude: point.lat, Longitude: point.lon}
	}
	return t.copyCurrent(), nil
}

func (t *Tracker) copyCurrent() *models.Location {
	if t.current == nil {
		return nil
	}
	loc := *t.current
	return &loc
}
