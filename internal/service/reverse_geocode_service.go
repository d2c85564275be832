package service

import (
	"context"
	"errors"
	"fmt"

	"memomap/internal/editor"
	"memomap/internal/models"
)

var (
	// ErrInvalidCoordinates is returned for coordinates outside the valid range.
	ErrInvalidCoordinates = errors.New("service: invalid coordinates")
	// ErrNoLocation is returned when renaming the location of a memo that has none.
	ErrNoLocation = errors.New("service: memo has no location")
)

// LocationService resolves and edits memo locations
type LocationService struct {
	geocoder Geocoder
	repo     LocationRepository
}

// Geocoder interface for dependency injection
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (*models.Place, error)
}

// LocationRepository interface for dependency injection
type LocationRepository interface {
	GetMapMemo(ctx context.Context, name string) (*models.MapMemo, error)
	UpdateLocationName(ctx context.Context, name, locationName string) error
}

// NewLocationService creates a new location service
func NewLocationService(geocoder Geocoder, repo LocationRepository) *LocationService {
	return &LocationService{geocoder: geocoder, repo: repo}
}

// ReverseGeocode resolves coordinates to a place name. It returns nil when the
// point is absent ((0, 0)) or has no known locality or region.
func (s *LocationService) ReverseGeocode(ctx context.Context, lat, lon float64) (*models.Place, error) {
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("%w: latitude %f", ErrInvalidCoordinates, lat)
	}
	if lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: longitude %f", ErrInvalidCoordinates, lon)
	}

	place, err := s.geocoder.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("service: failed to resolve location: %w", err)
	}

	return place, nil
}

// RenameLocation applies an inline edit of a memo's location name. An empty name
// keeps the stored one, so the field can never be cleared.
func (s *LocationService) RenameLocation(ctx context.Context, memoName, locationName string) (*models.MapMemo, error) {
	memo, err := s.repo.GetMapMemo(ctx, memoName)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get memo: %w", err)
	}
	if memo.Location == nil {
		return nil, ErrNoLocation
	}

	committed := editor.Commit(memo.Location.Name, memo.Location.Name, locationName)
	if committed == memo.Location.Name {
		return memo, nil
	}

	if err := s.repo.UpdateLocationName(ctx, memoName, committed); err != nil {
		return nil, fmt.Errorf("service: failed to update location name: %w", err)
	}

	memo.Location.Name = committed
	return memo, nil
}
