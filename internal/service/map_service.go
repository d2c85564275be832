package service

import (
	"context"
	"fmt"

	"memomap/internal/mapview"
	"memomap/internal/models"
)

const (
	// StatusReady means memos were loaded and at least one is on the map.
	StatusReady = "ready"
	// StatusEmpty means memos were loaded but none can be placed.
	StatusEmpty = "empty"
)

// MapMemoRepository interface for dependency injection
type MapMemoRepository interface {
	ListMapMemos(ctx context.Context) ([]*models.MapMemo, error)
	GetMapMemo(ctx context.Context, name string) (*models.MapMemo, error)
}

// Colorizer assigns each user a display color.
type Colorizer interface {
	Colors(ctx context.Context, users []models.MapUser) map[int32]string
}

// MapQuery selects what the map shows.
type MapQuery struct {
	// Memo is the name of the memo to focus, if any.
	Memo string
	// CreatorID restricts markers and lines to one creator when positive.
	CreatorID int32
	// Lines requests per-creator path lines.
	Lines bool
}

// MapState is everything the map page renders.
type MapState struct {
	Status    string           `json:"status"`
	Selected  string           `json:"selected,omitempty"`
	CreatorID int32            `json:"creatorId,omitempty"`
	Viewport  models.Viewport  `json:"viewport"`
	Markers   []models.Marker  `json:"markers"`
	Users     []models.MapUser `json:"users"`
	Lines     []models.Line    `json:"lines,omitempty"`
}

// MapService builds the memo map
type MapService struct {
	repo      MapMemoRepository
	colorizer Colorizer
	defaults  mapview.Defaults
}

// NewMapService creates a new map service
func NewMapService(repo MapMemoRepository, colorizer Colorizer, defaults mapview.Defaults) *MapService {
	return &MapService{repo: repo, colorizer: colorizer, defaults: defaults}
}

// Load fetches the located memos and derives the map. The viewport always
// reflects the whole set; the creator filter only narrows markers and lines.
func (s *MapService) Load(ctx context.Context, q MapQuery) (*MapState, error) {
	state, err := s.LoadAll(ctx, q.Memo, q.Lines)
	if err != nil {
		return nil, err
	}
	return state.Filter(q.CreatorID, q.Lines), nil
}

// LoadAll fetches the memos once and derives the unfiltered map. With lines set,
// every creator's path is colored up front so later filtering needs no fetch.
func (s *MapService) LoadAll(ctx context.Context, selected string, lines bool) (*MapState, error) {
	memos, err := s.repo.ListMapMemos(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list map memos: %w", err)
	}

	users := mapview.Users(memos)
	state := &MapState{
		Status:   StatusReady,
		Selected: selected,
		Viewport: mapview.ComputeViewport(memos, selected, s.defaults),
		Markers:  mapview.Markers(memos, selected),
		Users:    users,
	}
	if len(mapview.Eligible(memos)) == 0 {
		state.Status = StatusEmpty
	}

	if lines {
		colors := map[int32]string{}
		if s.colorizer != nil {
			colors = s.colorizer.Colors(ctx, users)
		}
		state.Lines = mapview.Lines(memos, colors, 0)
	}

	return state, nil
}

// Filter narrows a loaded map to one creator and toggles its lines. Viewport and
// users are kept as loaded; nothing is fetched again.
func (st *MapState) Filter(creatorID int32, lines bool) *MapState {
	out := *st
	out.CreatorID = creatorID
	out.Markers = mapview.FilterMarkers(st.Markers, creatorID)
	out.Lines = nil
	if lines {
		out.Lines = mapview.FilterLines(st.Lines, creatorID)
	}
	return &out
}

// GetMemo returns a single memo for display.
func (s *MapService) GetMemo(ctx context.Context, name string) (*models.MapMemo, error) {
	memo, err := s.repo.GetMapMemo(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get memo: %w", err)
	}
	return memo, nil
}
