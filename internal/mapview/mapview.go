// Package mapview derives what the memo map shows from a list of memos:
// the viewport, one marker per memo with coordinates, the creator filter
// options and per-creator chronological path lines.
package mapview

import (
	"fmt"
	"net/url"
	"sort"
	"unicode/utf8"

	"memomap/internal/models"
)

const (
	// DefaultZoom is the zoom used when no bounds are fitted.
	DefaultZoom = 13
	// DefaultIcon is the marker icon for creators without an avatar.
	DefaultIcon = "/logo.webp"
	// FallbackColor colors the lines of creators whose avatar color is unknown.
	FallbackColor = "gray"
	// LineWeight is the stroke width of path lines.
	LineWeight = 3

	popupContentLimit = 160
	timeLayout        = "2006-01-02 15:04:05"
)

// DefaultCenter is shown when there is nothing to center on.
var DefaultCenter = models.LatLng{Lat: 51.505, Lng: -0.09}

// Defaults is the fallback view.
type Defaults struct {
	Center models.LatLng
	Zoom   int
}

// Eligible returns the memos that can be placed on the map.
func Eligible(memos []*models.MapMemo) []*models.MapMemo {
	out := make([]*models.MapMemo, 0, len(memos))
	for _, m := range memos {
		if m != nil && m.Location.HasCoordinates() {
			out = append(out, m)
		}
	}
	return out
}

func position(m *models.MapMemo) models.LatLng {
	return models.LatLng{Lat: m.Location.Latitude, Lng: m.Location.Longitude}
}

// ComputeViewport centers on the selected memo when it has coordinates.
// Otherwise it centers on the mean of all eligible memos and fits their bounds.
// With nothing eligible it returns the defaults.
func ComputeViewport(memos []*models.MapMemo, selected string, d Defaults) models.Viewport {
	if d.Zoom == 0 {
		d.Zoom = DefaultZoom
	}
	view := models.Viewport{Center: d.Center, Zoom: d.Zoom}

	eligible := Eligible(memos)
	if selected != "" {
		for _, m := range eligible {
			if m.Name == selected {
				view.Center = position(m)
				return view
			}
		}
	}
	if len(eligible) == 0 {
		return view
	}

	first := position(eligible[0])
	bounds := models.Bounds{SouthWest: first, NorthEast: first}
	var sumLat, sumLng float64
	for _, m := range eligible {
		p := position(m)
		sumLat += p.Lat
		sumLng += p.Lng
		bounds.Extend(p)
	}
	n := float64(len(eligible))
	view.Center = models.LatLng{Lat: sumLat / n, Lng: sumLng / n}
	view.Bounds = &bounds
	return view
}

// Markers creates one marker per eligible memo. The selected memo's marker is open.
func Markers(memos []*models.MapMemo, selected string) []models.Marker {
	eligible := Eligible(memos)
	markers := make([]models.Marker, 0, len(eligible))
	for _, m := range eligible {
		icon := m.AvatarURL
		if icon == "" {
			icon = DefaultIcon
		}
		markers = append(markers, models.Marker{
			MemoName:  m.Name,
			CreatorID: m.CreatorID,
			IconURL:   icon,
			Position:  position(m),
			Open:      selected != "" && m.Name == selected,
			Popup: models.Popup{
				CreatorName:  m.CreatorName,
				CreatorURL:   "/u/" + url.PathEscape(m.CreatorName),
				AvatarURL:    m.AvatarURL,
				MemoURL:      "/m/" + url.PathEscape(m.Name),
				CreateTime:   formatTime(m),
				LocationName: m.Location.Name,
				Content:      truncate(m.Content, popupContentLimit),
			},
		})
	}
	return markers
}

func formatTime(m *models.MapMemo) string {
	if m.CreateTime.IsZero() {
		return ""
	}
	return m.CreateTime.Format(timeLayout)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit]) + "…"
}

// Users lists the distinct creators in order of first appearance.
func Users(memos []*models.MapMemo) []models.MapUser {
	seen := make(map[int32]bool)
	users := make([]models.MapUser, 0)
	for _, m := range memos {
		if m == nil || seen[m.CreatorID] {
			continue
		}
		seen[m.CreatorID] = true
		users = append(users, models.MapUser{ID: m.CreatorID, Name: m.CreatorName, AvatarURL: m.AvatarURL})
	}
	return users
}

// FilterByCreator keeps the memos of one creator. A non-positive id keeps all.
func FilterByCreator(memos []*models.MapMemo, creatorID int32) []*models.MapMemo {
	if creatorID <= 0 {
		return memos
	}
	out := make([]*models.MapMemo, 0, len(memos))
	for _, m := range memos {
		if m != nil && m.CreatorID == creatorID {
			out = append(out, m)
		}
	}
	return out
}

// Lines connects each creator's eligible memos in creation order. colors maps
// creator id to a CSS color; missing entries use FallbackColor. A positive
// creatorID restricts the result to that creator.
func Lines(memos []*models.MapMemo, colors map[int32]string, creatorID int32) []models.Line {
	byCreator := make(map[int32][]*models.MapMemo)
	var order []int32
	for _, m := range FilterByCreator(Eligible(memos), creatorID) {
		if _, ok := byCreator[m.CreatorID]; !ok {
			order = append(order, m.CreatorID)
		}
		byCreator[m.CreatorID] = append(byCreator[m.CreatorID], m)
	}

	var lines []models.Line
	for _, id := range order {
		path := byCreator[id]
		sort.SliceStable(path, func(i, j int) bool {
			return path[i].CreateTime.Before(path[j].CreateTime)
		})

		color, ok := colors[id]
		if !ok || color == "" {
			color = FallbackColor
		}
		for i := 1; i < len(path); i++ {
			prev, cur := path[i-1], path[i]
			lines = append(lines, models.Line{
				Key:       fmt.Sprintf("%d-%d", prev.ID, cur.ID),
				CreatorID: id,
				From:      position(prev),
				To:        position(cur),
				Color:     color,
				Weight:    LineWeight,
			})
		}
	}
	return lines
}

// FilterMarkers keeps the markers of one creator. A non-positive id keeps all.
func FilterMarkers(markers []models.Marker, creatorID int32) []models.Marker {
	out := make([]models.Marker, 0, len(markers))
	for _, m := range markers {
		if creatorID <= 0 || m.CreatorID == creatorID {
			out = append(out, m)
		}
	}
	return out
}

// FilterLines keeps the lines of one creator. A non-positive id keeps all.
func FilterLines(lines []models.Line, creatorID int32) []models.Line {
	out := make([]models.Line, 0, len(lines))
	for _, l := range lines {
		if creatorID <= 0 || l.CreatorID == creatorID {
			out = append(out, l)
		}
	}
	return out
}
