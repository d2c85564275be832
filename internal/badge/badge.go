package badge

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strconv"

	"memomap/internal/models"
)

// DefaultMapLink opens a public map search centered on lat,lon.
const DefaultMapLink = "https://www.google.com/maps/search/?api=1&query=%s,%s"

// Badge is a small clickable chip showing a location name.
type Badge struct {
	Label string
	// Href is empty when the chip has no click target.
	Href     string
	External bool
	// StopPropagation keeps the click from reaching an enclosing handler.
	StopPropagation bool
}

// Linker builds badges for bare locations.
type Linker struct {
	mapLink string
}

// NewLinker creates a Linker. mapLink is a format string receiving latitude and longitude.
func NewLinker(mapLink string) *Linker {
	if mapLink == "" {
		mapLink = DefaultMapLink
	}
	return &Linker{mapLink: mapLink}
}

// ForLocation returns a badge opening an external map at loc, or nil when loc is nil.
func (l *Linker) ForLocation(loc *models.Location) *Badge {
	if loc == nil {
		return nil
	}
	b := &Badge{Label: loc.Name}
	if loc.HasCoordinates() {
		b.Href = l.MapURL(loc.Latitude, loc.Longitude)
		b.External = true
	}
	return b
}

// MapURL formats the external map search link.
func (l *Linker) MapURL(lat, lon float64) string {
	return fmt.Sprintf(l.mapLink,
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lon, 'f', -1, 64))
}

// ForMemo returns a badge navigating to the in-app map scoped to memo, or nil
// when the memo has no named location.
func ForMemo(memo *models.MapMemo) *Badge {
	if memo == nil || memo.Location == nil || memo.Location.Name == "" {
		return nil
	}
	return &Badge{
		Label:           memo.Location.Name,
		Href:            MapPath(memo.Name),
		StopPropagation: true,
	}
}

// MapPath is the in-app map route for a memo; an empty name means the whole map.
func MapPath(memoName string) string {
	if memoName == "" {
		return "/map"
	}
	return "/map/" + url.PathEscape(memoName)
}

var chip = template.Must(template.New("badge").Parse(
	`{{if .Href}}<a class="location-badge" href="{{.Href}}"` +
		`{{if .External}} target="_blank" rel="noopener noreferrer"{{end}}` +
		`{{if .StopPropagation}} onclick="event.stopPropagation()"{{end}}>` +
		`<span class="location-icon" aria-hidden="true">&#x1F4CD;</span>{{.Label}}</a>` +
		`{{else}}<span class="location-badge"><span class="location-icon" aria-hidden="true">&#x1F4CD;</span>{{.Label}}</span>{{end}}`,
))

// Render returns the chip markup. A nil badge renders nothing.
func Render(b *Badge) template.HTML {
	if b == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := chip.Execute(&buf, b); err != nil {
		return ""
	}
	return template.HTML(buf.String())
}
