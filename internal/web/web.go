// Package web holds the server-rendered pages of the map UI.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/url"

	"memomap/internal/badge"
	"memomap/internal/editor"
	"memomap/internal/models"
)

//go:embed templates/*.html
var files embed.FS

// Template names.
const (
	MapTemplate  = "map.html"
	MemoTemplate = "memo.html"
)

// MapPage is rendered by map.html. The page fetches its markers from APIURL.
type MapPage struct {
	Title           string
	APIURL          string
	Selected        string
	TileURL         string
	TileAttribution string
	Center          models.LatLng
	Zoom            int
}

// MemoPage is rendered by memo.html.
type MemoPage struct {
	Memo          *models.MapMemo
	CreatorURL    string
	CreateTime    string
	LocationBadge template.HTML
	MapBadge      template.HTML
	RenameURL     string
	// Editor is the first phase of the inline location field.
	Editor editor.View
}

// NewMemoPage builds the memo page with both location badges. With editing set
// the location field starts as a focused input instead of a label.
func NewMemoPage(memo *models.MapMemo, linker *badge.Linker, editing bool) MemoPage {
	page := MemoPage{
		Memo:          memo,
		CreatorURL:    "/u/" + url.PathEscape(memo.CreatorName),
		CreateTime:    memo.CreateTime.Format("2006-01-02 15:04:05"),
		LocationBadge: badge.Render(linker.ForLocation(memo.Location)),
		MapBadge:      badge.Render(badge.ForMemo(memo)),
		RenameURL:     "/api/memos/" + url.PathEscape(memo.Name) + "/location",
	}
	if memo.Location != nil {
		field := editor.New(memo.Location.Name, memo.Location.Name, nil)
		if editing {
			field.Click()
		}
		page.Editor = field.View()
	}
	return page
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").ParseFS(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("web: failed to parse templates: %w", err)
	}
	return tmpl, nil
}
