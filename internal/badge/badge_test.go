package badge

import (
	"strings"
	"testing"

	"memomap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinker_ForLocation(t *testing.T) {
	l := NewLinker("")

	tests := []struct {
		name     string
		location *models.Location
		expected *Badge
	}{
		{
			name:     "absent location",
			location: nil,
			expected: nil,
		},
		{
			name:     "location with coordinates",
			location: &models.Location{Name: "Tokyo", Latitude: 35.681236, Longitude: 139.767125},
			expected: &Badge{
				Label:    "Tokyo",
				Href:     "https://www.google.com/maps/search/?api=1&query=35.681236,139.767125",
				External: true,
			},
		},
		{
			name:     "location without coordinates has no click target",
			location: &models.Location{Name: "Somewhere"},
			expected: &Badge{Label: "Somewhere"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, l.ForLocation(tt.location))
		})
	}
}

func TestLinker_CustomTemplate(t *testing.T) {
	l := NewLinker("https://www.openstreetmap.org/?mlat=%s&mlon=%s")
	assert.Equal(t, "https://www.openstreetmap.org/?mlat=1.5&mlon=-2", l.MapURL(1.5, -2))
}

func TestForMemo(t *testing.T) {
	tests := []struct {
		name     string
		memo     *models.MapMemo
		expected *Badge
	}{
		{
			name: "nil memo",
		},
		{
			name: "memo without location",
			memo: &models.MapMemo{Name: "abc"},
		},
		{
			name: "memo with unnamed location",
			memo: &models.MapMemo{Name: "abc", Location: &models.Location{Latitude: 1, Longitude: 2}},
		},
		{
			name: "memo with named location",
			memo: &models.MapMemo{Name: "memos/42", Location: &models.Location{Name: "Cafe", Latitude: 1, Longitude: 2}},
			expected: &Badge{
				Label:           "Cafe",
				Href:            "/map/memos%2F42",
				StopPropagation: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ForMemo(tt.memo))
		})
	}
}

func TestRender(t *testing.T) {
	assert.Empty(t, Render(nil))

	external := string(Render(&Badge{Label: "Tokyo", Href: "https://example.com/?a=1&b=2", External: true}))
	assert.True(t, strings.HasPrefix(external, `<a class="location-badge" href="https://example.com/?a=1&amp;b=2" target="_blank"`))
	assert.NotContains(t, external, "stopPropagation")

	inApp := string(Render(ForMemo(&models.MapMemo{Name: "m1", Location: &models.Location{Name: "<Cafe>"}})))
	assert.Contains(t, inApp, `href="/map/m1"`)
	assert.Contains(t, inApp, `onclick="event.stopPropagation()"`)
	assert.Contains(t, inApp, "&lt;Cafe&gt;")

	plain := string(Render(&Badge{Label: "Nowhere"}))
	require.NotEmpty(t, plain)
	assert.NotContains(t, plain, "href")
	assert.NotContains(t, plain, "onclick")
}
