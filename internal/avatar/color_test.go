package avatar

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"memomap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// halfAndHalf is 2x1: one red pixel and one blue pixel.
func halfAndHalf() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{B: 255, A: 255})
	return img
}

func TestAverageColor(t *testing.T) {
	r, g, b := AverageColor(halfAndHalf())
	assert.Equal(t, uint8(127), r)
	assert.Equal(t, uint8(0), g)
	assert.Equal(t, uint8(127), b)

	r, g, b = AverageColor(image.NewNRGBA(image.Rect(0, 0, 0, 0)))
	assert.Equal(t, [3]uint8{0, 0, 0}, [3]uint8{r, g, b})
}

func TestColorizer_Color(t *testing.T) {
	pngBytes := encodePNG(t, halfAndHalf())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/avatar.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(pngBytes)
		case "/broken.png":
			_, _ = w.Write([]byte("not an image"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewColorizer(Options{BaseURL: srv.URL})
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)

	tests := []struct {
		name        string
		url         string
		expected    string
		expectError bool
	}{
		{name: "absolute url", url: srv.URL + "/avatar.png", expected: "rgb(127,0,127)"},
		{name: "site relative url", url: "/avatar.png", expected: "rgb(127,0,127)"},
		{name: "data url", url: dataURL, expected: "rgb(127,0,127)"},
		{name: "empty url", url: "", expectError: true},
		{name: "not found", url: "/missing.png", expectError: true},
		{name: "undecodable", url: "/broken.png", expectError: true},
		{name: "non base64 data url", url: "data:image/svg+xml,<svg/>", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Color(context.Background(), tt.url)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestColorizer_Colors(t *testing.T) {
	pngBytes := encodePNG(t, halfAndHalf())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok.png" {
			_, _ = w.Write(pngBytes)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewColorizer(Options{BaseURL: srv.URL, Fallback: "gray", Concurrency: 2})
	users := []models.MapUser{
		{ID: 1, AvatarURL: "/ok.png"},
		{ID: 2, AvatarURL: "/fail.png"},
		{ID: 3},
	}

	colors := c.Colors(context.Background(), users)

	assert.Equal(t, map[int32]string{
		1: "rgb(127,0,127)",
		2: "gray",
		3: "gray",
	}, colors)
}

func TestColorizer_RelativeWithoutBase(t *testing.T) {
	c := NewColorizer(Options{})
	_, err := c.Color(context.Background(), "/logo.png")
	assert.Error(t, err)
}

// pngHeader returns the signature and IHDR chunk of a PNG claiming width x height.
// It is enough for image.DecodeConfig.
func pngHeader(width, height uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], width)
	binary.BigEndian.PutUint32(ihdr[4:], height)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 2 // truecolor

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestColorizer_RejectsOversizedImage(t *testing.T) {
	c := NewColorizer(Options{})
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader(12000, 12000))

	_, err := c.Color(context.Background(), dataURL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")

	colors := c.Colors(context.Background(), []models.MapUser{{ID: 1, AvatarURL: dataURL}})
	assert.Equal(t, "gray", colors[1])
}

func TestAverageColor_SamplesLargeImages(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 128, 128))
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			if x < 64 {
				img.Set(x, y, color.NRGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.NRGBA{B: 255, A: 255})
			}
		}
	}

	r, g, b := AverageColor(img)
	assert.Equal(t, [3]uint8{127, 0, 127}, [3]uint8{r, g, b})
}

func TestColorizer_OffSiteURL(t *testing.T) {
	pngBytes := encodePNG(t, halfAndHalf())
	var hits atomic.Int32
	offsite := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(pngBytes)
	}))
	defer offsite.Close()

	site := httptest.NewServer(http.NotFoundHandler())
	defer site.Close()

	c := NewColorizer(Options{BaseURL: site.URL, Fallback: "gray"})
	colors := c.Colors(context.Background(), []models.MapUser{{ID: 1, AvatarURL: offsite.URL + "/a.png"}})
	assert.Equal(t, "gray", colors[1])
	assert.Equal(t, int32(0), hits.Load())

	_, err := c.Color(context.Background(), "file:///etc/passwd")
	assert.ErrorIs(t, err, ErrNotAllowed)

	allowed := NewColorizer(Options{BaseURL: site.URL, AllowedHosts: []string{offsite.Listener.Addr().String()}})
	got, err := allowed.Color(context.Background(), offsite.URL+"/a.png")
	require.NoError(t, err)
	assert.Equal(t, "rgb(127,0,127)", got)
	assert.Equal(t, int32(1), hits.Load())
}
