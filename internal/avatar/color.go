package avatar

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"memomap/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	maxAvatarBytes = 5 << 20
	// maxAvatarPixels bounds the decoded size; larger avatars get the fallback color.
	maxAvatarPixels = 4 << 20
	// sampleSide is the side of the grid AverageColor samples at most.
	sampleSide = 64
)

// ErrNotAllowed is returned for avatar URLs outside the site and its allowed hosts.
var ErrNotAllowed = errors.New("avatar: url not allowed")

// Options configures a Colorizer.
type Options struct {
	// BaseURL resolves site-relative avatar URLs such as /logo.webp.
	BaseURL    string
	HTTPClient *http.Client
	Fallback   string
	// Concurrency bounds parallel avatar downloads.
	Concurrency int
	// AllowedHosts lists extra hosts absolute avatar URLs may point at. The
	// BaseURL host is always allowed.
	AllowedHosts []string
	Outcomes     *prometheus.CounterVec
}

// Colorizer derives a display color per user from the average pixel of their avatar.
type Colorizer struct {
	base        *url.URL
	client      *http.Client
	fallback    string
	concurrency int
	allowed     map[string]bool
	outcomes    *prometheus.CounterVec
}

// NewColorizer creates a Colorizer.
func NewColorizer(opts Options) *Colorizer {
	c := &Colorizer{
		client:      opts.HTTPClient,
		fallback:    opts.Fallback,
		concurrency: opts.Concurrency,
		allowed:     make(map[string]bool),
		outcomes:    opts.Outcomes,
	}
	for _, h := range opts.AllowedHosts {
		c.allowed[strings.ToLower(h)] = true
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: 10 * time.Second}
	}
	if c.fallback == "" {
		c.fallback = "gray"
	}
	if c.concurrency <= 0 {
		c.concurrency = 4
	}
	if opts.BaseURL != "" {
		if u, err := url.Parse(opts.BaseURL); err == nil {
			c.base = u
			c.allowed[strings.ToLower(u.Host)] = true
		}
	}
	return c
}

// Colors returns a CSS color for every user. Users whose avatar is missing or
// cannot be loaded get the fallback color.
func (c *Colorizer) Colors(ctx context.Context, users []models.MapUser) map[int32]string {
	colors := make(map[int32]string, len(users))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, u := range users {
		u := u
		g.Go(func() error {
			col, err := c.Color(gctx, u.AvatarURL)
			if err != nil {
				log.Debug().Err(err).Int32("user_id", u.ID).Msg("avatar color unavailable")
				col = c.fallback
				c.observe("fallback")
			} else {
				c.observe("ok")
			}
			mu.Lock()
			colors[u.ID] = col
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return colors
}

// Color loads the avatar at rawURL and returns its average color as rgb(r,g,b).
func (c *Colorizer) Color(ctx context.Context, rawURL string) (string, error) {
	if rawURL == "" {
		return "", errors.New("avatar: no avatar url")
	}

	var data []byte
	var err error
	if strings.HasPrefix(rawURL, "data:") {
		data, err = decodeDataURL(rawURL)
	} else {
		data, err = c.download(ctx, rawURL)
	}
	if err != nil {
		return "", err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("avatar: failed to decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxAvatarPixels {
		return "", fmt.Errorf("avatar: image too large: %dx%d", cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("avatar: failed to decode image: %w", err)
	}
	r, g, b := AverageColor(img)
	return fmt.Sprintf("rgb(%d,%d,%d)", r, g, b), nil
}

func (c *Colorizer) download(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("avatar: invalid url: %w", err)
	}
	if !u.IsAbs() {
		if c.base == nil {
			return nil, fmt.Errorf("avatar: relative url %q without base url", rawURL)
		}
		u = c.base.ResolveReference(u)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || !c.allowed[strings.ToLower(u.Host)] {
		return nil, fmt.Errorf("%w: %s", ErrNotAllowed, u.Redacted())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("avatar: failed to build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("avatar: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("avatar: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAvatarBytes))
	if err != nil {
		return nil, fmt.Errorf("avatar: failed to read body: %w", err)
	}
	return data, nil
}

// decodeDataURL handles base64 data URLs, the form avatars are usually stored in.
func decodeDataURL(raw string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return nil, errors.New("avatar: malformed data url")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, errors.New("avatar: data url is not base64 encoded")
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > maxAvatarBytes {
		return nil, errors.New("avatar: data url too large")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("avatar: invalid base64 payload: %w", err)
	}
	return data, nil
}

// AverageColor returns the mean straight-alpha RGB, rounded down. Images wider or
// taller than 64 pixels are sampled on an evenly spaced grid.
func AverageColor(img image.Image) (r, g, b uint8) {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return 0, 0, 0
	}
	stepX := (bounds.Dx() + sampleSide - 1) / sampleSide
	stepY := (bounds.Dy() + sampleSide - 1) / sampleSide

	var sr, sg, sb, n uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			n++
			px := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			sr += uint64(px.R)
			sg += uint64(px.G)
			sb += uint64(px.B)
		}
	}
	return uint8(sr / n), uint8(sg / n), uint8(sb / n)
}

func (c *Colorizer) observe(outcome string) {
	if c.outcomes != nil {
		c.outcomes.WithLabelValues(outcome).Inc()
	}
}
