package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"memomap/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// ErrUnavailable is returned while the circuit breaker refuses calls to the provider.
var ErrUnavailable = errors.New("geocoder: provider unavailable")

// BreakerConfig tunes the circuit breaker that guards the provider.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	MinRequests      uint32
	FailureThreshold float64
}

// DefaultBreakerConfig trips after 80% failures over at least 5 calls.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		MinRequests:      5,
		FailureThreshold: 0.8,
	}
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
	Breaker    BreakerConfig
	// Requests, when set, counts lookups by outcome.
	Requests *prometheus.CounterVec
}

// Client resolves coordinates to a place name with the Nominatim reverse API.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	breaker   *gobreaker.CircuitBreaker
	requests  *prometheus.CounterVec
}

// nominatimReverse is the part of the jsonv2 reverse response we read.
type nominatimReverse struct {
	Error   string `json:"error"`
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		State   string `json:"state"`
	} `json:"address"`
}

// NewClient creates a Nominatim client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	cfg := opts.Breaker
	if cfg.MinRequests == 0 {
		cfg = DefaultBreakerConfig()
	}

	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		http:      httpClient,
		requests:  opts.Requests,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "nominatim",
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < cfg.MinRequests {
					return false
				}
				return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			},
			IsSuccessful: func(err error) bool {
				// A cancelled caller says nothing about the provider's health.
				return err == nil || errors.Is(err, context.Canceled)
			},
		}),
	}
}

// ReverseGeocode resolves lat/lon to a place. It returns nil without a network
// call when the coordinates are absent, and nil when the provider knows no locality
// or region for the point.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (*models.Place, error) {
	if !models.HasCoordinates(lat, lon) {
		return nil, nil
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, lat, lon)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.observe("rejected")
			return nil, ErrUnavailable
		}
		c.observe("error")
		return nil, err
	}

	data := res.(*nominatimReverse)
	if data.Error != "" {
		c.observe("empty")
		return nil, nil
	}

	city := strings.TrimSpace(data.Address.City)
	if city == "" {
		city = strings.TrimSpace(data.Address.Town)
	}
	if city == "" {
		city = strings.TrimSpace(data.Address.Village)
	}
	state := strings.TrimSpace(data.Address.State)

	name := FormatPlace(city, state)
	if name == "" {
		c.observe("empty")
		return nil, nil
	}

	c.observe("ok")
	return &models.Place{City: city, State: state, Name: name}, nil
}

func (c *Client) fetch(ctx context.Context, lat, lon float64) (*nominatimReverse, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	u := c.baseURL + "/reverse?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("geocoder: failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	log.Debug().Float64("lat", lat).Float64("lon", lon).Msg("nominatim reverse lookup")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoder: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geocoder: nominatim returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var data nominatimReverse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("geocoder: failed to decode response: %w", err)
	}
	return &data, nil
}

func (c *Client) observe(outcome string) {
	if c.requests != nil {
		c.requests.WithLabelValues(outcome).Inc()
	}
}

// FormatPlace joins the non-empty locality and region as "city, state".
func FormatPlace(city, state string) string {
	city = strings.TrimSpace(city)
	state = strings.TrimSpace(state)
	switch {
	case city != "" && state != "":
		return city + ", " + state
	case city != "":
		return city
	default:
		return state
	}
}
