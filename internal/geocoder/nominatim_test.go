package geocoder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"memomap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "memomap-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestClient(baseURL string) *Client {
	return NewClient(Options{
		BaseURL:    baseURL,
		UserAgent:  "memomap-test",
		HTTPClient: &http.Client{Timeout: 2 * time.Second},
	})
}

func TestClient_ReverseGeocode(t *testing.T) {
	tests := []struct {
		name        string
		lat         float64
		lon         float64
		status      int
		body        string
		expected    *models.Place
		expectCalls int32
		expectError bool
	}{
		{
			name:        "null island is absent",
			lat:         0,
			lon:         0,
			expectCalls: 0,
		},
		{
			name:        "out of range latitude is absent",
			lat:         91,
			lon:         10,
			expectCalls: 0,
		},
		{
			name:        "city and state",
			lat:         40.7,
			lon:         -74.0,
			status:      http.StatusOK,
			body:        `{"address":{"city":"New York","state":"New York"}}`,
			expected:    &models.Place{City: "New York", State: "New York", Name: "New York, New York"},
			expectCalls: 1,
		},
		{
			name:        "fields are trimmed before use",
			lat:         39.8,
			lon:         -89.6,
			status:      http.StatusOK,
			body:        `{"address":{"city":"  ","town":" Springfield ","state":" Illinois "}}`,
			expected:    &models.Place{City: "Springfield", State: "Illinois", Name: "Springfield, Illinois"},
			expectCalls: 1,
		},
		{
			name:        "state only has no leading separator",
			lat:         44.1,
			lon:         -103.2,
			status:      http.StatusOK,
			body:        `{"address":{"state":"South Dakota"}}`,
			expected:    &models.Place{State: "South Dakota", Name: "South Dakota"},
			expectCalls: 1,
		},
		{
			name:        "town used when city missing",
			lat:         51.2,
			lon:         0.1,
			status:      http.StatusOK,
			body:        `{"address":{"town":"Sevenoaks","state":"England"}}`,
			expected:    &models.Place{City: "Sevenoaks", State: "England", Name: "Sevenoaks, England"},
			expectCalls: 1,
		},
		{
			name:        "equator is a valid coordinate",
			lat:         0,
			lon:         32.5,
			status:      http.StatusOK,
			body:        `{"address":{"state":"Central Region"}}`,
			expected:    &models.Place{State: "Central Region", Name: "Central Region"},
			expectCalls: 1,
		},
		{
			name:        "provider cannot geocode",
			lat:         30.0,
			lon:         -40.0,
			status:      http.StatusOK,
			body:        `{"error":"Unable to geocode"}`,
			expectCalls: 1,
		},
		{
			name:        "no locality or region",
			lat:         30.0,
			lon:         -40.0,
			status:      http.StatusOK,
			body:        `{"address":{"country":"Nowhere"}}`,
			expectCalls: 1,
		},
		{
			name:        "provider error status",
			lat:         40.7,
			lon:         -74.0,
			status:      http.StatusInternalServerError,
			body:        `oops`,
			expectCalls: 1,
			expectError: true,
		},
		{
			name:        "malformed body",
			lat:         40.7,
			lon:         -74.0,
			status:      http.StatusOK,
			body:        `{"address":`,
			expectCalls: 1,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := newTestServer(t, tt.status, tt.body)
			client := newTestClient(srv.URL)

			result, err := client.ReverseGeocode(context.Background(), tt.lat, tt.lon)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
			assert.Equal(t, tt.expectCalls, atomic.LoadInt32(calls))
		})
	}
}

func TestClient_ReverseGeocode_QueryParameters(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("lat") + "," + r.URL.Query().Get("lon")
		_, _ = w.Write([]byte(`{"address":{"city":"Tokyo"}}`))
	}))
	defer srv.Close()

	place, err := newTestClient(srv.URL+"/").ReverseGeocode(context.Background(), 35.681236, 139.767125)
	require.NoError(t, err)
	assert.Equal(t, "35.681236,139.767125", got)
	assert.Equal(t, "Tokyo", place.Name)
}

func TestClient_ReverseGeocode_BreakerOpens(t *testing.T) {
	srv, calls := newTestServer(t, http.StatusBadGateway, "down")
	client := NewClient(Options{
		BaseURL:   srv.URL,
		UserAgent: "memomap-test",
		Breaker: BreakerConfig{
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			MinRequests:      2,
			FailureThreshold: 0.5,
		},
	})

	for i := 0; i < 2; i++ {
		_, err := client.ReverseGeocode(context.Background(), 40.7, -74.0)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}

	_, err := client.ReverseGeocode(context.Background(), 40.7, -74.0)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestFormatPlace(t *testing.T) {
	assert.Equal(t, "Paris, Île-de-France", FormatPlace("Paris", "Île-de-France"))
	assert.Equal(t, "Paris", FormatPlace("Paris", ""))
	assert.Equal(t, "Île-de-France", FormatPlace("", "Île-de-France"))
	assert.Equal(t, "", FormatPlace(" ", ""))
}
