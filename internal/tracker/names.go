package tracker

import (
	"context"
	"fmt"
	"strconv"

	"memomap/internal/models"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

// Resolver turns coordinates into a place. Implemented by the geocoder client.
type Resolver interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (*models.Place, error)
}

type coordinate struct {
	lat, lon float64
}

func (c coordinate) String() string {
	return strconv.FormatFloat(c.lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.lon, 'f', -1, 64)
}

// Names resolves coordinates to location names for all sessions. Identical
// coordinates are answered from an LRU cache, and concurrent lookups of the same
// point share one upstream request.
type Names struct {
	resolver Resolver
	cache    *lru.Cache[coordinate, string]
	group    singleflight.Group
	lookups  *prometheus.CounterVec
}

// NewNames creates a shared name resolver caching up to size points.
func NewNames(resolver Resolver, size int, lookups *prometheus.CounterVec) (*Names, error) {
	if size <= 0 {
		size = 1024
	}
	cache, err := lru.New[coordinate, string](size)
	if err != nil {
		return nil, fmt.Errorf("tracker: failed to create cache: %w", err)
	}
	return &Names{resolver: resolver, cache: cache, lookups: lookups}, nil
}

// Resolve returns the name for lat/lon, or "" when the point has no known name.
// It returns as soon as ctx is done; the shared lookup keeps running for other waiters.
func (n *Names) Resolve(ctx context.Context, lat, lon float64) (string, error) {
	key := coordinate{lat: lat, lon: lon}
	if name, ok := n.cache.Get(key); ok {
		n.observe("hit")
		return name, nil
	}
	n.observe("miss")

	ch := n.group.DoChan(key.String(), func() (interface{}, error) {
		place, err := n.resolver.ReverseGeocode(context.WithoutCancel(ctx), lat, lon)
		if err != nil {
			return "", err
		}
		name := ""
		if place != nil {
			name = place.Name
		}
		n.cache.Add(key, name)
		return name, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (n *Names) observe(result string) {
	if n.lookups != nil {
		n.lookups.WithLabelValues(result).Inc()
	}
}
