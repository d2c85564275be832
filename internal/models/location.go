package models

import "math"

// Location is the place attached to a memo: a free-text name and the coordinates it was captured at.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place is the result of resolving coordinates to a human-readable name.
type Place struct {
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
	Name  string `json:"name"`
}

// HasCoordinates reports whether lat/lon form a usable point.
// (0, 0) is the unset value in the memo store and counts as absent; a single
// zero component (equator, prime meridian) is a valid coordinate.
func HasCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return false
	}
	return lat != 0 || lon != 0
}

// HasCoordinates reports whether the location carries a usable point.
func (l *Location) HasCoordinates() bool {
	return l != nil && HasCoordinates(l.Latitude, l.Longitude)
}
