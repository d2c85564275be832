package models

// LatLng is a point in map coordinates.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	SouthWest LatLng `json:"southWest"`
	NorthEast LatLng `json:"northEast"`
}

// Extend grows the box to include p.
func (b *Bounds) Extend(p LatLng) {
	if p.Lat < b.SouthWest.Lat {
		b.SouthWest.Lat = p.Lat
	}
	if p.Lng < b.SouthWest.Lng {
		b.SouthWest.Lng = p.Lng
	}
	if p.Lat > b.NorthEast.Lat {
		b.NorthEast.Lat = p.Lat
	}
	if p.Lng > b.NorthEast.Lng {
		b.NorthEast.Lng = p.Lng
	}
}

// Contains reports whether p lies inside the box, edges included.
func (b Bounds) Contains(p LatLng) bool {
	return p.Lat >= b.SouthWest.Lat && p.Lat <= b.NorthEast.Lat &&
		p.Lng >= b.SouthWest.Lng && p.Lng <= b.NorthEast.Lng
}

// Viewport is what the map should show. Bounds, when set, takes precedence over Zoom.
type Viewport struct {
	Center LatLng  `json:"center"`
	Zoom   int     `json:"zoom"`
	Bounds *Bounds `json:"bounds,omitempty"`
}

// Popup is the summary shown when a marker is clicked.
type Popup struct {
	CreatorName  string `json:"creatorName"`
	CreatorURL   string `json:"creatorUrl"`
	AvatarURL    string `json:"avatarUrl"`
	MemoURL      string `json:"memoUrl"`
	CreateTime   string `json:"createTime"`
	LocationName string `json:"locationName"`
	Content      string `json:"content"`
}

// Marker is one pin on the map.
type Marker struct {
	MemoName  string `json:"memoName"`
	CreatorID int32  `json:"creatorId"`
	IconURL   string `json:"iconUrl"`
	Position  LatLng `json:"position"`
	Open      bool   `json:"open"`
	Popup     Popup  `json:"popup"`
}

// Line connects two consecutive memos of the same creator.
type Line struct {
	Key       string `json:"key"`
	CreatorID int32  `json:"creatorId"`
	From      LatLng `json:"from"`
	To        LatLng `json:"to"`
	Color     string `json:"color"`
	Weight    int    `json:"weight"`
}
