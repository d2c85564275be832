package models

import "time"

// MapMemo is the subset of a memo needed to place it on the map.
type MapMemo struct {
	ID          int32     `json:"id"`
	Name        string    `json:"name"`
	CreatorID   int32     `json:"creatorId"`
	CreatorName string    `json:"creatorName"`
	AvatarURL   string    `json:"avatarUrl"`
	CreateTime  time.Time `json:"createTime"`
	Content     string    `json:"content"`
	Location    *Location `json:"location,omitempty"`
}

// MapUser is a memo creator offered in the map's user filter.
type MapUser struct {
	ID        int32  `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}
