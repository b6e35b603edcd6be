package model

import "time"

type ChannelSummary struct {
	Name      string    `json:"name"`
	ChannelID ChannelID `json:"channelId"`
	Count     int       `json:"count"`
}

type Collection struct {
	Videos   []Video          `json:"videos"`
	Channels []ChannelSummary `json:"channels"`
}

type FeaturedThumbnail struct {
	VideoID      VideoID   `json:"videoId,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ChannelFeed is the latest uploads of one channel together with the
// channel's own snippet.
type ChannelFeed struct {
	ChannelID   ChannelID `json:"channelId"`
	Title       string    `json:"channelTitle"`
	Description string    `json:"channelDescription"`
	Videos      []Video   `json:"videos"`
}
