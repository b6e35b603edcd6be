package model

import "time"

type Source string

const (
	SourceExternal Source = "external"
	SourceUploaded Source = "uploaded"
)

type VideoID string

type ChannelID string

type Video struct {
	ID              VideoID   `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ThumbnailURL    string    `json:"thumbnailUrl"`
	PublishedAt     time.Time `json:"publishedAt"`
	Duration        string    `json:"duration"`
	DurationSeconds int64     `json:"durationSeconds"`
	ViewCount       string    `json:"viewCount"`
	LikeCount       int64     `json:"likeCount"`
	CommentCount    int64     `json:"commentCount"`
	StarRating      float64   `json:"starRating"`
	ChannelName     string    `json:"channelName"`
	ChannelID       ChannelID `json:"channelId"`
	Source          Source    `json:"source"`
	VideoURL        string    `json:"videoUrl,omitempty"`
}

const (
	UnknownChannel   = "Unknown Channel"
	UntitledUpload   = "Untitled Upload"
	PlaceholderThumb = "/placeholder.svg"
)

// PersistedRow is one row of the persisted additions table. Only uploaded rows
// carry metadata, external rows are resolved against YouTube on every build.
type PersistedRow struct {
	ID              VideoID
	Source          Source
	AddedAt         time.Time
	Title           string
	ChannelName     string
	ThumbnailURL    string
	Description     string
	PublishedAt     time.Time
	ViewCount       string
	CommentCount    int64
	DurationSeconds int64
	FileURL         string
}

func (r PersistedRow) Video() Video {
	v := Video{
		ID:              r.ID,
		Title:           r.Title,
		Description:     r.Description,
		ThumbnailURL:    r.ThumbnailURL,
		PublishedAt:     r.PublishedAt,
		DurationSeconds: r.DurationSeconds,
		Duration:        FormatDuration(r.DurationSeconds),
		ViewCount:       r.ViewCount,
		CommentCount:    r.CommentCount,
		ChannelName:     r.ChannelName,
		Source:          SourceUploaded,
		VideoURL:        r.FileURL,
	}
	if v.Title == "" {
		v.Title = UntitledUpload
	}
	if v.ChannelName == "" {
		v.ChannelName = UnknownChannel
	}
	if v.ThumbnailURL == "" {
		v.ThumbnailURL = PlaceholderThumb
	}
	if v.PublishedAt.IsZero() {
		v.PublishedAt = r.AddedAt
	}
	if v.ViewCount == "" {
		v.ViewCount = "0"
	}

	return v
}
