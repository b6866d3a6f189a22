package domain

import "time"

// Video is the document-store record for a single YouTube video.
// Records are created on add, never updated in place, and removed on delete.
type Video struct {
	VideoID     string    `gorm:"type:text;primaryKey" bson:"video_id" json:"id"`
	Title       string    `gorm:"type:text" bson:"title" json:"title"`
	Thumbnail   string    `gorm:"type:text" bson:"thumbnail" json:"thumbnail"`
	Description string    `gorm:"type:text" bson:"description" json:"description"`
	URL         string    `gorm:"type:text;not null" bson:"url" json:"url"`
	Transcript  string    `gorm:"type:text" bson:"transcript" json:"transcript,omitempty"`
	CreatedAt   time.Time `gorm:"index:idx_videos_created_at" bson:"created_at" json:"created_at"`
}

// TableName returns the database table name for Video.
func (Video) TableName() string {
	return "videos"
}

// VideoSummary is the API shape of a video record. The transcript is omitted.
type VideoSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Thumbnail   string    `json:"thumbnail"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Summary converts the record to its API shape.
func (v *Video) Summary() VideoSummary {
	return VideoSummary{
		ID:          v.VideoID,
		Title:       v.Title,
		URL:         v.URL,
		Thumbnail:   v.Thumbnail,
		Description: v.Description,
		CreatedAt:   v.CreatedAt,
	}
}

// VideoSource bundles everything fetched from YouTube for one URL before
// anything is persisted.
type VideoSource struct {
	VideoID     string
	URL         string
	Title       string
	Thumbnail   string
	Description string
	Transcript  string

	// MetadataDegraded is true when oEmbed failed and defaults were used.
	MetadataDegraded bool
}

// Record builds the document-store record for the source.
// Parameters:
//   - now: insert timestamp.
// Returns:
//   - *Video: record ready for insertion.
func (s *VideoSource) Record(now time.Time) *Video {
	return &Video{
		VideoID:     s.VideoID,
		Title:       s.Title,
		Thumbnail:   s.Thumbnail,
		Description: s.Description,
		URL:         s.URL,
		Transcript:  s.Transcript,
		CreatedAt:   now.UTC(),
	}
}
