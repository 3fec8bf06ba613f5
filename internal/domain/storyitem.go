package domain

import (
	"strings"
	"time"
)

// StoryItem is one slide within a story. OrderIndex is zero-based and unique
// per story; it defines the playback sequence. DurationMs is the requested
// display time and may be absent, the playback layer normalizes it.
type StoryItem struct {
	ID         string
	StoryID    string
	OrderIndex int
	MediaURL   *string
	DurationMs *int64
	Caption    *string
	MimeType   *string
	CreatedAt  time.Time
}

// IsImage reports whether the item renders as an image slide. Anything
// without an image/* mime type renders as a text card.
func (i StoryItem) IsImage() bool {
	return i.MimeType != nil && strings.HasPrefix(*i.MimeType, "image/")
}
