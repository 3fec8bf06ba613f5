package domain

import "time"

// Story is one ephemeral content unit posted by a school. A nil ClassID means
// the story is visible organization-wide rather than scoped to a single class.
type Story struct {
	ID        string
	OrgID     string
	ClassID   *string
	AuthorID  *string
	Title     *string
	Caption   *string
	Public    bool
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the story is past its expiration at the given time.
func (s Story) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// DisplayTitle returns the title to show while the story's items are still
// loading, falling back to the caption.
func (s Story) DisplayTitle() string {
	if s.Title != nil && *s.Title != "" {
		return *s.Title
	}
	if s.Caption != nil {
		return *s.Caption
	}
	return ""
}
