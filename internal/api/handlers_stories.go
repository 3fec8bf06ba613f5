package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samvera-app/samvera-stories/internal/feed"
	"github.com/samvera-app/samvera-stories/internal/repositories/story"
	apperrors "github.com/samvera-app/samvera-stories/pkg/errors"
)

type createItemRequest struct {
	MediaURL   *string `json:"media_url"`
	DurationMs *int64  `json:"duration_ms"`
	Caption    *string `json:"caption"`
	MimeType   *string `json:"mime_type"`
}

type createStoryRequest struct {
	OrgID     string              `json:"org_id" binding:"required"`
	ClassID   *string             `json:"class_id"`
	AuthorID  *string             `json:"author_id"`
	Title     *string             `json:"title"`
	Caption   *string             `json:"caption"`
	Public    bool                `json:"public"`
	ExpiresAt *time.Time          `json:"expires_at"`
	Items     []createItemRequest `json:"items"`
}

func (s *Server) listStories(c *gin.Context) {
	orgID := c.Query("org_id")
	if orgID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "org_id is required"})
		return
	}

	stories, err := s.feed.ListStories(c.Request.Context(), orgID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stories": stories})
}

func (s *Server) listStoryItems(c *gin.Context) {
	items, err := s.feed.ListStoryItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) createStory(c *gin.Context) {
	var req createStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid story payload"})
		return
	}

	input := feed.CreateStoryInput{
		OrgID:     req.OrgID,
		ClassID:   req.ClassID,
		AuthorID:  req.AuthorID,
		Title:     req.Title,
		Caption:   req.Caption,
		Public:    req.Public,
		ExpiresAt: req.ExpiresAt,
	}
	for _, it := range req.Items {
		input.Items = append(input.Items, feed.CreateItemInput{
			MediaURL:   it.MediaURL,
			DurationMs: it.DurationMs,
			Caption:    it.Caption,
			MimeType:   it.MimeType,
		})
	}

	created, err := s.feed.CreateStory(c.Request.Context(), input)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"story": created})
}

func (s *Server) deleteStory(c *gin.Context) {
	if err := s.feed.DeleteStory(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case apperrors.Is(err, story.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
	case apperrors.IsInvalidInput(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
