package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storybook-server/internal/config"
	"storybook-server/internal/model"
	"storybook-server/internal/pipeline"
	"storybook-server/internal/repository"
	"storybook-server/internal/service"
)

// APIError is the standardized error response body.
type APIError struct {
	Message string `json:"message"`
}

// userIDHeader identifies the caller. Authentication itself happens
// upstream; this service trusts the header the gateway sets.
const userIDHeader = "X-User-ID"

// StoryHandler serves the story generation stream and the story CRUD routes.
type StoryHandler struct {
	pipeline    *pipeline.Pipeline
	storeOpener repository.StoreOpener
	illustrator service.PageIllustrator
	ownership   repository.StoryOwnershipStore
	cfg         *config.Config
	logger      *zap.Logger
}

func NewStoryHandler(
	p *pipeline.Pipeline,
	storeOpener repository.StoreOpener,
	illustrator service.PageIllustrator,
	ownership repository.StoryOwnershipStore,
	cfg *config.Config,
	logger *zap.Logger,
) *StoryHandler {
	return &StoryHandler{
		pipeline:    p,
		storeOpener: storeOpener,
		illustrator: illustrator,
		ownership:   ownership,
		cfg:         cfg,
		logger:      logger.Named("StoryHandler"),
	}
}

func (h *StoryHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.POST("/stories/generate", h.generateStory)
		api.GET("/stories", h.listStories)
		api.GET("/stories/:id", h.getStory)
		api.PUT("/stories/:id/pages/:pageIndex", h.updatePageText)
		api.POST("/stories/:id/pages/:pageIndex/illustration", h.regeneratePageIllustration)
	}
}

// generateStory runs the full pipeline and streams progress as server-sent
// events. A malformed body is rejected before the stream opens; everything
// after that is reported through the stream itself.
func (h *StoryHandler) generateStory(c *gin.Context) {
	var req model.StoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body: " + err.Error()})
		return
	}
	ownerID := c.GetHeader(userIDHeader)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	b := pipeline.NewBroadcaster(h.logger)

	// The run is deliberately detached from the request context: a client
	// that disconnects mid-stream does not cancel in-flight model calls.
	// The next publish simply finds the buffer draining into nowhere.
	go h.pipeline.Run(context.WithoutCancel(c.Request.Context()), req, ownerID, b)

	events := b.Events()
	c.Stream(func(w io.Writer) bool {
		ev, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent(string(ev.Type), ev.Data)
		return true
	})
}

func (h *StoryHandler) getStory(c *gin.Context) {
	id := c.Param("id")

	store, err := h.storeOpener.Open(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to open story store", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, APIError{Message: "Story storage is unavailable"})
		return
	}
	defer h.closeStore(store)

	doc, err := store.Get(c.Request.Context(), id)
	if err != nil {
		h.handleStoreError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// listStories returns the caller's story index. The story bodies live in the
// TTL store; entries whose TTL already expired still appear in the index and
// resolve to 404 on fetch.
func (h *StoryHandler) listStories(c *gin.Context) {
	if h.ownership == nil {
		c.JSON(http.StatusNotImplemented, APIError{Message: "Story listing is not enabled"})
		return
	}
	ownerID := c.GetHeader(userIDHeader)
	if ownerID == "" {
		c.JSON(http.StatusUnauthorized, APIError{Message: "Missing " + userIDHeader + " header"})
		return
	}

	entries, err := h.ownership.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		h.logger.Error("Failed to list stories", zap.String("owner_id", ownerID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, APIError{Message: "Failed to retrieve stories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

type updatePageTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// updatePageText replaces one page's text. The store has no field-level
// update, so this is a whole-document read-modify-write.
func (h *StoryHandler) updatePageText(c *gin.Context) {
	id := c.Param("id")
	pageIndex, ok := h.pageIndexParam(c)
	if !ok {
		return
	}
	var req updatePageTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body: " + err.Error()})
		return
	}

	store, err := h.storeOpener.Open(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to open story store", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, APIError{Message: "Story storage is unavailable"})
		return
	}
	defer h.closeStore(store)

	doc, err := store.Get(c.Request.Context(), id)
	if err != nil {
		h.handleStoreError(c, id, err)
		return
	}
	if pageIndex >= len(doc.Pages) {
		c.JSON(http.StatusBadRequest, APIError{Message: "Page index out of range"})
		return
	}

	doc.Pages[pageIndex].Text = req.Text
	if err := store.Update(c.Request.Context(), doc); err != nil {
		h.logger.Error("Failed to update story", zap.String("story_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, APIError{Message: "Failed to save the story"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

// regeneratePageIllustration redraws a single page and persists the new URL.
func (h *StoryHandler) regeneratePageIllustration(c *gin.Context) {
	id := c.Param("id")
	pageIndex, ok := h.pageIndexParam(c)
	if !ok {
		return
	}
	if err := h.illustrator.Check(); err != nil {
		h.logger.Error("Illustrator unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, APIError{Message: "Illustration is unavailable right now"})
		return
	}

	store, err := h.storeOpener.Open(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to open story store", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, APIError{Message: "Story storage is unavailable"})
		return
	}
	defer h.closeStore(store)

	doc, err := store.Get(c.Request.Context(), id)
	if err != nil {
		h.handleStoreError(c, id, err)
		return
	}
	if pageIndex >= len(doc.Pages) {
		c.JSON(http.StatusBadRequest, APIError{Message: "Page index out of range"})
		return
	}

	var style, ageRange string
	// Style and age range are not persisted on the document; regeneration
	// falls back to neutral guidance derived from the page itself.
	url, err := h.illustrator.IllustratePage(c.Request.Context(), service.PageJob{
		StoryID:    doc.ID,
		PageIndex:  pageIndex,
		PageText:   doc.Pages[pageIndex].Text,
		Characters: doc.Characters,
		Style:      style,
		AgeRange:   ageRange,
	}, nil)
	if err != nil {
		h.logger.Error("Failed to regenerate illustration",
			zap.String("story_id", id), zap.Int("page", pageIndex), zap.Error(err))
		c.JSON(http.StatusBadGateway, APIError{Message: "We couldn't redraw this page. Please try again."})
		return
	}

	doc.Pages[pageIndex].ImageURL = &url
	if err := store.Update(c.Request.Context(), doc); err != nil {
		h.logger.Error("Failed to update story", zap.String("story_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, APIError{Message: "Failed to save the story"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pageIndex": pageIndex, "imageUrl": url})
}

func (h *StoryHandler) pageIndexParam(c *gin.Context) (int, bool) {
	idxStr := c.Param("pageIndex")
	idx, err := strconv.Atoi(idxStr)
	if err != nil || idx < 0 {
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid page index"})
		return 0, false
	}
	return idx, true
}

func (h *StoryHandler) handleStoreError(c *gin.Context, id string, err error) {
	if errors.Is(err, repository.ErrStoryNotFound) {
		c.JSON(http.StatusNotFound, APIError{Message: "Story not found or expired"})
		return
	}
	h.logger.Error("Story store error", zap.String("story_id", id), zap.Error(err))
	c.JSON(http.StatusInternalServerError, APIError{Message: "Internal server error"})
}

func (h *StoryHandler) closeStore(store repository.StoryStore) {
	if err := store.Close(); err != nil {
		h.logger.Warn("Failed to close story store", zap.Error(err))
	}
}
