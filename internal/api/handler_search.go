package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"parkview-dashboard/internal/dashboard"
	"parkview-dashboard/internal/model"
)

type queryRequest struct {
	Query string `json:"query"`
}

// UpdateQuery handles PUT /api/sessions/{id}/query: one keystroke of the
// search box. Suggestions arrive in a later view snapshot once the debounce
// window closes.
func (h *Handler) UpdateQuery(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid query payload"})
		return
	}
	sess.UpdateQuery(req.Query)
	c.Status(http.StatusAccepted)
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
}

// Search handles POST /api/sessions/{id}/search: the explicit search action.
func (h *Handler) Search(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	if err := sess.Search(c.Request.Context(), req.Query); err != nil {
		if errors.Is(err, dashboard.ErrNoResults) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no matches found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "search is unavailable right now"})
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

type suggestionRequest struct {
	Key string `json:"key" binding:"required"`
}

// SelectSuggestion handles POST /api/sessions/{id}/suggestion.
func (h *Handler) SelectSuggestion(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req suggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "suggestion key is required"})
		return
	}
	if err := sess.SelectSuggestion(c.Request.Context(), req.Key); err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "suggestion no longer available"})
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

// SetFilters handles PUT /api/sessions/{id}/filters.
func (h *Handler) SetFilters(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var f model.Filters
	if err := c.ShouldBindJSON(&f); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid filters payload"})
		return
	}
	applied := sess.SetFilters(c.Request.Context(), f)
	c.JSON(http.StatusOK, gin.H{"filters": applied})
}
