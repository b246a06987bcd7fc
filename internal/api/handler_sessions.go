package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parkview-dashboard/internal/geo"
	"parkview-dashboard/internal/model"
)

// CreateSession handles POST /api/sessions.
func (h *Handler) CreateSession(c *gin.Context) {
	sess := h.sessions.Create()
	c.JSON(http.StatusCreated, gin.H{"sessionId": sess.ID()})
}

// DeleteSession handles DELETE /api/sessions/{id}.
func (h *Handler) DeleteSession(c *gin.Context) {
	h.sessions.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// GetView handles GET /api/sessions/{id}/view.
func (h *Handler) GetView(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

type positionRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// ReportPosition handles POST /api/sessions/{id}/position.
func (h *Handler) ReportPosition(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude are required"})
		return
	}
	sess.ReportPosition(c.Request.Context(), model.Coordinates{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
	})
	c.JSON(http.StatusOK, sess.View())
}

// ReportViewport handles POST /api/sessions/{id}/viewport.
func (h *Handler) ReportViewport(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var box geo.BoundingBox
	if err := c.ShouldBindJSON(&box); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid viewport"})
		return
	}
	sess.ReportViewport(box)
	c.Status(http.StatusNoContent)
}

// Locate handles POST /api/sessions/{id}/locate: re-run the two-phase
// position acquisition.
func (h *Handler) Locate(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	fix := sess.Locate(c.Request.Context())
	c.JSON(http.StatusOK, fix)
}

// Refresh handles POST /api/sessions/{id}/refresh, the retry affordance for
// a failed nearby fetch.
func (h *Handler) Refresh(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.RefreshNearby(c.Request.Context(), false)
	sess.RefreshAllLots(c.Request.Context())
	c.JSON(http.StatusOK, sess.View())
}

// DismissError handles POST /api/sessions/{id}/error/dismiss.
func (h *Handler) DismissError(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.DismissError()
	c.Status(http.StatusNoContent)
}
