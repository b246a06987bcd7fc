package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parkview-dashboard/internal/prefs"
)

type selectRequest struct {
	LotID string `json:"lotId" binding:"required"`
}

// SelectLot handles POST /api/sessions/{id}/select: open the expanded card.
func (h *Handler) SelectLot(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "lotId is required"})
		return
	}
	if !sess.SelectLot(req.LotID) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown lot"})
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

// Deselect handles POST /api/sessions/{id}/deselect: close the expanded card
// and discard booking state.
func (h *Handler) Deselect(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.Deselect()
	c.Status(http.StatusNoContent)
}

type hourRequest struct {
	Hour *int `json:"hour" binding:"required"`
}

// SetBookingHour handles PUT /api/sessions/{id}/booking/hour.
func (h *Handler) SetBookingHour(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req hourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "hour is required"})
		return
	}
	if err := sess.SetBookingHour(*req.Hour); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

// SubmitBooking handles POST /api/sessions/{id}/booking. A submission without
// a selected lot or an hour is a no-op by contract, reported as 409 so the
// client knows nothing was sent.
func (h *Handler) SubmitBooking(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	submitted, err := sess.SubmitBooking(c.Request.Context())
	if !submitted {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "select a lot and an hour first"})
		return
	}
	view := sess.View()
	if err != nil {
		// The failure message is already part of the booking state.
		c.JSON(http.StatusBadGateway, view)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Directions handles GET /api/sessions/{id}/lots/{lot_id}/directions.
func (h *Handler) Directions(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	u, found := sess.DirectionsURL(c.Param("lot_id"))
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown lot"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": u})
}

// ConsumeBookingsChanged handles GET /api/bookings/changed: the cross-view
// refresh flag, cleared on read.
func (h *Handler) ConsumeBookingsChanged(c *gin.Context) {
	changed, err := prefs.ConsumeBookingsChanged(c.Request.Context(), h.store)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to read signal flag"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}
