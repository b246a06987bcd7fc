package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parkview-dashboard/internal/dashboard"
	"parkview-dashboard/internal/prefs"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	sessions *dashboard.Manager
	store    prefs.Store
}

// NewHandler creates a new API handler.
func NewHandler(sessions *dashboard.Manager, store prefs.Store) *Handler {
	return &Handler{sessions: sessions, store: store}
}

// session resolves the :id path parameter, replying 404 when it names no
// live session.
func (h *Handler) session(c *gin.Context) (*dashboard.Session, bool) {
	sess, found := h.sessions.Get(c.Param("id"))
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return sess, true
}
