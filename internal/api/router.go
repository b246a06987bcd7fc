package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"parkview-dashboard/config"
	"parkview-dashboard/internal/dashboard"
	"parkview-dashboard/internal/mw"
	"parkview-dashboard/internal/prefs"
)

// NewRouter creates and configures the Gin router for the dashboard API.
func NewRouter(cfg *config.Config, sessions *dashboard.Manager, store prefs.Store) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(sessions, store)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), 5, cfg.Server.RequestIPHeader)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/sessions", handler.CreateSession)
		api.DELETE("/sessions/:id", handler.DeleteSession)

		api.GET("/sessions/:id/view", handler.GetView)
		api.POST("/sessions/:id/position", handler.ReportPosition)
		api.POST("/sessions/:id/viewport", handler.ReportViewport)
		api.POST("/sessions/:id/locate", handler.Locate)
		api.POST("/sessions/:id/refresh", handler.Refresh)
		api.POST("/sessions/:id/error/dismiss", handler.DismissError)

		api.PUT("/sessions/:id/query", handler.UpdateQuery)
		api.POST("/sessions/:id/search", handler.Search)
		api.POST("/sessions/:id/suggestion", handler.SelectSuggestion)
		api.PUT("/sessions/:id/filters", handler.SetFilters)

		api.POST("/sessions/:id/select", handler.SelectLot)
		api.POST("/sessions/:id/deselect", handler.Deselect)
		api.PUT("/sessions/:id/booking/hour", handler.SetBookingHour)
		api.POST("/sessions/:id/booking", handler.SubmitBooking)
		api.GET("/sessions/:id/lots/:lot_id/directions", caching, handler.Directions)

		api.GET("/bookings/changed", handler.ConsumeBookingsChanged)
	}

	return r
}
