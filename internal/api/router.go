package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"cabinet-status-backend/config"
	"cabinet-status-backend/internal/mw"
	"cabinet-status-backend/internal/session"
	"cabinet-status-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, sess *session.Session, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, sess, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Live dashboard state. Never cached.
		api.GET("/views", handler.GetViews)
		api.PUT("/views/active", handler.PutActiveView)
		api.GET("/tiles", handler.GetTiles)
		api.POST("/refresh", handler.PostRefresh)

		// Refresh loop control.
		api.GET("/poller", handler.GetPoller)
		api.PUT("/poller", handler.PutPoller)

		// Catalog endpoints change rarely; serve them through the cache.
		api.GET("/cabinets", caching, handler.GetCabinets)
		api.GET("/users", caching, handler.GetUsers)

		// The single write path.
		api.POST("/assignments", handler.PostAssignment)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
