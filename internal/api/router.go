package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"equipment-status-backend/internal/mw"
)

// RouterOptions carries the server tuning knobs from config.
type RouterOptions struct {
	RateLimitPerSec float64
	CacheTTL        time.Duration
	ClientIPHeader  string
}

// NewRouter creates and configures a new Gin router around a wired
// handler.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.Default()

	if opts.RateLimitPerSec <= 0 {
		opts.RateLimitPerSec = 10
	}
	if opts.CacheTTL <= 0 {
		// Short TTL: the timeline layout depends on "now" through
		// open-ended intervals.
		opts.CacheTTL = 30 * time.Second
	}

	rateLimiter := mw.RateLimiter(rate.Limit(opts.RateLimitPerSec), 5, opts.ClientIPHeader)

	cacheStore := cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	caching := mw.Cache(cacheStore, opts.CacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/assets", h.ListAssets)
		api.POST("/assets", h.CreateAsset)
		api.PUT("/assets/:id", h.UpdateAsset)
		api.DELETE("/assets/:id", h.DeleteAsset)

		api.GET("/usage-logs", h.ListUsageLogs)
		api.POST("/usage-logs", h.CreateUsageLog)
		api.PUT("/usage-logs/:id", h.UpdateUsageLog)
		api.DELETE("/usage-logs/:id", h.DeleteUsageLog)
		api.DELETE("/usage-logs/:id/configs/:config_id", h.RemoveUsageLogConfig)

		api.GET("/repair-tickets", h.ListRepairTickets)
		api.POST("/repair-tickets", h.CreateRepairTicket)
		api.POST("/repair-tickets/:id/transition", h.TransitionRepairTicket)
		api.DELETE("/repair-tickets/:id", h.DeleteRepairTicket)

		api.GET("/timeline", caching, h.GetTimeline)
		api.POST("/reconcile", h.Reconcile)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
