package api

import (
	"net/http"

	"EventSync/internal/metrics"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter 注册所有HTTP路由
func NewRouter(syncHandler *SyncHandler, eventHandler *EventHandler, enablePprof bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// 注册ppof 方便调试和监测性能问题
	if enablePprof {
		pprof.Register(r)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	r.POST("/sync/events", syncHandler.SyncEventsHandler)
	r.GET("/sync/events", syncHandler.SyncEventsHandler)

	r.GET("/api/events", eventHandler.ListEvents)
	r.GET("/api/events/:event_uuid", eventHandler.GetEventDetail)
	return r
}
