package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"realestate-insights/utils"
)

// NewRouter wires the handler under /api/v1. metrics may be nil.
func NewRouter(h *Handler, metrics http.Handler, log *utils.Logger) *gin.Engine {
	router := gin.New()

	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	v1 := router.Group("/api/v1")
	v1.GET("/state", h.State)
	v1.PUT("/city", h.SetCity)
	v1.PUT("/group-field", h.SetGroupField)
	v1.GET("/summary", h.Summary)
	v1.GET("/timeline", h.Timeline)

	chartRoutes := v1.Group("/charts")
	chartRoutes.GET("/grouped", h.GroupedChart)
	chartRoutes.GET("/statistics", h.StatisticsChart)
	chartRoutes.GET("/filtered", h.FilteredChart)
	chartRoutes.GET("/server", h.ServerCharts)

	return router
}

func ginLogger(log *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Debug("HTTP %s %s -> %d (%v, %s)", method, path, c.Writer.Status(), time.Since(start), c.ClientIP())
	}
}
