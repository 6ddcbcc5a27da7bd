package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/health", handler.GetHealth)

	r.GET("/entries", handler.GetEntries)
	r.GET("/entries.rss", handler.GetEntriesRSS)

	r.GET("/feeds", handler.ListFeeds)
	r.POST("/feeds", handler.AddFeed)
	r.GET("/feeds/:id", handler.GetFeed)
	r.PATCH("/feeds/:id", handler.UpdateFeedDetails)
	r.POST("/feeds/:id/refresh", handler.RefreshFeed)
	r.DELETE("/feeds/:id", handler.DeleteFeed)
}
