package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/liliang-cn/finsight/internal/api/assistant"
	"github.com/liliang-cn/finsight/internal/api/middleware"
	"github.com/liliang-cn/finsight/internal/api/statement"
	"github.com/liliang-cn/finsight/internal/service"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	APIKey       string
	AllowOrigins []string
}

// Services bundles what the handlers need
type Services struct {
	Analysis   *service.AnalysisService
	Commentary *service.CommentaryService
	Chat       *service.ChatService
	State      *service.State
}

// SetupRouter sets up the Gin router
func SetupRouter(svc Services, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS middleware
	r.Use(middleware.CORS(cfg.AllowOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API (optional API key, one request at a time against the shared state)
	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.Auth(cfg.APIKey), middleware.Serialize())

	statement.NewHandler(svc.Analysis, svc.State).RegisterRoutes(apiGroup)
	assistant.NewHandler(svc.Commentary, svc.Chat, svc.State).RegisterRoutes(apiGroup)

	return r
}
