// internal/api/router.go
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter registers every route on a new engine.
func SetupRouter(handler *Handler, corsOrigins []string) *gin.Engine {
	r := gin.New()

	r.Use(Recovery(handler.Response))
	r.Use(RequestID())
	r.Use(AccessLog())
	r.Use(Metrics())
	r.Use(CORS(corsOrigins))

	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ===============================
	// Pages
	// ===============================
	r.GET("/sessions/:id", handler.ResultPage)

	// WebSocket
	r.GET("/ws/sessions/:id", handler.SessionWebSocket)

	// ===============================
	// API
	// ===============================
	api := r.Group("/api")
	{
		api.GET("/catalog", handler.GetCatalog)
		api.GET("/llm/status", handler.GetLLMStatus)

		sessions := api.Group("/sessions")
		{
			sessions.POST("", handler.CreateSession)
			sessions.GET("/:id", handler.GetSession)
			sessions.DELETE("/:id", handler.DeleteSession)

			sessions.PATCH("/:id/briefing", handler.UpdateBriefing)
			sessions.PUT("/:id/strategy", handler.SelectStrategy)
			sessions.POST("/:id/demo", handler.LoadDemoData)

			sessions.POST("/:id/generate", handler.Generate)
			sessions.POST("/:id/prompts", handler.GenerateAllSlidePrompts)
			sessions.POST("/:id/slides/:n/prompt", handler.GenerateSlidePrompt)

			sessions.POST("/:id/copy", handler.CopyAllText)
			sessions.POST("/:id/slides/:n/copy", handler.CopySlideText)
			sessions.POST("/:id/slides/:n/prompt/copy", handler.CopySlidePrompt)

			sessions.GET("/:id/export", handler.ExportCarousel)
		}
	}

	return r
}
