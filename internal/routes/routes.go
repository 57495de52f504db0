package routes

import (
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/waymarker/waymarker-backend/internal/config"
	"github.com/waymarker/waymarker-backend/internal/handler"
	"github.com/waymarker/waymarker-backend/internal/middleware"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	contentHandler *handler.ContentHandler,
	buildHandler *handler.BuildHandler,
	tagHandler *handler.TagHandler,
	resolveHandler *handler.ResolveHandler,
	cfg *config.Config,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api/v1")
	writeAuth := middleware.APIKeyAuth(cfg.App.APIKey)

	// Content (reads are public, writes need the API key)
	content := api.Group("/content")
	{
		content.GET("", contentHandler.List)
		content.GET("/deleted", contentHandler.ListDeleted)
		content.GET("/:id", contentHandler.Get)
		content.GET("/:id/history", contentHandler.History)
		content.POST("", writeAuth, contentHandler.Create)
		content.PUT("/:id", writeAuth, contentHandler.Update)
		content.DELETE("/:id", writeAuth, contentHandler.Delete)
	}

	// Build runs
	buildGroup := api.Group("/build")
	{
		buildGroup.POST("", writeAuth, buildHandler.Run)
		buildGroup.GET("/status", buildHandler.Status)
		buildGroup.GET("/runs", buildHandler.History)
	}

	// Tag exclusions
	tags := api.Group("/tags")
	{
		tags.GET("/exclusions", tagHandler.ListExclusions)
		tags.POST("/exclusions", writeAuth, tagHandler.AddExclusion)
	}

	// Bracket code resolution (used by the editing UI)
	api.POST("/resolve", resolveHandler.Resolve)
}
