package router

import (
	"github.com/gin-gonic/gin"

	"github.com/mediamorph/media-morph/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	healthHandler := handler.NewHealthHandler(deps)
	r.GET("/health", healthHandler.Health)

	// Transformed artifacts are served straight from the output directories
	r.Static("/output-images", deps.ImageOutputDir)
	r.Static("/output-videos", deps.VideoOutputDir)

	mediaHandler := handler.NewMediaHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		images := v1.Group("/images")
		{
			// POST /api/v1/images/morph - Submit an image transform job
			images.POST("/morph", mediaHandler.MorphImage)

			// GET /api/v1/images/status/:job_id - Query job status
			images.GET("/status/:job_id", mediaHandler.JobStatus)
		}

		videos := v1.Group("/videos")
		{
			// POST /api/v1/videos/morph - Submit a video transform job
			videos.POST("/morph", mediaHandler.MorphVideo)

			// GET /api/v1/videos/status/:job_id - Query job status
			videos.GET("/status/:job_id", mediaHandler.JobStatus)
		}
	}

	return r
}
