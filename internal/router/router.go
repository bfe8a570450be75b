package router

import (
	"github.com/gin-gonic/gin"

	"boothscan/internal/handler"
	"boothscan/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	sessionH *handler.SessionHandler,
	fileH *handler.FileHandler,
	submissionH *handler.SubmissionHandler,
	healthH *handler.HealthHandler,
	corsOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)

	v1 := r.Group("/api/v1")

	sessions := v1.Group("/sessions")
	sessions.POST("", sessionH.Create)
	sessions.GET("/:id", sessionH.Get)
	sessions.DELETE("/:id", sessionH.Delete)

	// File batch
	sessions.POST("/:id/files", fileH.Upload)
	sessions.GET("/:id/files", fileH.List)
	sessions.DELETE("/:id/files", fileH.Clear)
	sessions.DELETE("/:id/files/:fileId", fileH.Remove)

	// Submission lifecycle
	sessions.POST("/:id/submit", submissionH.Submit)
	sessions.POST("/:id/reset", submissionH.Reset)
	sessions.GET("/:id/status", submissionH.Status)
	sessions.GET("/:id/results", submissionH.Results)
	sessions.GET("/:id/results/:index/export", submissionH.Export)

	return r
}
