package router

import (
	"github.com/gin-gonic/gin"

	"fleetdesk/internal/handler"
	"fleetdesk/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(submissionH *handler.SubmissionHandler, healthH *handler.HealthHandler) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	subs := v1.Group("/submissions")
	subs.POST("", submissionH.Create)
	subs.POST("/upload", submissionH.Upload)
	subs.GET("", submissionH.List)
	subs.GET("/:id", submissionH.GetByID)
	subs.GET("/:id/records", submissionH.Records)
	subs.GET("/:id/export", submissionH.Export)

	return r
}
