package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/safespace/safespace_backend/controllers"
	"github.com/safespace/safespace_backend/middleware"
)

// RegisterMainRoutes wires the health probes and the job-trigger endpoint.
func RegisterMainRoutes(e *echo.Echo, jobs *controllers.JobController, jobToken string) {
	e.Match([]string{"GET", "HEAD"}, "/", controllers.Root)
	e.Match([]string{"GET", "HEAD"}, "/health", controllers.HealthCheck)

	jobGroup := e.Group("/jobs", middleware.JobToken(jobToken))
	jobGroup.GET("", jobs.List)
	jobGroup.POST("", jobs.Run)
}
