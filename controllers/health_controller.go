package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Root reports the service identity and version.
func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "Safe Space notification service is running",
		"version": "1.0",
	})
}

// HealthCheck is the unauthenticated liveness probe.
func HealthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
