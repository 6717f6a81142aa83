package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
)

// JobToken guards the job-trigger endpoint with a shared secret, the way the
// external scheduler authenticates its HTTP invocations. With no token
// configured the endpoint is disabled outright.
func JobToken(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token == "" {
				return c.JSON(503, map[string]string{
					"message": "job endpoint disabled: JOB_TOKEN not configured",
				})
			}
			provided := c.Request().Header.Get("X-Job-Token")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				return c.JSON(401, map[string]string{
					"message": "unauthorized",
				})
			}
			return next(c)
		}
	}
}
