package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/meloserve/meloserve/pkg/engine"
)

func HealthRoutes(e *echo.Echo, eng engine.Engine) {
	// Service health checks
	ok := func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}

	e.GET("/healthz", ok)
	e.GET("/readyz", func(c echo.Context) error {
		if eng != nil && !eng.Ready(c.Request().Context()) {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})
}
