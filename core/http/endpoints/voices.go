package endpoints

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/meloserve/meloserve/core/config"
)

// VoicesEndpoint lists the voices in the catalog.
// @Summary Lists available voices.
// @Router /v1/voices [get]
func VoicesEndpoint(vcl *config.VoiceConfigLoader) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"voices": vcl.GetAllVoiceConfigs(),
		})
	}
}
