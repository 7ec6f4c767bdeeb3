package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/meloserve/meloserve/core/backend"
	"github.com/meloserve/meloserve/core/config"
	"github.com/meloserve/meloserve/core/http/endpoints"
)

func RegisterTTSRoutes(e *echo.Echo, synthesizer *backend.Synthesizer, vcl *config.VoiceConfigLoader, appConfig *config.ApplicationConfig) {
	speech := endpoints.SpeechEndpoint(synthesizer)
	e.POST("/v1/audio/speech", speech)
	// GET is allowed for simpler testing, the original function did the same
	e.GET("/v1/audio/speech", speech)

	e.GET("/v1/voices", endpoints.VoicesEndpoint(vcl))

	e.POST("/events/gcs", endpoints.GCSEventEndpoint(synthesizer, appConfig, nil))
}
