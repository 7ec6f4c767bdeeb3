package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/meloserve/meloserve/core/application"
	httpMiddleware "github.com/meloserve/meloserve/core/http/middleware"
	"github.com/meloserve/meloserve/core/http/routes"
	"github.com/meloserve/meloserve/core/schema"
)

// @title MeloServe API
// @version 1.0
// @description Serverless text-to-speech over object-store text files.
// @BasePath /

func API(app *application.Application) (*echo.Echo, error) {
	e := echo.New()

	// Set body limit
	if app.ApplicationConfig().UploadLimitMB > 0 {
		e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", app.ApplicationConfig().UploadLimitMB)))
	}

	// Set error handler
	if !app.ApplicationConfig().OpaqueErrors {
		e.HTTPErrorHandler = func(err error, c echo.Context) {
			code := http.StatusInternalServerError
			message := err.Error()
			var he *echo.HTTPError
			if errors.As(err, &he) {
				code = he.Code
				message = fmt.Sprintf("%v", he.Message)
			}

			c.JSON(code, schema.ErrorResponse{
				Error: &schema.APIError{Message: message, Code: code, Type: "api_error"},
			})
		}
	} else {
		e.HTTPErrorHandler = func(err error, c echo.Context) {
			code := http.StatusInternalServerError
			var he *echo.HTTPError
			if errors.As(err, &he) {
				code = he.Code
			}
			c.NoContent(code)
		}
	}

	// Hide banner
	e.HideBanner = true

	// Custom logger middleware using zerolog
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			err := next(c)
			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Msg("HTTP request")
			return err
		}
	})

	// Recover middleware
	if !app.ApplicationConfig().Debug {
		e.Use(middleware.Recover())
	}

	// Metrics middleware
	if !app.ApplicationConfig().DisableMetrics {
		metrics, err := httpMiddleware.SetupMetrics()
		if err != nil {
			return nil, err
		}
		e.Use(httpMiddleware.APIMiddleware(metrics))
		e.GET("/metrics", httpMiddleware.MetricsHandler())
	}

	// Health checks should always be exempt from auth, so register these first
	routes.HealthRoutes(e, app.Engine())

	// Auth is applied to everything else. Filtering out endpoints to bypass
	// is the role of the Skipper property of the KeyAuth configuration
	e.Use(httpMiddleware.KeyAuth(app.ApplicationConfig()))

	// CORS middleware
	if app.ApplicationConfig().CORS {
		corsConfig := middleware.CORSConfig{}
		if app.ApplicationConfig().CORSAllowOrigins != "" {
			corsConfig.AllowOrigins = strings.Split(app.ApplicationConfig().CORSAllowOrigins, ",")
		}
		e.Use(middleware.CORSWithConfig(corsConfig))
	}

	// CSRF middleware
	if app.ApplicationConfig().CSRF {
		log.Debug().Msg("enabling CSRF middleware, tokens are now required for state-modifying requests")
		e.Use(middleware.CSRF())
	}

	routes.RegisterTTSRoutes(e, app.Synthesizer(), app.VoiceConfigLoader(), app.ApplicationConfig())

	e.Server.RegisterOnShutdown(func() {
		log.Info().Msg("MeloServe API server shutting down")
	})

	return e, nil
}
