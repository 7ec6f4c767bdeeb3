package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/meloserve/meloserve/core/config"
	"github.com/meloserve/meloserve/core/schema"
)

// Paths that must stay reachable without a key so the platform can probe the
// service.
var authExemptPaths = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
	"/metrics": true,
}

// KeyAuth builds the echo key-auth middleware from the application config.
// With no API keys configured every request is accepted.
func KeyAuth(appConfig *config.ApplicationConfig) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup:  "header:Authorization,header:x-api-key",
		AuthScheme: "Bearer",
		Skipper: func(c echo.Context) bool {
			if len(appConfig.ApiKeys) == 0 {
				return true
			}
			return authExemptPaths[c.Path()]
		},
		Validator:    keyValidator(appConfig),
		ErrorHandler: keyErrorHandler(appConfig),
	})
}

func keyValidator(appConfig *config.ApplicationConfig) middleware.KeyAuthValidator {
	if appConfig.UseSubtleKeyComparison {
		return func(apiKey string, c echo.Context) (bool, error) {
			for _, validKey := range appConfig.ApiKeys {
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(validKey)) == 1 {
					return true, nil
				}
			}
			return false, nil
		}
	}

	return func(apiKey string, c echo.Context) (bool, error) {
		for _, validKey := range appConfig.ApiKeys {
			if apiKey == validKey {
				return true, nil
			}
		}
		return false, nil
	}
}

func keyErrorHandler(appConfig *config.ApplicationConfig) func(error, echo.Context) error {
	return func(err error, c echo.Context) error {
		c.Response().Header().Set("WWW-Authenticate", "Bearer")
		if appConfig.OpaqueErrors {
			return c.NoContent(http.StatusUnauthorized)
		}
		return c.JSON(http.StatusUnauthorized, schema.ErrorResponse{
			Error: &schema.APIError{
				Message: "An authentication key is required",
				Code:    http.StatusUnauthorized,
				Type:    "invalid_request_error",
			},
		})
	}
}
