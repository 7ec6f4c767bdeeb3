package endpoints

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/meloserve/meloserve/core/backend"
	"github.com/meloserve/meloserve/core/objectstore"
	"github.com/meloserve/meloserve/core/schema"
)

// SpeechEndpoint synthesizes text to a WAV file and returns it as an
// attachment. Parameters come from the JSON body on POST, query parameters
// work on both methods for simpler testing.
// @Summary Generates audio from the input text.
// @Param request body schema.SynthesisRequest true "query params"
// @Success 200 {string} binary "Response"
// @Router /v1/audio/speech [post]
func SpeechEndpoint(synthesizer *backend.Synthesizer) echo.HandlerFunc {
	return func(c echo.Context) error {
		input := new(schema.SynthesisRequest)

		if c.Request().Method == http.MethodPost && c.Request().ContentLength != 0 {
			if err := c.Bind(input); err != nil {
				log.Error().Err(err).Msg("error during request binding")
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
		}
		bindQueryParams(c, input)

		result, err := synthesizer.Synthesize(c.Request().Context(), input)
		if err != nil {
			return synthesisError(err)
		}
		defer os.Remove(result.AudioPath)

		log.Debug().Str("id", result.ID).Str("path", result.AudioPath).Msg("synthesized output audio file")

		c.Response().Header().Set("X-Synthesis-Id", result.ID)
		return c.Attachment(result.AudioPath, "output.wav")
	}
}

// Query parameters override nothing set in the body; the original function
// read the body first and fell back to query arguments.
func bindQueryParams(c echo.Context, input *schema.SynthesisRequest) {
	get := func(name, current string) string {
		if current != "" {
			return current
		}
		return c.QueryParam(name)
	}

	input.Input = get("input", input.Input)
	input.SourceURI = get("source_uri", input.SourceURI)
	input.GCSURI = get("gcs_uri", input.GCSURI)
	input.Language = get("language", input.Language)
	input.Speaker = get("speaker", input.Speaker)
	input.Device = get("device", input.Device)
	if input.Speed == 0 {
		if v, err := strconv.ParseFloat(c.QueryParam("speed"), 64); err == nil {
			input.Speed = v
		}
	}
}

// synthesisError maps service errors onto HTTP statuses, mirroring the
// response codes of the original function.
func synthesisError(err error) error {
	switch {
	case errors.Is(err, backend.ErrInvalidLanguage),
		errors.Is(err, backend.ErrInvalidSpeaker),
		errors.Is(err, backend.ErrNoInput),
		errors.Is(err, objectstore.ErrInvalidURI),
		errors.Is(err, objectstore.ErrEmptySource):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, objectstore.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, objectstore.ErrPermission):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		log.Error().Err(err).Msg("synthesis failed")
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
