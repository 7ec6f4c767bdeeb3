package endpoints

import (
	"context"
	"net/http"
	"os"
	"strings"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/meloserve/meloserve/core/backend"
	"github.com/meloserve/meloserve/core/config"
	"github.com/meloserve/meloserve/core/objectstore"
	"github.com/meloserve/meloserve/core/schema"
)

// ObjectWriter writes synthesized audio back to a bucket. Swapped out in
// tests.
type ObjectWriter func(ctx context.Context, scheme, bucket, object string, data []byte, contentType string) error

// GCSEventEndpoint handles CloudEvents routed by Eventarc for object
// finalization. The triggering text object is synthesized and the WAV result
// is written to the configured output bucket under the same name with a .wav
// extension.
// @Summary Synthesizes a finalized storage object to the output bucket.
// @Router /events/gcs [post]
func GCSEventEndpoint(synthesizer *backend.Synthesizer, appConfig *config.ApplicationConfig, writer ObjectWriter) echo.HandlerFunc {
	if writer == nil {
		writer = objectstore.WriteToBucket
	}

	return func(c echo.Context) error {
		event, err := cloudevents.NewEventFromHTTPRequest(c.Request())
		if err != nil {
			log.Error().Err(err).Msg("failed to parse CloudEvent")
			return echo.NewHTTPError(http.StatusBadRequest, "invalid CloudEvent payload")
		}

		if event.Type() != schema.ObjectFinalizedType {
			return c.JSON(http.StatusOK, schema.SynthesisResult{
				Skipped: true,
				Reason:  "unhandled event type " + event.Type(),
			})
		}

		var object schema.StorageObjectData
		if err := event.DataAs(&object); err != nil {
			log.Error().Err(err).Msg("failed to decode storage object data")
			return echo.NewHTTPError(http.StatusBadRequest, "invalid storage object payload")
		}

		if appConfig.OutputBucket == "" {
			return echo.NewHTTPError(http.StatusInternalServerError, "no output bucket configured")
		}

		// The output bucket may be the trigger bucket in misconfigured
		// setups, writing there again would loop the trigger forever.
		if object.Bucket == appConfig.OutputBucket || !strings.HasSuffix(object.Name, ".txt") {
			log.Info().Str("bucket", object.Bucket).Str("object", object.Name).Msg("ignoring storage object")
			return c.JSON(http.StatusOK, schema.SynthesisResult{
				Skipped: true,
				Reason:  "object is not a synthesis source",
			})
		}

		ctx := c.Request().Context()

		result, err := synthesizer.Synthesize(ctx, &schema.SynthesisRequest{
			SourceURI: objectstore.URI("gs", object.Bucket, object.Name),
		})
		if err != nil {
			return synthesisError(err)
		}
		defer os.Remove(result.AudioPath)

		data, err := os.ReadFile(result.AudioPath)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		outputObject := strings.TrimSuffix(object.Name, ".txt") + ".wav"
		if err := writer(ctx, "gs", appConfig.OutputBucket, outputObject, data, "audio/wav"); err != nil {
			return synthesisError(err)
		}

		result.OutputURI = objectstore.URI("gs", appConfig.OutputBucket, outputObject)
		log.Info().Str("id", result.ID).Str("output", result.OutputURI).Msg("synthesized storage object")

		return c.JSON(http.StatusOK, result)
	}
}
