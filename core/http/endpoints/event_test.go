package endpoints_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/meloserve/meloserve/core/backend"
	"github.com/meloserve/meloserve/core/config"
	"github.com/meloserve/meloserve/core/http/endpoints"
	"github.com/meloserve/meloserve/core/schema"
	"github.com/meloserve/meloserve/pkg/engine/fake"
)

type capturedWrite struct {
	scheme      string
	bucket      string
	object      string
	data        []byte
	contentType string
}

func newEventRequest(eventType string, object schema.StorageObjectData) *http.Request {
	body, err := json.Marshal(object)
	Expect(err).ToNot(HaveOccurred())

	req := httptest.NewRequest(http.MethodPost, "/events/gcs", strings.NewReader(string(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("ce-specversion", "1.0")
	req.Header.Set("ce-id", "1234567890")
	req.Header.Set("ce-source", "//storage.googleapis.com/projects/_/buckets/input-texts")
	req.Header.Set("ce-type", eventType)
	return req
}

var _ = Describe("GCSEventEndpoint", func() {
	var (
		e           *echo.Echo
		eng         *fake.Engine
		appConfig   *config.ApplicationConfig
		synthesizer *backend.Synthesizer
		writes      []capturedWrite
		handler     echo.HandlerFunc
	)

	BeforeEach(func() {
		workDir, err := os.MkdirTemp("", "meloserve-event")
		Expect(err).ToNot(HaveOccurred())
		DeferCleanup(func() { os.RemoveAll(workDir) })

		voicesDir := filepath.Join(workDir, "voices")
		Expect(os.MkdirAll(voicesDir, 0755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(voicesDir, "en.yaml"), []byte(`
name: en-default
language: EN
speaker: EN-Default
model_file: en/default.onnx
default: true
`), 0644)).To(Succeed())

		appConfig = config.NewApplicationConfig(
			config.WithVoicesPath(voicesDir),
			config.WithAssetsPath(filepath.Join(workDir, "assets")),
			config.WithAudioDir(filepath.Join(workDir, "audio")),
			config.WithOutputBucket("rendered-audio"),
		)

		vcl := config.NewVoiceConfigLoader(voicesDir)
		Expect(vcl.LoadVoiceConfigsFromPath(voicesDir)).To(Succeed())

		eng = fake.New()
		synthesizer = backend.NewSynthesizer(vcl, appConfig, eng)
		synthesizer.WithTextSource(func(ctx context.Context, uri string) (string, error) {
			Expect(uri).To(Equal("gs://input-texts/article.txt"))
			return "text from the bucket", nil
		})

		writes = nil
		writer := func(ctx context.Context, scheme, bucket, object string, data []byte, contentType string) error {
			writes = append(writes, capturedWrite{scheme, bucket, object, data, contentType})
			return nil
		}

		e = echo.New()
		handler = endpoints.GCSEventEndpoint(synthesizer, appConfig, writer)
	})

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		err := handler(c)
		if err != nil {
			e.HTTPErrorHandler(err, c)
		}
		return rec
	}

	It("synthesizes the finalized object into the output bucket", func() {
		req := newEventRequest(schema.ObjectFinalizedType, schema.StorageObjectData{
			Bucket: "input-texts",
			Name:   "article.txt",
		})
		rec := serve(req)

		Expect(rec.Code).To(Equal(http.StatusOK))

		var result schema.SynthesisResult
		Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(Succeed())
		Expect(result.Skipped).To(BeFalse())
		Expect(result.OutputURI).To(Equal("gs://rendered-audio/article.wav"))

		Expect(writes).To(HaveLen(1))
		Expect(writes[0].scheme).To(Equal("gs"))
		Expect(writes[0].bucket).To(Equal("rendered-audio"))
		Expect(writes[0].object).To(Equal("article.wav"))
		Expect(writes[0].contentType).To(Equal("audio/wav"))
		Expect(string(writes[0].data[:4])).To(Equal("RIFF"))
	})

	It("skips events of other types", func() {
		req := newEventRequest("google.cloud.storage.object.v1.deleted", schema.StorageObjectData{
			Bucket: "input-texts",
			Name:   "article.txt",
		})
		rec := serve(req)

		Expect(rec.Code).To(Equal(http.StatusOK))

		var result schema.SynthesisResult
		Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(Succeed())
		Expect(result.Skipped).To(BeTrue())
		Expect(writes).To(BeEmpty())
		Expect(eng.Calls()).To(BeEmpty())
	})

	It("skips objects that are not text files", func() {
		req := newEventRequest(schema.ObjectFinalizedType, schema.StorageObjectData{
			Bucket: "input-texts",
			Name:   "cover.png",
		})
		rec := serve(req)

		Expect(rec.Code).To(Equal(http.StatusOK))

		var result schema.SynthesisResult
		Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(Succeed())
		Expect(result.Skipped).To(BeTrue())
		Expect(writes).To(BeEmpty())
	})

	It("skips objects finalized in the output bucket", func() {
		req := newEventRequest(schema.ObjectFinalizedType, schema.StorageObjectData{
			Bucket: "rendered-audio",
			Name:   "article.txt",
		})
		rec := serve(req)

		Expect(rec.Code).To(Equal(http.StatusOK))

		var result schema.SynthesisResult
		Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(Succeed())
		Expect(result.Skipped).To(BeTrue())
		Expect(eng.Calls()).To(BeEmpty())
	})

	It("fails without an output bucket", func() {
		appConfig.OutputBucket = ""

		req := newEventRequest(schema.ObjectFinalizedType, schema.StorageObjectData{
			Bucket: "input-texts",
			Name:   "article.txt",
		})
		rec := serve(req)

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
	})

	It("rejects requests that are not CloudEvents", func() {
		req := httptest.NewRequest(http.MethodPost, "/events/gcs", strings.NewReader("not an event"))
		rec := serve(req)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("propagates source read failures", func() {
		synthesizer.WithTextSource(func(ctx context.Context, uri string) (string, error) {
			return "", fmt.Errorf("backend is down")
		})

		req := newEventRequest(schema.ObjectFinalizedType, schema.StorageObjectData{
			Bucket: "input-texts",
			Name:   "article.txt",
		})
		rec := serve(req)

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
	})
})
