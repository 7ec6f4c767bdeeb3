package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/meloserve/meloserve/core/application"
	"github.com/meloserve/meloserve/core/config"
	meloHTTP "github.com/meloserve/meloserve/core/http"
	"github.com/meloserve/meloserve/core/objectstore"
	"github.com/meloserve/meloserve/core/schema"
	"github.com/meloserve/meloserve/pkg/engine/fake"
)

func newTestApp(eng *fake.Engine, opts ...config.AppOption) (*application.Application, *echo.Echo) {
	workDir, err := os.MkdirTemp("", "meloserve-http")
	Expect(err).ToNot(HaveOccurred())
	DeferCleanup(func() { os.RemoveAll(workDir) })

	voicesDir := filepath.Join(workDir, "voices")
	Expect(os.MkdirAll(voicesDir, 0755)).To(Succeed())
	Expect(os.WriteFile(filepath.Join(voicesDir, "voices.yaml"), []byte(`
- name: en-default
  language: EN
  speaker: EN-Default
  model_file: en/default.onnx
  default: true
- name: fr-default
  language: FR
  model_file: fr/default.onnx
`), 0644)).To(Succeed())

	options := append([]config.AppOption{
		config.WithVoicesPath(voicesDir),
		config.WithAssetsPath(filepath.Join(workDir, "assets")),
		config.WithAudioDir(filepath.Join(workDir, "audio")),
		config.WithDisableMetrics(true),
	}, opts...)

	app, err := application.NewWithEngine(config.NewApplicationConfig(options...), nil, eng)
	Expect(err).ToNot(HaveOccurred())
	DeferCleanup(app.Shutdown)

	e, err := meloHTTP.API(app)
	Expect(err).ToNot(HaveOccurred())
	return app, e
}

func doRequest(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

var _ = Describe("API", func() {
	var (
		eng *fake.Engine
		e   *echo.Echo
		app *application.Application
	)

	BeforeEach(func() {
		eng = fake.New()
		app, e = newTestApp(eng)
	})

	Describe("health endpoints", func() {
		It("reports healthy", func() {
			rec := doRequest(e, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("reports unready when the engine is down", func() {
			eng.Unready = true
			rec := doRequest(e, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		})
	})

	Describe("speech endpoint", func() {
		It("returns the rendered WAV as an attachment", func() {
			body, err := json.Marshal(schema.SynthesisRequest{Input: "hello world"})
			Expect(err).ToNot(HaveOccurred())

			req := httptest.NewRequest(http.MethodPost, "/v1/audio/speech", bytes.NewReader(body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := doRequest(e, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get(echo.HeaderContentDisposition)).To(ContainSubstring(`filename="output.wav"`))
			Expect(rec.Header().Get("X-Synthesis-Id")).ToNot(BeEmpty())

			audio, err := io.ReadAll(rec.Body)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(audio[:4])).To(Equal("RIFF"))
		})

		It("accepts query parameters on GET", func() {
			rec := doRequest(e, httptest.NewRequest(http.MethodGet, "/v1/audio/speech?input=bonjour&language=FR&speed=1.5", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))

			calls := eng.Calls()
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].Language).To(Equal("FR"))
			Expect(calls[0].Speed).To(Equal(1.5))
		})

		It("removes the audio file after serving it", func() {
			rec := doRequest(e, httptest.NewRequest(http.MethodGet, "/v1/audio/speech?input=hello", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))

			entries, err := os.ReadDir(app.ApplicationConfig().AudioDir)
			Expect(err).ToNot(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})

		It("rejects unsupported languages", func() {
			rec := doRequest(e, httptest.NewRequest(http.MethodGet, "/v1/audio/speech?input=hallo&language=DE", nil))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))

			var resp schema.ErrorResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Error.Message).To(ContainSubstring("invalid language"))
		})

		It("rejects unknown English speakers", func() {
			rec := doRequest(e, httptest.NewRequest(http.MethodGet, "/v1/audio/speech?input=hi&speaker=EN-XX", nil))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects requests without input or source", func() {
			rec := doRequest(e, httptest.NewRequest(http.MethodPost, "/v1/audio/speech", nil))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("maps missing source objects to 404", func() {
			app.Synthesizer().WithTextSource(func(ctx context.Context, uri string) (string, error) {
				return "", fmt.Errorf("%w: %s", objectstore.ErrNotFound, uri)
			})
			rec := doRequest(e, httptest.NewRequest(http.MethodGet, "/v1/audio/speech?source_uri=gs://texts/missing.txt", nil))
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("maps access errors to 403", func() {
			app.Synthesizer().WithTextSource(func(ctx context.Context, uri string) (string, error) {
				return "", fmt.Errorf("%w: %s", objectstore.ErrPermission, uri)
			})
			rec := doRequest(e, httptest.NewRequest(http.MethodGet, "/v1/audio/speech?source_uri=gs://texts/secret.txt", nil))
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("maps empty source files to 400", func() {
			app.Synthesizer().WithTextSource(func(ctx context.Context, uri string) (string, error) {
				return "", fmt.Errorf("%w: %s", objectstore.ErrEmptySource, uri)
			})
			rec := doRequest(e, httptest.NewRequest(http.MethodGet, "/v1/audio/speech?source_uri=gs://texts/empty.txt", nil))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("maps engine failures to 500", func() {
			eng.Err = fmt.Errorf("worker crashed")
			rec := doRequest(e, httptest.NewRequest(http.MethodGet, "/v1/audio/speech?input=boom", nil))
			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		})

		It("honors the legacy gcs_uri parameter", func() {
			app.Synthesizer().WithTextSource(func(ctx context.Context, uri string) (string, error) {
				Expect(uri).To(Equal("gs://texts/legacy.txt"))
				return "legacy text", nil
			})
			rec := doRequest(e, httptest.NewRequest(http.MethodGet, "/v1/audio/speech?gcs_uri=gs://texts/legacy.txt", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
		})
	})

	Describe("voices endpoint", func() {
		It("lists the catalog", func() {
			rec := doRequest(e, httptest.NewRequest(http.MethodGet, "/v1/voices", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp struct {
				Voices []config.VoiceConfig `json:"voices"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Voices).To(HaveLen(2))
			Expect(resp.Voices[0].Name).To(Equal("en-default"))
		})
	})
})

var _ = Describe("API with key auth", func() {
	var e *echo.Echo

	BeforeEach(func() {
		_, e = newTestApp(fake.New(), config.WithApiKeys([]string{"sk-test"}))
	})

	It("rejects requests without a key", func() {
		rec := doRequest(e, httptest.NewRequest(http.MethodGet, "/v1/voices", nil))
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(rec.Header().Get("WWW-Authenticate")).To(Equal("Bearer"))
	})

	It("accepts a bearer token", func() {
		req := httptest.NewRequest(http.MethodGet, "/v1/voices", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer sk-test")
		rec := doRequest(e, req)
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("accepts the x-api-key header", func() {
		req := httptest.NewRequest(http.MethodGet, "/v1/voices", nil)
		req.Header.Set("x-api-key", "sk-test")
		rec := doRequest(e, req)
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("leaves health checks reachable", func() {
		rec := doRequest(e, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
	})
})

var _ = Describe("API with opaque errors", func() {
	It("returns bare status codes", func() {
		_, e := newTestApp(fake.New(), config.WithOpaqueErrors(true))

		rec := doRequest(e, httptest.NewRequest(http.MethodGet, "/v1/audio/speech?input=hallo&language=DE", nil))
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(strings.TrimSpace(rec.Body.String())).To(BeEmpty())
	})
})
