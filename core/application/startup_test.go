package application

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/meloserve/meloserve/core/config"
	"github.com/meloserve/meloserve/pkg/engine/fake"
)

var _ = Describe("Application startup", func() {
	var (
		workDir    string
		voicesDir  string
		configsDir string
	)

	BeforeEach(func() {
		var err error
		workDir, err = os.MkdirTemp("", "meloserve-app")
		Expect(err).ToNot(HaveOccurred())

		voicesDir = filepath.Join(workDir, "voices")
		configsDir = filepath.Join(workDir, "configs")
		Expect(os.MkdirAll(voicesDir, 0755)).To(Succeed())
		Expect(os.MkdirAll(configsDir, 0755)).To(Succeed())

		Expect(os.WriteFile(filepath.Join(voicesDir, "en.yaml"), []byte(`
name: en-default
language: EN
speaker: EN-Default
model_file: en/checkpoint.pth
default: true
`), 0644)).To(Succeed())
	})

	AfterEach(func() {
		os.RemoveAll(workDir)
	})

	newApp := func() *Application {
		app, err := NewWithEngine(config.NewApplicationConfig(
			config.WithVoicesPath(voicesDir),
			config.WithAssetsPath(filepath.Join(workDir, "assets")),
			config.WithAudioDir(filepath.Join(workDir, "audio")),
			config.WithDynamicConfigDir(configsDir),
		), nil, fake.New())
		Expect(err).ToNot(HaveOccurred())
		return app
	}

	It("applies voice overrides from the dynamic config dir", func() {
		Expect(os.WriteFile(filepath.Join(configsDir, "voice_overrides.yaml"), []byte(`
en-default:
  model_file: en/checkpoint-v2.pth
`), 0644)).To(Succeed())

		app := newApp()
		defer app.Shutdown()

		v, ok := app.VoiceConfigLoader().GetVoiceConfig("en-default")
		Expect(ok).To(BeTrue())
		Expect(v.ModelFile).To(Equal("en/checkpoint-v2.pth"))
		// The override leaves unset fields untouched
		Expect(v.Language).To(Equal("EN"))
		Expect(v.Speaker).To(Equal("EN-Default"))
	})

	It("keeps the catalog untouched without an override file", func() {
		app := newApp()
		defer app.Shutdown()

		v, ok := app.VoiceConfigLoader().GetVoiceConfig("en-default")
		Expect(ok).To(BeTrue())
		Expect(v.ModelFile).To(Equal("en/checkpoint.pth"))
	})

	It("stops the config watcher on shutdown", func() {
		app := newApp()
		Expect(app.configWatcher).ToNot(BeNil())

		watcher := app.configWatcher
		app.Shutdown()

		Expect(watcher.done).To(BeClosed())
		Expect(app.configWatcher).To(BeNil())

		// A second shutdown is a no-op
		app.Shutdown()
	})
})
