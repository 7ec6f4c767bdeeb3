package application

import (
	"github.com/robfig/cron/v3"

	"github.com/meloserve/meloserve/core/backend"
	"github.com/meloserve/meloserve/core/config"
	"github.com/meloserve/meloserve/pkg/engine"
)

type Application struct {
	voiceConfigLoader *config.VoiceConfigLoader
	applicationConfig *config.ApplicationConfig
	engine            engine.Engine
	synthesizer       *backend.Synthesizer
	scheduler         *cron.Cron
	configWatcher     *configFileHandler
}

func newApplication(appConfig *config.ApplicationConfig, eng engine.Engine) *Application {
	return &Application{
		voiceConfigLoader: config.NewVoiceConfigLoader(appConfig.VoicesPath),
		applicationConfig: appConfig,
		engine:            eng,
	}
}

func (a *Application) VoiceConfigLoader() *config.VoiceConfigLoader {
	return a.voiceConfigLoader
}

func (a *Application) ApplicationConfig() *config.ApplicationConfig {
	return a.applicationConfig
}

func (a *Application) Engine() engine.Engine {
	return a.engine
}

func (a *Application) Synthesizer() *backend.Synthesizer {
	return a.synthesizer
}
