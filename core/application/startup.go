package application

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/meloserve/meloserve/core/backend"
	"github.com/meloserve/meloserve/core/config"
	"github.com/meloserve/meloserve/internal"
	"github.com/meloserve/meloserve/pkg/engine"
	"github.com/meloserve/meloserve/pkg/engine/melo"
)

// New assembles the application from options: voice catalog, engine,
// synthesizer, dynamic config watcher and the audio purge schedule.
func New(opts ...config.AppOption) (*Application, error) {
	options := config.NewApplicationConfig(opts...)

	// Store a copy of the startup config (from env vars, before dynamic file
	// loading), readApiKeysJson merges against it
	startupConfigCopy := *options

	eng := melo.New(
		melo.WithCommand(options.EngineCommand),
		melo.WithDevice(options.DefaultDevice),
	)

	return NewWithEngine(options, &startupConfigCopy, eng)
}

// NewWithEngine is New with an injected engine. Tests use it with the fake
// engine.
func NewWithEngine(options *config.ApplicationConfig, startupConfig *config.ApplicationConfig, eng engine.Engine) (*Application, error) {
	application := newApplication(options, eng)

	log.Info().Str("version", internal.PrintableVersion()).Str("address", options.Address).Msg("starting MeloServe")

	if options.AudioDir == "" {
		return nil, fmt.Errorf("audio directory cannot be empty")
	}
	if err := os.MkdirAll(options.AudioDir, 0750); err != nil {
		return nil, fmt.Errorf("unable to create audio directory: %w", err)
	}
	if options.AssetsPath != "" {
		if err := os.MkdirAll(options.AssetsPath, 0750); err != nil {
			return nil, fmt.Errorf("unable to create assets directory: %w", err)
		}
	}

	if options.VoicesPath != "" {
		if err := application.voiceConfigLoader.LoadVoiceConfigsFromPath(options.VoicesPath); err != nil {
			log.Error().Err(err).Str("path", options.VoicesPath).Msg("cannot load voice catalog")
		}
	}
	if len(application.voiceConfigLoader.GetAllVoiceConfigs()) == 0 {
		log.Warn().Msg("voice catalog is empty, synthesis requests will fail")
	}

	application.synthesizer = backend.NewSynthesizer(application.voiceConfigLoader, options, eng)

	if options.DynamicConfigsDir != "" {
		if startupConfig == nil {
			cfg := *options
			startupConfig = &cfg
		}
		configHandler := newConfigFileHandler(options, startupConfig)
		if err := configHandler.Register("voice_overrides.yaml", readVoiceOverridesYaml(application.voiceConfigLoader), true); err != nil {
			log.Error().Err(err).Str("file", "voice_overrides.yaml").Msg("unable to register config file handler")
		}
		if err := configHandler.Watch(); err != nil {
			log.Error().Err(err).Msg("error establishing configuration directory watcher")
		}
		application.configWatcher = &configHandler
	}

	application.startPurgeSchedule()

	return application, nil
}
