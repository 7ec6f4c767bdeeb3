package cli

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/meloserve/meloserve/core/application"
	cliContext "github.com/meloserve/meloserve/core/cli/context"
	"github.com/meloserve/meloserve/core/config"
	"github.com/meloserve/meloserve/core/http"
	"github.com/meloserve/meloserve/pkg/signals"
)

type RunCMD struct {
	VoicesPath           string        `env:"MELOSERVE_VOICES_PATH,VOICES_PATH" type:"path" default:"${basepath}/voices" help:"Path containing the voice catalog (YAML files)" group:"storage"`
	AssetsPath           string        `env:"MELOSERVE_ASSETS_PATH,ASSETS_PATH" type:"path" default:"${basepath}/assets" help:"Path containing voice model assets" group:"storage"`
	GeneratedContentPath string        `env:"MELOSERVE_GENERATED_CONTENT_PATH,GENERATED_CONTENT_PATH" type:"path" default:"/tmp/meloserve/audio" help:"Location for rendered audio files" group:"storage"`
	ConfigDir            string        `env:"MELOSERVE_CONFIG_DIR,CONFIG_DIR" type:"path" help:"Directory for dynamic loading of certain configuration files (currently api_keys.json)" group:"storage"`
	ConfigDirPollInterval time.Duration `env:"MELOSERVE_CONFIG_DIR_POLL_INTERVAL" help:"Typically the config dir picks up changes automatically, but if your system has broken fsnotify events, set this to an interval to poll the config dir (example: 1m)" group:"storage"`

	OutputBucket    string  `env:"MELOSERVE_OUTPUT_BUCKET,OUTPUT_BUCKET" help:"Bucket the event-triggered handler writes synthesized audio to" group:"synthesis"`
	DefaultLanguage string  `env:"MELOSERVE_DEFAULT_LANGUAGE,DEFAULT_LANGUAGE" default:"EN" help:"Language used when a request does not specify one" group:"synthesis"`
	DefaultSpeaker  string  `env:"MELOSERVE_DEFAULT_SPEAKER,DEFAULT_SPEAKER" default:"EN-Default" help:"Speaker used for English requests that do not specify one" group:"synthesis"`
	DefaultSpeed    float64 `env:"MELOSERVE_DEFAULT_SPEED,DEFAULT_SPEED" default:"1.0" help:"Speech speed used when a request does not specify one" group:"synthesis"`
	DefaultDevice   string  `env:"MELOSERVE_DEFAULT_DEVICE,DEFAULT_DEVICE" default:"auto" help:"Compute device the engine runs on (auto, cpu, cuda)" group:"synthesis"`
	EngineCommand   string  `env:"MELOSERVE_ENGINE_COMMAND,ENGINE_COMMAND" help:"Override for the TTS worker command" group:"synthesis"`

	Address          string   `env:"MELOSERVE_ADDRESS,ADDRESS" default:":8080" help:"Bind address for the API server" group:"api"`
	CORS             bool     `env:"MELOSERVE_CORS,CORS" help:"" group:"api"`
	CORSAllowOrigins string   `env:"MELOSERVE_CORS_ALLOW_ORIGINS,CORS_ALLOW_ORIGINS" group:"api"`
	CSRF             bool     `env:"MELOSERVE_CSRF" help:"Enables CSRF middleware" group:"api"`
	UploadLimit      int      `env:"MELOSERVE_UPLOAD_LIMIT,UPLOAD_LIMIT" default:"15" help:"Default upload-limit in MB" group:"api"`
	APIKeys          []string `env:"MELOSERVE_API_KEY,API_KEY" help:"List of API Keys to enable API authentication. When this is set, all the requests must be authenticated with one of these API keys" group:"api"`
	DisableMetrics   bool     `env:"MELOSERVE_DISABLE_METRICS_ENDPOINT,DISABLE_METRICS_ENDPOINT" default:"false" help:"Disable the /metrics endpoint" group:"api"`

	AudioRetention time.Duration `env:"MELOSERVE_AUDIO_RETENTION,AUDIO_RETENTION" default:"24h" help:"How long orphaned rendered audio files are kept before the purge job removes them (0 disables purging)" group:"storage"`
	PurgeSchedule  string        `env:"MELOSERVE_PURGE_SCHEDULE" default:"@every 1h" help:"Cron schedule of the audio purge job" group:"storage"`

	OpaqueErrors           bool `env:"MELOSERVE_OPAQUE_ERRORS" default:"false" help:"If true, all error responses are replaced with blank errors. This is intended only for hardening against information leaks and is normally not recommended" group:"hardening"`
	UseSubtleKeyComparison bool `env:"MELOSERVE_SUBTLE_KEY_COMPARISON" default:"false" help:"If true, API Key validation comparisons will be performed using constant-time comparisons rather than simple equality" group:"hardening"`
}

func (r *RunCMD) Run(ctx *cliContext.Context) error {
	// Serverless platforms hand the listen port over via PORT
	if port := os.Getenv("PORT"); port != "" && r.Address == ":8080" {
		r.Address = ":" + port
	}

	opts := []config.AppOption{
		config.WithContext(context.Background()),
		config.WithAddress(r.Address),
		config.WithVoicesPath(r.VoicesPath),
		config.WithAssetsPath(r.AssetsPath),
		config.WithAudioDir(r.GeneratedContentPath),
		config.WithDynamicConfigDir(r.ConfigDir),
		config.WithDynamicConfigDirPollInterval(r.ConfigDirPollInterval),
		config.WithOutputBucket(r.OutputBucket),
		config.WithDefaultLanguage(r.DefaultLanguage),
		config.WithDefaultSpeaker(r.DefaultSpeaker),
		config.WithDefaultSpeed(r.DefaultSpeed),
		config.WithDefaultDevice(r.DefaultDevice),
		config.WithEngineCommand(r.EngineCommand),
		config.WithCors(r.CORS),
		config.WithCorsAllowOrigins(r.CORSAllowOrigins),
		config.WithCsrf(r.CSRF),
		config.WithUploadLimitMB(r.UploadLimit),
		config.WithApiKeys(r.APIKeys),
		config.WithDisableMetrics(r.DisableMetrics),
		config.WithAudioRetention(r.AudioRetention),
		config.WithPurgeSchedule(r.PurgeSchedule),
		config.WithOpaqueErrors(r.OpaqueErrors),
		config.WithSubtleKeyComparison(r.UseSubtleKeyComparison),
		config.WithDebug(ctx.Debug || (ctx.LogLevel != nil && *ctx.LogLevel == "debug")),
	}

	app, err := application.New(opts...)
	if err != nil {
		return err
	}

	signals.RegisterGracefulTerminationHandler(app.Shutdown)

	e, err := http.API(app)
	if err != nil {
		return err
	}

	log.Info().Str("address", r.Address).Msg("MeloServe API is listening")
	return e.Start(r.Address)
}
