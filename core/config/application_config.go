package config

import (
	"context"
	"time"
)

type ApplicationConfig struct {
	Context       context.Context
	Address       string
	VoicesPath    string
	AssetsPath    string
	AudioDir      string
	UploadLimitMB int
	Debug         bool

	// Bucket the event-triggered handler writes synthesized audio to.
	OutputBucket string

	DefaultLanguage string
	DefaultSpeaker  string
	DefaultSpeed    float64
	DefaultDevice   string

	EngineCommand string

	ApiKeys                []string
	UseSubtleKeyComparison bool
	OpaqueErrors           bool

	CORS             bool
	CORSAllowOrigins string
	CSRF             bool
	DisableMetrics   bool

	DynamicConfigsDir             string
	DynamicConfigsDirPollInterval time.Duration

	AudioRetention time.Duration
	PurgeSchedule  string
}

type AppOption func(*ApplicationConfig)

func NewApplicationConfig(o ...AppOption) *ApplicationConfig {
	opt := &ApplicationConfig{
		Context:         context.Background(),
		Address:         ":8080",
		UploadLimitMB:   15,
		DefaultLanguage: "EN",
		DefaultSpeaker:  "EN-Default",
		DefaultSpeed:    1.0,
		DefaultDevice:   "auto",
		PurgeSchedule:   "@every 1h",
	}
	for _, oo := range o {
		oo(opt)
	}
	return opt
}

func WithContext(ctx context.Context) AppOption {
	return func(o *ApplicationConfig) {
		o.Context = ctx
	}
}

func WithAddress(address string) AppOption {
	return func(o *ApplicationConfig) {
		o.Address = address
	}
}

func WithVoicesPath(path string) AppOption {
	return func(o *ApplicationConfig) {
		o.VoicesPath = path
	}
}

func WithAssetsPath(path string) AppOption {
	return func(o *ApplicationConfig) {
		o.AssetsPath = path
	}
}

func WithAudioDir(dir string) AppOption {
	return func(o *ApplicationConfig) {
		o.AudioDir = dir
	}
}

func WithUploadLimitMB(limit int) AppOption {
	return func(o *ApplicationConfig) {
		o.UploadLimitMB = limit
	}
}

func WithDebug(debug bool) AppOption {
	return func(o *ApplicationConfig) {
		o.Debug = debug
	}
}

func WithOutputBucket(bucket string) AppOption {
	return func(o *ApplicationConfig) {
		o.OutputBucket = bucket
	}
}

func WithDefaultLanguage(language string) AppOption {
	return func(o *ApplicationConfig) {
		if language != "" {
			o.DefaultLanguage = language
		}
	}
}

func WithDefaultSpeaker(speaker string) AppOption {
	return func(o *ApplicationConfig) {
		if speaker != "" {
			o.DefaultSpeaker = speaker
		}
	}
}

func WithDefaultSpeed(speed float64) AppOption {
	return func(o *ApplicationConfig) {
		if speed > 0 {
			o.DefaultSpeed = speed
		}
	}
}

func WithDefaultDevice(device string) AppOption {
	return func(o *ApplicationConfig) {
		if device != "" {
			o.DefaultDevice = device
		}
	}
}

func WithEngineCommand(command string) AppOption {
	return func(o *ApplicationConfig) {
		o.EngineCommand = command
	}
}

func WithApiKeys(apiKeys []string) AppOption {
	return func(o *ApplicationConfig) {
		o.ApiKeys = apiKeys
	}
}

func WithSubtleKeyComparison(b bool) AppOption {
	return func(o *ApplicationConfig) {
		o.UseSubtleKeyComparison = b
	}
}

func WithOpaqueErrors(b bool) AppOption {
	return func(o *ApplicationConfig) {
		o.OpaqueErrors = b
	}
}

func WithCors(b bool) AppOption {
	return func(o *ApplicationConfig) {
		o.CORS = b
	}
}

func WithCorsAllowOrigins(origins string) AppOption {
	return func(o *ApplicationConfig) {
		o.CORSAllowOrigins = origins
	}
}

func WithCsrf(b bool) AppOption {
	return func(o *ApplicationConfig) {
		o.CSRF = b
	}
}

func WithDisableMetrics(b bool) AppOption {
	return func(o *ApplicationConfig) {
		o.DisableMetrics = b
	}
}

func WithDynamicConfigDir(dir string) AppOption {
	return func(o *ApplicationConfig) {
		o.DynamicConfigsDir = dir
	}
}

func WithDynamicConfigDirPollInterval(interval time.Duration) AppOption {
	return func(o *ApplicationConfig) {
		o.DynamicConfigsDirPollInterval = interval
	}
}

func WithAudioRetention(d time.Duration) AppOption {
	return func(o *ApplicationConfig) {
		o.AudioRetention = d
	}
}

func WithPurgeSchedule(spec string) AppOption {
	return func(o *ApplicationConfig) {
		if spec != "" {
			o.PurgeSchedule = spec
		}
	}
}
