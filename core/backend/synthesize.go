package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/meloserve/meloserve/core/config"
	"github.com/meloserve/meloserve/core/objectstore"
	"github.com/meloserve/meloserve/core/schema"
	"github.com/meloserve/meloserve/pkg/audio"
	"github.com/meloserve/meloserve/pkg/engine"
	"github.com/meloserve/meloserve/pkg/utils"
)

var (
	ErrInvalidLanguage = errors.New("invalid language")
	ErrInvalidSpeaker  = errors.New("invalid speaker")
	ErrNoVoice         = errors.New("no voice available")
	ErrNoInput         = errors.New("no input text")
)

// TextSource resolves an object store URI to its text content.
type TextSource func(ctx context.Context, uri string) (string, error)

// Synthesizer turns synthesis requests into WAV files under the audio dir.
type Synthesizer struct {
	vcl       *config.VoiceConfigLoader
	appConfig *config.ApplicationConfig
	engine    engine.Engine
	source    TextSource
}

func NewSynthesizer(vcl *config.VoiceConfigLoader, appConfig *config.ApplicationConfig, eng engine.Engine) *Synthesizer {
	return &Synthesizer{
		vcl:       vcl,
		appConfig: appConfig,
		engine:    eng,
		source:    objectstore.ReadTextFromURI,
	}
}

// WithTextSource overrides how source URIs are read. Used by tests.
func (s *Synthesizer) WithTextSource(source TextSource) *Synthesizer {
	s.source = source
	return s
}

func (s *Synthesizer) Engine() engine.Engine { return s.engine }

// resolveVoice applies the language and speaker rules: EN requests must name
// a known English speaker (EN-Default when unset), any other language ignores
// the speaker parameter and falls back to the first voice registered for it.
func (s *Synthesizer) resolveVoice(language, speaker string) (config.VoiceConfig, error) {
	language = strings.ToUpper(language)
	if language == "" {
		language = s.appConfig.DefaultLanguage
	}
	if !config.ValidLanguage(language) {
		return config.VoiceConfig{}, fmt.Errorf("%w: %q, must be one of %v", ErrInvalidLanguage, language, config.ValidLanguages)
	}

	if language == "EN" {
		if speaker == "" {
			speaker = s.appConfig.DefaultSpeaker
		}
		voice, ok := s.vcl.VoiceBySpeaker(language, speaker)
		if !ok {
			return config.VoiceConfig{}, fmt.Errorf("%w: %q for English, must be one of %v", ErrInvalidSpeaker, speaker, config.ValidEnglishSpeakers)
		}
		return voice, nil
	}

	if speaker != "" && speaker != s.appConfig.DefaultSpeaker {
		log.Warn().Str("speaker", speaker).Str("language", language).Msg("speaker setting is ignored for non-English languages, using the language default")
	}
	voices := s.vcl.VoicesForLanguage(language)
	if len(voices) == 0 {
		return config.VoiceConfig{}, fmt.Errorf("%w: no voices registered for language %q", ErrNoVoice, language)
	}
	return voices[0], nil
}

func (s *Synthesizer) resolveText(ctx context.Context, request *schema.SynthesisRequest) (string, error) {
	if request.Input != "" {
		return request.Input, nil
	}
	uri := request.Source()
	if uri == "" {
		return "", fmt.Errorf("%w: either 'input' or 'source_uri' is required", ErrNoInput)
	}
	return s.source(ctx, uri)
}

// Synthesize renders the request to a uniquely named WAV file and returns
// its metadata, the file path included.
func (s *Synthesizer) Synthesize(ctx context.Context, request *schema.SynthesisRequest) (*schema.SynthesisResult, error) {
	voice, err := s.resolveVoice(request.Language, request.Speaker)
	if err != nil {
		return nil, err
	}

	text, err := s.resolveText(ctx, request)
	if err != nil {
		return nil, err
	}

	speed := request.Speed
	if speed <= 0 {
		speed = s.appConfig.DefaultSpeed
	}
	device := request.Device
	if device == "" {
		device = s.appConfig.DefaultDevice
	}

	if err := os.MkdirAll(s.appConfig.AudioDir, 0750); err != nil {
		return nil, fmt.Errorf("failed creating audio directory: %w", err)
	}

	modelPath := ""
	if voice.ModelFile != "" {
		if err := utils.VerifyPath(voice.ModelFile, s.appConfig.AssetsPath); err != nil {
			return nil, err
		}
		modelPath = filepath.Join(s.appConfig.AssetsPath, voice.ModelFile)
	}

	id := uuid.New().String()
	dst := filepath.Join(s.appConfig.AudioDir, generateUniqueFileName(s.appConfig.AudioDir, voice.Name, ".wav"))

	log.Debug().
		Str("id", id).
		Str("voice", voice.Name).
		Str("language", voice.Language).
		Str("speaker", voice.Speaker).
		Float64("speed", speed).
		Str("device", device).
		Int("textLen", len(text)).
		Msg("synthesizing")

	err = s.engine.Synthesize(ctx, engine.SynthesisParams{
		Text:      text,
		ModelFile: modelPath,
		Language:  voice.Language,
		Speaker:   voice.Speaker,
		Speed:     speed,
		Device:    device,
		Dst:       dst,
	})
	if err != nil {
		os.Remove(dst)
		return nil, err
	}

	info, err := audio.Probe(dst)
	if err != nil {
		os.Remove(dst)
		return nil, fmt.Errorf("engine produced an invalid audio file: %w", err)
	}

	return &schema.SynthesisResult{
		ID:         id,
		Voice:      voice.Name,
		Language:   voice.Language,
		Speaker:    voice.Speaker,
		Duration:   info.Duration.Seconds(),
		SampleRate: info.SampleRate,
		AudioPath:  dst,
	}, nil
}

func generateUniqueFileName(dir, baseName, ext string) string {
	counter := 1
	fileName := baseName + ext

	for {
		filePath := filepath.Join(dir, fileName)
		_, err := os.Stat(filePath)
		if os.IsNotExist(err) {
			return fileName
		}

		counter++
		fileName = fmt.Sprintf("%s_%d%s", baseName, counter, ext)
	}
}
