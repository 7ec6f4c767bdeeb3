package config

import (
	"fmt"
	"slices"
	"strings"
)

// Languages the synthesis engine ships voices for.
var ValidLanguages = []string{"EN", "ES", "FR", "ZH", "JP", "KR"}

// English speaker variants. Other languages carry a single default speaker.
var ValidEnglishSpeakers = []string{"EN-Default", "EN-US", "EN-BR", "EN_INDIA", "EN-AU"}

const DefaultEnglishSpeaker = "EN-Default"

// VoiceConfig describes a single voice the engine can render with. Voices are
// declared in YAML files under the voices path, one file per language or a
// list of voices per file.
type VoiceConfig struct {
	Name     string `yaml:"name" json:"name"`
	Language string `yaml:"language" json:"language"`
	Speaker  string `yaml:"speaker" json:"speaker"`

	// Model file the engine loads for this voice, relative to the assets path.
	ModelFile string `yaml:"model_file" json:"model_file"`

	// Download source for the model file, used by prefetch.
	ModelURI string `yaml:"model_uri,omitempty" json:"model_uri,omitempty"`
	SHA256   string `yaml:"sha256,omitempty" json:"sha256,omitempty"`

	// Download source for the model's config.json, fetched next to the
	// model file so the engine can load the checkpoint from disk.
	ConfigURI string `yaml:"config_uri,omitempty" json:"config_uri,omitempty"`

	Default bool `yaml:"default,omitempty" json:"default,omitempty"`
}

func (v *VoiceConfig) SetDefaults() {
	v.Language = strings.ToUpper(v.Language)
	if v.Speaker == "" && v.Language == "EN" {
		v.Speaker = DefaultEnglishSpeaker
	}
	if v.Speaker == "" {
		v.Speaker = v.Language
	}
	if v.Name == "" {
		v.Name = strings.ToLower(v.Language + "-" + v.Speaker)
	}
}

func (v *VoiceConfig) Validate() error {
	if !slices.Contains(ValidLanguages, v.Language) {
		return fmt.Errorf("invalid language %q: must be one of %v", v.Language, ValidLanguages)
	}
	if v.Language == "EN" && !slices.Contains(ValidEnglishSpeakers, v.Speaker) {
		return fmt.Errorf("invalid speaker %q for English: must be one of %v", v.Speaker, ValidEnglishSpeakers)
	}
	if v.ModelFile == "" {
		return fmt.Errorf("voice %q has no model file", v.Name)
	}
	return nil
}

// ValidLanguage reports whether the (upper-cased) language code is supported.
func ValidLanguage(language string) bool {
	return slices.Contains(ValidLanguages, strings.ToUpper(language))
}
