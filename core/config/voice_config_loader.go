package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"dario.cat/mergo"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type VoiceConfigLoader struct {
	voices     map[string]VoiceConfig
	voicesPath string
	sync.Mutex
}

func NewVoiceConfigLoader(voicesPath string) *VoiceConfigLoader {
	return &VoiceConfigLoader{
		voices:     make(map[string]VoiceConfig),
		voicesPath: voicesPath,
	}
}

func readVoiceConfigsFromFile(file string) ([]*VoiceConfig, error) {
	c := &[]*VoiceConfig{}
	f, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read voice config file: %w", err)
	}
	if err := yaml.Unmarshal(f, c); err != nil {
		// A file may also hold a single voice instead of a list
		single := &VoiceConfig{}
		if err2 := yaml.Unmarshal(f, single); err2 != nil {
			return nil, fmt.Errorf("cannot unmarshal voice config file: %w", err)
		}
		*c = append(*c, single)
	}

	for _, vc := range *c {
		vc.SetDefaults()
	}

	return *c, nil
}

// LoadVoiceConfigFile loads voice definitions from a single YAML file.
func (vcl *VoiceConfigLoader) LoadVoiceConfigFile(file string) error {
	vcl.Lock()
	defer vcl.Unlock()

	voices, err := readVoiceConfigsFromFile(file)
	if err != nil {
		return err
	}
	for _, v := range voices {
		if err := v.Validate(); err != nil {
			log.Warn().Err(err).Str("file", file).Msg("skipping invalid voice config")
			continue
		}
		vcl.voices[v.Name] = *v
	}
	return nil
}

// LoadVoiceConfigsFromPath loads every .yaml/.yml file in the voices path.
func (vcl *VoiceConfigLoader) LoadVoiceConfigsFromPath(path string) error {
	if path == "" {
		path = vcl.voicesPath
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("cannot read voices path: %w", err)
	}
	files := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".yaml") || strings.HasSuffix(entry.Name(), ".yml") {
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	sort.Strings(files)

	for _, file := range files {
		if err := vcl.LoadVoiceConfigFile(file); err != nil {
			log.Error().Err(err).Str("file", file).Msg("cannot load voice config file")
		}
	}
	return nil
}

// Overlay merges overrides on top of an already registered voice, keeping the
// registered values for any field the override leaves empty.
func (vcl *VoiceConfigLoader) Overlay(name string, override VoiceConfig) error {
	vcl.Lock()
	defer vcl.Unlock()

	base, ok := vcl.voices[name]
	if !ok {
		return fmt.Errorf("no voice named %q", name)
	}
	if err := mergo.Merge(&override, base); err != nil {
		return err
	}
	if err := override.Validate(); err != nil {
		return err
	}
	vcl.voices[name] = override
	return nil
}

func (vcl *VoiceConfigLoader) GetVoiceConfig(name string) (VoiceConfig, bool) {
	vcl.Lock()
	defer vcl.Unlock()
	v, ok := vcl.voices[name]
	return v, ok
}

func (vcl *VoiceConfigLoader) GetAllVoiceConfigs() []VoiceConfig {
	vcl.Lock()
	defer vcl.Unlock()

	res := []VoiceConfig{}
	for _, v := range vcl.voices {
		res = append(res, v)
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Name < res[j].Name
	})
	return res
}

// VoicesForLanguage returns the voices registered for a language, default
// voice first.
func (vcl *VoiceConfigLoader) VoicesForLanguage(language string) []VoiceConfig {
	language = strings.ToUpper(language)

	res := []VoiceConfig{}
	for _, v := range vcl.GetAllVoiceConfigs() {
		if v.Language == language {
			res = append(res, v)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].Default != res[j].Default {
			return res[i].Default
		}
		return res[i].Name < res[j].Name
	})
	return res
}

// VoiceBySpeaker looks up a voice by language and speaker id.
func (vcl *VoiceConfigLoader) VoiceBySpeaker(language, speaker string) (VoiceConfig, bool) {
	for _, v := range vcl.VoicesForLanguage(language) {
		if v.Speaker == speaker {
			return v, true
		}
	}
	return VoiceConfig{}, false
}
