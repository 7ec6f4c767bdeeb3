package application

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/meloserve/meloserve/core/config"
)

type fileHandler func(fileContent []byte, appConfig *config.ApplicationConfig) error

type configFileHandler struct {
	handlers map[string]fileHandler

	watcher *fsnotify.Watcher
	done    chan struct{}

	appConfig *config.ApplicationConfig
}

func newConfigFileHandler(appConfig *config.ApplicationConfig, startupConfig *config.ApplicationConfig) configFileHandler {
	c := configFileHandler{
		handlers:  make(map[string]fileHandler),
		done:      make(chan struct{}),
		appConfig: appConfig,
	}
	err := c.Register("api_keys.json", readApiKeysJson(*startupConfig), true)
	if err != nil {
		log.Error().Err(err).Str("file", "api_keys.json").Msg("unable to register config file handler")
	}
	return c
}

func (c *configFileHandler) Register(filename string, handler fileHandler, runNow bool) error {
	_, ok := c.handlers[filename]
	if ok {
		return fmt.Errorf("handler already registered for file %s", filename)
	}
	c.handlers[filename] = handler
	if runNow {
		c.callHandler(filename, handler)
	}
	return nil
}

func (c *configFileHandler) callHandler(filename string, handler fileHandler) {
	rootedFilePath := filepath.Join(c.appConfig.DynamicConfigsDir, filepath.Clean(filename))
	log.Trace().Str("filename", rootedFilePath).Msg("reading file for dynamic config update")
	fileContent, err := os.ReadFile(rootedFilePath)
	if err != nil && !os.IsNotExist(err) {
		log.Error().Err(err).Str("filename", rootedFilePath).Msg("could not read file")
	}

	if err = handler(fileContent, c.appConfig); err != nil {
		log.Error().Err(err).Msg("dynamic config update failed")
	}
}

func (c *configFileHandler) Watch() error {
	configWatcher, err := fsnotify.NewWatcher()
	c.watcher = configWatcher
	if err != nil {
		return err
	}

	if c.appConfig.DynamicConfigsDirPollInterval > 0 {
		log.Debug().Msg("poll interval set, falling back to polling for configuration changes")
		ticker := time.NewTicker(c.appConfig.DynamicConfigsDirPollInterval)
		go func() {
			defer ticker.Stop()
			for {
				select {
				case <-c.done:
					return
				case <-ticker.C:
				}
				for file, handler := range c.handlers {
					log.Debug().Str("file", file).Msg("polling config file")
					c.callHandler(file, handler)
				}
			}
		}()
	}

	// Start listening for events.
	go func() {
		for {
			select {
			case event, ok := <-c.watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write | fsnotify.Create | fsnotify.Remove) {
					handler, ok := c.handlers[path.Base(event.Name)]
					if !ok {
						continue
					}

					c.callHandler(filepath.Base(event.Name), handler)
				}
			case err, ok := <-c.watcher.Errors:
				log.Error().Err(err).Msg("config watcher error received")
				if !ok {
					return
				}
			}
		}
	}()

	// Add a path.
	if err := c.watcher.Add(c.appConfig.DynamicConfigsDir); err != nil {
		return fmt.Errorf("unable to create a watcher on the configuration directory: %w", err)
	}

	return nil
}

func (c *configFileHandler) Stop() error {
	close(c.done)
	if c.watcher == nil {
		return nil
	}
	return c.watcher.Close()
}

// readApiKeysJson merges the keys from the dynamic file with the keys the
// process started with, so removing the file restores the startup keys.
func readApiKeysJson(startupAppConfig config.ApplicationConfig) fileHandler {
	return func(fileContent []byte, appConfig *config.ApplicationConfig) error {
		log.Debug().Msg("processing api keys runtime update")

		if len(fileContent) > 0 {
			var fileKeys []string
			if err := json.Unmarshal(fileContent, &fileKeys); err != nil {
				return err
			}
			appConfig.ApiKeys = append(append([]string{}, startupAppConfig.ApiKeys...), fileKeys...)
		} else {
			appConfig.ApiKeys = startupAppConfig.ApiKeys
		}
		log.Trace().Int("numKeys", len(appConfig.ApiKeys)).Msg("api keys in effect")
		return nil
	}
}

// readVoiceOverridesYaml overlays per-voice overrides (keyed by voice name)
// on top of the loaded catalog, so model files or download sources can be
// swapped without restarting the service.
func readVoiceOverridesYaml(vcl *config.VoiceConfigLoader) fileHandler {
	return func(fileContent []byte, appConfig *config.ApplicationConfig) error {
		if len(fileContent) == 0 {
			return nil
		}
		log.Debug().Msg("processing voice overrides runtime update")

		overrides := map[string]config.VoiceConfig{}
		if err := yaml.Unmarshal(fileContent, &overrides); err != nil {
			return err
		}
		for name, override := range overrides {
			if err := vcl.Overlay(name, override); err != nil {
				log.Warn().Err(err).Str("voice", name).Msg("skipping voice override")
			}
		}
		return nil
	}
}
