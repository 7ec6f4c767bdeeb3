package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	cliContext "github.com/meloserve/meloserve/core/cli/context"
	"github.com/meloserve/meloserve/core/config"
	"github.com/meloserve/meloserve/pkg/downloader"
	"github.com/meloserve/meloserve/pkg/utils"
)

type PrefetchCMD struct {
	Voices []string `arg:"" optional:"" help:"Voice names to prefetch, all voices with a model URI when empty"`

	VoicesPath string `env:"MELOSERVE_VOICES_PATH,VOICES_PATH" type:"path" default:"${basepath}/voices" help:"Path containing the voice catalog" group:"storage"`
	AssetsPath string `env:"MELOSERVE_ASSETS_PATH,ASSETS_PATH" type:"path" default:"${basepath}/assets" help:"Path the model assets are downloaded to" group:"storage"`
}

// Run downloads the model assets for the selected voices. A file lock on the
// assets path keeps concurrent prefetch runs (e.g. parallel image builds)
// from clobbering each other's partial downloads.
func (p *PrefetchCMD) Run(ctx *cliContext.Context) error {
	vcl := config.NewVoiceConfigLoader(p.VoicesPath)
	if err := vcl.LoadVoiceConfigsFromPath(p.VoicesPath); err != nil {
		return err
	}

	voices := []config.VoiceConfig{}
	if len(p.Voices) == 0 {
		for _, v := range vcl.GetAllVoiceConfigs() {
			if v.ModelURI != "" {
				voices = append(voices, v)
			}
		}
	} else {
		for _, name := range p.Voices {
			v, ok := vcl.GetVoiceConfig(name)
			if !ok {
				return fmt.Errorf("no voice named %q in the catalog", name)
			}
			if v.ModelURI == "" {
				return fmt.Errorf("voice %q has no model URI to prefetch", name)
			}
			voices = append(voices, v)
		}
	}

	if len(voices) == 0 {
		log.Info().Msg("nothing to prefetch, no voices with a model URI")
		return nil
	}

	if err := os.MkdirAll(p.AssetsPath, 0750); err != nil {
		return err
	}

	fileLock := flock.New(filepath.Join(p.AssetsPath, ".prefetch.lock"))
	if err := fileLock.Lock(); err != nil {
		return fmt.Errorf("cannot lock assets path: %w", err)
	}
	defer fileLock.Unlock()

	for i, voice := range voices {
		target := filepath.Join(p.AssetsPath, voice.ModelFile)

		// Bundled voices ship the model and its auxiliary files in one
		// archive, downloaded next to the model and unpacked in place.
		dst := target
		bundled := utils.IsArchive(voice.ModelURI)
		if bundled {
			dst = filepath.Join(filepath.Dir(target), filepath.Base(voice.ModelURI))
		}

		progressBar := progressbar.NewOptions(
			1000,
			progressbar.OptionSetDescription(fmt.Sprintf("downloading voice %s", voice.Name)),
			progressbar.OptionShowBytes(false),
			progressbar.OptionClearOnFinish(),
		)
		progressCallback := func(fileName string, current string, total string, percentage float64) {
			v := int(percentage * 10)
			if err := progressBar.Set(v); err != nil {
				log.Debug().Err(err).Int("value", v).Msg("error while updating progress bar")
			}
		}

		uri := downloader.URI(voice.ModelURI)
		if err := uri.DownloadFile(dst, voice.SHA256, i, len(voices), progressCallback); err != nil {
			return fmt.Errorf("prefetch of voice %q failed: %w", voice.Name, err)
		}

		if bundled {
			if err := utils.ExtractArchive(dst, filepath.Dir(target)); err != nil {
				return fmt.Errorf("cannot unpack bundle for voice %q: %w", voice.Name, err)
			}
			os.Remove(dst)
			if _, err := os.Stat(target); err != nil {
				return fmt.Errorf("bundle for voice %q does not contain %s", voice.Name, filepath.Base(voice.ModelFile))
			}
		}

		// The engine loads a checkpoint from disk only when config.json sits
		// next to it
		if voice.ConfigURI != "" {
			configDst := filepath.Join(filepath.Dir(target), "config.json")
			configURI := downloader.URI(voice.ConfigURI)
			if err := configURI.DownloadFile(configDst, "", i, len(voices), progressCallback); err != nil {
				return fmt.Errorf("prefetch of config for voice %q failed: %w", voice.Name, err)
			}
		}
	}

	log.Info().Int("voices", len(voices)).Str("assetsPath", p.AssetsPath).Msg("prefetch complete")
	return nil
}
