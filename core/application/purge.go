package application

import (
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// startPurgeSchedule removes rendered audio files older than the retention
// window. Attachments are deleted right after download, this catches files
// orphaned by interrupted requests.
func (a *Application) startPurgeSchedule() {
	if a.applicationConfig.AudioRetention <= 0 {
		return
	}

	a.scheduler = cron.New()
	_, err := a.scheduler.AddFunc(a.applicationConfig.PurgeSchedule, func() {
		a.purgeAudioDir()
	})
	if err != nil {
		log.Error().Err(err).Str("schedule", a.applicationConfig.PurgeSchedule).Msg("invalid purge schedule")
		return
	}
	a.scheduler.Start()
	log.Debug().
		Str("schedule", a.applicationConfig.PurgeSchedule).
		Dur("retention", a.applicationConfig.AudioRetention).
		Msg("audio purge schedule started")
}

func (a *Application) purgeAudioDir() {
	cutoff := time.Now().Add(-a.applicationConfig.AudioRetention)

	entries, err := os.ReadDir(a.applicationConfig.AudioDir)
	if err != nil {
		log.Error().Err(err).Str("dir", a.applicationConfig.AudioDir).Msg("cannot read audio directory")
		return
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(a.applicationConfig.AudioDir, entry.Name())); err != nil {
				log.Error().Err(err).Str("file", entry.Name()).Msg("cannot remove expired audio file")
				continue
			}
			removed++
		}
	}
	if removed > 0 {
		log.Debug().Int("removed", removed).Msg("purged expired audio files")
	}
}

// Shutdown stops background work and the engine worker.
func (a *Application) Shutdown() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.configWatcher != nil {
		if err := a.configWatcher.Stop(); err != nil {
			log.Error().Err(err).Msg("error stopping config watcher")
		}
		a.configWatcher = nil
	}
	if a.engine != nil {
		if err := a.engine.Close(); err != nil {
			log.Error().Err(err).Msg("error stopping engine")
		}
	}
}
