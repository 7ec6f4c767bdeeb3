package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/meloserve/meloserve/core/cli"
	"github.com/meloserve/meloserve/internal"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog at INFO, the desired level is applied after CLI parsing
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// handle loading environment variables from .env files
	envFiles := []string{".env", "meloserve.env"}
	homeDir, err := os.UserHomeDir()
	if err == nil {
		envFiles = append(envFiles, filepath.Join(homeDir, "meloserve.env"), filepath.Join(homeDir, ".config/meloserve.env"))
	}
	envFiles = append(envFiles, "/etc/meloserve.env")

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			log.Debug().Str("envFile", envFile).Msg("env file found, loading environment variables from file")
			if err := godotenv.Load(envFile); err != nil {
				log.Error().Err(err).Str("envFile", envFile).Msg("failed to load environment variables from file")
				continue
			}
		}
	}

	ctx := kong.Parse(&cli.CLI,
		kong.Description(
			`  MeloServe serves a speech-synthesis engine as an HTTP or event-triggered endpoint.

Text is read inline or from an object store URI (gs:// or s3://) and rendered to WAV
audio, either returned to the caller or written back to an output bucket.

Version: ${version}
`,
		),
		kong.UsageOnError(),
		kong.Vars{
			"basepath": kong.ExpandPath("."),
			"version":  internal.PrintableVersion(),
		},
	)

	// Configure the logging level before we run the application
	logLevel := "info"
	if cli.CLI.Debug && cli.CLI.LogLevel == nil {
		logLevel = "debug"
		cli.CLI.LogLevel = &logLevel
	}
	if cli.CLI.LogLevel == nil {
		cli.CLI.LogLevel = &logLevel
	}

	level, err := zerolog.ParseLevel(*cli.CLI.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", *cli.CLI.LogLevel).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)
	if cli.CLI.LogFormat != nil && *cli.CLI.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	if err := ctx.Run(&cli.CLI.Context); err != nil {
		log.Fatal().Err(err).Msg("error running the application")
	}
}
