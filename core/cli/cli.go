package cli

import (
	cliContext "github.com/meloserve/meloserve/core/cli/context"
)

var CLI struct {
	cliContext.Context `embed:""`

	Run      RunCMD      `cmd:"" help:"Run the MeloServe API server, this is the default command if no other command is specified. Run 'meloserve run --help' for more information" default:"withargs"`
	TTS      TTSCMD      `cmd:"" help:"Convert text to speech from the command line"`
	Voices   VoicesCMD   `cmd:"" help:"List the voices available in the voice catalog"`
	Prefetch PrefetchCMD `cmd:"" help:"Download voice model assets ahead of time"`
}
